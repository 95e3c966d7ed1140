// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package rendercore

import (
	"github.com/forgelabs/rendercore/internal/rlog"
	"github.com/forgelabs/rendercore/rgraph"
)

// commandSink is the Executor's CommandSink: translating a node's
// execution into real GPU-API calls is entirely the collab.GPUAPI
// backend's job (via each Node's Execute/Subpasses closures, which
// close over that backend directly); the sink only needs to exist so
// the Executor has somewhere to record debug labels and barriers.
type commandSink struct{}

func (commandSink) RecordLabel(name string) {
	rlog.Logger().Debug("recording command buffer region", "node", name)
}

// RecordBarrier logs the transitions a real backend would translate
// into pipeline/memory barrier calls. Nodes close over collab.GPUAPI
// directly for their own command recording, but barrier synthesis
// happens above that boundary in the Compiler, so this is the Executor's
// only hook for surfacing it; the same transitions also reach the
// collaborator per-submission via collab.SubmitBatch.Barriers.
func (commandSink) RecordBarrier(bar rgraph.Barrier) {
	rlog.Logger().Debug("recording resource barrier", "node", bar.BeforeNode, "transitions", len(bar.Transitions))
}
