// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package rendercore

import (
	"github.com/forgelabs/rendercore/collab"
	"github.com/forgelabs/rendercore/frame"
	"github.com/forgelabs/rendercore/orchestrator"
)

// EntityID identifies a scene entity; re-exported so host code need not
// import package collab just to build a ViewDescriptor.
type EntityID = collab.EntityID

// Stage is a named slot in the fixed render stage order.
type Stage = frame.Stage

// StageSet is a bitset over the render stages a view participates in.
type StageSet = orchestrator.StageSet

// System is the minimal capability every registered render system
// implements; see package orchestrator for the full capability set
// (Updater, ViewCollector, FrameSystem, PrepareStageSystem,
// PreStageSystem, OnStageSystem, PostStageSystem, Finisher).
type System = orchestrator.System

// WithStage returns stages with stage added, the building block for
// assembling a ViewDescriptor's SupportedStages.
func WithStage(stages StageSet, stage Stage) StageSet {
	return stages.With(stage)
}
