// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"

	"github.com/forgelabs/rendercore/collab"
	"github.com/forgelabs/rendercore/frame"
	"github.com/forgelabs/rendercore/rgraph"
)

// System is the minimal capability every registered render system has:
// a name for diagnostics. The orchestrator never requires a system to
// implement more than the capability interfaces below it actually
// needs, since most systems only care about a handful of stages —
// mirroring the original engine's pattern of many small per-concern
// systems rather than one god-interface.
type System interface {
	Name() string
}

// Updater systems tick once per frame before view collection, e.g. to
// advance animated lights or camera controllers.
type Updater interface {
	System
	Update(ctx context.Context, scene collab.SceneRegistry, dt float64) error
}

// ViewCollector systems may append new views during the iterative
// view-collection pass (shadow cascades, point-light cube faces).
// CollectViews is called repeatedly until a full pass adds no new views, so
// it must be safe to call with a views slice it has already seen.
type ViewCollector interface {
	System
	CollectViews(mainView *View, views []*View) []*View
}

// FrameSystem systems contribute graph nodes common to many views
// (global light upload, acceleration structure builds) once per frame,
// after view collection but before the per-stage dispatch.
type FrameSystem interface {
	System
	RenderPerFrame(views []*View, builder *rgraph.Builder) error
}

// PrepareStageSystem systems do the per-view work of a stage that
// doesn't touch the Graph Builder (culling, camera/jitter computation,
// shader technique selection) — the part of §5's "independent within a
// stage, may be parallelised across views" rule that's actually safe
// to run concurrently, since the Builder itself is not thread-safe and
// is only ever touched from the recording thread.
type PrepareStageSystem interface {
	System
	PrepareStage(stage frame.Stage, view *View) error
}

// StageSystem systems run at a specific point within a view's pass
// through the fixed stage order. Hooks are optional: a system that
// only needs OnRenderStage leaves PreRenderStage/PostRenderStage
// unimplemented by not satisfying this interface for those hooks —
// since Go interfaces are structural, PreStageSystem/OnStageSystem/
// PostStageSystem below are the ones actually consulted.
type PreStageSystem interface {
	System
	PreRenderStage(stage frame.Stage, view *View, builder *rgraph.Builder) error
}

type OnStageSystem interface {
	System
	OnRenderStage(stage frame.Stage, view *View, builder *rgraph.Builder) error
}

type PostStageSystem interface {
	System
	PostRenderStage(stage frame.Stage, view *View, builder *rgraph.Builder) error
}

// Finisher systems run once per frame after the last stage, before the
// graph is compiled and executed.
type Finisher interface {
	System
	FinishFrame() error
}
