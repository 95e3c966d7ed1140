// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package orchestrator drives the per-frame render: it ticks the
// scene, collects the set of views to render (the main camera plus
// whatever shadow/cascade/cube-face views the registered systems add),
// runs scene-wide systems once, dispatches every view through the
// fixed stage order, and finally flushes the frame's graph.
package orchestrator

import (
	"context"

	"github.com/forgelabs/rendercore/collab"
	"github.com/forgelabs/rendercore/frame"
	"github.com/forgelabs/rendercore/internal/rlog"
	"github.com/forgelabs/rendercore/jobs"
	"github.com/forgelabs/rendercore/rgraph"
)

// stageOrder is the fixed render stage sequence from §3, reusing
// frame.Stage so the frame context's StageEventTable and the
// orchestrator's dispatch agree on what a "stage" is.
var stageOrder = [...]frame.Stage{
	frame.StagePreRendering,
	frame.StageGlobalIllumination,
	frame.StageShadowMap,
	frame.StageDepthPrepass,
	frame.StageVisibilityBuffer,
	frame.StageMotionAndDepth,
	frame.StageDownsampleGeometryTextures,
	frame.StageAmbientOcclusion,
	frame.StageDirectionalLightShadowMasks,
	frame.StageForwardOpaqueOrDeferredShading,
	frame.StageSpecularReflections,
	frame.StageApplyAtmosphere,
	frame.StageVolumetricFog,
	frame.StageTransparency,
	frame.StagePostProcessPreAA,
	frame.StageAntiAliasing,
	frame.StageHDRResolve,
}

// Settings carries per-frame, per-render knobs the host passes to Render.
type Settings struct {
	DeltaTime float64
}

// Orchestrator owns the registered render systems and drives them
// through the five-step per-frame procedure.
type Orchestrator struct {
	systems   []System
	scheduler *jobs.Scheduler
}

// New returns an Orchestrator with the given systems, dispatched with
// up to maxParallelViews views in flight at once within a stage.
func New(systems []System, maxParallelViews int) *Orchestrator {
	return &Orchestrator{systems: systems, scheduler: jobs.NewScheduler(maxParallelViews)}
}

// Render runs the five-step per-frame procedure and returns mainView
// itself; outputs the systems produced are read from its blackboard.
func (o *Orchestrator) Render(ctx context.Context, scene collab.SceneRegistry, mainView *View, builder *rgraph.Builder, settings Settings) (*View, error) {
	if err := o.update(ctx, scene, settings.DeltaTime); err != nil {
		return nil, err
	}

	views := o.collectViews(mainView)

	for _, sys := range o.systems {
		if fs, ok := sys.(FrameSystem); ok {
			if err := fs.RenderPerFrame(views, builder); err != nil {
				return nil, err
			}
		}
	}

	for _, stage := range stageOrder {
		if err := o.dispatchStage(ctx, stage, views, builder); err != nil {
			return nil, err
		}
	}

	for _, sys := range o.systems {
		if f, ok := sys.(Finisher); ok {
			if err := f.FinishFrame(); err != nil {
				return nil, err
			}
		}
	}

	return mainView, nil
}

func (o *Orchestrator) update(ctx context.Context, scene collab.SceneRegistry, dt float64) error {
	for _, sys := range o.systems {
		if u, ok := sys.(Updater); ok {
			if err := u.Update(ctx, scene, dt); err != nil {
				return err
			}
		}
	}
	return nil
}

// collectViews runs the iterative view-collection pass: every
// registered ViewCollector gets a chance to add views to the running
// set, and a full pass over every collector that adds nothing new ends
// collection, matching §4.D.2's "newly added views are themselves
// given a chance to add more views" rule.
func (o *Orchestrator) collectViews(mainView *View) []*View {
	views := []*View{mainView}
	for {
		before := len(views)
		for _, sys := range o.systems {
			if vc, ok := sys.(ViewCollector); ok {
				views = vc.CollectViews(mainView, views)
			}
		}
		if len(views) == before {
			return views
		}
	}
}

// dispatchStage runs every view whose supported stage set contains
// stage through that stage's prepare/pre/on/post hooks.
//
// §5 allows per-view work within a stage to be parallelised across
// views, but the Graph Builder is not safe for concurrent use — nodes
// are only ever added from the single recording thread. The stage is
// therefore split into two passes: PrepareStageSystem hooks, which
// never see the builder and do the parallelisable per-view work
// (culling, jitter/camera computation, technique selection), run
// concurrently across participating views; the Pre/On/PostStageSystem
// hooks, which record graph nodes, then run sequentially per view on
// the calling goroutine. An error from a Pre/On/PostStageSystem hook for
// one view is logged and only that view's remaining hooks for this stage
// are skipped. An error from a PrepareStageSystem hook is only logged;
// the view's Pre/On/Post hooks for the stage still run.
func (o *Orchestrator) dispatchStage(ctx context.Context, stage frame.Stage, views []*View, builder *rgraph.Builder) error {
	participating := make([]*View, 0, len(views))
	for _, v := range views {
		if v.GetSupportedStages().Has(stage) {
			participating = append(participating, v)
		}
	}
	if len(participating) == 0 {
		return nil
	}

	if err := o.scheduler.ParallelForEach(ctx, participating, func(ctx context.Context, view *View) error {
		o.prepareStage(stage, view)
		return nil
	}); err != nil {
		return err
	}

	for _, view := range participating {
		o.runStageHooks(stage, view, builder)
	}
	return nil
}

func (o *Orchestrator) prepareStage(stage frame.Stage, view *View) {
	for _, sys := range o.systems {
		if p, ok := sys.(PrepareStageSystem); ok {
			if err := p.PrepareStage(stage, view); err != nil {
				rlog.Logger().Warn("render stage prepare hook failed",
					"system", sys.Name(), "stage", stage.String(), "error", err)
			}
		}
	}
}

func (o *Orchestrator) runStageHooks(stage frame.Stage, view *View, builder *rgraph.Builder) {
	for _, sys := range o.systems {
		if h, ok := sys.(PreStageSystem); ok {
			if err := h.PreRenderStage(stage, view, builder); err != nil {
				rlog.Logger().Warn("render stage pre-hook failed, skipping stage for view",
					"system", sys.Name(), "stage", stage.String(), "error", err)
				return
			}
		}
	}
	for _, sys := range o.systems {
		if h, ok := sys.(OnStageSystem); ok {
			if err := h.OnRenderStage(stage, view, builder); err != nil {
				rlog.Logger().Warn("render stage failed, skipping remaining hooks for view",
					"system", sys.Name(), "stage", stage.String(), "error", err)
				return
			}
		}
	}
	for _, sys := range o.systems {
		if h, ok := sys.(PostStageSystem); ok {
			if err := h.PostRenderStage(stage, view, builder); err != nil {
				rlog.Logger().Warn("render stage post-hook failed",
					"system", sys.Name(), "stage", stage.String(), "error", err)
				return
			}
		}
	}
}
