// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package rendercore is the host-facing API: it owns the Resource
// Registry, the shadow-map Allocator, and the Scene Render Orchestrator,
// and wires a host's scene and GPU collaborators through the Graph
// Builder/Compiler/Executor once per frame.
package rendercore

import (
	"context"
	"sync/atomic"

	"github.com/forgelabs/rendercore/collab"
	"github.com/forgelabs/rendercore/config"
	"github.com/forgelabs/rendercore/frame"
	"github.com/forgelabs/rendercore/internal/thread"
	"github.com/forgelabs/rendercore/orchestrator"
	"github.com/forgelabs/rendercore/resource"
	"github.com/forgelabs/rendercore/rgraph"
	"github.com/forgelabs/rendercore/shadow"
)

const defaultShadowNearPlane float32 = 0.05

// RenderCore owns one frame pipeline's worth of state for its lifetime:
// construction failure is fatal and there is no recovery from a device
// lost error surfaced by Render (see ErrDeviceLost).
type RenderCore struct {
	frameCtx     *frame.Context
	resources    *resource.Registry
	orchestrator *orchestrator.Orchestrator
	gpu          collab.GPUAPI
	capture      collab.CaptureViewer

	// recording pins every call to Render onto one fixed goroutine, so
	// the Graph Builder's single-recorder invariant holds regardless of
	// which goroutine the host calls Render from.
	recording *thread.Thread

	captureRequested atomic.Bool
}

// New constructs a RenderCore from cfg, the GPU collaborator it submits
// work through, and the (optional) capture viewer request_capture hands
// compiled graphs to. A nil gpu or an out-of-range FramesInFlight is a
// configuration error, not a panic.
func New(cfg Config, gpu collab.GPUAPI, captureViewer collab.CaptureViewer) (*RenderCore, error) {
	if cfg.FramesInFlight < 1 || cfg.FramesInFlight > 3 {
		return nil, NewRenderErrorf(ErrKindConfigMalformed, "frames_in_flight", "must be between 1 and 3, got %d", cfg.FramesInFlight)
	}
	if gpu == nil {
		return nil, NewRenderError(ErrKindInvalidDefinition, "gpu collaborator must not be nil")
	}

	nearPlane := cfg.ShadowNearPlane
	if nearPlane <= 0 {
		nearPlane = defaultShadowNearPlane
	}
	shadowSettings := config.ShadowMapsSettings{
		HighQualityShadowMaps:   cfg.ShadowMapBudget.High,
		MediumQualityShadowMaps: cfg.ShadowMapBudget.Medium,
		LowQualityShadowMaps:    cfg.ShadowMapBudget.Low,
	}
	allocator := shadow.NewAllocator(shadowSettings, cfg.MaxUpgradesPerFrame, cfg.MaxRefreshesPerFrame, nearPlane)

	systems := make([]orchestrator.System, 0, len(cfg.Systems)+1)
	systems = append(systems, newShadowViewSystem(allocator))
	systems = append(systems, cfg.Systems...)

	return &RenderCore{
		frameCtx:     frame.NewContext(frame.Config{FramesInFlight: cfg.FramesInFlight, MaxFPS: cfg.MaxFPS}, nil),
		resources:    resource.NewRegistry(),
		orchestrator: orchestrator.New(systems, cfg.MaxParallelViews),
		gpu:          gpu,
		capture:      captureViewer,
		recording:    thread.New(),
	}, nil
}

// Close stops the recording thread. Render must not be called again
// afterward.
func (rc *RenderCore) Close() {
	rc.recording.Stop()
}

// Resources returns the Resource Registry backing this core, so a host
// collaborator can create/adopt textures and buffers before calling
// Render.
func (rc *RenderCore) Resources() *resource.Registry { return rc.resources }

// RequestCapture arranges for the graph compiled by the next call to
// Render to carry a Capture, handed to the capture viewer collaborator
// once that frame's graph is compiled.
func (rc *RenderCore) RequestCapture() { rc.captureRequested.Store(true) }

// SignalFrameGPUFinished marks frameIndex's GPU work complete up to
// value, unblocking BeginFrame's frames-in-flight pacing for that ring
// slot. The host calls this from its own GPU completion callback; Render
// does not call it itself; submission completion is asynchronous from
// the core's point of view.
func (rc *RenderCore) SignalFrameGPUFinished(frameIndex uint64, value uint64) {
	rc.frameCtx.SignalGPUFinished(frameIndex, value)
}

// Render drives one frame: it begins the frame, runs the Scene Render
// Orchestrator's five-step procedure to record a render graph, compiles
// and executes it, and submits the result through the GPU collaborator.
// The returned handle is whatever FrameOutput a registered system
// published to view's blackboard; it is the zero handle if none did.
func (rc *RenderCore) Render(ctx context.Context, scene collab.SceneRegistry, view ViewDescriptor, settings RenderSettings) (resource.ViewHandle, error) {
	var result resource.ViewHandle
	var renderErr error

	rc.recording.CallVoid(func() {
		result, renderErr = rc.renderOnRecordingThread(ctx, scene, view, settings)
	})
	return result, renderErr
}

// renderOnRecordingThread is the body of Render, restricted to the
// single goroutine rc.recording pins it to. Every Graph Builder touched
// here is local to this call, but the Builder's own contract ("exactly
// one goroutine records into a Builder") is about which goroutine calls
// it, not which Builder instance — running from a fixed goroutine is
// what makes that contract meaningful when Render itself is called
// concurrently by the host.
func (rc *RenderCore) renderOnRecordingThread(ctx context.Context, scene collab.SceneRegistry, view ViewDescriptor, settings RenderSettings) (resource.ViewHandle, error) {
	rc.frameCtx.BeginFrame()
	rc.resources.DrainReleases()

	builder := rgraph.NewBuilder(rc.resources)

	mainView := orchestrator.NewView(view.Entity, view.Resolution)
	mainView.SetRenderStages(view.SupportedStages)
	mainView.JitterIndex = view.JitterIndex
	orchestrator.Put(mainView.Blackboard, shadow.ViewState{Location: view.CameraLocation, Forward: view.CameraForward})
	orchestrator.Put(mainView.Blackboard, settings)

	finalView, err := rc.orchestrator.Render(ctx, scene, mainView, builder, orchestrator.Settings{DeltaTime: rc.frameCtx.DeltaTime()})
	if err != nil {
		return resource.ViewHandle{}, err
	}

	if err := builder.Finish(); err != nil {
		return resource.ViewHandle{}, err
	}

	captureRequested := rc.captureRequested.Swap(false)
	compiler := rgraph.NewCompiler(captureRequested)
	graph, err := compiler.Compile(builder)
	if err != nil {
		return resource.ViewHandle{}, err
	}

	executor := rgraph.NewExecutor(commandSink{})
	if err := executor.Execute(graph, builder.Node); err != nil {
		return resource.ViewHandle{}, err
	}

	for _, sub := range graph.Submissions {
		batch := collab.SubmitBatch{
			Nodes:    sub.Nodes,
			Barriers: submissionBarriers(graph.Barriers, sub.Nodes),
			Signal:   sub.SignalsValue,
		}
		if err := rc.gpu.Submit(batch); err != nil {
			return resource.ViewHandle{}, &RenderError{Kind: ErrKindDeviceLost, Message: "GPU submission failed", Cause: err}
		}
	}

	if graph.Capture != nil && rc.capture != nil {
		rc.capture.Consume(graph.Capture)
	}

	rc.frameCtx.EndFrame()

	output, _ := orchestrator.Fetch[FrameOutput](finalView.Blackboard)
	return output.Color, nil
}

// submissionBarriers returns every barrier whose BeforeNode falls within
// nodes, preserving barriers' relative order.
func submissionBarriers(barriers []rgraph.Barrier, nodes []rgraph.NodeID) []rgraph.Barrier {
	if len(barriers) == 0 {
		return nil
	}
	inSubmission := make(map[rgraph.NodeID]bool, len(nodes))
	for _, id := range nodes {
		inSubmission[id] = true
	}
	var matched []rgraph.Barrier
	for _, bar := range barriers {
		if inSubmission[bar.BeforeNode] {
			matched = append(matched, bar)
		}
	}
	return matched
}
