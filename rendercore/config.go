// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package rendercore

import "github.com/forgelabs/rendercore/resource"

// ShadowMapBudget sizes the shadow-map pool's three quality tiers, the
// Go form of the persisted ShadowMapsSettings file.
type ShadowMapBudget struct {
	High   uint32
	Medium uint32
	Low    uint32
}

// Config is the construction-time option bag RenderCore.New consumes.
// A malformed Config is a fatal construction error: there is no partial
// or degraded RenderCore.
type Config struct {
	// FramesInFlight bounds how many frames may be queued ahead of the
	// GPU at once, 1-3.
	FramesInFlight int
	// RayTracingEnabled gates systems that need an acceleration
	// structure; the core itself does not build one.
	RayTracingEnabled bool

	ShadowMapBudget      ShadowMapBudget
	MaxUpgradesPerFrame  uint32
	MaxRefreshesPerFrame uint32
	// ShadowNearPlane is the shadow cube-face near plane; zero defaults
	// to 0.05.
	ShadowNearPlane float32

	// MaxFPS is an optional soft frame-rate cap; nil means uncapped.
	MaxFPS *float32

	// MaxParallelViews bounds how many views the orchestrator dispatches
	// concurrently within a stage; non-positive defaults to
	// runtime.NumCPU (see jobs.NewScheduler).
	MaxParallelViews int

	// Systems are the host's own render systems, registered alongside
	// the core's built-in shadow-map view system.
	Systems []System
}

// ViewDescriptor is the host-supplied camera/target description for one
// call to Render: the view entity, its output resolution, the camera
// pose the shadow-priority formula scores lights against, and which
// render stages it participates in.
type ViewDescriptor struct {
	Entity          EntityID
	Resolution      [2]uint32
	CameraLocation  [3]float32
	CameraForward   [3]float32
	SupportedStages StageSet
	JitterIndex     uint32
}

// RenderSettings carries the per-call options every registered system
// may opt into reading from the view's blackboard; the core itself only
// forwards them.
type RenderSettings struct {
	OutputFormat      string
	ResetAccumulation bool
	EnableBloom       bool
	Extra             map[string]any
}

// FrameOutput is the final color view a render system publishes to a
// view's blackboard; Render returns whatever the main view's FrameOutput
// holds once the frame's stages have all run, or a zero handle if no
// system published one.
type FrameOutput struct {
	Color resource.ViewHandle
}
