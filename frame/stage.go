// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package frame owns the per-frame lifetime: a monotonically increasing
// frame index, delta/time from the host clock, a stage-event table, a
// GPU-finished waitable, a per-frame bump arena, and frames-in-flight
// pacing.
package frame

// Stage is a named, ordered slot in the render stage pipeline. The order
// is fixed and matches the orchestrator's fixed stage list.
type Stage int

const (
	StagePreRendering Stage = iota
	StageGlobalIllumination
	StageShadowMap
	StageDepthPrepass
	StageVisibilityBuffer
	StageMotionAndDepth
	StageDownsampleGeometryTextures
	StageAmbientOcclusion
	StageDirectionalLightShadowMasks
	StageForwardOpaqueOrDeferredShading
	StageSpecularReflections
	StageApplyAtmosphere
	StageVolumetricFog
	StageTransparency
	StagePostProcessPreAA
	StageAntiAliasing
	StageHDRResolve

	stageCount
)

func (s Stage) String() string {
	names := [...]string{
		"PreRendering", "GlobalIllumination", "ShadowMap", "DepthPrepass",
		"VisibilityBuffer", "MotionAndDepth", "DownsampleGeometryTextures",
		"AmbientOcclusion", "DirectionalLightShadowMasks",
		"ForwardOpaqueOrDeferredShading", "SpecularReflections",
		"ApplyAtmosphere", "VolumetricFog", "Transparency",
		"PostProcessPreAA", "AntiAliasing", "HDRResolve",
	}
	if int(s) < 0 || int(s) >= len(names) {
		return "Unknown"
	}
	return names[s]
}

// stageEvent records the begin/end timestamps (in seconds since frame
// start) any collaborator observed for a stage, so dependent work can be
// paced without a direct call-graph dependency on the stage's owner.
type stageEvent struct {
	began, ended     bool
	beginAt, endAt   float64
}

// StageEventTable is the per-frame begin(stage)/end(stage) record any
// collaborator may consult to pace work that depends on another system's
// stage without a direct dependency between them.
type StageEventTable struct {
	events [stageCount]stageEvent
	clock  func() float64
}

func newStageEventTable(clock func() float64) *StageEventTable {
	return &StageEventTable{clock: clock}
}

// Begin records that stage has started this frame.
func (t *StageEventTable) Begin(stage Stage) {
	if stage < 0 || stage >= stageCount {
		return
	}
	t.events[stage] = stageEvent{began: true, beginAt: t.clock()}
}

// End records that stage has completed this frame.
func (t *StageEventTable) End(stage Stage) {
	if stage < 0 || stage >= stageCount {
		return
	}
	e := t.events[stage]
	e.ended = true
	e.endAt = t.clock()
	t.events[stage] = e
}

// HasEnded reports whether stage has been marked complete this frame.
func (t *StageEventTable) HasEnded(stage Stage) bool {
	if stage < 0 || stage >= stageCount {
		return false
	}
	return t.events[stage].ended
}

// reset clears every stage's begin/end record for the next frame.
func (t *StageEventTable) reset() {
	for i := range t.events {
		t.events[i] = stageEvent{}
	}
}
