// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package collab defines the boundary interfaces the core consumes from
// (or exposes to) the host application: the scene, the materials
// registry, the GPU API, the graph capture viewer, and the UI layer.
// Everything outside the three core subsystems — asset import, shader
// compilation, post-process effects, windowing, UI rendering, the ECS
// container itself — is deliberately out of scope and reached only
// through these interfaces, the same role the teacher's hal package
// plays between its device-independent core and a concrete backend.
package collab

import (
	"github.com/forgelabs/rendercore/resource"
	"github.com/forgelabs/rendercore/rgraph"
)

// EntityID identifies a scene entity. The scene owns its own entity
// representation; the core only ever needs to compare and look entities
// up, never to construct them.
type EntityID uint64

// PointLight is the subset of a point light entity's component data the
// shadow allocator and lighting stages need from the scene.
type PointLight struct {
	Entity    EntityID
	Location  [3]float32
	Radius    float32
	Intensity float32
}

// SceneRegistry is the read-only scene view the core queries during
// rendering. The real ECS backing it is out of scope; the core only
// needs typed iteration over the component sets its systems declare
// interest in, mirroring `scene.view<Components…>()`.
type SceneRegistry interface {
	// PointLights returns every point light entity currently in the
	// scene, in registry order (priority ranking is the caller's job).
	PointLights() []PointLight

	// Update ticks scene subsystems for one frame, advancing animation,
	// physics, or other scene-owned simulation by dt seconds.
	Update(dt float64)
}

// ShaderPipelineHandles is the opaque handle bundle a materials
// registry returns for one compiled technique; the core never
// interprets it beyond passing it to the GPU API at pipeline creation.
type ShaderPipelineHandles struct {
	VertexShader   string
	FragmentShader string
	ComputeShader  string
}

// MaterialsRegistry resolves a material technique and shader hash into
// concrete shader pipeline handles.
type MaterialsRegistry interface {
	GetMaterialShaders(technique string, hash uint64, opts map[string]any) (ShaderPipelineHandles, error)
}

// PipelineKind distinguishes the pipeline shapes the GPU API creates.
type PipelineKind int

const (
	PipelineGraphics PipelineKind = iota
	PipelineCompute
	PipelineRayTracing
)

// SubmitBatch is one queue submission: the nodes to execute, the
// barriers synthesized ahead of those nodes, plus the semaphores it
// waits on and signals, handed to the GPU API by the compiled graph's
// executor. Barriers carries every rgraph.Barrier whose BeforeNode falls
// within this submission's Nodes, so a real backend that needs
// submission-level visibility into resource-state transitions (rather
// than, or in addition to, the per-node CommandSink.RecordBarrier calls
// the Executor makes while replaying Nodes) has it without recomputing
// anything from the compiled graph.
type SubmitBatch struct {
	Nodes    []rgraph.NodeID
	Barriers []rgraph.Barrier
	Wait     []uint64
	Signal   uint64
}

// GPUAPI is the device abstraction the core drives: resource creation,
// pipeline creation, descriptor set allocation, submission, and
// host-visible mapping. A real host backs this with its own device
// (Vulkan, D3D12, …); the core never touches a device handle directly.
type GPUAPI interface {
	CreateBuffer(def resource.BufferDefinition) (resource.BufferHandle, error)
	CreateTexture(def resource.TextureDefinition) (resource.TextureHandle, error)
	CreateView(res resource.ViewDefinition) (resource.ViewHandle, error)
	CreatePipeline(kind PipelineKind, shaders ShaderPipelineHandles, def map[string]any) (string, error)
	CreateDescriptorSetState(layout string) (rgraph.DescriptorSetID, error)
	Submit(batch SubmitBatch) error
	Map(buf resource.BufferHandle) ([]byte, error)
	Unmap(buf resource.BufferHandle)
}

// CaptureViewer receives a compiled graph's capture object exactly once,
// the frame after request_capture() was called.
type CaptureViewer interface {
	Consume(capture *rgraph.Capture)
}

// ViewDefinition is the opaque description of a newly collected view the
// UI layer is offered a chance to present (e.g. a debug split-screen
// panel for a shadow cascade).
type ViewDefinition struct {
	Name       string
	Resolution [2]uint32
}

// UILayer is offered every view the orchestrator collects, so a host
// can optionally expose it in its own UI.
type UILayer interface {
	AddView(def ViewDefinition, impl any)
}
