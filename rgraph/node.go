// Package rgraph implements the render graph: the Builder records a DAG
// of GPU work with declared resource accesses, and the Compiler/Executor
// resolves dependencies, synthesizes barriers, aliases transient memory,
// and partitions the result into GPU submissions.
package rgraph

import (
	"github.com/forgelabs/rendercore/handle"
	"github.com/forgelabs/rendercore/resource"
	"github.com/forgelabs/rendercore/track"
)

type nodeMarker struct{}

func (nodeMarker) IsHandleMarker() {}

// NodeID identifies a recorded Node.
type NodeID = handle.ID[nodeMarker]

type eventMarker struct{}

func (eventMarker) IsHandleMarker() {}

// EventID identifies a GPU-signaled event, such as the frame's
// GPU-finished waitable.
type EventID = handle.ID[eventMarker]

// NodeKind tags the kind of GPU work a Node performs.
type NodeKind int

const (
	NodeComputeDispatch NodeKind = iota
	NodeIndirectComputeDispatch
	NodeGraphicsRenderPass
	NodeCopy
	NodeFill
	NodeMipBuild
	NodeRayDispatch
	NodeAccelerationStructureBuild
)

func (k NodeKind) String() string {
	switch k {
	case NodeComputeDispatch:
		return "ComputeDispatch"
	case NodeIndirectComputeDispatch:
		return "IndirectComputeDispatch"
	case NodeGraphicsRenderPass:
		return "GraphicsRenderPass"
	case NodeCopy:
		return "Copy"
	case NodeFill:
		return "Fill"
	case NodeMipBuild:
		return "MipBuild"
	case NodeRayDispatch:
		return "RayDispatch"
	case NodeAccelerationStructureBuild:
		return "AccelerationStructureBuild"
	default:
		return "Unknown"
	}
}

// Rect2D is a render pass's render area.
type Rect2D struct {
	X, Y          int32
	Width, Height uint32
}

// RenderTarget binds one color or depth/stencil attachment of a render pass.
type RenderTarget struct {
	View       resource.ViewHandle
	IsDepth    bool
	ClearColor [4]float32
	ClearDepth float32
	Load       bool // true: preserve existing contents instead of clearing
}

// Subpass is one execute closure within a graphics render pass, recorded
// in the order it will be replayed during execution.
type Subpass struct {
	Name    string
	Execute ExecuteFunc
}

// ExecuteFunc is the opaque command-recording callback a node runs at
// execution time. CommandSink is a minimal recording surface; it is kept
// abstract here since actual command submission belongs to the GPU
// collaborator (see package collab), not the graph.
type ExecuteFunc func(CommandSink)

// CommandSink is what an ExecuteFunc records into. The render graph
// itself only needs to know that a sink exists and can be handed the
// resolved resources for a node; everything else is GPU-API-specific and
// lives behind the collab.GPUAPI boundary.
type CommandSink interface {
	RecordLabel(name string)

	// RecordBarrier translates a synthesized barrier's resource-state
	// transitions into whatever pipeline/memory barrier calls the
	// underlying GPU API uses. The Executor calls this immediately
	// before replaying the node the barrier was computed to precede.
	RecordBarrier(Barrier)
}

// Node is one recorded unit of GPU work, together with every access it
// declares (explicit or implied by a bound descriptor set) and its
// submission-order index.
type Node struct {
	ID            NodeID
	Name          string
	Kind          NodeKind
	RecordIndex   int
	Accesses      []Access
	Bindings      []BoundSet
	Execute       ExecuteFunc
	Subpasses     []Subpass
	RenderArea    Rect2D
	RenderTargets []RenderTarget

	// fields used by specific node kinds; unused fields are zero for
	// other kinds.
	Pipeline   string
	GroupCount [3]uint32
	ArgsView   resource.ViewHandle
	CopySrc    resource.ViewHandle
	CopyDst    resource.ViewHandle
	CopyRegion CopyRegion
	FillView   resource.ViewHandle
	FillRange  resource.ByteRange
	FillValue  uint32
	MipTexture resource.TextureHandle
	MipBase    uint32
	MipCount   uint32
}

// CopyRegion describes a buffer<->buffer, buffer<->texture, or
// texture<->texture copy's extents.
type CopyRegion struct {
	SrcOffset resource.ByteRange
	DstOffset resource.ByteRange
	Subresource resource.SubresourceRange
}

// Access is one (view, access_kind, pipeline_stage_mask) declaration
// attached to a node, after the view has been resolved to a dense
// TrackerIndex.
type Access struct {
	View      resource.ViewHandle
	Index     track.TrackerIndex
	Kind      track.AccessKind
	StageMask track.PipelineStage
}

// BoundSet records which DescriptorSetID was bound to a node, for
// descriptor resolution at compile time.
type BoundSet struct {
	Set DescriptorSetID
}
