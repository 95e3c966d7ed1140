// Package track implements GPU resource state tracking: access kinds,
// pipeline stage masks, per-node usage scopes, and the device-wide
// tracker that merges them into barrier-triggering state transitions.
//
// It operates on a dense TrackerIndex rather than the sparse, epoch-
// checked handles in package handle/resource, so per-subresource state
// arrays stay O(1)-indexable during graph compilation.
package track

// AccessKind is a bitmask of how a subresource is touched by a node. At
// most one write-family bit may be set for any access recorded against a
// single subresource within one node (enforced by UsageScope.SetUsage).
type AccessKind uint32

const (
	AccessRead AccessKind = 1 << iota
	AccessWrite
	AccessColorTarget
	AccessDepthTarget
	AccessIndirectRead
	AccessVertexRead
	AccessIndexRead
)

// ReadWrite is read combined with write, for UAV-style read-modify-write access.
const ReadWrite = AccessRead | AccessWrite

var writeKinds = AccessWrite | AccessColorTarget | AccessDepthTarget

// IsReadOnly reports whether a contains no write-family bit.
func (a AccessKind) IsReadOnly() bool { return a&writeKinds == 0 }

// IsEmpty reports whether no bits are set.
func (a AccessKind) IsEmpty() bool { return a == 0 }

// Contains reports whether a contains every bit of other.
func (a AccessKind) Contains(other AccessKind) bool { return a&other == other }

// IsCompatible reports whether a and other can coexist in the same node
// without a same-node write conflict: read-only combinations always are;
// anything else requires both sides to be identical.
func (a AccessKind) IsCompatible(other AccessKind) bool {
	if a.IsEmpty() || other.IsEmpty() {
		return true
	}
	if a.IsReadOnly() && other.IsReadOnly() {
		return true
	}
	return a == other
}

// PipelineStage is a bitmask of shader/fixed-function stages an access
// occurs at.
type PipelineStage uint32

const (
	StageTopOfPipe PipelineStage = 1 << iota
	StageIndirect
	StageVertexShader
	StageEarlyFragmentTests
	StageFragmentShader
	StageLateFragmentTests
	StageColorAttachmentOutput
	StageComputeShader
	StageTransfer
	StageRayTracingShader
	StageAccelerationStructureBuild
	StageBottomOfPipe
)

// Layout is the GPU-visible layout/state a subresource is in, determining
// which barrier is synthesized on transition. The mapping from AccessKind
// to Layout follows the table in the compiler's barrier synthesis step.
type Layout int

const (
	LayoutUndefined Layout = iota
	LayoutGeneral
	LayoutColorTarget
	LayoutDepthTarget
	LayoutTransferSrc
	LayoutTransferDst
	LayoutPresentSrc
)

// LayoutFor derives the layout an access kind implies for a subresource.
func LayoutFor(a AccessKind) Layout {
	switch {
	case a.Contains(AccessColorTarget):
		return LayoutColorTarget
	case a.Contains(AccessDepthTarget):
		return LayoutDepthTarget
	case a == AccessWrite, a == ReadWrite:
		return LayoutGeneral
	case a.Contains(AccessRead):
		return LayoutGeneral
	default:
		return LayoutUndefined
	}
}

// AccessDescriptor is (view, access_kind, pipeline_stage_mask), resolved
// against a dense TrackerIndex rather than the view handle directly.
type AccessDescriptor struct {
	Index      TrackerIndex
	Kind       AccessKind
	StageMask  PipelineStage
}
