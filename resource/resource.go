// Package resource implements the Resource Registry: typed handles and
// creation-time definitions for textures and buffers, views onto them,
// and adoption of resources owned by long-lived subsystems outside the
// frame (the swapchain image, a persistent atlas).
//
// Destruction is refcounted and deferred to the frame in which the last
// reference was used finishes on the GPU; callers pass a WaitFunc at
// Release time rather than have the registry depend on the frame package
// directly.
package resource

import (
	"sync/atomic"
)

// Format names the subset of GPU formats this registry validates against.
// It intentionally does not enumerate the full format table a GPU driver
// would (that is out of scope); it covers what the render graph and
// shadow allocator actually need.
type Format int

const (
	FormatUnknown Format = iota
	FormatRGBA8UNorm
	FormatRGBA16Float
	FormatR32Float
	FormatD32Float
	FormatD24UNormS8UInt
	FormatR8UNorm
	FormatBC7UNorm
)

// Usage is a bitmask of how a resource may be bound during its lifetime.
type Usage uint32

const (
	UsageSampled Usage = 1 << iota
	UsageStorage
	UsageColorTarget
	UsageDepthTarget
	UsageCopySrc
	UsageCopyDst
	UsageIndirect
	UsageVertex
	UsageIndex
)

// Has reports whether u contains all bits of want.
func (u Usage) Has(want Usage) bool { return u&want == want }

// Aspect distinguishes the plane(s) of a texture a view addresses.
type Aspect int

const (
	AspectColor Aspect = iota
	AspectDepth
	AspectStencil
	AspectDepthStencil
)

// MemoryDomain marks which heap a resource's backing memory lives in.
type MemoryDomain int

const (
	// MemoryDomainDeviceLocal is GPU-only memory (the common case).
	MemoryDomainDeviceLocal MemoryDomain = iota
	// MemoryDomainHostVisible is CPU-mappable memory, for upload/readback.
	MemoryDomainHostVisible
)

// TextureDefinition is the immutable creation-time description of a texture.
type TextureDefinition struct {
	Name          string
	Width         uint32
	Height        uint32
	DepthOrLayers uint32
	MipLevels     uint32
	Format        Format
	Usage         Usage
	Aspect        Aspect
	Domain        MemoryDomain
}

// BufferDefinition is the immutable creation-time description of a buffer.
type BufferDefinition struct {
	Name   string
	Size   uint64
	Usage  Usage
	Domain MemoryDomain
}

// Texture is a GPU texture allocation tracked by the registry.
type Texture struct {
	Def      TextureDefinition
	refcount atomic.Int32
	external bool
}

// Buffer is a GPU buffer allocation tracked by the registry.
type Buffer struct {
	Def      BufferDefinition
	refcount atomic.Int32
	external bool
}

// SubresourceRange selects a contiguous span of mip levels and array
// layers/faces within a texture.
type SubresourceRange struct {
	BaseMip    uint32
	MipCount   uint32
	BaseLayer  uint32
	LayerCount uint32
}

// ByteRange selects a contiguous span of bytes within a buffer.
type ByteRange struct {
	Offset uint64
	Size   uint64
}

// viewKind distinguishes whether a View addresses a texture subresource
// range or a buffer byte range.
type viewKind int

const (
	viewKindTexture viewKind = iota
	viewKindBuffer
)

// ViewDefinition is the data backing a View, before it is registered.
type ViewDefinition struct {
	kind        viewKind
	Texture     TextureHandle
	Buffer      BufferHandle
	Subresource SubresourceRange
	Bytes       ByteRange
}

// IsTextureView reports whether v addresses a texture subresource.
func (v ViewDefinition) IsTextureView() bool { return v.kind == viewKindTexture }

// IsBufferView reports whether v addresses a buffer byte range.
func (v ViewDefinition) IsBufferView() bool { return v.kind == viewKindBuffer }

// WaitFunc blocks until the frame in which a handle was last used has
// finished on the GPU. The frame package supplies the concrete
// implementation; resource stays independent of it to avoid an import
// cycle.
type WaitFunc func()

// release is queued on a handle's last Release call and run once the
// owning frame's GPU work has completed.
type release struct {
	wait WaitFunc
	do   func()
}
