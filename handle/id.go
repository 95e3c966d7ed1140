// Package handle provides typed, epoch-checked resource identifiers and
// the dense storage/registry machinery used to look them up.
//
// Every long-lived GPU-adjacent object in this module (textures, buffers,
// views, render graph nodes, descriptor set states) is addressed through a
// handle rather than a raw pointer, so that a stale reference from a prior
// frame fails loudly (ErrEpochMismatch) instead of reading recycled memory.
package handle

import "fmt"

// Index is the slot component of a handle.
type Index = uint32

// Epoch is the generation component of a handle; it invalidates old
// handles whose index has been recycled for a new object.
type Epoch = uint32

// RawID is the 64-bit packed (index, epoch) pair.
type RawID uint64

// Zip combines an index and epoch into a RawID.
func Zip(index Index, epoch Epoch) RawID {
	return RawID(index) | (RawID(epoch) << 32)
}

// Unzip extracts the index and epoch from a RawID.
func (id RawID) Unzip() (Index, Epoch) {
	return Index(id & 0xFFFFFFFF), Epoch(id >> 32)
}

// Index returns the index component of the RawID.
func (id RawID) Index() Index { return Index(id & 0xFFFFFFFF) }

// Epoch returns the epoch component of the RawID.
func (id RawID) Epoch() Epoch { return Epoch(id >> 32) }

// IsZero reports whether the RawID is the zero value (always invalid).
func (id RawID) IsZero() bool { return id == 0 }

func (id RawID) String() string {
	index, epoch := id.Unzip()
	return fmt.Sprintf("RawID(%d,%d)", index, epoch)
}

// Marker is a compile-time tag distinguishing handle kinds from one
// another so a TextureID cannot be passed where a BufferID is expected.
type Marker interface {
	IsHandleMarker()
}

// ID is a type-safe handle parameterized by a marker type.
type ID[T Marker] struct {
	raw RawID
}

// NewID builds an ID from its index/epoch components.
func NewID[T Marker](index Index, epoch Epoch) ID[T] {
	return ID[T]{raw: Zip(index, epoch)}
}

// FromRaw reinterprets a RawID as a typed ID. Callers must ensure the
// raw value actually originated from this marker's namespace.
func FromRaw[T Marker](raw RawID) ID[T] {
	return ID[T]{raw: raw}
}

// Raw returns the packed representation.
func (id ID[T]) Raw() RawID { return id.raw }

// Unzip extracts the index and epoch.
func (id ID[T]) Unzip() (Index, Epoch) { return id.raw.Unzip() }

// Index returns the slot index.
func (id ID[T]) Index() Index { return id.raw.Index() }

// Epoch returns the generation.
func (id ID[T]) Epoch() Epoch { return id.raw.Epoch() }

// IsZero reports whether this is the invalid zero handle.
func (id ID[T]) IsZero() bool { return id.raw.IsZero() }

func (id ID[T]) String() string {
	index, epoch := id.Unzip()
	return fmt.Sprintf("ID(%d,%d)", index, epoch)
}

// Marker types, one per handle-addressable kind in this module.

type textureMarker struct{}

func (textureMarker) IsHandleMarker() {}

type bufferMarker struct{}

func (bufferMarker) IsHandleMarker() {}

type viewMarker struct{}

func (viewMarker) IsHandleMarker() {}

type nodeMarker struct{}

func (nodeMarker) IsHandleMarker() {}

type descriptorSetMarker struct{}

func (descriptorSetMarker) IsHandleMarker() {}

type eventMarker struct{}

func (eventMarker) IsHandleMarker() {}

// TextureID identifies a Resource of kind texture.
type TextureID = ID[textureMarker]

// BufferID identifies a Resource of kind buffer.
type BufferID = ID[bufferMarker]

// ViewID identifies a Resource View.
type ViewID = ID[viewMarker]

// NodeID identifies an RG Node recorded on a Builder.
type NodeID = ID[nodeMarker]

// DescriptorSetID identifies a Descriptor Set State.
type DescriptorSetID = ID[descriptorSetMarker]

// EventID identifies a GPU or CPU event handle.
type EventID = ID[eventMarker]
