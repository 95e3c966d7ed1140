package rgraph

import (
	"github.com/forgelabs/rendercore/handle"
	"github.com/forgelabs/rendercore/resource"
	"github.com/forgelabs/rendercore/track"
)

type descriptorSetMarker struct{}

func (descriptorSetMarker) IsHandleMarker() {}

// DescriptorSetID identifies a Descriptor Set State recorded on a Builder.
type DescriptorSetID = handle.ID[descriptorSetMarker]

// BindingKind names the binding kinds a Descriptor Set State may carry.
type BindingKind int

const (
	BindingConstant BindingKind = iota
	BindingTextureSRV
	BindingTextureUAV
	BindingBufferSRV
	BindingBufferUAV
	BindingSampler
	BindingBindlessArray
)

// accessFor derives the implicit access a binding kind declares on its
// bound view.
func (k BindingKind) accessFor() track.AccessKind {
	switch k {
	case BindingTextureUAV, BindingBufferUAV:
		return track.ReadWrite
	case BindingTextureSRV, BindingBufferSRV, BindingConstant, BindingBindlessArray:
		return track.AccessRead
	default:
		return 0
	}
}

// Binding is one slot within a Descriptor Set State.
type Binding struct {
	Name  string
	Kind  BindingKind
	View  resource.ViewHandle // zero for Sampler bindings
	Stage track.PipelineStage
}

// DescriptorSetState is a typed binding collection created against the
// graph and resolved to concrete descriptor writes at compile time.
// Persistent sets are bound once across frames; transient ones live only
// until the owning graph's GPU-finished event fires.
type DescriptorSetState struct {
	ID         DescriptorSetID
	Name       string
	Bindings   []Binding
	Persistent bool
}

// descriptorSetRegistry stores DescriptorSetState values recorded on a
// Builder, addressed by DescriptorSetID.
type descriptorSetRegistry = handle.Registry[DescriptorSetState, descriptorSetMarker]

func newDescriptorSetRegistry() *descriptorSetRegistry {
	return handle.NewRegistry[DescriptorSetState, descriptorSetMarker]()
}

// ResolvedWrite is one concrete descriptor write produced by compiling a
// DescriptorSetState: the view it binds and the slot it binds to.
type ResolvedWrite struct {
	Set     DescriptorSetID
	Binding int
	View    resource.ViewHandle
}
