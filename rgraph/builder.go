package rgraph

import (
	"fmt"

	"github.com/forgelabs/rendercore/handle"
	"github.com/forgelabs/rendercore/resource"
	"github.com/forgelabs/rendercore/track"
)

// BuilderStatus tracks a Builder's place in its record/compile lifecycle.
//
//	Recording -> (Finish)   -> Finished
//	Finished  -> (consumed by Compiler) -> Consumed
//	Any state -> (AddX fails)           -> Error
type BuilderStatus int32

const (
	BuilderStatusRecording BuilderStatus = iota
	BuilderStatusFinished
	BuilderStatusConsumed
	BuilderStatusError
)

func (s BuilderStatus) String() string {
	switch s {
	case BuilderStatusRecording:
		return "Recording"
	case BuilderStatusFinished:
		return "Finished"
	case BuilderStatusConsumed:
		return "Consumed"
	case BuilderStatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// StatsCollector receives a per-node timing sample once a node finishes
// executing. Its concrete implementation lives with the GPU collaborator.
type StatsCollector interface {
	RecordNodeDuration(nodeName string, nanos int64)
}

// Builder records a DAG of render graph nodes for one frame. It is not
// safe for concurrent use; exactly one goroutine records into a Builder.
type Builder struct {
	resources *resource.Registry

	status BuilderStatus
	err    error

	nodes    *handle.Registry[*Node, nodeMarker]
	sets     *descriptorSetRegistry
	setStack []DescriptorSetID

	viewIndex map[resource.ViewHandle]track.TrackerIndex
	indices   *track.IndexAllocator

	stats StatsCollector

	gpuFinished EventID
	events      *handle.Registry[struct{}, eventMarker]

	recordCounter int
}

// NewBuilder creates a Builder recording against resources.
func NewBuilder(resources *resource.Registry) *Builder {
	b := &Builder{
		resources: resources,
		nodes:     handle.NewRegistry[*Node, nodeMarker](),
		sets:      newDescriptorSetRegistry(),
		viewIndex: make(map[resource.ViewHandle]track.TrackerIndex),
		indices:   track.NewIndexAllocator(),
		events:    handle.NewRegistry[struct{}, eventMarker](),
	}
	b.gpuFinished = b.events.Register(struct{}{})
	return b
}

// Status reports the builder's current lifecycle state.
func (b *Builder) Status() BuilderStatus { return b.status }

// Node resolves a NodeID recorded by this builder, the lookup an
// Executor needs to replay a CompiledGraph's schedule after Compile has
// consumed the builder.
func (b *Builder) Node(id NodeID) (*Node, bool) {
	n, err := b.nodes.Get(id)
	if err != nil {
		return nil, false
	}
	return n, true
}

// GPUFinishedEvent returns a handle signaled when this graph's submitted
// work completes on the GPU.
func (b *Builder) GPUFinishedEvent() EventID { return b.gpuFinished }

// BindGPUStatisticsCollector installs a per-node timer sink.
func (b *Builder) BindGPUStatisticsCollector(collector StatsCollector) { b.stats = collector }

// BindDescriptorSets pushes sets onto a stack inherited by every node
// recorded until the returned unbind func is called, mirroring an RAII
// scope guard.
func (b *Builder) BindDescriptorSets(sets ...DescriptorSetID) func() {
	n := len(b.setStack)
	b.setStack = append(b.setStack, sets...)
	return func() {
		b.setStack = b.setStack[:n]
	}
}

// CreateDescriptorSet records a new Descriptor Set State and returns its handle.
func (b *Builder) CreateDescriptorSet(name string, bindings []Binding, persistent bool) DescriptorSetID {
	return b.sets.Register(DescriptorSetState{Name: name, Bindings: bindings, Persistent: persistent})
}

// trackerIndex returns (allocating if necessary) the dense index this
// builder uses to address view's subresource state.
func (b *Builder) trackerIndex(view resource.ViewHandle) track.TrackerIndex {
	if idx, ok := b.viewIndex[view]; ok {
		return idx
	}
	idx := b.indices.Alloc()
	b.viewIndex[view] = idx
	return idx
}

func (b *Builder) fail(kind Kind, node, message string) error {
	b.status = BuilderStatusError
	b.err = &Error{Kind: kind, Node: node, Message: message}
	return b.err
}

// recordNode validates accesses (same-node conflicts, overlapping-view
// aliasing) and registers the node if valid.
func (b *Builder) recordNode(name string, kind NodeKind, accesses []Access, bound []BoundSet, fill func(*Node)) (NodeID, error) {
	if b.status != BuilderStatusRecording {
		return NodeID{}, b.fail(ErrInvalidState, name, fmt.Sprintf("cannot record while builder is %s", b.status))
	}

	scope := track.NewUsageScope()
	for _, a := range accesses {
		if err := scope.SetUsage(a.Index, a.Kind, a.StageMask); err != nil {
			return NodeID{}, b.fail(ErrCycleDetected, name, err.Error())
		}
	}
	if err := b.checkAliasing(name, accesses); err != nil {
		return NodeID{}, err
	}
	for _, bs := range bound {
		if _, err := b.sets.Get(bs.Set); err != nil {
			return NodeID{}, b.fail(ErrMissingBinding, name, "bound descriptor set does not exist")
		}
	}

	n := &Node{
		Name:        name,
		Kind:        kind,
		RecordIndex: b.recordCounter,
		Accesses:    accesses,
		Bindings:    bound,
	}
	b.recordCounter++
	if fill != nil {
		fill(n)
	}
	id := b.nodes.Register(n)
	n.ID = id
	return id, nil
}

// underlyingKey identifies the resource a view is carved out of, so two
// distinct views of the same texture/buffer can be grouped together for
// the aliasing check below.
type underlyingKey struct {
	texture handle.RawID
	buffer  handle.RawID
}

// checkAliasing rejects a node that writes two distinct views overlapping
// the same underlying texture/buffer.
func (b *Builder) checkAliasing(name string, accesses []Access) error {
	type ranged struct {
		view  resource.ViewHandle
		write bool
	}
	byUnderlying := make(map[underlyingKey][]ranged)

	for _, a := range accesses {
		vd, err := b.resources.ResolveView(a.View)
		if err != nil {
			continue
		}
		write := !a.Kind.IsReadOnly()

		var key underlyingKey
		if vd.IsTextureView() {
			key = underlyingKey{texture: vd.Texture.Raw()}
		} else {
			key = underlyingKey{buffer: vd.Buffer.Raw()}
		}
		byUnderlying[key] = append(byUnderlying[key], ranged{view: a.View, write: write})
	}

	for _, group := range byUnderlying {
		if len(group) < 2 {
			continue
		}
		distinctWriters := map[resource.ViewHandle]bool{}
		for _, g := range group {
			if g.write {
				distinctWriters[g.view] = true
			}
		}
		if len(distinctWriters) >= 2 {
			return b.fail(ErrAliasedViewRace, name, "node writes two overlapping views of the same resource")
		}
	}
	return nil
}

// Finish transitions the builder out of recording, making it ready for
// Compiler.Compile. Subsequent AddX calls fail with ErrInvalidState.
func (b *Builder) Finish() error {
	if b.status != BuilderStatusRecording {
		return b.fail(ErrInvalidState, "", fmt.Sprintf("Finish called while builder is %s", b.status))
	}
	b.status = BuilderStatusFinished
	return nil
}
