package rgraph

import (
	"github.com/forgelabs/rendercore/resource"
	"github.com/forgelabs/rendercore/track"
)

// bindingsToAccesses resolves the implicit accesses a set of bindings
// declares, appending the builder's currently bound descriptor-set stack.
func (b *Builder) bindingsToAccesses(explicit []Access, bindings []Binding) ([]Access, error) {
	accesses := append([]Access(nil), explicit...)
	for _, bind := range bindings {
		if bind.Kind == BindingSampler {
			continue
		}
		if bind.View.IsZero() {
			return nil, &Error{Kind: ErrMissingBinding, Message: "binding " + bind.Name + " has no view"}
		}
		accesses = append(accesses, Access{
			View:      bind.View,
			Index:     b.trackerIndex(bind.View),
			Kind:      bind.Kind.accessFor(),
			StageMask: bind.Stage,
		})
	}
	for _, setID := range b.setStack {
		set, err := b.sets.Get(setID)
		if err != nil {
			continue
		}
		for _, bind := range set.Bindings {
			if bind.Kind == BindingSampler || bind.View.IsZero() {
				continue
			}
			accesses = append(accesses, Access{
				View:      bind.View,
				Index:     b.trackerIndex(bind.View),
				Kind:      bind.Kind.accessFor(),
				StageMask: bind.Stage,
			})
		}
	}
	return accesses, nil
}

func (b *Builder) boundSets() []BoundSet {
	bound := make([]BoundSet, len(b.setStack))
	for i, s := range b.setStack {
		bound[i] = BoundSet{Set: s}
	}
	return bound
}

// AddDispatch records a compute dispatch node.
func (b *Builder) AddDispatch(name, pipeline string, groupCount [3]uint32, bindings []Binding) (NodeID, error) {
	accesses, err := b.bindingsToAccesses(nil, bindings)
	if err != nil {
		return NodeID{}, b.fail(ErrMissingBinding, name, err.Error())
	}
	return b.recordNode(name, NodeComputeDispatch, accesses, b.boundSets(), func(n *Node) {
		n.Pipeline = pipeline
		n.GroupCount = groupCount
	})
}

// AddIndirectDispatch records a compute dispatch whose group counts are
// read from argsView at execution time.
func (b *Builder) AddIndirectDispatch(name, pipeline string, argsView resource.ViewHandle, bindings []Binding) (NodeID, error) {
	explicit := []Access{{
		View:      argsView,
		Index:     b.trackerIndex(argsView),
		Kind:      track.AccessIndirectRead,
		StageMask: track.StageIndirect,
	}}
	accesses, err := b.bindingsToAccesses(explicit, bindings)
	if err != nil {
		return NodeID{}, b.fail(ErrMissingBinding, name, err.Error())
	}
	return b.recordNode(name, NodeIndirectComputeDispatch, accesses, b.boundSets(), func(n *Node) {
		n.Pipeline = pipeline
		n.ArgsView = argsView
	})
}

// AddRenderPass records a graphics render pass with its render targets
// and ordered subpass callbacks.
func (b *Builder) AddRenderPass(name string, area Rect2D, targets []RenderTarget, bindings []Binding, subpasses []Subpass) (NodeID, error) {
	explicit := make([]Access, 0, len(targets))
	for _, rt := range targets {
		kind := track.AccessColorTarget
		stage := track.StageColorAttachmentOutput
		if rt.IsDepth {
			kind = track.AccessDepthTarget
			stage = track.StageEarlyFragmentTests | track.StageLateFragmentTests
		}
		explicit = append(explicit, Access{View: rt.View, Index: b.trackerIndex(rt.View), Kind: kind, StageMask: stage})
	}
	accesses, err := b.bindingsToAccesses(explicit, bindings)
	if err != nil {
		return NodeID{}, b.fail(ErrMissingBinding, name, err.Error())
	}
	return b.recordNode(name, NodeGraphicsRenderPass, accesses, b.boundSets(), func(n *Node) {
		n.RenderArea = area
		n.RenderTargets = targets
		n.Subpasses = subpasses
	})
}

// AddCopy records a buffer<->buffer, buffer<->texture, or texture<->texture copy.
func (b *Builder) AddCopy(name string, src, dst resource.ViewHandle, region CopyRegion) (NodeID, error) {
	accesses := []Access{
		{View: src, Index: b.trackerIndex(src), Kind: track.AccessRead, StageMask: track.StageTransfer},
		{View: dst, Index: b.trackerIndex(dst), Kind: track.AccessWrite, StageMask: track.StageTransfer},
	}
	return b.recordNode(name, NodeCopy, accesses, nil, func(n *Node) {
		n.CopySrc = src
		n.CopyDst = dst
		n.CopyRegion = region
	})
}

// FillBuffer records a fill of view's byte range with a repeated u32 value.
func (b *Builder) FillBuffer(name string, view resource.ViewHandle, rng resource.ByteRange, value uint32) (NodeID, error) {
	accesses := []Access{{View: view, Index: b.trackerIndex(view), Kind: track.AccessWrite, StageMask: track.StageTransfer}}
	return b.recordNode(name, NodeFill, accesses, nil, func(n *Node) {
		n.FillView = view
		n.FillRange = rng
		n.FillValue = value
	})
}

// BuildMips records generation of count mip levels of texture starting at base.
func (b *Builder) BuildMips(name string, texture resource.TextureHandle, base, count uint32) (NodeID, error) {
	view, err := b.resources.CreateTextureView(texture, resource.SubresourceRange{BaseMip: base, MipCount: count, LayerCount: 1})
	if err != nil {
		return NodeID{}, b.fail(ErrMissingBinding, name, err.Error())
	}
	accesses := []Access{{View: view, Index: b.trackerIndex(view), Kind: track.ReadWrite, StageMask: track.StageTransfer}}
	return b.recordNode(name, NodeMipBuild, accesses, nil, func(n *Node) {
		n.MipTexture = texture
		n.MipBase = base
		n.MipCount = count
	})
}

// AcquireExternalView makes an externally-adopted view visible to this
// graph's dependency tracking without recording a node for it.
func (b *Builder) AcquireExternalView(view resource.ViewHandle) track.TrackerIndex {
	return b.trackerIndex(view)
}

// CreateTextureView creates a view in the builder's Resource Registry.
// The view is not released when the graph finishes.
func (b *Builder) CreateTextureView(tex resource.TextureHandle, sub resource.SubresourceRange) (resource.ViewHandle, error) {
	return b.resources.CreateTextureView(tex, sub)
}

// CreateBufferView creates a view in the builder's Resource Registry.
// The view is not released when the graph finishes.
func (b *Builder) CreateBufferView(buf resource.BufferHandle, rng resource.ByteRange) (resource.ViewHandle, error) {
	return b.resources.CreateBufferView(buf, rng)
}
