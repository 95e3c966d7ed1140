package resource

import (
	"sync"

	"github.com/forgelabs/rendercore/handle"
)

// Registry is the Resource Registry: it owns one handle.Registry per
// resource kind and implements create/view/adopt/release for all of them.
//
// Thread-safe for concurrent use.
type Registry struct {
	textures *handle.Registry[*Texture, textureMarker]
	buffers  *handle.Registry[*Buffer, bufferMarker]
	views    *handle.Registry[ViewDefinition, viewMarker]

	pendingMu sync.Mutex
	pending   []release
}

// NewRegistry creates an empty Resource Registry.
func NewRegistry() *Registry {
	return &Registry{
		textures: handle.NewRegistry[*Texture, textureMarker](),
		buffers:  handle.NewRegistry[*Buffer, bufferMarker](),
		views:    handle.NewRegistry[ViewDefinition, viewMarker](),
	}
}

// CreateTexture allocates a texture for def, failing with
// ErrInvalidDefinition if its usage mask is empty or its format is
// unsupported.
func (r *Registry) CreateTexture(def TextureDefinition) (TextureHandle, error) {
	if def.Usage == 0 {
		return TextureHandle{}, &Error{Kind: ErrInvalidDefinition, Subject: def.Name, Message: "usage mask is empty"}
	}
	if def.Format == FormatUnknown {
		return TextureHandle{}, &Error{Kind: ErrInvalidDefinition, Subject: def.Name, Message: "unsupported format"}
	}
	if def.Width == 0 || def.Height == 0 {
		return TextureHandle{}, &Error{Kind: ErrInvalidDefinition, Subject: def.Name, Message: "zero-sized texture"}
	}
	tex := &Texture{Def: def}
	return r.textures.Register(tex), nil
}

// CreateBuffer allocates a buffer for def, failing with
// ErrInvalidDefinition if its usage mask is empty.
func (r *Registry) CreateBuffer(def BufferDefinition) (BufferHandle, error) {
	if def.Usage == 0 {
		return BufferHandle{}, &Error{Kind: ErrInvalidDefinition, Subject: def.Name, Message: "usage mask is empty"}
	}
	if def.Size == 0 {
		return BufferHandle{}, &Error{Kind: ErrInvalidDefinition, Subject: def.Name, Message: "zero-sized buffer"}
	}
	buf := &Buffer{Def: def}
	return r.buffers.Register(buf), nil
}

// CreateTextureView creates a view onto a subresource range of tex,
// failing with ErrOutOfRange if the range exceeds the texture.
func (r *Registry) CreateTextureView(tex TextureHandle, sub SubresourceRange) (ViewHandle, error) {
	t, err := r.textures.Get(tex)
	if err != nil {
		return ViewHandle{}, wrapHandleErr(err, "texture")
	}
	if sub.BaseMip+sub.MipCount > t.Def.MipLevels || sub.BaseLayer+sub.LayerCount > t.Def.DepthOrLayers {
		return ViewHandle{}, &Error{Kind: ErrOutOfRange, Subject: t.Def.Name, Message: "subresource range exceeds texture"}
	}
	t.refcount.Add(1)
	return r.views.Register(ViewDefinition{kind: viewKindTexture, Texture: tex, Subresource: sub}), nil
}

// CreateBufferView creates a view onto a byte range of buf, failing with
// ErrOutOfRange if the range exceeds the buffer.
func (r *Registry) CreateBufferView(buf BufferHandle, rng ByteRange) (ViewHandle, error) {
	b, err := r.buffers.Get(buf)
	if err != nil {
		return ViewHandle{}, wrapHandleErr(err, "buffer")
	}
	if rng.Offset+rng.Size > b.Def.Size {
		return ViewHandle{}, &Error{Kind: ErrOutOfRange, Subject: b.Def.Name, Message: "byte range exceeds buffer"}
	}
	b.refcount.Add(1)
	return r.views.Register(ViewDefinition{kind: viewKindBuffer, Buffer: buf, Bytes: rng}), nil
}

// AdoptExternalTexture registers a texture this registry does not own
// (e.g. a swapchain image), borrowed for the duration of the current
// graph. Releasing the returned view only decrements this registry's own
// bookkeeping; the owner retains the real resource lifetime.
func (r *Registry) AdoptExternalTexture(def TextureDefinition) (ViewHandle, TextureHandle) {
	tex := &Texture{Def: def, external: true}
	texHandle := r.textures.Register(tex)
	tex.refcount.Add(1)
	viewHandle := r.views.Register(ViewDefinition{
		kind:        viewKindTexture,
		Texture:     texHandle,
		Subresource: SubresourceRange{MipCount: def.MipLevels, LayerCount: def.DepthOrLayers},
	})
	return viewHandle, texHandle
}

// ResolveView returns the ViewDefinition registered for v.
func (r *Registry) ResolveView(v ViewHandle) (ViewDefinition, error) {
	vd, err := r.views.Get(v)
	if err != nil {
		return ViewDefinition{}, wrapHandleErr(err, "view")
	}
	return vd, nil
}

// Texture returns the Texture backing h.
func (r *Registry) Texture(h TextureHandle) (*Texture, error) {
	t, err := r.textures.Get(h)
	if err != nil {
		return nil, wrapHandleErr(err, "texture")
	}
	return t, nil
}

// Buffer returns the Buffer backing h.
func (r *Registry) Buffer(h BufferHandle) (*Buffer, error) {
	b, err := r.buffers.Get(h)
	if err != nil {
		return nil, wrapHandleErr(err, "buffer")
	}
	return b, nil
}

// ReleaseView drops a reference acquired by CreateTextureView,
// CreateBufferView, or AdoptExternalTexture. When the underlying
// resource's refcount reaches zero, do runs once wait unblocks (i.e. once
// the frame that last used the resource has finished on the GPU).
func (r *Registry) ReleaseView(v ViewHandle, wait WaitFunc) error {
	vd, err := r.views.Unregister(v)
	if err != nil {
		return wrapHandleErr(err, "view")
	}
	switch {
	case vd.IsTextureView():
		return r.releaseTexture(vd.Texture, wait)
	case vd.IsBufferView():
		return r.releaseBuffer(vd.Buffer, wait)
	}
	return nil
}

func (r *Registry) releaseTexture(h TextureHandle, wait WaitFunc) error {
	t, err := r.textures.Get(h)
	if err != nil {
		return wrapHandleErr(err, "texture")
	}
	if t.refcount.Add(-1) > 0 {
		return nil
	}
	r.queueRelease(wait, func() { r.textures.Unregister(h) })
	return nil
}

func (r *Registry) releaseBuffer(h BufferHandle, wait WaitFunc) error {
	b, err := r.buffers.Get(h)
	if err != nil {
		return wrapHandleErr(err, "buffer")
	}
	if b.refcount.Add(-1) > 0 {
		return nil
	}
	r.queueRelease(wait, func() { r.buffers.Unregister(h) })
	return nil
}

func (r *Registry) queueRelease(wait WaitFunc, do func()) {
	r.pendingMu.Lock()
	r.pending = append(r.pending, release{wait: wait, do: do})
	r.pendingMu.Unlock()
}

// DrainReleases runs every queued release, calling its wait first and
// blocking until that wait returns. The caller is expected to invoke
// this once per frame.
func (r *Registry) DrainReleases() {
	r.pendingMu.Lock()
	pending := r.pending
	r.pending = nil
	r.pendingMu.Unlock()

	for _, p := range pending {
		if p.wait != nil {
			p.wait()
		}
		p.do()
	}
}

// Reset discards every texture, buffer, and view this registry has ever
// registered, along with any queued deferred releases, as if it were
// newly constructed. Allocation restarts at index 0, epoch 1, so a handle
// issued before Reset fails lookups only until its index is handed out
// again, after which it resolves to the new resource; nothing detects
// this, so the caller must hold none of them past this call. Intended for
// scene teardown between test cases and for reusing a Registry across
// runs rather than reconstructing one.
func (r *Registry) Reset() {
	r.textures.Reset()
	r.buffers.Reset()
	r.views.Reset()

	r.pendingMu.Lock()
	r.pending = nil
	r.pendingMu.Unlock()
}

func wrapHandleErr(err error, kind string) error {
	switch err {
	case handle.ErrInvalidID, handle.ErrNotFound, handle.ErrEpochMismatch:
		return &Error{Kind: ErrInvalidHandle, Subject: kind, Message: err.Error()}
	default:
		return err
	}
}
