package resource

import "testing"

func validTextureDef(name string) TextureDefinition {
	return TextureDefinition{
		Name:          name,
		Width:         1920,
		Height:        1080,
		DepthOrLayers: 1,
		MipLevels:     1,
		Format:        FormatRGBA8UNorm,
		Usage:         UsageColorTarget | UsageSampled,
	}
}

func TestCreateTextureRejectsEmptyUsage(t *testing.T) {
	r := NewRegistry()
	def := validTextureDef("hdr-color")
	def.Usage = 0

	_, err := r.CreateTexture(def)
	if err == nil {
		t.Fatal("expected error for empty usage mask")
	}
	re, ok := err.(*Error)
	if !ok || re.Kind != ErrInvalidDefinition {
		t.Fatalf("got %v, want ErrInvalidDefinition", err)
	}
}

func TestCreateTextureRejectsUnsupportedFormat(t *testing.T) {
	r := NewRegistry()
	def := validTextureDef("gbuffer-albedo")
	def.Format = FormatUnknown

	_, err := r.CreateTexture(def)
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if re := err.(*Error); re.Kind != ErrInvalidDefinition {
		t.Fatalf("got %v, want ErrInvalidDefinition", re.Kind)
	}
}

func TestCreateTextureViewOutOfRange(t *testing.T) {
	r := NewRegistry()
	tex, err := r.CreateTexture(validTextureDef("shadow-atlas"))
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}

	_, err = r.CreateTextureView(tex, SubresourceRange{BaseMip: 0, MipCount: 2, BaseLayer: 0, LayerCount: 1})
	if err == nil {
		t.Fatal("expected OutOfRange for mip count exceeding texture")
	}
	if re := err.(*Error); re.Kind != ErrOutOfRange {
		t.Fatalf("got %v, want ErrOutOfRange", re.Kind)
	}
}

func TestCreateBufferViewOutOfRange(t *testing.T) {
	r := NewRegistry()
	buf, err := r.CreateBuffer(BufferDefinition{Name: "scene-constants", Size: 256, Usage: UsageStorage})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}

	_, err = r.CreateBufferView(buf, ByteRange{Offset: 128, Size: 256})
	if err == nil {
		t.Fatal("expected OutOfRange for byte range exceeding buffer")
	}
	if re := err.(*Error); re.Kind != ErrOutOfRange {
		t.Fatalf("got %v, want ErrOutOfRange", re.Kind)
	}
}

func TestReleaseViewDefersDestructionUntilRefcountZero(t *testing.T) {
	r := NewRegistry()
	tex, err := r.CreateTexture(validTextureDef("velocity"))
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}

	v1, err := r.CreateTextureView(tex, SubresourceRange{MipCount: 1, LayerCount: 1})
	if err != nil {
		t.Fatalf("CreateTextureView: %v", err)
	}
	v2, err := r.CreateTextureView(tex, SubresourceRange{MipCount: 1, LayerCount: 1})
	if err != nil {
		t.Fatalf("CreateTextureView: %v", err)
	}

	released := false
	wait := func() { released = true }

	if err := r.ReleaseView(v1, wait); err != nil {
		t.Fatalf("ReleaseView v1: %v", err)
	}
	if _, err := r.Texture(tex); err != nil {
		t.Fatalf("texture should still be alive after one of two views released: %v", err)
	}
	if released {
		t.Fatal("wait should not have run yet; one view reference remains")
	}

	if err := r.ReleaseView(v2, wait); err != nil {
		t.Fatalf("ReleaseView v2: %v", err)
	}
	r.DrainReleases()

	if !released {
		t.Fatal("expected wait to run once the last view was released")
	}
	if _, err := r.Texture(tex); err == nil {
		t.Fatal("expected texture to be gone after drain")
	}
}

func TestAdoptExternalTextureRoundTrip(t *testing.T) {
	r := NewRegistry()
	def := validTextureDef("swapchain-image")

	view, tex := r.AdoptExternalTexture(def)

	resolved, err := r.ResolveView(view)
	if err != nil {
		t.Fatalf("ResolveView: %v", err)
	}
	if resolved.Texture != tex {
		t.Fatalf("resolved view's texture = %v, want %v", resolved.Texture, tex)
	}

	t0 := false
	if err := r.ReleaseView(view, func() { t0 = true }); err != nil {
		t.Fatalf("ReleaseView: %v", err)
	}
	r.DrainReleases()
	if !t0 {
		t.Fatal("expected wait to fire on external texture's last reference")
	}
}

func TestResetInvalidatesHandlesAndDropsPendingReleases(t *testing.T) {
	r := NewRegistry()
	tex, err := r.CreateTexture(validTextureDef("hdr-color"))
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	view, err := r.CreateTextureView(tex, SubresourceRange{MipCount: 1, LayerCount: 1})
	if err != nil {
		t.Fatalf("CreateTextureView: %v", err)
	}

	waitCalled := false
	if err := r.ReleaseView(view, func() { waitCalled = true }); err != nil {
		t.Fatalf("ReleaseView: %v", err)
	}

	r.Reset()

	if _, err := r.Texture(tex); err == nil {
		t.Fatal("expected Texture(pre-reset handle) to fail after Reset")
	}
	r.DrainReleases()
	if waitCalled {
		t.Fatal("expected Reset to drop the pending release, not run it")
	}

	// The registry must still work for new resources after Reset.
	if _, err := r.CreateTexture(validTextureDef("post-reset")); err != nil {
		t.Fatalf("CreateTexture after Reset: %v", err)
	}
}
