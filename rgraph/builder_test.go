package rgraph

import (
	"testing"

	"github.com/forgelabs/rendercore/resource"
	"github.com/forgelabs/rendercore/track"
)

func newTestRegistry(t *testing.T) (*resource.Registry, resource.TextureHandle, resource.ViewHandle) {
	t.Helper()
	reg := resource.NewRegistry()
	tex, err := reg.CreateTexture(resource.TextureDefinition{
		Name: "gbuffer-albedo", Width: 1920, Height: 1080, DepthOrLayers: 1, MipLevels: 1,
		Format: resource.FormatRGBA8UNorm, Usage: resource.UsageColorTarget | resource.UsageSampled,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	view, err := reg.CreateTextureView(tex, resource.SubresourceRange{MipCount: 1, LayerCount: 1})
	if err != nil {
		t.Fatalf("CreateTextureView: %v", err)
	}
	return reg, tex, view
}

func TestAddDispatchRecordsNode(t *testing.T) {
	reg, _, view := newTestRegistry(t)
	b := NewBuilder(reg)

	id, err := b.AddDispatch("cull-lights", "cull-lights-cs", [3]uint32{64, 1, 1}, []Binding{
		{Name: "lights", Kind: BindingBufferUAV, View: view, Stage: track.StageComputeShader},
	})
	if err != nil {
		t.Fatalf("AddDispatch: %v", err)
	}
	if id.IsZero() {
		t.Fatal("expected non-zero node id")
	}
}

func TestBindDescriptorSetsAppliesToSubsequentNodes(t *testing.T) {
	reg, _, view := newTestRegistry(t)
	b := NewBuilder(reg)

	set := b.CreateDescriptorSet("per-view", []Binding{
		{Name: "scene-color", Kind: BindingTextureSRV, View: view, Stage: track.StageFragmentShader},
	}, false)

	unbind := b.BindDescriptorSets(set)
	_, err := b.AddDispatch("tonemap", "tonemap-cs", [3]uint32{1, 1, 1}, nil)
	unbind()
	if err != nil {
		t.Fatalf("AddDispatch with bound set: %v", err)
	}

	if err := b.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	compiled, err := NewCompiler(false).Compile(b)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	found := false
	for _, w := range compiled.Descriptors {
		if w.Set == set {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the bound descriptor set to be resolved at compile time")
	}
}

func TestAddRenderPassDetectsAliasedViewRace(t *testing.T) {
	reg, tex, _ := newTestRegistry(t)
	b := NewBuilder(reg)

	viewA, err := reg.CreateTextureView(tex, resource.SubresourceRange{MipCount: 1, LayerCount: 1})
	if err != nil {
		t.Fatalf("CreateTextureView a: %v", err)
	}
	viewB, err := reg.CreateTextureView(tex, resource.SubresourceRange{MipCount: 1, LayerCount: 1})
	if err != nil {
		t.Fatalf("CreateTextureView b: %v", err)
	}

	_, err = b.AddRenderPass("broken-pass", Rect2D{Width: 1920, Height: 1080}, []RenderTarget{
		{View: viewA},
		{View: viewB},
	}, nil, nil)
	if err == nil {
		t.Fatal("expected AliasedViewRace for two overlapping color-target views of the same texture")
	}
	rgErr, ok := err.(*Error)
	if !ok || rgErr.Kind != ErrAliasedViewRace {
		t.Fatalf("got %v, want ErrAliasedViewRace", err)
	}
}

func TestAddRenderPassDetectsCycleOnContradictoryAccess(t *testing.T) {
	reg, _, view := newTestRegistry(t)
	b := NewBuilder(reg)

	_, err := b.AddRenderPass("depth-and-color-same-view", Rect2D{Width: 1, Height: 1}, []RenderTarget{
		{View: view, IsDepth: false},
		{View: view, IsDepth: true},
	}, nil, nil)
	if err == nil {
		t.Fatal("expected CycleDetected for a single view declared as both color and depth target")
	}
	rgErr, ok := err.(*Error)
	if !ok || rgErr.Kind != ErrCycleDetected {
		t.Fatalf("got %v, want ErrCycleDetected", err)
	}
}

func TestAddDispatchRejectsMissingBinding(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	b := NewBuilder(reg)

	_, err := b.AddDispatch("broken", "cs", [3]uint32{1, 1, 1}, []Binding{
		{Name: "missing", Kind: BindingBufferSRV},
	})
	if err == nil {
		t.Fatal("expected MissingBinding for a binding with no view")
	}
	rgErr, ok := err.(*Error)
	if !ok || rgErr.Kind != ErrMissingBinding {
		t.Fatalf("got %v, want ErrMissingBinding", err)
	}
}

func TestRecordingAfterFinishFails(t *testing.T) {
	reg, _, view := newTestRegistry(t)
	b := NewBuilder(reg)

	if err := b.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	_, err := b.AddDispatch("too-late", "cs", [3]uint32{1, 1, 1}, []Binding{
		{Name: "x", Kind: BindingBufferSRV, View: view},
	})
	if err == nil {
		t.Fatal("expected ErrInvalidState after Finish")
	}
}
