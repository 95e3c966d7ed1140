package frame

import "testing"

func TestArenaAllocGrowsBackingBuffer(t *testing.T) {
	a := NewArena(4)
	first := a.Alloc(2)
	second := a.Alloc(8)
	if len(first) != 2 || len(second) != 8 {
		t.Fatalf("unexpected slice lengths: %d, %d", len(first), len(second))
	}
	if a.Used() != 10 {
		t.Fatalf("Used() = %d, want 10", a.Used())
	}
}

func TestArenaResetReusesBuffer(t *testing.T) {
	a := NewArena(16)
	a.Alloc(16)
	a.Reset()
	if a.Used() != 0 {
		t.Fatalf("Used() after Reset = %d, want 0", a.Used())
	}
	a.Alloc(16)
	if a.Used() != 16 {
		t.Fatalf("Used() after re-alloc = %d, want 16", a.Used())
	}
}
