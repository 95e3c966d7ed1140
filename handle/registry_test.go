package handle

import "testing"

func TestRegistryRegisterGet(t *testing.T) {
	r := NewRegistry[string, textureMarker]()

	id := r.Register("depth-1920x1080")

	got, err := r.Get(id)
	if err != nil {
		t.Fatalf("Get: unexpected error: %v", err)
	}
	if got != "depth-1920x1080" {
		t.Fatalf("Get: got %q, want %q", got, "depth-1920x1080")
	}
}

func TestRegistryEpochMismatchAfterUnregister(t *testing.T) {
	r := NewRegistry[int, bufferMarker]()

	id := r.Register(42)
	if _, err := r.Unregister(id); err != nil {
		t.Fatalf("Unregister: unexpected error: %v", err)
	}

	newID := r.Register(43)
	if newID.Index() != id.Index() {
		t.Fatalf("expected index reuse, got new index %d vs old %d", newID.Index(), id.Index())
	}
	if newID.Epoch() == id.Epoch() {
		t.Fatalf("expected epoch to advance on reuse, both are %d", id.Epoch())
	}

	if _, err := r.Get(id); err != ErrEpochMismatch {
		t.Fatalf("Get(stale id): got %v, want ErrEpochMismatch", err)
	}
}

func TestRegistryInvalidID(t *testing.T) {
	r := NewRegistry[int, viewMarker]()
	var zero ID[viewMarker]

	if _, err := r.Get(zero); err != ErrInvalidID {
		t.Fatalf("Get(zero): got %v, want ErrInvalidID", err)
	}
}

func TestRegistryForEachOrder(t *testing.T) {
	r := NewRegistry[int, nodeMarker]()
	a := r.Register(10)
	b := r.Register(20)

	seen := map[ID[nodeMarker]]int{}
	r.ForEach(func(id ID[nodeMarker], v int) bool {
		seen[id] = v
		return true
	})

	if seen[a] != 10 || seen[b] != 20 {
		t.Fatalf("ForEach: got %v, want a=10 b=20", seen)
	}
	if r.Count() != 2 {
		t.Fatalf("Count: got %d, want 2", r.Count())
	}
}

func TestRegistryResetInvalidatesOutstandingHandlesAndRestartsAllocation(t *testing.T) {
	r := NewRegistry[string, bufferMarker]()
	a := r.Register("a")
	r.Register("b")

	r.Reset()

	if _, err := r.Get(a); err == nil {
		t.Fatal("expected Get(pre-reset handle) to fail after Reset")
	}
	if r.Count() != 0 {
		t.Fatalf("Count after Reset: got %d, want 0", r.Count())
	}

	fresh := r.Register("c")
	if fresh.Index() != a.Index() {
		t.Fatalf("expected Reset to restart allocation at index %d, got %d", a.Index(), fresh.Index())
	}
	if fresh.Epoch() != a.Epoch() {
		t.Fatalf("expected Reset to restart epochs too, got %d want %d", fresh.Epoch(), a.Epoch())
	}
	got, err := r.Get(fresh)
	if err != nil {
		t.Fatalf("Get(fresh): unexpected error: %v", err)
	}
	if got != "c" {
		t.Fatalf("Get(fresh): got %q, want %q", got, "c")
	}
}
