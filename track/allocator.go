package track

import "sync"

// TrackerIndex is a dense index for O(1) resource state tracking. Unlike
// handle.ID (sparse, epoch-checked), tracker indices are always dense
// (0, 1, 2, ...) so per-subresource state can live in a plain slice.
type TrackerIndex uint32

// InvalidTrackerIndex marks an unassigned tracker index.
const InvalidTrackerIndex TrackerIndex = ^TrackerIndex(0)

// IsValid reports whether i is a real, allocated index.
func (i TrackerIndex) IsValid() bool { return i != InvalidTrackerIndex }

// IndexAllocator hands out dense tracker indices, reusing released ones
// LIFO for cache locality.
//
// Thread-safe for concurrent use.
type IndexAllocator struct {
	mu        sync.Mutex
	unused    []TrackerIndex
	nextIndex TrackerIndex
}

// NewIndexAllocator creates an empty allocator.
func NewIndexAllocator() *IndexAllocator {
	return &IndexAllocator{unused: make([]TrackerIndex, 0, 64)}
}

// Alloc returns a fresh or recycled index.
func (a *IndexAllocator) Alloc() TrackerIndex {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.unused); n > 0 {
		idx := a.unused[n-1]
		a.unused = a.unused[:n-1]
		return idx
	}
	idx := a.nextIndex
	a.nextIndex++
	return idx
}

// Free releases idx for reuse. A no-op for InvalidTrackerIndex.
func (a *IndexAllocator) Free(idx TrackerIndex) {
	if idx == InvalidTrackerIndex {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unused = append(a.unused, idx)
}

// Size returns the number of indices currently allocated.
func (a *IndexAllocator) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.nextIndex) - len(a.unused)
}

// HighWaterMark returns the highest index ever allocated.
func (a *IndexAllocator) HighWaterMark() TrackerIndex {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.nextIndex == 0 {
		return InvalidTrackerIndex
	}
	return a.nextIndex - 1
}
