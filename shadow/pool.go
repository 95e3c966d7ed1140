// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shadow

import (
	"github.com/forgelabs/rendercore/config"
	"github.com/forgelabs/rendercore/handle"
)

// Slot is one cube (6 face images) of a fixed quality tier in the
// shadow-map pool.
type Slot struct {
	Tier            Tier
	FirstFaceIndex  uint32
	Owner           uint64 // collab.EntityID; 0 means unowned
	HasOwner        bool
	LastRefreshedAt float64
}

type slotMarker struct{}

func (slotMarker) IsHandleMarker() {}

// pool owns the fixed-capacity slot arrays for each tier and their
// free-list allocators. A tier's free list is LIFO: the most recently
// released slot is the first one reused, mirroring the stack-popping
// release-candidate reconciliation the allocator runs each frame.
type pool struct {
	capacity map[Tier]uint32
	offset   map[Tier]uint32 // first_face_index / 6 base for this tier
	slots    []Slot          // flat, offset[tier]..offset[tier]+capacity[tier)
	free     map[Tier]*handle.IdentityManager[slotMarker]
}

func newPool(settings config.ShadowMapsSettings) *pool {
	capacity := map[Tier]uint32{
		TierHigh:   settings.HighQualityShadowMaps,
		TierMedium: settings.MediumQualityShadowMaps,
		TierLow:    settings.LowQualityShadowMaps,
	}

	offset := make(map[Tier]uint32, 3)
	var running uint32
	var slots []Slot
	for _, tier := range []Tier{TierHigh, TierMedium, TierLow} {
		offset[tier] = running
		for i := uint32(0); i < capacity[tier]; i++ {
			slots = append(slots, Slot{Tier: tier, FirstFaceIndex: (running + i) * 6})
		}
		running += capacity[tier]
	}

	free := make(map[Tier]*handle.IdentityManager[slotMarker], 3)
	for _, tier := range []Tier{TierHigh, TierMedium, TierLow} {
		mgr := handle.NewIdentityManager[slotMarker]()
		// Pre-allocate every slot then release it, so the free list
		// starts populated with the tier's whole capacity, index 0 is
		// allocated first (bottom of the stack) and the highest index
		// is allocated last (top), matching the original's vector used
		// as a stack.
		ids := make([]handle.ID[slotMarker], capacity[tier])
		for i := range ids {
			ids[i] = mgr.Alloc()
		}
		for _, id := range ids {
			mgr.Release(id)
		}
		free[tier] = mgr
	}

	return &pool{capacity: capacity, offset: offset, slots: slots, free: free}
}

// acquire pops the most recently released slot of tier, if one is free.
func (p *pool) acquire(tier Tier) (uint32, bool) {
	mgr := p.free[tier]
	if mgr.Count() >= uint64(p.capacity[tier]) {
		return 0, false
	}
	id := mgr.Alloc()
	return p.offset[tier] + id.Index(), true
}

// release pushes globalSlot back onto tier's free stack.
func (p *pool) release(tier Tier, globalSlot uint32) {
	localIndex := globalSlot - p.offset[tier]
	// Reconstruct an ID with the index the allocator handed out; the
	// epoch is irrelevant here since the pool only ever tracks a slot
	// being free or held, never a stale reference to it.
	p.free[tier].Release(handle.NewID[slotMarker](localIndex, 1))
}

func (p *pool) slot(globalIndex uint32) *Slot {
	if int(globalIndex) >= len(p.slots) {
		return nil
	}
	return &p.slots[globalIndex]
}

// totalCapacity returns the sum of every tier's capacity.
func (p *pool) totalCapacity() uint32 {
	return p.capacity[TierHigh] + p.capacity[TierMedium] + p.capacity[TierLow]
}
