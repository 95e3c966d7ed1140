// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shadow

import (
	"sort"

	"github.com/forgelabs/rendercore/collab"
	"github.com/forgelabs/rendercore/config"
)

// CubeFaceView is one of the six perspective projections covering a
// point light's cube shadow map.
type CubeFaceView struct {
	FaceIndex  uint32
	Direction  [3]float32
	Up         [3]float32
	FOVDegrees float32
	Aspect     float32
	Near       float32
	Far        float32
}

var cubeFaceDirections = [6][2][3]float32{
	{{1, 0, 0}, {0, -1, 0}},
	{{-1, 0, 0}, {0, -1, 0}},
	{{0, 1, 0}, {0, 0, 1}},
	{{0, -1, 0}, {0, 0, -1}},
	{{0, 0, 1}, {0, -1, 0}},
	{{0, 0, -1}, {0, -1, 0}},
}

// Allocator assigns a fixed, config-sized pool of quality-tiered shadow
// maps to point lights by priority each frame, reconciling the
// previous frame's assignment against the new candidate ranking
// instead of recomputing it from scratch: lights keep their tier
// unless the ranking demands an upgrade, downgrade, or release, and
// changes are bounded by a per-frame budget so a single frame never
// rewrites the whole pool.
type Allocator struct {
	pool *pool

	maxUpgradesPerFrame  uint32
	maxRefreshesPerFrame uint32
	nearPlane            float32

	assigned map[collab.EntityID]uint32 // light -> global slot index
	running  map[collab.EntityID]float32 // refresh running priority
}

// NewAllocator builds an Allocator from its persisted pool-capacity
// settings and per-frame budgets.
func NewAllocator(settings config.ShadowMapsSettings, maxUpgradesPerFrame, maxRefreshesPerFrame uint32, nearPlane float32) *Allocator {
	return &Allocator{
		pool:                 newPool(settings),
		maxUpgradesPerFrame:  maxUpgradesPerFrame,
		maxRefreshesPerFrame: maxRefreshesPerFrame,
		nearPlane:            nearPlane,
		assigned:             make(map[collab.EntityID]uint32),
		running:              make(map[collab.EntityID]float32),
	}
}

// Tier reports the quality tier currently held by light, or TierNone
// if it has no shadow map assigned.
func (a *Allocator) Tier(light collab.EntityID) Tier {
	slotIdx, ok := a.assigned[light]
	if !ok {
		return TierNone
	}
	return a.pool.slot(slotIdx).Tier
}

type candidate struct {
	light    collab.PointLight
	priority float32
}

// pendingAcquire is a light waiting to be assigned a slot in target,
// either because it ranked into a better tier than it holds or because
// it was bumped out of a slot another upgrade needed.
type pendingAcquire struct {
	entity collab.EntityID
	target Tier
}

// AssignShadowMaps re-ranks every visible light by priority and
// reconciles the held assignments against the new ranking, following
// the original's three-phase reconciliation:
//
//  1. Lights that no longer rank into any tier at all are released
//     outright.
//  2. Lights ranking into a better tier are queued to acquire it, up to
//     maxUpgradesPerFrame; a light whose upgrade is budget-starved, and
//     any light ranking into a worse tier than it holds, becomes a
//     release candidate for its *current* tier instead of being
//     released immediately — its slot stays live until another light
//     actually needs it.
//  3. The acquire queue is drained LIFO. Whenever a tier has no free
//     slot, the most recently queued release candidate for that tier is
//     evicted to make room; if the evicted light still ranks into some
//     (lower) tier, it re-enters the acquire queue for that tier. A
//     release candidate never pulled by this cascade simply keeps its
//     current slot, exactly as the original leaves over-quality shadow
//     maps in place when nothing else needs them.
//
// This is what lets two lights swap tiers in one frame even when every
// tier is at capacity: without the cascade, the higher-priority light's
// upgrade would fail (its target tier is full) and the lower-priority
// light's downgrade would never free it, since nothing ever evicts a
// release candidate that isn't pulled into the cascade.
func (a *Allocator) AssignShadowMaps(view ViewState, lights []collab.PointLight, visibleLastFrame map[collab.EntityID]bool) {
	candidates := make([]candidate, 0, len(lights))
	for _, light := range lights {
		p := computePriority(view, light, a.Tier(light.Entity), visibleLastFrame[light.Entity])
		candidates = append(candidates, candidate{light: light, priority: p})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority > candidates[j].priority
	})

	capacity := a.pool.totalCapacity()
	wanted := candidates
	if uint32(len(wanted)) > capacity {
		wanted = wanted[:capacity]
	}

	wantedTier := a.bucketByRank(wanted)

	stillWanted := make(map[collab.EntityID]bool, len(wanted))
	for _, c := range wanted {
		stillWanted[c.light.Entity] = true
	}
	for light := range a.assigned {
		if !stillWanted[light] {
			a.release(light)
		}
	}

	var acquireQueue []pendingAcquire
	releaseCandidates := make(map[Tier][]collab.EntityID, 3)

	for _, c := range wanted {
		entity := c.light.Entity
		target := wantedTier[entity]
		current := a.Tier(entity)

		switch {
		case current == target:
			// Already holds the right tier; nothing to do.
		case current < target:
			if uint32(len(acquireQueue)) < a.maxUpgradesPerFrame {
				if current != TierNone {
					a.release(entity)
				}
				acquireQueue = append(acquireQueue, pendingAcquire{entity: entity, target: target})
			} else if current != TierNone {
				// Out of upgrade budget this frame: make the slot it
				// already holds available to the cascade below without
				// giving it up unconditionally.
				releaseCandidates[current] = append(releaseCandidates[current], entity)
			}
		default: // current > target: ranks into a worse tier than it holds.
			releaseCandidates[current] = append(releaseCandidates[current], entity)
		}
	}

	for len(acquireQueue) > 0 {
		req := acquireQueue[len(acquireQueue)-1]
		acquireQueue = acquireQueue[:len(acquireQueue)-1]
		a.acquireOrEvict(req, wantedTier, releaseCandidates, &acquireQueue)
	}
}

// acquireOrEvict assigns req.entity a slot in req.target, evicting the
// most recently queued release candidate of that tier if none is free.
// An evicted light that still ranks into a (necessarily lower) tier is
// pushed back onto acquireQueue to find a new home; one that dropped out
// of the ranking entirely is released outright.
func (a *Allocator) acquireOrEvict(req pendingAcquire, wantedTier map[collab.EntityID]Tier, releaseCandidates map[Tier][]collab.EntityID, acquireQueue *[]pendingAcquire) {
	slotIdx, ok := a.pool.acquire(req.target)
	if !ok {
		stack := releaseCandidates[req.target]
		if len(stack) == 0 {
			// Nothing can be evicted to make room; req.entity keeps
			// whatever it currently holds (nothing, if it had nothing).
			return
		}
		victim := stack[len(stack)-1]
		releaseCandidates[req.target] = stack[:len(stack)-1]

		a.release(victim)
		if victimTarget, stillRanked := wantedTier[victim]; stillRanked {
			*acquireQueue = append(*acquireQueue, pendingAcquire{entity: victim, target: victimTarget})
		}

		slotIdx, ok = a.pool.acquire(req.target)
		if !ok {
			// The just-freed slot belongs to req.target by construction;
			// this should be unreachable, but leave req.entity as-is
			// rather than panic if the pool's bookkeeping ever disagrees.
			return
		}
	}

	slot := a.pool.slot(slotIdx)
	slot.Owner = uint64(req.entity)
	slot.HasOwner = true
	a.assigned[req.entity] = slotIdx
}

// bucketByRank assigns each ranked candidate a tier by rank-index
// boundary: the highest-priority capacity[High] lights get High, the
// next capacity[Medium] get Medium, and the rest get Low.
func (a *Allocator) bucketByRank(ranked []candidate) map[collab.EntityID]Tier {
	result := make(map[collab.EntityID]Tier, len(ranked))
	highEnd := a.pool.capacity[TierHigh]
	mediumEnd := highEnd + a.pool.capacity[TierMedium]
	for i, c := range ranked {
		idx := uint32(i)
		switch {
		case idx < highEnd:
			result[c.light.Entity] = TierHigh
		case idx < mediumEnd:
			result[c.light.Entity] = TierMedium
		default:
			result[c.light.Entity] = TierLow
		}
	}
	return result
}

// release frees light's slot, if it holds one.
func (a *Allocator) release(light collab.EntityID) {
	slotIdx, ok := a.assigned[light]
	if !ok {
		return
	}
	slot := a.pool.slot(slotIdx)
	tier := slot.Tier
	slot.HasOwner = false
	slot.Owner = 0
	a.pool.release(tier, slotIdx)
	delete(a.assigned, light)
	delete(a.running, light)
}

// RefreshBudget accumulates each assigned light's running priority by
// dt scaled by its tier's refresh multiplier, then returns the
// highest-priority lights up to maxRefreshesPerFrame, resetting their
// running priority to zero. Lights not selected keep accumulating, so
// every assigned light is eventually refreshed even under a tight
// budget.
func (a *Allocator) RefreshBudget(dt float64) []collab.EntityID {
	type scored struct {
		light    collab.EntityID
		priority float32
	}
	lights := make([]collab.EntityID, 0, len(a.assigned))
	for light := range a.assigned {
		lights = append(lights, light)
	}
	// Iterating a map gives no stable order; sort by entity id first so
	// that ties in accumulated priority break the same way every frame
	// instead of depending on map iteration order.
	sort.Slice(lights, func(i, j int) bool { return lights[i] < lights[j] })

	scoredLights := make([]scored, 0, len(lights))
	for _, light := range lights {
		tier := a.pool.slot(a.assigned[light]).Tier
		a.running[light] += float32(dt) * refreshPriorityMultiplier(tier)
		scoredLights = append(scoredLights, scored{light: light, priority: a.running[light]})
	}
	sort.SliceStable(scoredLights, func(i, j int) bool {
		return scoredLights[i].priority > scoredLights[j].priority
	})

	n := int(a.maxRefreshesPerFrame)
	if n > len(scoredLights) {
		n = len(scoredLights)
	}

	refreshed := make([]collab.EntityID, 0, n)
	for i := 0; i < n; i++ {
		light := scoredLights[i].light
		refreshed = append(refreshed, light)
		a.running[light] = 0
	}
	return refreshed
}

// BuildCubeViews returns the six perspective projections covering
// light's shadow cube, using a 90 degree field of view, the
// allocator's configured near plane, and the light's radius as the
// far plane.
func (a *Allocator) BuildCubeViews(light collab.PointLight) [6]CubeFaceView {
	var views [6]CubeFaceView
	for i, dir := range cubeFaceDirections {
		views[i] = CubeFaceView{
			FaceIndex:  uint32(i),
			Direction:  dir[0],
			Up:         dir[1],
			FOVDegrees: 90,
			Aspect:     1,
			Near:       a.nearPlane,
			Far:        light.Radius,
		}
	}
	return views
}
