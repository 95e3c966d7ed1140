// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shadow

import (
	"testing"

	"github.com/forgelabs/rendercore/collab"
	"github.com/forgelabs/rendercore/config"
)

func testSettings() config.ShadowMapsSettings {
	return config.ShadowMapsSettings{
		HighQualityShadowMaps:   1,
		MediumQualityShadowMaps: 1,
		LowQualityShadowMaps:    2,
	}
}

// testLights returns four point lights whose radius/intensity strictly
// order their priority from most to least important, so bucket
// assignment is deterministic.
func testLights() []collab.PointLight {
	return []collab.PointLight{
		{Entity: 1, Location: [3]float32{0, 0, 0}, Radius: 5, Intensity: 100},
		{Entity: 2, Location: [3]float32{1, 0, 0}, Radius: 4, Intensity: 80},
		{Entity: 3, Location: [3]float32{2, 0, 0}, Radius: 2, Intensity: 30},
		{Entity: 4, Location: [3]float32{3, 0, 0}, Radius: 1, Intensity: 10},
	}
}

func TestAssignShadowMapsRespectsUpgradeBudgetPerFrame(t *testing.T) {
	a := NewAllocator(testSettings(), 1, 2, 0.1)
	view := ViewState{Forward: [3]float32{0, 1, 0}}
	lights := testLights()

	a.AssignShadowMaps(view, lights, nil)

	changed := 0
	for _, l := range lights {
		if a.Tier(l.Entity) != TierNone {
			changed++
		}
	}
	if changed > 1 {
		t.Fatalf("expected at most 1 light assigned in the first frame under max_upgrades=1, got %d", changed)
	}
	if changed == 1 && a.Tier(lights[0].Entity) == TierNone {
		t.Fatal("the single budgeted upgrade should have gone to the highest-priority light")
	}
}

func TestAssignShadowMapsAssignsEveryTierWhenBudgetAllows(t *testing.T) {
	a := NewAllocator(testSettings(), 4, 2, 0.1)
	view := ViewState{Forward: [3]float32{0, 1, 0}}
	lights := testLights()

	a.AssignShadowMaps(view, lights, nil)

	if got := a.Tier(lights[0].Entity); got != TierHigh {
		t.Fatalf("light0 tier = %v, want High", got)
	}
	if got := a.Tier(lights[1].Entity); got != TierMedium {
		t.Fatalf("light1 tier = %v, want Medium", got)
	}
	if got := a.Tier(lights[2].Entity); got != TierLow {
		t.Fatalf("light2 tier = %v, want Low", got)
	}
	if got := a.Tier(lights[3].Entity); got != TierLow {
		t.Fatalf("light3 tier = %v, want Low", got)
	}
}

func TestAssignShadowMapsNeverExceedsTierCapacity(t *testing.T) {
	settings := testSettings()
	a := NewAllocator(settings, 8, 8, 0.1)
	view := ViewState{Forward: [3]float32{0, 1, 0}}

	lights := make([]collab.PointLight, 0, 10)
	for i := 0; i < 10; i++ {
		lights = append(lights, collab.PointLight{
			Entity:    collab.EntityID(i + 1),
			Location:  [3]float32{float32(i), 0, 0},
			Radius:    float32(10 - i),
			Intensity: float32(100 - i*5),
		})
	}

	a.AssignShadowMaps(view, lights, nil)

	counts := map[Tier]uint32{}
	for _, l := range lights {
		counts[a.Tier(l.Entity)]++
	}
	if counts[TierHigh] > settings.HighQualityShadowMaps {
		t.Fatalf("High tier over capacity: %d > %d", counts[TierHigh], settings.HighQualityShadowMaps)
	}
	if counts[TierMedium] > settings.MediumQualityShadowMaps {
		t.Fatalf("Medium tier over capacity: %d > %d", counts[TierMedium], settings.MediumQualityShadowMaps)
	}
	if counts[TierLow] > settings.LowQualityShadowMaps {
		t.Fatalf("Low tier over capacity: %d > %d", counts[TierLow], settings.LowQualityShadowMaps)
	}
}

func TestAssignShadowMapsReleasesLightsNoLongerRanked(t *testing.T) {
	a := NewAllocator(testSettings(), 8, 8, 0.1)
	view := ViewState{Forward: [3]float32{0, 1, 0}}
	lights := testLights()

	a.AssignShadowMaps(view, lights, nil)
	if a.Tier(lights[3].Entity) == TierNone {
		t.Fatal("setup: expected light3 to hold a slot before it drops out of range")
	}

	// Drop light3 and replace it with a much higher-priority light; with
	// capacity == 4 and now 4 candidates again, light3 is squeezed out.
	replaced := append([]collab.PointLight{}, lights[:3]...)
	replaced = append(replaced, collab.PointLight{Entity: 99, Location: [3]float32{0, 0, 0}, Radius: 9, Intensity: 200})

	a.AssignShadowMaps(view, replaced, nil)

	if a.Tier(lights[3].Entity) != TierNone {
		t.Fatal("expected light3 to be released once it fell out of the ranked set")
	}
}

func TestRefreshBudgetSelectsExactlyTheBudgetedCount(t *testing.T) {
	settings := config.ShadowMapsSettings{HighQualityShadowMaps: 8}
	a := NewAllocator(settings, 8, 2, 0.1)
	view := ViewState{Forward: [3]float32{0, 1, 0}}

	lights := make([]collab.PointLight, 0, 8)
	for i := 0; i < 8; i++ {
		lights = append(lights, collab.PointLight{Entity: collab.EntityID(i + 1), Radius: 1, Intensity: 10})
	}
	a.AssignShadowMaps(view, lights, nil)

	refreshedAtLeastOnce := map[collab.EntityID]bool{}
	for frame := 0; frame < 4; frame++ {
		refreshed := a.RefreshBudget(0.1)
		if len(refreshed) != 2 {
			t.Fatalf("frame %d: refreshed %d lights, want exactly 2", frame, len(refreshed))
		}
		for _, light := range refreshed {
			refreshedAtLeastOnce[light] = true
		}
	}

	if len(refreshedAtLeastOnce) != 8 {
		t.Fatalf("after 4 frames, %d distinct lights were refreshed, want all 8", len(refreshedAtLeastOnce))
	}
}

// TestAssignShadowMapsSwapsTiersWhenBothPoolsAreFull reproduces the
// scenario where two lights need to trade tiers in the same frame while
// both tiers are already at capacity: with High and Medium capacity 1
// each, light A holds High and light B holds Medium, then priorities
// flip so B should now rank High and A should rank Medium. Neither
// light's target tier has a free slot on its own; only the
// evict-and-requeue cascade in acquireOrEvict lets this resolve instead
// of both lights keeping their old (now wrong) tier forever.
func TestAssignShadowMapsSwapsTiersWhenBothPoolsAreFull(t *testing.T) {
	settings := config.ShadowMapsSettings{HighQualityShadowMaps: 1, MediumQualityShadowMaps: 1}
	a := NewAllocator(settings, 2, 2, 0.1)
	view := ViewState{Forward: [3]float32{0, 1, 0}}

	lightA := collab.PointLight{Entity: 1, Location: [3]float32{0, 0, 0}, Radius: 5, Intensity: 100}
	lightB := collab.PointLight{Entity: 2, Location: [3]float32{1, 0, 0}, Radius: 1, Intensity: 10}

	a.AssignShadowMaps(view, []collab.PointLight{lightA, lightB}, nil)
	if got := a.Tier(lightA.Entity); got != TierHigh {
		t.Fatalf("setup: lightA tier = %v, want High", got)
	}
	if got := a.Tier(lightB.Entity); got != TierMedium {
		t.Fatalf("setup: lightB tier = %v, want Medium", got)
	}

	// Flip priority: B now outranks A.
	lightA.Radius, lightB.Radius = lightB.Radius, lightA.Radius
	lightA.Intensity, lightB.Intensity = lightB.Intensity, lightA.Intensity

	a.AssignShadowMaps(view, []collab.PointLight{lightA, lightB}, map[collab.EntityID]bool{lightA.Entity: true, lightB.Entity: true})

	if got := a.Tier(lightB.Entity); got != TierHigh {
		t.Fatalf("lightB tier after priority swap = %v, want High", got)
	}
	if got := a.Tier(lightA.Entity); got != TierMedium {
		t.Fatalf("lightA tier after priority swap = %v, want Medium", got)
	}
}

func TestBuildCubeViewsProducesSixFacesWithLightRadiusAsFarPlane(t *testing.T) {
	a := NewAllocator(testSettings(), 4, 4, 0.05)
	light := collab.PointLight{Entity: 1, Radius: 12}

	views := a.BuildCubeViews(light)

	seen := map[[3]float32]bool{}
	for i, v := range views {
		if v.FaceIndex != uint32(i) {
			t.Fatalf("face %d has FaceIndex %d", i, v.FaceIndex)
		}
		if v.FOVDegrees != 90 || v.Aspect != 1 {
			t.Fatalf("face %d: unexpected projection %+v", i, v)
		}
		if v.Near != 0.05 {
			t.Fatalf("face %d: near = %v, want 0.05", i, v.Near)
		}
		if v.Far != 12 {
			t.Fatalf("face %d: far = %v, want light radius 12", i, v.Far)
		}
		seen[v.Direction] = true
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 distinct face directions, got %d", len(seen))
	}
}
