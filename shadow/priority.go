// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shadow

import (
	"math"

	"github.com/forgelabs/rendercore/collab"
)

// ViewState is the subset of the main view's camera state the priority
// formula needs.
type ViewState struct {
	Location [3]float32
	Forward  [3]float32
}

// LightPriorityRecord pairs a light with the priority that accumulates
// across frames until it is next refreshed.
type LightPriorityRecord struct {
	Light           collab.EntityID
	RunningPriority float32
}

const (
	maxDistanceToLight = 15.0
	maxRadius          = 5.0
	maxZDifference     = 7.0
	maxIntensity       = 100.0

	inRadiusPriority         = 10.0
	distanceMultiplier       = 1.7
	dotMultiplier            = 4.0
	zDifferenceMultiplier    = 0.7
	currentQualityMultiplier = 0.5
	radiusMultiplier         = 0.6
	intensityMultiplier      = 0.7
	visibilityMultiplier     = 1.0
)

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func sub3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func length3(v [3]float32) float32 {
	return float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
}

func normalize3(v [3]float32) [3]float32 {
	l := length3(v)
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}

func dot3(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func add3(a, b [3]float32, scale float32) [3]float32 {
	return [3]float32{a[0] + b[0]*scale, a[1] + b[1]*scale, a[2] + b[2]*scale}
}

// computePriority scores how important light is to keep a high-quality
// shadow map this frame, combining eight weighted contributions: an
// inside-radius bonus, distance fall-off, alignment between the view's
// forward vector and the direction to the light, a z-difference
// penalty, the bonus for the tier currently held, the light's radius,
// its luminous intensity, and whether it was visible in the previous
// frame's readback. A NaN result (e.g. from a degenerate light
// position) is treated as zero, per the allocator's failure semantics.
func computePriority(view ViewState, light collab.PointLight, currentTier Tier, visibleLastFrame bool) float32 {
	lightLocation := light.Location

	distanceToLight := length3(sub3(lightLocation, add3(view.Location, view.Forward, 3.0)))

	var viewAndLightDot float32 = 1.0
	if distanceToLight >= maxRadius {
		toLight := normalize3(sub3(lightLocation, view.Location))
		viewAndLightDot = dot3(view.Forward, toLight)
	}

	zDifference := lightLocation[2] - view.Location[2]

	var priority float32
	if distanceToLight < light.Radius {
		priority += inRadiusPriority
	}
	priority += (1 - clamp01(distanceToLight/maxDistanceToLight)) * distanceMultiplier
	priority += (viewAndLightDot*0.5 + 0.5) * dotMultiplier
	priority += (1 - clamp01(zDifference/maxZDifference)) * zDifferenceMultiplier
	priority += qualityPriorityBonus(currentTier) * currentQualityMultiplier
	priority += clamp01(light.Radius/maxRadius) * radiusMultiplier
	priority += clamp01(light.Intensity/maxIntensity) * intensityMultiplier
	if visibleLastFrame {
		priority += visibilityMultiplier
	}

	if math.IsNaN(float64(priority)) {
		return 0
	}
	return priority
}
