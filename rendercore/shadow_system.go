// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package rendercore

import (
	"context"

	"github.com/forgelabs/rendercore/collab"
	"github.com/forgelabs/rendercore/frame"
	"github.com/forgelabs/rendercore/orchestrator"
	"github.com/forgelabs/rendercore/shadow"
)

// shadowViewSystem wires the shadow-map Allocator into the orchestrator:
// it re-ranks point lights once per frame and appends one ShadowMap view
// per assigned cube face to the view set. It is registered by every
// RenderCore alongside whatever systems the host supplies.
type shadowViewSystem struct {
	allocator *shadow.Allocator

	lights           []collab.PointLight
	visibleLastFrame map[collab.EntityID]bool
	assigned         bool
}

func newShadowViewSystem(allocator *shadow.Allocator) *shadowViewSystem {
	return &shadowViewSystem{
		allocator:        allocator,
		visibleLastFrame: make(map[collab.EntityID]bool),
	}
}

func (s *shadowViewSystem) Name() string { return "shadow-maps" }

// Update captures this frame's point lights and runs the refresh-budget
// pass; AssignShadowMaps itself waits for CollectViews, which is the
// first point in the per-frame procedure that has the main view (and so
// the camera state the priority formula needs).
func (s *shadowViewSystem) Update(ctx context.Context, scene collab.SceneRegistry, dt float64) error {
	s.lights = scene.PointLights()
	s.allocator.RefreshBudget(dt)
	s.assigned = false
	return nil
}

// CollectViews runs the assignment exactly once per frame (the first
// pass collectViews makes) and appends a ShadowMap view per cube face of
// every light that ranked into a tier.
func (s *shadowViewSystem) CollectViews(mainView *orchestrator.View, views []*orchestrator.View) []*orchestrator.View {
	if s.assigned {
		return views
	}
	s.assigned = true

	viewState, _ := orchestrator.Fetch[shadow.ViewState](mainView.Blackboard)
	s.allocator.AssignShadowMaps(viewState, s.lights, s.visibleLastFrame)

	newVisible := make(map[collab.EntityID]bool, len(s.lights))
	for _, light := range s.lights {
		tier := s.allocator.Tier(light.Entity)
		if tier == shadow.TierNone {
			continue
		}
		newVisible[light.Entity] = true

		resolution := shadow.Resolution(tier)
		for _, face := range s.allocator.BuildCubeViews(light) {
			v := orchestrator.NewView(light.Entity, [2]uint32{resolution, resolution})
			v.SetRenderStages(StageSet(0).With(frame.StageShadowMap))
			orchestrator.Put(v.Blackboard, face)
			views = append(views, v)
		}
	}
	s.visibleLastFrame = newVisible
	return views
}
