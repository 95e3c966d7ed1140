// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"github.com/forgelabs/rendercore/collab"
	"github.com/forgelabs/rendercore/frame"
)

// StageSet is a bitset over frame.Stage, recording which render stages
// a view participates in.
type StageSet uint32

func stageBit(s frame.Stage) StageSet { return StageSet(1) << uint(s) }

// Has reports whether s is a member of the set.
func (set StageSet) Has(s frame.Stage) bool { return set&stageBit(s) != 0 }

// With returns set with s added.
func (set StageSet) With(s frame.Stage) StageSet { return set | stageBit(s) }

// Without returns set with s removed.
func (set StageSet) Without(s frame.Stage) StageSet { return set &^ stageBit(s) }

// View is one render target the orchestrator drives through the fixed
// stage order: the main camera view, a shadow cascade, or a point
// light's cube face. Grounded on the original engine's RenderView:
// a supported-stages bitset, a rendering resolution, and the scene
// entity the view represents, here generalized so cube-face and
// cascade views (which have no backing scene entity) can still carry
// everything the orchestrator needs.
type View struct {
	Entity     collab.EntityID // zero for views with no owning scene entity
	Resolution [2]uint32

	supportedStages StageSet
	Blackboard      *Blackboard

	// JitterIndex selects this view's sub-pixel camera jitter offset
	// for temporal anti-aliasing; cube-face and shadow views leave it
	// at zero since they don't participate in AntiAliasing.
	JitterIndex uint32
}

// NewView returns a View with an empty blackboard and no supported
// stages.
func NewView(entity collab.EntityID, resolution [2]uint32) *View {
	return &View{Entity: entity, Resolution: resolution, Blackboard: NewBlackboard()}
}

// SetRenderStages replaces the view's supported stage set.
func (v *View) SetRenderStages(stages StageSet) { v.supportedStages = stages }

// AddRenderStages adds stages to the view's supported stage set.
func (v *View) AddRenderStages(stages StageSet) { v.supportedStages |= stages }

// RemoveRenderStages removes stages from the view's supported stage set.
func (v *View) RemoveRenderStages(stages StageSet) { v.supportedStages &^= stages }

// GetSupportedStages returns the view's supported stage set.
func (v *View) GetSupportedStages() StageSet { return v.supportedStages }

// SetRenderingResolution replaces the view's output resolution.
func (v *View) SetRenderingResolution(resolution [2]uint32) { v.Resolution = resolution }

// GetRenderingResolution returns the view's output resolution.
func (v *View) GetRenderingResolution() [2]uint32 { return v.Resolution }
