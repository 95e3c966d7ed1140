package track

// Tracker holds the state of every live subresource across the schedule
// being compiled, one entry per TrackerIndex. Merge walks a node's
// UsageScope against this state and returns the barriers needed to move
// from the prior state to the new one.
type Tracker struct {
	states   []subresourceState
	metadata resourceMetadata
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{states: make([]subresourceState, 0, 64)}
}

func (t *Tracker) ensureSize(n int) {
	for len(t.states) < n {
		t.states = append(t.states, subresourceState{})
	}
}

// Insert starts tracking index with an initial state, used the first time
// a node accesses a subresource (its prior layout is Undefined).
func (t *Tracker) Insert(index TrackerIndex, kind AccessKind, stage PipelineStage) {
	t.ensureSize(int(index) + 1)
	t.states[index] = subresourceState{access: kind, stage: stage, layout: LayoutFor(kind)}
	t.metadata.setOwned(index, true)
}

// GetState returns the tracked state for index, or the zero state
// (Undefined layout, no access) if untracked.
func (t *Tracker) GetState(index TrackerIndex) (AccessKind, PipelineStage, Layout) {
	if int(index) < len(t.states) && t.metadata.isOwned(index) {
		s := t.states[index]
		return s.access, s.stage, s.layout
	}
	return 0, 0, LayoutUndefined
}

// Remove stops tracking index.
func (t *Tracker) Remove(index TrackerIndex) {
	if int(index) < len(t.states) {
		t.states[index] = subresourceState{}
		t.metadata.setOwned(index, false)
	}
}

// PendingTransition is a subresource whose state must change before its
// next dependent node runs.
type PendingTransition struct {
	Index TrackerIndex
	State StateTransition
}

// StateTransition is a from -> to state change for one subresource.
type StateTransition struct {
	FromAccess AccessKind
	ToAccess   AccessKind
	FromStage  PipelineStage
	ToStage    PipelineStage
	FromLayout Layout
	ToLayout   Layout
}

// NeedsBarrier reports whether this transition requires a barrier: no
// barrier is needed when the layout is unchanged and both sides are
// read-only (the common multiple-readers case).
func (s StateTransition) NeedsBarrier() bool {
	if s.FromLayout == s.ToLayout && s.FromAccess == s.ToAccess {
		return false
	}
	if s.FromAccess.IsReadOnly() && s.ToAccess.IsReadOnly() && s.FromLayout == s.ToLayout {
		return false
	}
	return true
}

// Merge folds scope's accesses into the tracker, returning the ordered
// set of transitions that must be barriered before the node owning scope
// can run. Scope state becomes the tracker's new state for every
// subresource it touched.
func (t *Tracker) Merge(scope *UsageScope) []PendingTransition {
	var transitions []PendingTransition

	for i, owned := range scope.metadata.owned {
		if !owned {
			continue
		}
		index := TrackerIndex(i)
		next := scope.states[i]

		if !t.metadata.isOwned(index) {
			t.Insert(index, next.access, next.stage)
			continue
		}

		prev := t.states[index]
		transition := StateTransition{
			FromAccess: prev.access,
			ToAccess:   next.access,
			FromStage:  prev.stage,
			ToStage:    next.stage,
			FromLayout: prev.layout,
			ToLayout:   next.layout,
		}
		if transition.NeedsBarrier() {
			transitions = append(transitions, PendingTransition{Index: index, State: transition})
		}
		t.states[index] = next
	}

	return transitions
}
