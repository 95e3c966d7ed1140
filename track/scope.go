package track

import "fmt"

type subresourceState struct {
	access AccessKind
	stage  PipelineStage
	layout Layout
}

// resourceMetadata tracks which TrackerIndex slots hold a live state,
// mirroring the teacher's owned-bitmap pattern rather than using a
// separate map.
type resourceMetadata struct {
	owned []bool
	count int
}

func (m *resourceMetadata) setOwned(index TrackerIndex, owned bool) {
	for int(index) >= len(m.owned) {
		m.owned = append(m.owned, false)
	}
	was := m.owned[index]
	m.owned[index] = owned
	switch {
	case owned && !was:
		m.count++
	case !owned && was:
		m.count--
	}
}

func (m *resourceMetadata) isOwned(index TrackerIndex) bool {
	return int(index) < len(m.owned) && m.owned[index]
}

// UsageScope accumulates the accesses a single RG node (or a group of
// nodes sharing a pass) declares, one per subresource. Declaring two
// incompatible writes to the same subresource within a scope is a
// same-node conflict.
type UsageScope struct {
	states   []subresourceState
	metadata resourceMetadata
}

// NewUsageScope creates an empty scope.
func NewUsageScope() *UsageScope {
	return &UsageScope{states: make([]subresourceState, 0, 32)}
}

func (s *UsageScope) ensureSize(n int) {
	for len(s.states) < n {
		s.states = append(s.states, subresourceState{})
	}
}

// SetUsage declares an access against index, merging with whatever this
// scope has already recorded for it. Returns a ConflictError if the new
// access is incompatible with the existing one (e.g. two different
// writes to the same subresource in one node).
func (s *UsageScope) SetUsage(index TrackerIndex, kind AccessKind, stage PipelineStage) error {
	s.ensureSize(int(index) + 1)

	if s.metadata.isOwned(index) {
		existing := s.states[index]
		if !existing.access.IsCompatible(kind) {
			return &ConflictError{Index: index, Existing: existing.access, New: kind}
		}
		merged := existing.access | kind
		s.states[index] = subresourceState{
			access: merged,
			stage:  existing.stage | stage,
			layout: LayoutFor(merged),
		}
		return nil
	}

	s.states[index] = subresourceState{access: kind, stage: stage, layout: LayoutFor(kind)}
	s.metadata.setOwned(index, true)
	return nil
}

// GetUsage returns the access recorded for index in this scope.
func (s *UsageScope) GetUsage(index TrackerIndex) AccessKind {
	if int(index) < len(s.states) && s.metadata.isOwned(index) {
		return s.states[index].access
	}
	return 0
}

// IsUsed reports whether index has any recorded access in this scope.
func (s *UsageScope) IsUsed(index TrackerIndex) bool { return s.metadata.isOwned(index) }

// Clear resets the scope for reuse across frames.
func (s *UsageScope) Clear() {
	s.states = s.states[:0]
	s.metadata.owned = s.metadata.owned[:0]
	s.metadata.count = 0
}

// ConflictError is returned when a scope records two incompatible
// accesses against the same subresource.
type ConflictError struct {
	Index    TrackerIndex
	Existing AccessKind
	New      AccessKind
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("track: conflicting access on index %d: existing %#x, new %#x", e.Index, e.Existing, e.New)
}
