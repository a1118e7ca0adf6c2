// Package filters holds the cross-view filter state. Several triggers mutate
// it — typing into a filter control, clicking an identifier cell, adopting an
// alert's identifiers, the focus action — and all of them funnel through the
// small set of named mutators here rather than ad hoc shared state.
package filters

import (
	"strings"
	"sync"

	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/types"
)

// State is the mutable filter state. Safe for concurrent use.
type State struct {
	mu       sync.RWMutex
	criteria types.FilterCriteria
}

// New creates empty filter state.
func New() *State {
	return &State{}
}

// Criteria returns a copy of the current filter criteria.
func (s *State) Criteria() types.FilterCriteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

// SetField sets one identifier filter directly (the typed-input trigger).
func (s *State) SetField(kind types.IdentifierKind, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(kind, value)
}

func (s *State) setLocked(kind types.IdentifierKind, value string) {
	switch kind {
	case types.IdentifierPart:
		s.criteria.PartID = value
	case types.IdentifierConveyor:
		s.criteria.ConveyorID = value
	case types.IdentifierSourcePi:
		s.criteria.SourcePi = value
	}
}

// SetStage sets the queue-stage discriminator.
func (s *State) SetStage(stage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.Stage = stage
}

// ClearAll resets the three identifier filters to empty. The stage
// discriminator is not touched.
func (s *State) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.PartID = ""
	s.criteria.ConveyorID = ""
	s.criteria.SourcePi = ""
}

// AdoptFromCell adopts a clicked cell's value verbatim when its column is one
// of the three identifier columns. It reports whether the value was adopted;
// a false return means the click should fall through to row selection.
func (s *State) AdoptFromCell(column, value string) bool {
	kind := types.IdentifierKind(column)
	switch kind {
	case types.IdentifierPart, types.IdentifierConveyor, types.IdentifierSourcePi:
	default:
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(kind, value)
	return true
}

// AdoptFromAlert adopts every identifier present on the alert (absent ones
// leave the corresponding filter untouched). It reports whether the active
// view should switch to the conveyor view, which happens only for
// conveyor-origin alerts.
func (s *State) AdoptFromAlert(a types.Alert) (switchView bool) {
	s.mu.Lock()
	for _, kind := range types.IdentifierKinds() {
		if v := a.Identifier(kind); v != "" {
			s.setLocked(kind, v)
		}
	}
	s.mu.Unlock()
	return a.ConveyorOrigin()
}

// FocusFirstConveyor adopts the identifiers of the first alert in list order
// that carries a conveyor identifier. It reports whether such an alert was
// found; when found, the caller must switch to the conveyor view.
func (s *State) FocusFirstConveyor(alerts []types.Alert) bool {
	for _, a := range alerts {
		if a.ConveyorID == "" {
			continue
		}
		s.AdoptFromAlert(a)
		return true
	}
	return false
}

// Apply narrows already-fetched rows against the identifier criteria. An
// empty criterion matches everything. Matching is substring based:
// case-sensitive for part and conveyor ids, case-insensitive for source_pi.
// The stage discriminator is a server-side query parameter and is not
// applied here.
func (s *State) Apply(rows []types.Row) []types.Row {
	c := s.Criteria()
	if c.PartID == "" && c.ConveyorID == "" && c.SourcePi == "" {
		return rows
	}
	out := make([]types.Row, 0, len(rows))
	for _, r := range rows {
		if matches(c, r) {
			out = append(out, r)
		}
	}
	return out
}

func matches(c types.FilterCriteria, r types.Row) bool {
	if c.PartID != "" && !strings.Contains(r.Identifier(types.IdentifierPart), c.PartID) {
		return false
	}
	if c.ConveyorID != "" && !strings.Contains(r.Identifier(types.IdentifierConveyor), c.ConveyorID) {
		return false
	}
	if c.SourcePi != "" {
		have := strings.ToLower(r.Identifier(types.IdentifierSourcePi))
		if !strings.Contains(have, strings.ToLower(c.SourcePi)) {
			return false
		}
	}
	return true
}
