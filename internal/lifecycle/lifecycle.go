// Package lifecycle tracks the client-side acknowledgement overlay for
// alerts. Records are keyed by the derived alert key, so they survive the
// alert list being refetched. Acknowledgement never reaches the data source
// and is lost on restart.
package lifecycle

import (
	"fmt"
	"sync"

	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/types"
)

// StepsRemainingError rejects an acknowledgement attempted before the
// corrective-action checklist is complete.
type StepsRemainingError struct {
	Remaining int
}

func (e *StepsRemainingError) Error() string {
	if e.Remaining == 1 {
		return "1 step remaining"
	}
	return fmt.Sprintf("%d steps remaining", e.Remaining)
}

// record is the per-key acknowledgement state. The completed-step set only
// exists while a resolution dialog is open for the key.
type record struct {
	acknowledged bool
	open         bool
	totalSteps   int
	doneSteps    map[int]bool
}

// Tracker owns all acknowledgement records. Safe for concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	records map[string]*record
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{records: make(map[string]*record)}
}

// Acknowledged reports whether key has been acknowledged. Keys never
// interacted with are not acknowledged.
func (t *Tracker) Acknowledged(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[key]
	return ok && rec.acknowledged
}

// OpenResolution begins (or restarts) the checklist for key with the given
// total step count. Re-opening resets progress; completed steps are not
// preserved across closes.
func (t *Tracker) OpenResolution(key string, totalSteps int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[key]
	if !ok {
		rec = &record{}
		t.records[key] = rec
	}
	rec.open = true
	rec.totalSteps = totalSteps
	rec.doneSteps = make(map[int]bool)
}

// CloseResolution closes the dialog for key, discarding step progress. The
// acknowledged flag, if set, is kept.
func (t *Tracker) CloseResolution(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[key]
	if !ok {
		return
	}
	rec.open = false
	rec.doneSteps = nil
}

// ToggleStep flips membership of the step index in the completed set for an
// open resolution.
func (t *Tracker) ToggleStep(key string, index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[key]
	if !ok || !rec.open {
		return fmt.Errorf("no open resolution for alert %q", key)
	}
	if index < 0 || index >= rec.totalSteps {
		return fmt.Errorf("step index %d out of range (0..%d)", index, rec.totalSteps-1)
	}
	if rec.doneSteps[index] {
		delete(rec.doneSteps, index)
	} else {
		rec.doneSteps[index] = true
	}
	return nil
}

// Progress returns the completed and total step counts for key, and whether
// a resolution is currently open.
func (t *Tracker) Progress(key string) (completed, total int, open bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[key]
	if !ok {
		return 0, 0, false
	}
	return len(rec.doneSteps), rec.totalSteps, rec.open
}

// StepDone reports whether the given step index is completed.
func (t *Tracker) StepDone(key string, index int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[key]
	return ok && rec.open && rec.doneSteps[index]
}

// Acknowledge marks key acknowledged. It is only permitted when every step
// of the open resolution's checklist is completed; otherwise it is rejected
// with a StepsRemainingError carrying the remaining count. On success the
// dialog is closed and step progress discarded.
func (t *Tracker) Acknowledge(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[key]
	if !ok || !rec.open {
		return fmt.Errorf("no open resolution for alert %q", key)
	}
	if remaining := rec.totalSteps - len(rec.doneSteps); remaining > 0 {
		return &StepsRemainingError{Remaining: remaining}
	}
	rec.acknowledged = true
	rec.open = false
	rec.doneSteps = nil
	return nil
}

// Visible filters out acknowledged alerts, preserving order. The raw list is
// never mutated; acknowledgement is an overlay.
func (t *Tracker) Visible(alerts []types.Alert) []types.Alert {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]types.Alert, 0, len(alerts))
	for _, a := range alerts {
		if rec, ok := t.records[a.Key()]; ok && rec.acknowledged {
			continue
		}
		out = append(out, a)
	}
	return out
}
