package dashboard

import (
	"fmt"
	"time"

	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/correlate"
	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/types"
)

// AlertView decorates a fetched alert with its derived key, acknowledgement
// flag, and runbook module for display.
type AlertView struct {
	types.Alert
	Key          string `json:"key"`
	Acknowledged bool   `json:"acknowledged"`
	Module       string `json:"module"`
}

// RowView pairs a row with its alert-correlation match flag.
type RowView struct {
	Fields types.Row `json:"fields"`
	Match  bool      `json:"match"`
}

// SchedulerState describes the refresh scheduler for display.
type SchedulerState struct {
	Live            bool `json:"live"`
	IntervalSeconds int  `json:"interval_seconds"`
}

// Snapshot is the full state handed to the rendering collaborator.
type Snapshot struct {
	Metrics             types.MetricsSnapshot `json:"metrics"`
	Health              types.HealthLevel     `json:"health"`
	Alerts              []AlertView           `json:"alerts"`
	UnacknowledgedCount int                   `json:"unacknowledged_count"`
	Rows                []RowView             `json:"rows"`
	Columns             []string              `json:"columns"`
	View                types.View            `json:"view"`
	Filters             types.FilterCriteria  `json:"filters"`
	TightMonitoring     bool                  `json:"tight_monitoring"`
	Scheduler           SchedulerState        `json:"scheduler"`
	LastError           string                `json:"last_error,omitempty"`
	LastRefresh         time.Time             `json:"last_refresh"`
}

// Snapshot renders the committed state: the raw alert list decorated with
// acknowledgement flags, the filtered rows with match flags against the
// visible alert set, and the scheduler/filter/view state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	metrics := e.metrics
	alerts := e.alerts
	rows := e.rows
	view := e.view
	tight := e.tight
	lastError := e.lastError
	lastRefresh := e.lastRefresh
	e.mu.RUnlock()

	visible := e.tracker.Visible(alerts)

	alertViews := make([]AlertView, len(alerts))
	for i, a := range alerts {
		key := a.Key()
		alertViews[i] = AlertView{
			Alert:        a,
			Key:          key,
			Acknowledged: e.tracker.Acknowledged(key),
			Module:       e.kb.Lookup(a.Type).Module,
		}
	}

	filtered := e.filters.Apply(rows)
	flags := correlate.MatchFlags(filtered, visible)
	rowViews := make([]RowView, len(filtered))
	for i, r := range filtered {
		rowViews[i] = RowView{Fields: r, Match: flags[i]}
	}

	// Schema discovery: the first committed row defines the columns.
	var columns []string
	if len(rows) > 0 {
		columns = rows[0].Columns()
	}

	return Snapshot{
		Metrics:             metrics,
		Health:              correlate.ComputeHealth(visible),
		Alerts:              alertViews,
		UnacknowledgedCount: len(visible),
		Rows:                rowViews,
		Columns:             columns,
		View:                view,
		Filters:             e.filters.Criteria(),
		TightMonitoring:     tight,
		Scheduler: SchedulerState{
			Live:            e.sched.Live(),
			IntervalSeconds: int(e.sched.Interval().Seconds()),
		},
		LastError:   lastError,
		LastRefresh: lastRefresh,
	}
}

// StepView is one checklist step of an open resolution dialog.
type StepView struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

// ResolutionView is the step-completion state of an open resolution dialog.
type ResolutionView struct {
	Key         string     `json:"key"`
	Title       string     `json:"title"`
	Module      string     `json:"module"`
	Explanation string     `json:"explanation"`
	Escalation  string     `json:"escalation,omitempty"`
	Steps       []StepView `json:"steps"`
	Completed   int        `json:"completed"`
	Total       int        `json:"total"`
	Remaining   int        `json:"remaining"`
}

// Resolution returns the dialog view for an open resolution on key.
func (e *Engine) Resolution(key string) (ResolutionView, error) {
	completed, total, open := e.tracker.Progress(key)
	if !open {
		return ResolutionView{}, fmt.Errorf("no open resolution for alert %q", key)
	}
	alert, ok := e.findAlert(key)
	if !ok {
		return ResolutionView{}, fmt.Errorf("alert %q not in the current list", key)
	}
	entry := e.kb.Lookup(alert.Type)

	steps := make([]StepView, len(entry.Steps))
	for i, desc := range entry.Steps {
		steps[i] = StepView{Index: i, Description: desc, Done: e.tracker.StepDone(key, i)}
	}
	return ResolutionView{
		Key:         key,
		Title:       alert.Title,
		Module:      entry.Module,
		Explanation: entry.Explanation,
		Escalation:  entry.Escalation,
		Steps:       steps,
		Completed:   completed,
		Total:       total,
		Remaining:   total - completed,
	}, nil
}
