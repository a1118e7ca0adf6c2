// Package dashboard provides the live data synchronization engine for the
// MES monitoring feed: scheduled fetch cycles against the data source,
// wholesale state commits, alert/row correlation, filter state, and the
// alert-resolution workflow.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/config"
	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/correlate"
	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/filters"
	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/knowledge"
	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/lifecycle"
	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/types"
	"github.com/jakeyac7-sketch/MES-Capstone-Team/pkg/backend"
)

// Prometheus metrics (registered once).
var (
	fetchCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mes_fetch_cycles_total",
			Help: "Total fetch cycles by result",
		},
		[]string{"result"},
	)
	fetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mes_fetch_failures_total",
			Help: "Total fetch failures by resource",
		},
		[]string{"resource"},
	)
	systemHealth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mes_system_health",
			Help: "Aggregate system health (0 ok, 1 warning, 2 critical)",
		},
	)
	unackedAlerts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mes_unacknowledged_alerts",
			Help: "Number of visible (unacknowledged) alerts",
		},
	)
	alertsAcked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mes_alerts_acknowledged_total",
			Help: "Total alerts acknowledged through the resolution workflow",
		},
	)
)

func init() {
	prometheus.MustRegister(fetchCycles)
	prometheus.MustRegister(fetchFailures)
	prometheus.MustRegister(systemHealth)
	prometheus.MustRegister(unackedAlerts)
	prometheus.MustRegister(alertsAcked)
}

// Fetcher is the data source dependency of the engine.
type Fetcher interface {
	FetchAll(ctx context.Context, q backend.Query) (*backend.Result, error)
}

// Engine owns the committed dashboard state and orchestrates fetch cycles,
// correlation, filter state, and the alert lifecycle.
type Engine struct {
	cfg     config.DashboardConfig
	log     *logrus.Logger
	fetcher Fetcher
	kb      *knowledge.Base

	filters *filters.State
	tracker *lifecycle.Tracker
	sched   *Scheduler

	generation uint64 // cycle counter, atomic

	mu          sync.RWMutex
	view        types.View
	tight       bool
	metrics     types.MetricsSnapshot
	alerts      []types.Alert
	rows        []types.Row
	lastError   string
	lastRefresh time.Time
}

// New creates an engine polling the given fetcher. The scheduler starts
// when Start is called.
func New(cfg config.DashboardConfig, fetcher Fetcher, kb *knowledge.Base, log *logrus.Logger) *Engine {
	e := &Engine{
		cfg:     cfg,
		log:     log,
		fetcher: fetcher,
		kb:      kb,
		filters: filters.New(),
		tracker: lifecycle.NewTracker(),
		view:    types.ViewConveyors,
		metrics: types.MetricsSnapshot{},
	}
	e.sched = NewScheduler(cfg.RefreshInterval, e.runCycle, log)
	return e
}

// Start enters Live refresh. Returns immediately.
func (e *Engine) Start(ctx context.Context) {
	e.sched.Start(ctx)
}

// Scheduler exposes the refresh scheduler for pause/resume/interval control.
func (e *Engine) Scheduler() *Scheduler { return e.sched }

// runCycle performs one fetch cycle and commits the result wholesale. Each
// completed cycle replaces all three resources together; commit order is
// completion order, so a fast manual refresh that finishes after a slower
// earlier cycle started still wins.
func (e *Engine) runCycle() {
	gen := atomic.AddUint64(&e.generation, 1)

	e.mu.RLock()
	q := backend.Query{
		View:       e.view,
		Limit:      e.cfg.RowLimit,
		Thresholds: types.ThresholdsFor(e.tight),
	}
	if e.view == types.ViewQueue {
		q.Stage = e.filters.Criteria().Stage
	}
	e.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.FetchTimeout)
	defer cancel()

	res, err := e.fetcher.FetchAll(ctx, q)
	if err != nil {
		fetchCycles.WithLabelValues("failure").Inc()
		var rerr *backend.ResourceError
		if errors.As(err, &rerr) {
			fetchFailures.WithLabelValues(rerr.Resource).Inc()
		} else {
			fetchFailures.WithLabelValues("unknown").Inc()
		}

		// Previous committed state is retained: stale but consistent.
		e.mu.Lock()
		e.lastError = err.Error()
		e.mu.Unlock()
		e.log.WithError(err).WithField("generation", gen).Warn("Fetch cycle failed, keeping previous state")
		return
	}

	fetchCycles.WithLabelValues("success").Inc()
	e.mu.Lock()
	e.metrics = res.Metrics
	e.alerts = res.Alerts
	e.rows = res.Rows
	e.lastError = ""
	e.lastRefresh = time.Now()
	e.mu.Unlock()

	e.publishHealth()
	e.log.WithFields(logrus.Fields{
		"generation": gen,
		"alerts":     len(res.Alerts),
		"rows":       len(res.Rows),
	}).Debug("Fetch cycle committed")
}

// publishHealth recomputes the health and unacknowledged-count gauges from
// the visible alert set.
func (e *Engine) publishHealth() {
	e.mu.RLock()
	alerts := e.alerts
	e.mu.RUnlock()

	visible := e.tracker.Visible(alerts)
	switch correlate.ComputeHealth(visible) {
	case types.HealthCritical:
		systemHealth.Set(2)
	case types.HealthWarning:
		systemHealth.Set(1)
	default:
		systemHealth.Set(0)
	}
	unackedAlerts.Set(float64(len(visible)))
}

// RefreshNow forces one immediate cycle. The automatic timer's phase is not
// reset.
func (e *Engine) RefreshNow() {
	e.sched.Kick()
}

// View returns the active tabular view.
func (e *Engine) View() types.View {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.view
}

// SetView switches the active tabular dataset and forces one immediate
// cycle so the user never waits out the interval. Committed rows are kept
// until the cycle lands.
func (e *Engine) SetView(v types.View) error {
	if !v.Valid() {
		return fmt.Errorf("unknown view %q", v)
	}
	e.mu.Lock()
	changed := e.view != v
	e.view = v
	e.mu.Unlock()
	if changed {
		e.sched.Kick()
	}
	return nil
}

// SetStage changes the queue-stage discriminator and forces one immediate
// cycle, since the stage is part of the server-side query.
func (e *Engine) SetStage(stage string) {
	if e.filters.Criteria().Stage == stage {
		return
	}
	e.filters.SetStage(stage)
	e.sched.Kick()
}

// TightMonitoring reports the current threshold preset toggle.
func (e *Engine) TightMonitoring() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tight
}

// SetTightMonitoring switches the alert-detection threshold preset and
// forces one immediate cycle.
func (e *Engine) SetTightMonitoring(on bool) {
	e.mu.Lock()
	changed := e.tight != on
	e.tight = on
	e.mu.Unlock()
	if changed {
		e.sched.Kick()
	}
}

// SetFilter sets one identifier filter. Filtering is client-side only, so no
// cycle is forced.
func (e *Engine) SetFilter(kind types.IdentifierKind, value string) {
	e.filters.SetField(kind, value)
}

// ClearFilters resets the three identifier filters, leaving the stage
// discriminator alone.
func (e *Engine) ClearFilters() {
	e.filters.ClearAll()
}

// AdoptFromCell handles an identifier-cell click: the cell's value is
// adopted verbatim into the corresponding filter. The returned flag tells
// the caller whether the click was consumed (and must not also select the
// row).
func (e *Engine) AdoptFromCell(column, value string) bool {
	return e.filters.AdoptFromCell(column, value)
}

// AdoptFromAlert handles the "filter to table" action on an alert,
// identified by its derived key. Conveyor-origin alerts also switch the
// active view to the conveyor view.
func (e *Engine) AdoptFromAlert(key string) error {
	alert, ok := e.findAlert(key)
	if !ok {
		return fmt.Errorf("alert %q not in the current list", key)
	}
	if e.filters.AdoptFromAlert(alert) {
		return e.SetView(types.ViewConveyors)
	}
	return nil
}

// FocusFirstConveyor adopts the identifiers of the first alert carrying a
// conveyor id and switches to the conveyor view. Reports whether such an
// alert existed.
func (e *Engine) FocusFirstConveyor() bool {
	e.mu.RLock()
	alerts := e.alerts
	e.mu.RUnlock()
	if !e.filters.FocusFirstConveyor(alerts) {
		return false
	}
	_ = e.SetView(types.ViewConveyors)
	return true
}

// FilterCriteria returns the current filter criteria.
func (e *Engine) FilterCriteria() types.FilterCriteria {
	return e.filters.Criteria()
}

// OpenResolution opens the resolution dialog for the alert with the given
// derived key, resetting any previous step progress, and returns the
// alert's runbook entry.
func (e *Engine) OpenResolution(key string) (knowledge.Entry, error) {
	alert, ok := e.findAlert(key)
	if !ok {
		return knowledge.Entry{}, fmt.Errorf("alert %q not in the current list", key)
	}
	entry := e.kb.Lookup(alert.Type)
	e.tracker.OpenResolution(key, len(entry.Steps))
	return entry, nil
}

// CloseResolution closes the dialog without acknowledging; progress is
// discarded.
func (e *Engine) CloseResolution(key string) {
	e.tracker.CloseResolution(key)
}

// ToggleStep flips one checklist step for the open resolution.
func (e *Engine) ToggleStep(key string, index int) error {
	return e.tracker.ToggleStep(key, index)
}

// Acknowledge completes the resolution workflow for the key. Rejected with
// a lifecycle.StepsRemainingError while the checklist is incomplete.
func (e *Engine) Acknowledge(key string) error {
	if err := e.tracker.Acknowledge(key); err != nil {
		return err
	}
	alertsAcked.Inc()
	e.publishHealth()
	e.log.WithField("alert_key", key).Info("Alert acknowledged")
	return nil
}

func (e *Engine) findAlert(key string) (types.Alert, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, a := range e.alerts {
		if a.Key() == key {
			return a, true
		}
	}
	return types.Alert{}, false
}
