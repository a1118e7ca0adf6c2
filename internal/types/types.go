// Package types defines the shared data model for the MES dashboard engine:
// alerts, tabular rows, metrics snapshots, filter criteria, and the derived
// alert identity used throughout the HTTP API and internal processing.
package types

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Severity of an alert, ordered info < warning < critical.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank returns the ordering position of the severity. Unknown values rank
// below info.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// HealthLevel is the aggregate system health derived from the visible alerts.
type HealthLevel string

const (
	HealthOK       HealthLevel = "ok"
	HealthWarning  HealthLevel = "warning"
	HealthCritical HealthLevel = "critical"
)

// IdentifierKind names one of the three correlation identifiers shared
// between alerts and tabular rows.
type IdentifierKind string

const (
	IdentifierConveyor IdentifierKind = "conveyor_id"
	IdentifierPart     IdentifierKind = "part_id"
	IdentifierSourcePi IdentifierKind = "source_pi"
)

// IdentifierKinds returns the three kinds in evaluation order.
func IdentifierKinds() []IdentifierKind {
	return []IdentifierKind{IdentifierConveyor, IdentifierPart, IdentifierSourcePi}
}

// Alert is an immutable alert snapshot from the data source.
type Alert struct {
	Type         string     `json:"type"`
	Severity     Severity   `json:"severity"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Source       string     `json:"source,omitempty"`
	TriggerValue *float64   `json:"trigger_value,omitempty"`
	Threshold    *float64   `json:"threshold,omitempty"`
	EventTime    *time.Time `json:"event_time,omitempty"`
	ConveyorID   string     `json:"conveyor_id,omitempty"`
	PartID       string     `json:"part_id,omitempty"`
	SourcePi     string     `json:"source_pi,omitempty"`
}

// Key derives the stable identity for the alert from its type and the three
// correlation identifiers, missing identifiers treated as empty. The source
// provides no id field, so two alerts with identical type and identifiers
// collapse to the same key.
func (a Alert) Key() string {
	return a.Type + "|" + a.ConveyorID + "|" + a.PartID + "|" + a.SourcePi
}

// Identifier returns the alert's value for the given identifier kind, or ""
// when absent.
func (a Alert) Identifier(kind IdentifierKind) string {
	switch kind {
	case IdentifierConveyor:
		return a.ConveyorID
	case IdentifierPart:
		return a.PartID
	case IdentifierSourcePi:
		return a.SourcePi
	default:
		return ""
	}
}

// ConveyorOrigin reports whether the alert's type or source signals that it
// came from the conveyor subsystem.
func (a Alert) ConveyorOrigin() bool {
	return strings.HasPrefix(a.Type, "conveyor_") ||
		strings.Contains(strings.ToLower(a.Source), "conveyor")
}

// Row is one record of the active tabular dataset. The schema is discovered
// from the first row of each fetch result, so values stay loosely typed.
type Row map[string]interface{}

// Identifier returns the row's value for kind as a string, or "" when the
// field is absent or null.
func (r Row) Identifier(kind IdentifierKind) string {
	return r.Field(string(kind))
}

// Field returns the named field rendered as a string, or "" when absent or
// null.
func (r Row) Field(name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Columns returns the row's field names in sorted order for stable display.
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r))
	for k := range r {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// MetricsSnapshot maps counter names to values. It is replaced wholesale on
// each successful fetch cycle; there is no partial update.
type MetricsSnapshot map[string]float64

// View selects which tabular dataset is active.
type View string

const (
	ViewConveyors View = "conveyors"
	ViewQueue     View = "queue"
	ViewEvents    View = "events"
)

// Valid reports whether v names a known dataset.
func (v View) Valid() bool {
	switch v {
	case ViewConveyors, ViewQueue, ViewEvents:
		return true
	}
	return false
}

// FilterCriteria holds the three independent partial-match strings plus the
// queue-stage discriminator. An empty criterion matches everything.
type FilterCriteria struct {
	PartID     string `json:"part_id"`
	ConveyorID string `json:"conveyor_id"`
	SourcePi   string `json:"source_pi"`
	Stage      string `json:"stage"`
}

// Thresholds are the alert-detection parameters sent to the data source.
type Thresholds struct {
	StaleSeconds        int     `json:"stale_seconds"`
	SlowDurationSeconds float64 `json:"slow_duration_seconds"`
	WindowMinutes       int     `json:"window_minutes"`
}

// ThresholdsFor returns the preset for the tight-monitoring toggle. The two
// presets are fixed; individual fields are not configurable.
func ThresholdsFor(tight bool) Thresholds {
	if tight {
		return Thresholds{StaleSeconds: 5, SlowDurationSeconds: 2.0, WindowMinutes: 1}
	}
	return Thresholds{StaleSeconds: 30, SlowDurationSeconds: 3.0, WindowMinutes: 2}
}
