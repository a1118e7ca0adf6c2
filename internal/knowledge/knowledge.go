// Package knowledge holds the runbook table for alert types: which module an
// alert belongs to, what it means, the ordered corrective-action checklist,
// and where to escalate. The table is configuration data keyed by alert type;
// unrecognized types resolve to a single fallback entry.
package knowledge

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Entry describes the runbook for one alert type.
type Entry struct {
	Module      string   `yaml:"module" json:"module"`
	Explanation string   `yaml:"explanation" json:"explanation"`
	Steps       []string `yaml:"steps" json:"steps"`
	Escalation  string   `yaml:"escalation,omitempty" json:"escalation,omitempty"`
}

// Base is the runbook table. It starts from built-in defaults and can be
// overridden from a YAML file (see LoadFile and Watch).
type Base struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	fallback Entry
	log      *logrus.Logger
}

// NewBase creates a runbook table with the built-in MES entries.
func NewBase(log *logrus.Logger) *Base {
	return &Base{
		entries:  defaultEntries(),
		fallback: defaultFallback(),
		log:      log,
	}
}

// Lookup returns the entry for alertType, or the fallback entry when the
// type is unknown. An unknown type is not an error.
func (b *Base) Lookup(alertType string) Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if e, ok := b.entries[alertType]; ok {
		return e
	}
	return b.fallback
}

// StepCount returns the number of corrective-action steps for alertType.
func (b *Base) StepCount(alertType string) int {
	return len(b.Lookup(alertType).Steps)
}

// Types returns the known alert types.
func (b *Base) Types() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.entries))
	for t := range b.entries {
		out = append(out, t)
	}
	return out
}

type fileFormat struct {
	Fallback *Entry           `yaml:"fallback"`
	Entries  map[string]Entry `yaml:"entries"`
}

// LoadFile merges entries from a YAML runbook file over the built-in
// defaults. Entries present in the file replace same-typed defaults; types
// absent from the file keep their defaults.
func (b *Base) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read runbook file: %w", err)
	}
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return fmt.Errorf("parse runbook file: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if ff.Fallback != nil {
		b.fallback = *ff.Fallback
	}
	for t, e := range ff.Entries {
		b.entries[t] = e
	}
	b.log.WithFields(logrus.Fields{"path": path, "entries": len(ff.Entries)}).Info("Runbook file loaded")
	return nil
}

func defaultFallback() Entry {
	return Entry{
		Module:      "General",
		Explanation: "An alert of an unrecognized type was reported by the monitoring feed.",
		Steps: []string{
			"Review the alert message and source",
			"Check the affected equipment on the floor",
			"Record the alert type for runbook coverage",
		},
		Escalation: "Shift supervisor",
	}
}

func defaultEntries() map[string]Entry {
	return map[string]Entry{
		"conveyor_slow": {
			Module:      "Conveyor Transport",
			Explanation: "A conveyor segment's transit time exceeded the slow-duration threshold.",
			Steps: []string{
				"Check the conveyor belt for physical obstructions",
				"Verify the drive motor current is within range",
				"Inspect the photo-eye sensors at both ends of the segment",
				"Clear any backed-up parts downstream",
			},
			Escalation: "Maintenance on-call",
		},
		"conveyor_stale": {
			Module:      "Conveyor Transport",
			Explanation: "No movement events were received from the conveyor within the staleness window.",
			Steps: []string{
				"Confirm the conveyor is powered and running",
				"Check the segment's sensor wiring",
				"Restart the segment's edge reporter if it is unresponsive",
			},
			Escalation: "Maintenance on-call",
		},
		"part_stuck": {
			Module:      "Part Tracking",
			Explanation: "A tracked part has not advanced between stations within the correlation window.",
			Steps: []string{
				"Locate the part at its last reported station",
				"Check for a jam at the station's transfer point",
				"Re-scan the part tag to resume tracking",
			},
			Escalation: "Line lead",
		},
		"pi_offline": {
			Module:      "Edge Sensors",
			Explanation: "A sensor node stopped reporting within the staleness window.",
			Steps: []string{
				"Ping the node from the floor network",
				"Check the node's power supply and cabling",
				"Power-cycle the node if it is unreachable",
				"Verify events resume in the feed",
			},
			Escalation: "Controls engineering",
		},
		"throughput_drop": {
			Module:      "Line Throughput",
			Explanation: "Completed-part throughput fell below the expected rate for the window.",
			Steps: []string{
				"Compare station cycle times against standard",
				"Check for upstream starvation or downstream blocking",
				"Review operator staffing at the slowest station",
			},
			Escalation: "Production manager",
		},
		"queue_backlog": {
			Module:      "Work Queue",
			Explanation: "The number of parts waiting at a stage exceeded the backlog threshold.",
			Steps: []string{
				"Identify the stage holding the backlog",
				"Verify the stage's equipment is processing",
				"Rebalance work to a parallel station if available",
			},
			Escalation: "Line lead",
		},
	}
}
