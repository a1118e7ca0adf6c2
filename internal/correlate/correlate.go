// Package correlate derives the aggregate system-health level and per-row
// match flags from the set of visible alerts. Visibility (the acknowledged
// overlay) is the caller's concern; these functions only see the alerts they
// are given.
package correlate

import (
	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/types"
)

// ComputeHealth returns critical if any visible alert is critical, else
// warning if any is warning, else ok.
func ComputeHealth(visible []types.Alert) types.HealthLevel {
	level := types.HealthOK
	for _, a := range visible {
		switch a.Severity {
		case types.SeverityCritical:
			return types.HealthCritical
		case types.SeverityWarning:
			level = types.HealthWarning
		}
	}
	return level
}

// RowMatches reports whether at least one visible alert shares a non-empty
// identifier value with the row on at least one of the three identifier
// kinds. Kinds are evaluated independently; a match on any single kind is
// sufficient. Values are compared as strings.
func RowMatches(row types.Row, visible []types.Alert) bool {
	for _, a := range visible {
		for _, kind := range types.IdentifierKinds() {
			rv := row.Identifier(kind)
			if rv == "" {
				continue
			}
			if av := a.Identifier(kind); av != "" && av == rv {
				return true
			}
		}
	}
	return false
}

// MatchFlags returns one match flag per row, in row order.
func MatchFlags(rows []types.Row, visible []types.Alert) []bool {
	flags := make([]bool, len(rows))
	for i, r := range rows {
		flags[i] = RowMatches(r, visible)
	}
	return flags
}
