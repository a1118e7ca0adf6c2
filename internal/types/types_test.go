package types

import "testing"

func TestAlert_Key_Stable(t *testing.T) {
	a := Alert{Type: "conveyor_slow", ConveyorID: "C7", PartID: "P1", SourcePi: "pi-03"}
	b := Alert{Type: "conveyor_slow", ConveyorID: "C7", PartID: "P1", SourcePi: "pi-03",
		Title: "different title", Message: "different message", Severity: SeverityCritical}
	if a.Key() != b.Key() {
		t.Errorf("same type+identifiers must derive the same key: %q vs %q", a.Key(), b.Key())
	}
}

func TestAlert_Key_ChangesWithAnyIdentifier(t *testing.T) {
	base := Alert{Type: "conveyor_slow", ConveyorID: "C7", PartID: "P1", SourcePi: "pi-03"}
	variants := []Alert{
		{Type: "conveyor_stale", ConveyorID: "C7", PartID: "P1", SourcePi: "pi-03"},
		{Type: "conveyor_slow", ConveyorID: "C8", PartID: "P1", SourcePi: "pi-03"},
		{Type: "conveyor_slow", ConveyorID: "C7", PartID: "P2", SourcePi: "pi-03"},
		{Type: "conveyor_slow", ConveyorID: "C7", PartID: "P1", SourcePi: "pi-04"},
	}
	for _, v := range variants {
		if v.Key() == base.Key() {
			t.Errorf("key should differ for %+v", v)
		}
	}
}

func TestAlert_Key_MissingIdentifiersEmpty(t *testing.T) {
	a := Alert{Type: "pi_offline"}
	if a.Key() != "pi_offline|||" {
		t.Errorf("key with missing identifiers = %q", a.Key())
	}
}

func TestSeverity_Rank_Ordering(t *testing.T) {
	if !(SeverityInfo.Rank() < SeverityWarning.Rank() && SeverityWarning.Rank() < SeverityCritical.Rank()) {
		t.Error("severity ranks must order info < warning < critical")
	}
	if Severity("bogus").Rank() >= SeverityInfo.Rank() {
		t.Error("unknown severity should rank below info")
	}
}

func TestAlert_ConveyorOrigin(t *testing.T) {
	cases := []struct {
		alert Alert
		want  bool
	}{
		{Alert{Type: "conveyor_slow"}, true},
		{Alert{Type: "part_stuck", Source: "Conveyor C3"}, true},
		{Alert{Type: "pi_offline", Source: "pi-07"}, false},
		{Alert{Type: "throughput_drop"}, false},
	}
	for _, c := range cases {
		if got := c.alert.ConveyorOrigin(); got != c.want {
			t.Errorf("ConveyorOrigin(%q/%q) = %v, want %v", c.alert.Type, c.alert.Source, got, c.want)
		}
	}
}

func TestRow_Identifier(t *testing.T) {
	r := Row{"part_id": "P9", "conveyor_id": nil, "weight": 4.5}
	if got := r.Identifier(IdentifierPart); got != "P9" {
		t.Errorf("part identifier = %q", got)
	}
	if got := r.Identifier(IdentifierConveyor); got != "" {
		t.Errorf("null identifier should be empty, got %q", got)
	}
	if got := r.Identifier(IdentifierSourcePi); got != "" {
		t.Errorf("absent identifier should be empty, got %q", got)
	}
}

func TestRow_Field_NonString(t *testing.T) {
	r := Row{"count": float64(12)}
	if got := r.Field("count"); got != "12" {
		t.Errorf("numeric field rendered as %q", got)
	}
}

func TestRow_Columns_Sorted(t *testing.T) {
	r := Row{"part_id": "P1", "conveyor_id": "C1", "stage": "paint"}
	cols := r.Columns()
	if len(cols) != 3 || cols[0] != "conveyor_id" || cols[1] != "part_id" || cols[2] != "stage" {
		t.Errorf("columns = %v", cols)
	}
}

func TestView_Valid(t *testing.T) {
	for _, v := range []View{ViewConveyors, ViewQueue, ViewEvents} {
		if !v.Valid() {
			t.Errorf("%q should be valid", v)
		}
	}
	if View("robots").Valid() {
		t.Error("unknown view should be invalid")
	}
}

func TestThresholdsFor_Presets(t *testing.T) {
	tight := ThresholdsFor(true)
	if tight.StaleSeconds != 5 || tight.SlowDurationSeconds != 2.0 || tight.WindowMinutes != 1 {
		t.Errorf("tight preset = %+v", tight)
	}
	normal := ThresholdsFor(false)
	if normal.StaleSeconds != 30 || normal.SlowDurationSeconds != 3.0 || normal.WindowMinutes != 2 {
		t.Errorf("normal preset = %+v", normal)
	}
}
