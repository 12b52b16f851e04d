// aviation/model_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
	"testing"
	"time"
)

func TestAppendHistory(t *testing.T) {
	var tr Track
	for i := range 25 {
		tr.State.Timestamp = time.Duration(i) * time.Second
		tr.AppendHistory("sim", 20)
	}
	if len(tr.History) != 20 {
		t.Fatalf("expected 20 entries, got %d", len(tr.History))
	}
	if tr.History[0].State.Timestamp != 5*time.Second {
		t.Errorf("oldest entry is %s, expected 5s", tr.History[0].State.Timestamp)
	}
	if tr.History[19].State.Timestamp != 24*time.Second {
		t.Errorf("newest entry is %s, expected 24s", tr.History[19].State.Timestamp)
	}

	// Copies made before an append keep their own history.
	cp := tr
	tr.State.Timestamp = time.Hour
	tr.AppendHistory("sim", 20)
	if cp.History[19].State.Timestamp != 24*time.Second {
		t.Errorf("earlier copy's history was modified")
	}

	tr.AppendHistory("sim", 0)
	if tr.History != nil {
		t.Errorf("expected empty history with zero limit")
	}
}

func TestRoute(t *testing.T) {
	a := Fix{ID: "EXETR", Kind: WaypointFix}
	b := Fix{ID: "BHD", Kind: WaypointVOR}
	c := Fix{ID: "EGTE", Kind: WaypointAirport}
	r := Route{ID: "R1", Legs: []RouteLeg{{From: a, To: b}, {From: b, To: c}}}
	if s := r.String(); s != "EXETR BHD EGTE" {
		t.Errorf("got route %q", s)
	}
	if len((Route{}).Fixes()) != 0 {
		t.Errorf("expected no fixes for an empty route")
	}

	if err := WaypointKind("TACAN").Validate(); !errors.Is(err, ErrUnknownWaypointKind) {
		t.Errorf("expected ErrUnknownWaypointKind, got %v", err)
	}
	if err := WaypointRNAV.Validate(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestHasFlightPlan(t *testing.T) {
	var tr Track
	if tr.HasFlightPlan() {
		t.Errorf("nil intent has no flight plan")
	}
	tr.Intent = &TrackIntent{}
	if tr.HasFlightPlan() {
		t.Errorf("empty intent has no flight plan")
	}
	tr.Intent.FlightPlan = &FlightPlan{Callsign: "BAW123"}
	if !tr.HasFlightPlan() {
		t.Errorf("expected flight plan")
	}
}
