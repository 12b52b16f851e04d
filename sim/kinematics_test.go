// sim/kinematics_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"testing"
	"time"

	av "github.com/mmp/sectorsim/aviation"
	"github.com/mmp/sectorsim/math"
)

var testOrigin = math.MakeOrigin(50.5033, -3.476, 0)

// testSectors returns a 0.2 degree square sector, EX1, centered on the
// test origin from the surface to 10,000ft.
func testSectors() *av.SectorConfig {
	lat, lon, d := testOrigin.Reference.Latitude, testOrigin.Reference.Longitude, 0.1
	return &av.SectorConfig{
		Sectors: []av.Sector{{
			ID: "EX1",
			Boundary: math.GeoJSONPolygon{
				Type: "Polygon",
				Coordinates: [][]math.GeoJSONPosition{{
					{lon - d, lat - d}, {lon + d, lat - d}, {lon + d, lat + d}, {lon - d, lat + d}, {lon - d, lat - d},
				}},
			},
			CeilingFt: 10000,
		}},
	}
}

func testSpawnConfig() SpawnConfig {
	return SpawnConfig{
		Origin:             testOrigin,
		Radius:             40 * NMToMeters,
		HeadingJitter:      20,
		MinSpeedKt:         180,
		MaxSpeedKt:         280,
		MinAltitudeFt:      3000,
		MaxAltitudeFt:      9000,
		FlightPlanFraction: 0.8,
		Airlines:           []av.Airline{{ICAO: "BEE"}, {ICAO: "BAW"}},
		AircraftTypes:      []av.AircraftType{{ICAO: "DH8D"}},
	}
}

// trackAt returns a track at the given local position moving with
// velocity v (m/s).
func trackAt(id string, pos, v math.LocalPoint, withPlan bool) av.Track {
	t := av.Track{
		ID:    id,
		State: av.TrackState{Position: math.ToGeodetic(pos, testOrigin), VelocityENU: v},
	}
	if withPlan {
		t.Intent = &av.TrackIntent{FlightPlan: &av.FlightPlan{Callsign: id}}
	}
	return t
}

func stepWorld(t *testing.T, w World, step StepFunc, n int) World {
	t.Helper()
	s, err := NewScheduler(SchedulerConfig{Step: func(dt time.Duration) {}})
	if err != nil {
		t.Fatal(err)
	}
	for range n {
		w = step(w, DefaultFixedStep, s)
	}
	return w
}

func TestKinematicStepMovement(t *testing.T) {
	step := KinematicStep(KinematicConfig{Origin: testOrigin})
	w := World{Tracks: []av.Track{trackAt("T1", math.LocalPoint{Up: 1000}, math.LocalPoint{East: 100, Up: 5}, true)}}
	w0 := w
	initial := w.Tracks[0]

	w = stepWorld(t, w, step, 10)

	if w.Timestamp != time.Second {
		t.Errorf("timestamp %s, expected 1s", w.Timestamp)
	}
	tr := w.Tracks[0]
	p := math.ToLocal(tr.State.Position, testOrigin)
	if math.Abs(p.East-100) > 1e-3 || math.Abs(p.North) > 1e-3 || math.Abs(p.Up-1005) > 1e-6 {
		t.Errorf("position after 1s %+v", p)
	}
	if math.Abs(tr.State.HeadingDeg-90) > 1e-9 {
		t.Errorf("heading %f, expected 90", tr.State.HeadingDeg)
	}
	if math.Abs(tr.State.GroundspeedKt-194.38) > 0.01 {
		t.Errorf("groundspeed %f", tr.State.GroundspeedKt)
	}
	if math.Abs(tr.State.VerticalSpeedFpm-984.25) > 0.01 {
		t.Errorf("vertical speed %f", tr.State.VerticalSpeedFpm)
	}
	if tr.State.Timestamp != time.Second {
		t.Errorf("state timestamp %s", tr.State.Timestamp)
	}
	if len(tr.History) != 10 {
		t.Errorf("expected 10 history entries, got %d", len(tr.History))
	}

	// The input world is not modified.
	if w0.Timestamp != 0 || w0.Tracks[0].State != initial.State || w0.Tracks[0].History != nil {
		t.Errorf("input world was modified")
	}

	w = stepWorld(t, w, step, 30)
	if len(w.Tracks[0].History) != DefaultHistoryLength {
		t.Errorf("expected history bounded at %d, got %d", DefaultHistoryLength, len(w.Tracks[0].History))
	}
}

func TestKinematicStepExit(t *testing.T) {
	step := KinematicStep(KinematicConfig{Origin: testOrigin, ExitDistance: 1000, HistoryLength: -1})
	w := World{Tracks: []av.Track{
		trackAt("OUT", math.LocalPoint{East: 995}, math.LocalPoint{East: 100}, true),
		trackAt("IN", math.LocalPoint{East: 0}, math.LocalPoint{East: 100}, true),
	}}
	w = stepWorld(t, w, step, 1)
	if len(w.Tracks) != 1 || w.Tracks[0].ID != "IN" {
		t.Errorf("expected only IN to remain, got %+v", w.Tracks)
	}
	if w.Tracks[0].History != nil {
		t.Errorf("expected no history")
	}
}

func TestKinematicStepStatus(t *testing.T) {
	sectors := testSectors()
	g := sectors.Sector("EX1").Geometry(testOrigin)
	east := g.Extent.P1.East

	west := math.LocalPoint{East: -200}
	tests := []struct {
		name  string
		track av.Track
		want  av.TrackStatus
	}{
		{"far away", trackAt("T", math.LocalPoint{East: east + 50*NMToMeters, Up: 1000}, west, true), av.TrackStatusUnconcerned},
		{"closing", trackAt("T", math.LocalPoint{East: east + 5000, Up: 1000}, west, true), av.TrackStatusPreInbound},
		{"opening", trackAt("T", math.LocalPoint{East: east + 5000, Up: 1000}, west.Scale(-1), true), av.TrackStatusUnconcerned},
		{"closing above ceiling", trackAt("T", math.LocalPoint{East: east + 5000, Up: 5000}, west, true), av.TrackStatusUnconcerned},
		{"inside", trackAt("T", math.LocalPoint{Up: 1000}, west, true), av.TrackStatusInbound},
		{"inside without a plan", trackAt("T", math.LocalPoint{Up: 1000}, west, false), av.TrackStatusIntruder},
		{"above", trackAt("T", math.LocalPoint{Up: 5000}, west, false), av.TrackStatusUnconcerned},
	}

	step := KinematicStep(KinematicConfig{Origin: testOrigin, OwnedSectors: []string{"EX1"}})
	for _, tt := range tests {
		w := stepWorld(t, World{Sectors: sectors, Tracks: []av.Track{tt.track}}, step, 1)
		if got := w.Tracks[0].Status; got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}

	// Handoff state takes priority over geometry, and the status follows
	// it back when it is cleared.
	tr := trackAt("T", math.LocalPoint{Up: 1000}, west, true)
	tr.Handoff.OutboundOffered = true
	w := stepWorld(t, World{Sectors: sectors, Tracks: []av.Track{tr}}, step, 1)
	if w.Tracks[0].Status != av.TrackStatusOutboundOffer {
		t.Errorf("got %s, want OUTBOUND_OFFER", w.Tracks[0].Status)
	}
	w.Tracks[0].Handoff = av.HandoffState{Accepted: true, InboundOffered: true}
	w = stepWorld(t, w, step, 1)
	if w.Tracks[0].Status != av.TrackStatusAccepted {
		t.Errorf("got %s, want ACCEPTED", w.Tracks[0].Status)
	}
	w.Tracks[0].Handoff = av.HandoffState{}
	w = stepWorld(t, w, step, 1)
	if w.Tracks[0].Status != av.TrackStatusInbound {
		t.Errorf("got %s, want INBOUND", w.Tracks[0].Status)
	}

	// Unknown owned sectors are ignored.
	step = KinematicStep(KinematicConfig{Origin: testOrigin, OwnedSectors: []string{"NOPE"}})
	w = stepWorld(t, World{Sectors: sectors, Tracks: []av.Track{trackAt("T", math.LocalPoint{Up: 1000}, west, false)}}, step, 1)
	if w.Tracks[0].Status != av.TrackStatusUnconcerned {
		t.Errorf("got %s, want UNCONCERNED", w.Tracks[0].Status)
	}
}

func TestSpawner(t *testing.T) {
	if _, err := NewSpawner(SpawnConfig{}); !errors.Is(err, ErrInvalidSpawnConfig) {
		t.Errorf("expected ErrInvalidSpawnConfig, got %v", err)
	}
	bad := testSpawnConfig()
	bad.FlightPlanFraction = 2
	if _, err := NewSpawner(bad); !errors.Is(err, ErrInvalidSpawnConfig) {
		t.Errorf("expected ErrInvalidSpawnConfig, got %v", err)
	}

	sp, err := NewSpawner(testSpawnConfig())
	if err != nil {
		t.Fatal(err)
	}
	s, _ := NewScheduler(SchedulerConfig{Step: func(time.Duration) {}, Random: ConstantRandom(0.5)})

	w := sp.Spawn(World{}, s)
	w = sp.Spawn(w, s)
	if len(w.Tracks) != 2 || w.Tracks[0].ID != "T0001" || w.Tracks[1].ID != "T0002" {
		t.Fatalf("unexpected tracks %+v", w.Tracks)
	}

	tr := w.Tracks[0]
	p := math.ToLocal(tr.State.Position, testOrigin)
	if d := p.Length2D(); math.Abs(d-40*NMToMeters) > 1 {
		t.Errorf("spawned %f m from origin", d)
	}
	// With 0.5 everywhere the track spawns on bearing 180 headed due north.
	if math.Abs(tr.State.VelocityENU.Heading()) > 1e-6 && math.Abs(tr.State.VelocityENU.Heading()-360) > 1e-6 {
		t.Errorf("heading %f, expected 0", tr.State.VelocityENU.Heading())
	}
	if sp := tr.State.VelocityENU.Length2D() * MetersPerSecondToKnots; math.Abs(sp-230) > 1e-6 {
		t.Errorf("speed %f, expected 230kt", sp)
	}
	if alt := p.Up * math.MetersToFeet; math.Abs(alt-6000) > 1e-6 {
		t.Errorf("altitude %f, expected 6000ft", alt)
	}
	if tr.Callsign != "BAW550" || tr.Airline == nil || tr.AircraftType == nil || !tr.HasFlightPlan() {
		t.Errorf("unexpected track %+v", tr)
	}
}

func TestWithSpawner(t *testing.T) {
	sp, _ := NewSpawner(testSpawnConfig())
	base := KinematicStep(KinematicConfig{Origin: testOrigin})

	// Rate 0: never spawns.
	w := stepWorld(t, World{}, WithSpawner(base, sp, 0), 10)
	if len(w.Tracks) != 0 {
		t.Errorf("expected no tracks, got %d", len(w.Tracks))
	}
	// One per step.
	w = stepWorld(t, World{}, WithSpawner(base, sp, 36000), 10)
	if len(w.Tracks) != 10 {
		t.Errorf("expected 10 tracks, got %d", len(w.Tracks))
	}
}
