// sim/kinematics.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"slices"
	"time"

	av "github.com/mmp/sectorsim/aviation"
	"github.com/mmp/sectorsim/math"
)

const (
	MetersPerSecondToKnots = 1.9438444924406
	MetersPerSecondToFpm   = 196.850393700787
	NMToMeters             = 1852

	DefaultHistoryLength      = 20
	DefaultPreInboundDistance = 20 * NMToMeters
)

type KinematicConfig struct {
	Origin math.Origin
	// OwnedSectors are the sectors the controller is responsible for.
	OwnedSectors []av.SectorID
	// PreInboundDistance is the lateral distance outside an owned sector
	// within which a closing track is pre-inbound. Zero selects
	// DefaultPreInboundDistance.
	PreInboundDistance float64
	// ExitDistance, if positive, removes tracks that are farther than
	// this from the origin laterally.
	ExitDistance float64
	// HistoryLength is the number of history entries kept per track.
	// Zero selects DefaultHistoryLength; negative disables history.
	HistoryLength int
}

// KinematicStep returns a StepFunc that moves each track along its ENU
// velocity, records its history and recomputes its status from the
// owned sectors and its handoff state.
func KinematicStep(cfg KinematicConfig) StepFunc {
	if cfg.PreInboundDistance == 0 {
		cfg.PreInboundDistance = DefaultPreInboundDistance
	}
	if cfg.HistoryLength == 0 {
		cfg.HistoryLength = DefaultHistoryLength
	}

	return func(w World, dt time.Duration, s *Scheduler) World {
		w.Timestamp += dt

		owned := ownedGeometry(w.Sectors, cfg)

		tracks := make([]av.Track, 0, len(w.Tracks))
		for _, t := range w.Tracks {
			pos := moveTrack(&t, dt, w.Timestamp, cfg.Origin)
			if cfg.ExitDistance > 0 && pos.Length2D() > cfg.ExitDistance {
				continue
			}
			t.AppendHistory("sim", max(cfg.HistoryLength, 0))
			t.UpdateStatus(DeriveSignals(&t, pos, owned, cfg.PreInboundDistance))
			tracks = append(tracks, t)
		}
		w.Tracks = tracks

		return w
	}
}

func ownedGeometry(sc *av.SectorConfig, cfg KinematicConfig) []*av.SectorGeometry {
	var g []*av.SectorGeometry
	for _, id := range cfg.OwnedSectors {
		if s := sc.Sector(id); s != nil {
			g = append(g, s.Geometry(cfg.Origin))
		}
	}
	return g
}

// moveTrack integrates the track's velocity over dt, updates the derived
// state fields and returns its new local position.
func moveTrack(t *av.Track, dt time.Duration, now time.Duration, o math.Origin) math.LocalPoint {
	v := t.State.VelocityENU
	pos := math.ToLocal(t.State.Position, o).Add(v.Scale(dt.Seconds()))

	t.State.Position = math.ToGeodetic(pos, o)
	t.State.Timestamp = now
	t.State.GroundspeedKt = v.Length2D() * MetersPerSecondToKnots
	if t.State.GroundspeedKt > 0 {
		t.State.HeadingDeg = v.Heading()
	}
	t.State.VerticalSpeedFpm = v.Up * MetersPerSecondToFpm
	return pos
}

// DeriveSignals computes a track's status signals. pos is the track's
// position in the frame the sector geometry was computed in.
//
// A track inside an owned sector is inbound, or an intruder if it has no
// flight plan. Outside, it is pre-inbound if it is within
// preInboundDistance of an owned sector, between the sector's floor and
// ceiling, and closing on it. The remaining signals come from the
// handoff state.
func DeriveSignals(t *av.Track, pos math.LocalPoint, owned []*av.SectorGeometry, preInboundDistance float64) av.TrackStatusSignals {
	signals := av.TrackStatusSignals{
		IsAccepted:       t.Handoff.Accepted,
		HasInboundOffer:  t.Handoff.InboundOffered,
		HasOutboundOffer: t.Handoff.OutboundOffered,
	}

	for _, g := range owned {
		if g.Contains(pos) {
			if t.HasFlightPlan() {
				signals.IsInbound = true
			} else {
				signals.IsIntruder = true
			}
			continue
		}

		if pos.Up < g.FloorUp || pos.Up >= g.CeilingUp {
			continue
		}
		d, closest := g.Closest(pos)
		if d <= preInboundDistance && t.State.VelocityENU.Dot2D(closest.Sub(pos)) > 0 {
			signals.IsPreInbound = true
		}
	}
	return signals
}

///////////////////////////////////////////////////////////////////////////
// Spawning

type SpawnConfig struct {
	Origin math.Origin
	// Tracks are spawned at this lateral distance from the origin, headed
	// toward it with up to HeadingJitter degrees of deviation.
	Radius        float64
	HeadingJitter float64
	MinSpeedKt    float64
	MaxSpeedKt    float64
	MinAltitudeFt float64
	MaxAltitudeFt float64
	// FlightPlanFraction is the fraction of spawned tracks that have a
	// filed flight plan; the rest show up as intruders if they enter an
	// owned sector.
	FlightPlanFraction float64
	Airlines           []av.Airline
	AircraftTypes      []av.AircraftType
}

func (c SpawnConfig) Validate() error {
	switch {
	case c.Radius <= 0:
		return fmt.Errorf("radius %f: %w", c.Radius, ErrInvalidSpawnConfig)
	case c.MinSpeedKt <= 0 || c.MaxSpeedKt < c.MinSpeedKt:
		return fmt.Errorf("speeds %f-%f: %w", c.MinSpeedKt, c.MaxSpeedKt, ErrInvalidSpawnConfig)
	case c.MaxAltitudeFt < c.MinAltitudeFt:
		return fmt.Errorf("altitudes %f-%f: %w", c.MinAltitudeFt, c.MaxAltitudeFt, ErrInvalidSpawnConfig)
	case c.FlightPlanFraction < 0 || c.FlightPlanFraction > 1:
		return fmt.Errorf("flight plan fraction %f: %w", c.FlightPlanFraction, ErrInvalidSpawnConfig)
	}
	return nil
}

// Spawner creates new tracks using only the scheduler's random source, so
// a run with an injected source spawns the same traffic every time.
type Spawner struct {
	cfg  SpawnConfig
	next int
}

func NewSpawner(cfg SpawnConfig) (*Spawner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Spawner{cfg: cfg, next: 1}, nil
}

func between(s *Scheduler, a, b float64) float64 {
	return math.Lerp(s.SampleRandom(), a, b)
}

// Spawn returns the world with one new track added.
func (sp *Spawner) Spawn(w World, s *Scheduler) World {
	cfg := sp.cfg

	bearing := between(s, 0, 360)
	pos := math.HeadingVector(bearing, cfg.Radius)
	pos.Up = between(s, cfg.MinAltitudeFt, cfg.MaxAltitudeFt)*math.FeetToMeters - cfg.Origin.Reference.Altitude

	heading := math.NormalizeHeading(bearing + 180 + between(s, -cfg.HeadingJitter, cfg.HeadingJitter))
	speed := between(s, cfg.MinSpeedKt, cfg.MaxSpeedKt) / MetersPerSecondToKnots

	id := fmt.Sprintf("T%04d", sp.next)
	t := av.Track{
		ID:       id,
		Callsign: id,
		State: av.TrackState{
			Position:    math.ToGeodetic(pos, cfg.Origin),
			VelocityENU: math.HeadingVector(heading, speed),
			Timestamp:   w.Timestamp,
		},
	}
	sp.next++

	if len(cfg.Airlines) > 0 {
		al := cfg.Airlines[min(int(s.SampleRandom()*float64(len(cfg.Airlines))), len(cfg.Airlines)-1)]
		t.Airline = &al
		t.Callsign = fmt.Sprintf("%s%d", al.ICAO, 100+int(s.SampleRandom()*900))
	}
	if len(cfg.AircraftTypes) > 0 {
		ac := cfg.AircraftTypes[min(int(s.SampleRandom()*float64(len(cfg.AircraftTypes))), len(cfg.AircraftTypes)-1)]
		t.AircraftType = &ac
	}
	if s.SampleRandom() < cfg.FlightPlanFraction {
		t.Intent = &av.TrackIntent{
			FlightPlan: &av.FlightPlan{
				Callsign:         t.Callsign,
				CruiseAltitudeFt: (pos.Up + cfg.Origin.Reference.Altitude) * math.MetersToFeet,
			},
		}
	}

	w.Tracks = append(slices.Clone(w.Tracks), t)
	return w
}

// WithSpawner wraps step so that on average ratePerHour tracks are
// spawned per simulated hour.
func WithSpawner(step StepFunc, sp *Spawner, ratePerHour float64) StepFunc {
	return func(w World, dt time.Duration, s *Scheduler) World {
		if s.SampleRandom() < ratePerHour*dt.Hours() {
			w = sp.Spawn(w, s)
		}
		return step(w, dt, s)
	}
}
