// sim/world.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"time"

	av "github.com/mmp/sectorsim/aviation"

	"github.com/brunoga/deep"
)

// World is the complete simulation state. Step functions produce a new
// World from the previous one rather than modifying it in place: the
// previous value may still be referenced by snapshots that listeners
// hold.
type World struct {
	Timestamp time.Duration    `msgpack:"timestamp"`
	Tracks    []av.Track       `msgpack:"tracks"`
	Sectors   *av.SectorConfig `msgpack:"sectors"`
}

// Track returns the track with the given id, or nil.
func (w *World) Track(id string) *av.Track {
	for i := range w.Tracks {
		if w.Tracks[i].ID == id {
			return &w.Tracks[i]
		}
	}
	return nil
}

// CountByStatus returns the number of tracks in each status.
func (w *World) CountByStatus() map[av.TrackStatus]int {
	counts := make(map[av.TrackStatus]int)
	for _, t := range w.Tracks {
		counts[t.Status]++
	}
	return counts
}

func (w World) Clone() World {
	return deep.MustCopy(w)
}

// StepFunc computes the world after one fixed step of dt. The scheduler
// is provided for SampleRandom.
type StepFunc func(w World, dt time.Duration, s *Scheduler) World

// DefaultStep only advances the world's timestamp.
func DefaultStep(w World, dt time.Duration, s *Scheduler) World {
	w.Timestamp += dt
	return w
}

// Snapshot is published to listeners after every step and after advances
// that didn't complete a step. The World is shared with the runner and
// with the other listeners and must be treated as read-only; use Clone
// to keep a private copy.
type Snapshot struct {
	Tick      uint64
	Alpha     float64
	Timestamp time.Duration
	World     World
}

func (s Snapshot) Clone() Snapshot {
	s.World = s.World.Clone()
	return s
}
