// scope/scope.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package scope draws simulation snapshots on a terminal.
package scope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	av "github.com/mmp/sectorsim/aviation"
	"github.com/mmp/sectorsim/log"
	"github.com/mmp/sectorsim/math"
	"github.com/mmp/sectorsim/sim"
	"github.com/mmp/sectorsim/util"

	"github.com/gdamore/tcell/v2"
)

// ErrQuit is returned by Run when the user quits.
var ErrQuit = errors.New("Scope closed by user")

const (
	// Terminal cells are about twice as tall as they are wide, so the
	// projection works in units of half rows vertically.
	rowScale = 2

	zoomFactor     = 1.25
	panCells       = 4
	pickCells      = 3
	messageLines   = 3
	defaultMPerCol = 1000
)

type Config struct {
	Origin       math.Origin
	OwnedSectors []av.SectorID
	// FixedStep is the runner's step, used to extrapolate track
	// positions by the snapshot's interpolation fraction.
	FixedStep time.Duration
	// OnSpawn is called when the user asks for a new track.
	OnSpawn func()
	Logger  *log.Logger
}

type Scope struct {
	screen tcell.Screen
	cfg    Config
	lg     *log.Logger

	mu         sync.Mutex
	proj       *math.Projector
	fitted     bool
	snap       sim.Snapshot
	haveSnap   bool
	statuses   map[string]av.TrackStatus
	selected   string
	messages   *util.RingBuffer[string]
	lastWidth  int
	lastHeight int
}

func New(screen tcell.Screen, cfg Config) (*Scope, error) {
	if cfg.FixedStep == 0 {
		cfg.FixedStep = sim.DefaultFixedStep
	}

	proj, err := math.NewProjector(math.ProjectionConfig{PixelsPerMeter: 1. / defaultMPerCol, NorthUp: true})
	if err != nil {
		return nil, err
	}

	s := &Scope{
		screen:   screen,
		cfg:      cfg,
		lg:       cfg.Logger,
		proj:     proj,
		statuses: make(map[string]av.TrackStatus),
		messages: util.NewRingBuffer[string](messageLines),
	}
	s.screen.SetStyle(styleDefault)
	s.screen.EnableMouse()
	return s, nil
}

// AddMessage appends msg to the message area shown at the bottom of the
// scope.
func (s *Scope) AddMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addMessage(msg)
}

func (s *Scope) addMessage(msg string) {
	s.messages.Add(msg)
	s.lg.Info("scope message", slog.String("msg", msg))
}

// OnSnapshot records the snapshot and redraws the screen.
func (s *Scope) OnSnapshot(snap sim.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range snap.World.Tracks {
		if prev, ok := s.statuses[t.ID]; ok && prev != t.Status {
			s.addMessage(fmt.Sprintf("%s %s -> %s", t.Callsign, prev, t.Status))
		}
	}
	clear(s.statuses)
	for _, t := range snap.World.Tracks {
		s.statuses[t.ID] = t.Status
	}

	s.snap, s.haveSnap = snap, true
	s.draw()
}

// Projector returns the current projection.
func (s *Scope) Projector() *math.Projector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proj
}

// Selected returns the id of the track picked with the mouse, if any.
func (s *Scope) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// HandleEvent processes a terminal event and reports whether the scope
// should keep running.
func (s *Scope) HandleEvent(ev tcell.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := ev.(type) {
	case *tcell.EventResize:
		s.screen.Sync()

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			s.proj = s.proj.Pan(0, panCells*rowScale)
		case tcell.KeyDown:
			s.proj = s.proj.Pan(0, -panCells*rowScale)
		case tcell.KeyLeft:
			s.proj = s.proj.Pan(panCells, 0)
		case tcell.KeyRight:
			s.proj = s.proj.Pan(-panCells, 0)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return false
			case '+', '=':
				s.zoom(zoomFactor)
			case '-', '_':
				s.zoom(1 / zoomFactor)
			case ';':
				if s.cfg.OnSpawn != nil {
					s.cfg.OnSpawn()
					s.addMessage("spawning track")
				}
			}
		}

	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			s.pick(x, y)
		}
	}

	s.draw()
	return true
}

func (s *Scope) zoom(factor float64) {
	w, h := s.screen.Size()
	p, err := s.proj.Zoom(factor, math.ScreenPoint{X: float64(w) / 2, Y: float64(h*rowScale) / 2})
	if err != nil {
		s.lg.Warnf("zoom %f: %v", factor, err)
		return
	}
	s.proj = p
}

// pick selects the track closest to the given cell, if it's close enough.
func (s *Scope) pick(x, y int) {
	if !s.haveSnap || len(s.snap.World.Tracks) == 0 {
		return
	}

	pts := util.MapSlice(s.snap.World.Tracks, func(t av.Track) math.LocalPoint {
		p := s.trackPosition(&t)
		p.Up = 0
		return p
	})
	tree := math.BuildKDTree(pts)
	p := s.proj.ToLocal(math.ScreenPoint{X: float64(x) + 0.5, Y: float64(y*rowScale) + 1})
	idx, d := tree.Nearest(p)
	if idx == -1 || d > s.proj.PixelsToMeters(pickCells) {
		s.selected = ""
		return
	}

	t := &s.snap.World.Tracks[idx]
	s.selected = t.ID
	s.addMessage(fmt.Sprintf("%s %s %s", t.Callsign, t.Status, altitudeString(t)))
}

// trackPosition returns the track's position extrapolated by the
// snapshot's interpolation fraction.
func (s *Scope) trackPosition(t *av.Track) math.LocalPoint {
	dt := s.snap.Alpha * s.cfg.FixedStep.Seconds()
	return math.ToLocal(t.State.Position, s.cfg.Origin).Add(t.State.VelocityENU.Scale(dt))
}

// Run processes terminal events until the user quits, in which case it
// returns ErrQuit, or ctx is cancelled.
func (s *Scope) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go s.screen.ChannelEvents(events, quit)
	defer close(quit)

	s.mu.Lock()
	s.draw()
	s.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if ev == nil {
				return nil
			}
			if !s.HandleEvent(ev) {
				return ErrQuit
			}
		}
	}
}
