// scope/draw.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scope

import (
	"fmt"
	gomath "math"
	"slices"

	av "github.com/mmp/sectorsim/aviation"
	"github.com/mmp/sectorsim/math"
	"github.com/mmp/sectorsim/util"

	"github.com/gdamore/tcell/v2"
)

var (
	styleDefault  = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleHeader   = styleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleMessage  = styleDefault.Foreground(tcell.ColorGray)
	styleBoundary = styleDefault.Foreground(tcell.ColorDarkGray)
	styleOwned    = styleDefault.Foreground(tcell.ColorSilver)
	styleOwnedBg  = styleDefault.Background(tcell.ColorNavy)
	styleHistory  = styleDefault.Foreground(tcell.ColorDimGray)
	styleSelected = styleDefault.Reverse(true)

	statusStyles = map[av.TrackStatus]tcell.Style{
		av.TrackStatusUnconcerned:   styleDefault.Foreground(tcell.ColorGray),
		av.TrackStatusPreInbound:    styleDefault.Foreground(tcell.ColorYellow),
		av.TrackStatusInbound:       styleDefault.Foreground(tcell.ColorLime),
		av.TrackStatusInboundOffer:  styleDefault.Foreground(tcell.ColorAqua).Bold(true),
		av.TrackStatusOutboundOffer: styleDefault.Foreground(tcell.ColorFuchsia).Bold(true),
		av.TrackStatusAccepted:      styleDefault.Foreground(tcell.ColorWhite),
		av.TrackStatusIntruder:      styleDefault.Foreground(tcell.ColorRed).Bold(true),
	}
)

const trackSymbol = '◆'

func statusStyle(s av.TrackStatus) tcell.Style {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return styleDefault
}

func altitudeString(t *av.Track) string {
	return fmt.Sprintf("%03d", int(t.State.Position.Altitude*math.MetersToFeet/100+0.5))
}

func (s *Scope) owned(id av.SectorID) bool {
	return slices.Contains(s.cfg.OwnedSectors, id)
}

// draw renders the most recent snapshot; s.mu must be held.
func (s *Scope) draw() {
	w, h := s.screen.Size()
	if w != s.lastWidth || h != s.lastHeight {
		s.fitted = false
		s.lastWidth, s.lastHeight = w, h
	}
	if !s.fitted {
		s.fit(w, h)
	}

	s.screen.Clear()

	if s.haveSnap {
		s.drawSectors(w, h)
		s.drawTracks(w, h)
	}
	s.drawHeader(w)
	s.drawMessages(h)

	s.screen.Show()
}

// fit sets the projection so that the sectors fill the screen, centered
// on their extent, or centered on the origin if there are none.
func (s *Scope) fit(w, h int) {
	if w == 0 || h == 0 {
		return
	}

	ext := math.EmptyExtent2D()
	if s.haveSnap && s.snap.World.Sectors != nil {
		for i := range s.snap.World.Sectors.Sectors {
			g := s.snap.World.Sectors.Sectors[i].Geometry(s.cfg.Origin)
			if !g.Extent.IsEmpty() {
				ext = ext.Union(g.Extent.P0).Union(g.Extent.P1)
			}
		}
	}

	cfg := s.proj.Config()
	center := math.LocalPoint{}
	if !ext.IsEmpty() && ext.Width() > 0 && ext.Height() > 0 {
		rows := max(1, h-1-messageLines)
		cfg.PixelsPerMeter = 0.9 * min(float64(w)/ext.Width(), float64(rows*rowScale)/ext.Height())
		center = ext.Center()
	}
	cfg.ScreenOrigin = math.ScreenPoint{}
	c := math.ToScreen(center, cfg)
	cfg.ScreenOrigin = math.ScreenPoint{X: float64(w)/2 - c.X, Y: float64(h*rowScale)/2 - c.Y}

	p, err := math.NewProjector(cfg)
	if err != nil {
		s.lg.Warnf("fit: %v", err)
		return
	}
	s.proj = p
	// Only consider ourselves fitted once there was something to fit to.
	s.fitted = s.haveSnap
}

// cell returns the terminal cell for a local point.
func (s *Scope) cell(p math.LocalPoint) (int, int) {
	sp := s.proj.ToScreen(p)
	return int(gomath.Floor(sp.X)), int(gomath.Floor(sp.Y / rowScale))
}

func (s *Scope) drawSectors(w, h int) {
	sectors := s.snap.World.Sectors
	if sectors == nil {
		return
	}

	// Fill owned sectors first so that boundaries are drawn over them.
	for i := range sectors.Sectors {
		sec := &sectors.Sectors[i]
		if !s.owned(sec.ID) {
			continue
		}
		for _, tri := range sec.Geometry(s.cfg.Origin).Triangles {
			s.fillTriangle(tri, w, h)
		}
	}

	for i := range sectors.Sectors {
		sec := &sectors.Sectors[i]
		g := sec.Geometry(s.cfg.Origin)
		style := styleBoundary
		if s.owned(sec.ID) {
			style = styleOwned
		}
		for _, ring := range g.Rings {
			for j := range len(ring) - 1 {
				x0, y0 := s.cell(ring[j])
				x1, y1 := s.cell(ring[j+1])
				drawLine(s.screen, x0, y0, x1, y1, '·', style)
			}
		}
		if !g.Extent.IsEmpty() {
			x, y := s.cell(g.Extent.Center())
			drawText(s.screen, x-len(sec.ID)/2, y, sec.ID, style)
		}
	}
}

// fillTriangle sets the background of the cells whose centers are inside
// the triangle.
func (s *Scope) fillTriangle(tri [3]math.LocalPoint, w, h int) {
	ext := math.EmptyExtent2D()
	var pts [3]math.ScreenPoint
	for i, p := range tri {
		pts[i] = s.proj.ToScreen(p)
		ext = ext.Union(math.LocalPoint{East: pts[i].X, North: pts[i].Y})
	}

	x0, x1 := max(0, int(gomath.Floor(ext.P0.East))), min(w-1, int(ext.P1.East))
	y0, y1 := max(0, int(gomath.Floor(ext.P0.North/rowScale))), min(h-1, int(ext.P1.North/rowScale))
	ring := []math.LocalPoint{
		{East: pts[0].X, North: pts[0].Y},
		{East: pts[1].X, North: pts[1].Y},
		{East: pts[2].X, North: pts[2].Y},
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c := math.LocalPoint{East: float64(x) + 0.5, North: float64(y*rowScale) + 1}
			if math.PointInPolygon(c, ring) {
				s.screen.SetContent(x, y, ' ', nil, styleOwnedBg)
			}
		}
	}
}

func (s *Scope) drawTracks(w, h int) {
	for i := range s.snap.World.Tracks {
		t := &s.snap.World.Tracks[i]

		for _, e := range t.History {
			x, y := s.cell(math.ToLocal(e.State.Position, s.cfg.Origin))
			s.screen.SetContent(x, y, '.', nil, styleHistory)
		}

		x, y := s.cell(s.trackPosition(t))
		if x < 0 || y < 0 || x >= w || y >= h {
			continue
		}

		style := statusStyle(t.Status)
		s.screen.SetContent(x, y, trackSymbol, nil, style)

		label := util.Select(t.Callsign != "", t.Callsign, t.ID)
		style = util.Select(t.ID == s.selected, styleSelected, style)
		drawText(s.screen, x+2, y, label, style)
		drawText(s.screen, x+2, y+1, altitudeString(t), style)
	}
}

func (s *Scope) drawHeader(w int) {
	text := "sectorsim"
	if s.haveSnap {
		text = fmt.Sprintf("Tick: %d  Time: %s  Tracks: %d  Alpha: %.2f  Scale: %.1f km/col",
			s.snap.Tick, s.snap.Timestamp, len(s.snap.World.Tracks), s.snap.Alpha,
			s.proj.PixelsToMeters(1)/1000)
	}
	drawText(s.screen, 0, 0, text, styleHeader)
	help := "+/- zoom  arrows pan  ; spawn  q quit"
	if w > len(text)+len(help)+2 {
		drawText(s.screen, w-len(help), 0, help, styleMessage)
	}
}

func (s *Scope) drawMessages(h int) {
	n := s.messages.Size()
	for i, msg := range s.messages.All() {
		drawText(s.screen, 0, h-n+i, msg, styleMessage)
	}
}

func drawText(scr tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		scr.SetContent(x, y, r, nil, style)
		x++
	}
}

// drawLine draws a line between two cells with Bresenham's algorithm.
func drawLine(scr tcell.Screen, x0, y0, x1, y1 int, r rune, style tcell.Style) {
	dx, dy := math.Abs(x1-x0), -math.Abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		scr.SetContent(x0, y0, r, nil, style)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}
