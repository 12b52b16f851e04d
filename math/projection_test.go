// math/projection_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"errors"
	gomath "math"
	"testing"
)

func TestProjectionValidate(t *testing.T) {
	for _, ppm := range []float64{0, -1, gomath.NaN(), gomath.Inf(1)} {
		cfg := DefaultProjection()
		cfg.PixelsPerMeter = ppm
		if _, err := NewProjector(cfg); !errors.Is(err, ErrInvalidPixelsPerMeter) {
			t.Errorf("pixels per meter %f: expected ErrInvalidPixelsPerMeter, got %v", ppm, err)
		}
	}
	if _, err := NewProjector(DefaultProjection()); err != nil {
		t.Errorf("default projection rejected: %v", err)
	}
}

func TestScreenRoundTrip(t *testing.T) {
	configs := []ProjectionConfig{
		DefaultProjection(),
		{PixelsPerMeter: 0.01, ScreenOrigin: ScreenPoint{X: 400, Y: 300}, NorthUp: true},
		{PixelsPerMeter: 3.7, ScreenOrigin: ScreenPoint{X: -12, Y: 80}, NorthUp: false},
	}
	points := []LocalPoint{
		{},
		{East: 1500, North: -2200, Up: 3000},
		{East: -48000.25, North: 51000.5, Up: -10},
	}

	for _, c := range configs {
		p, err := NewProjector(c)
		if err != nil {
			t.Fatalf("%+v: %v", c, err)
		}
		for _, pt := range points {
			rt := p.ToLocal(p.ToScreen(pt))
			if Abs(rt.East-pt.East) > 1e-9*max(1, Abs(pt.East)) ||
				Abs(rt.North-pt.North) > 1e-9*max(1, Abs(pt.North)) {
				t.Errorf("%+v: %+v round-tripped to %+v", c, pt, rt)
			}
			if rt.Up != 0 {
				t.Errorf("%+v: expected zero up after round trip, got %f", c, rt.Up)
			}
		}
	}
}

func TestNorthUp(t *testing.T) {
	north := LocalPoint{North: 10}

	up := DefaultProjection()
	if s := ToScreen(north, up); s.Y >= 0 {
		t.Errorf("north-up: north should be above origin, got y=%f", s.Y)
	}

	down := up
	down.NorthUp = false
	if s := ToScreen(north, down); s.Y <= 0 {
		t.Errorf("north-down: north should be below origin, got y=%f", s.Y)
	}
}

func TestScalarConversions(t *testing.T) {
	c := ProjectionConfig{PixelsPerMeter: 0.5}
	if px := MetersToPixels(100, c); px != 50 {
		t.Errorf("MetersToPixels: got %f", px)
	}
	if m := PixelsToMeters(50, c); m != 100 {
		t.Errorf("PixelsToMeters: got %f", m)
	}
}

func TestZoomKeepsAnchorFixed(t *testing.T) {
	p, err := NewProjector(ProjectionConfig{PixelsPerMeter: 0.02, ScreenOrigin: ScreenPoint{X: 40, Y: 12}, NorthUp: true})
	if err != nil {
		t.Fatal(err)
	}
	about := ScreenPoint{X: 17, Y: 5}
	before := p.ToLocal(about)

	z, err := p.Zoom(2, about)
	if err != nil {
		t.Fatal(err)
	}
	if z.Config().PixelsPerMeter != 0.04 {
		t.Errorf("zoom: got %f pixels/meter", z.Config().PixelsPerMeter)
	}
	after := z.ToLocal(about)
	if before.Distance2D(after) > 1e-9 {
		t.Errorf("zoom moved anchor from %+v to %+v", before, after)
	}

	if _, err := p.Zoom(0, about); !errors.Is(err, ErrInvalidZoom) {
		t.Errorf("expected ErrInvalidZoom, got %v", err)
	}

	pan := p.Pan(3, -4)
	if o := pan.Config().ScreenOrigin; o.X != 43 || o.Y != 8 {
		t.Errorf("pan: got origin %+v", o)
	}
}
