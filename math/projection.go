// math/projection.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import "fmt"

// ScreenPoint is a position in screen pixels.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ProjectionConfig describes a linear mapping from local ENU meters to
// screen pixels. When NorthUp is set, increasing north maps to decreasing
// screen y, which is what top-left-origin screens want.
type ProjectionConfig struct {
	PixelsPerMeter float64     `json:"pixels_per_meter"`
	ScreenOrigin   ScreenPoint `json:"screen_origin"`
	NorthUp        bool        `json:"north_up"`
}

func DefaultProjection() ProjectionConfig {
	return ProjectionConfig{
		PixelsPerMeter: 1,
		NorthUp:        true,
	}
}

func (c ProjectionConfig) Validate() error {
	if !(c.PixelsPerMeter > 0) || !IsFinite(c.PixelsPerMeter) {
		return fmt.Errorf("%g: %w", c.PixelsPerMeter, ErrInvalidPixelsPerMeter)
	}
	return nil
}

func (c ProjectionConfig) yFactor() float64 {
	if c.NorthUp {
		return -1
	}
	return 1
}

// ToScreen projects p to the screen; the up component is ignored.
func ToScreen(p LocalPoint, c ProjectionConfig) ScreenPoint {
	return ScreenPoint{
		X: c.ScreenOrigin.X + p.East*c.PixelsPerMeter,
		Y: c.ScreenOrigin.Y + p.North*c.PixelsPerMeter*c.yFactor(),
	}
}

// ScreenToLocal is the inverse of ToScreen. Screen space is 2D, so Up is
// always zero. c must have been validated; a non-positive PixelsPerMeter
// gives infinities or NaNs.
func ScreenToLocal(p ScreenPoint, c ProjectionConfig) LocalPoint {
	return LocalPoint{
		East:  (p.X - c.ScreenOrigin.X) / c.PixelsPerMeter,
		North: (p.Y - c.ScreenOrigin.Y) / (c.PixelsPerMeter * c.yFactor()),
	}
}

// MetersToPixels scales a length, e.g. for stroke widths or range rings.
func MetersToPixels(m float64, c ProjectionConfig) float64 {
	return m * c.PixelsPerMeter
}

func PixelsToMeters(px float64, c ProjectionConfig) float64 {
	return px / c.PixelsPerMeter
}

///////////////////////////////////////////////////////////////////////////
// Projector

// Projector holds a ProjectionConfig that has been checked at
// construction, so its conversions can't divide by zero.
type Projector struct {
	cfg ProjectionConfig
}

func NewProjector(cfg ProjectionConfig) (*Projector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Projector{cfg: cfg}, nil
}

func (p *Projector) Config() ProjectionConfig {
	return p.cfg
}

func (p *Projector) ToScreen(pt LocalPoint) ScreenPoint {
	return ToScreen(pt, p.cfg)
}

func (p *Projector) ToLocal(pt ScreenPoint) LocalPoint {
	return ScreenToLocal(pt, p.cfg)
}

func (p *Projector) MetersToPixels(m float64) float64 {
	return MetersToPixels(m, p.cfg)
}

func (p *Projector) PixelsToMeters(px float64) float64 {
	return PixelsToMeters(px, p.cfg)
}

// Zoom returns a projector scaled by factor that keeps the local point
// under the screen position about fixed.
func (p *Projector) Zoom(factor float64, about ScreenPoint) (*Projector, error) {
	if !(factor > 0) || !IsFinite(factor) {
		return nil, fmt.Errorf("%g: %w", factor, ErrInvalidZoom)
	}

	anchor := p.ToLocal(about)
	cfg := p.cfg
	cfg.PixelsPerMeter *= factor
	// Solve for the screen origin that maps anchor back to about.
	cfg.ScreenOrigin = ScreenPoint{}
	s := ToScreen(anchor, cfg)
	cfg.ScreenOrigin = ScreenPoint{X: about.X - s.X, Y: about.Y - s.Y}

	return NewProjector(cfg)
}

// Pan returns a projector with the screen origin shifted by (dx, dy)
// pixels.
func (p *Projector) Pan(dx, dy float64) *Projector {
	cfg := p.cfg
	cfg.ScreenOrigin.X += dx
	cfg.ScreenOrigin.Y += dy
	return &Projector{cfg: cfg}
}
