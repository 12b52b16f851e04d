// math/polygon.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"github.com/mmp/earcut-go"
)

// PointInPolygon checks whether the given point is inside the given
// polygon ring, using the horizontal components only. The ring may or may
// not repeat its first vertex at the end.
func PointInPolygon(p LocalPoint, ring []LocalPoint) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.North > p.North) != (b.North > p.North) &&
			p.East < a.East+(p.North-a.North)*(b.East-a.East)/(b.North-a.North) {
			inside = !inside
		}
	}
	return inside
}

// PointInRings applies the even-odd rule across an exterior ring and its
// holes, so points inside a hole are outside the polygon.
func PointInRings(p LocalPoint, rings [][]LocalPoint) bool {
	if len(rings) == 0 || !PointInPolygon(p, rings[0]) {
		return false
	}
	for _, hole := range rings[1:] {
		if PointInPolygon(p, hole) {
			return false
		}
	}
	return true
}

// PointSegmentDistance returns the horizontal distance from p to the
// segment vw, along with the closest point on the segment.
func PointSegmentDistance(p, v, w LocalPoint) (float64, LocalPoint) {
	// https://stackoverflow.com/a/1501725
	l2 := Sqr(v.East-w.East) + Sqr(v.North-w.North)
	if l2 == 0 {
		return p.Distance2D(v), v
	}
	t := Clamp(p.Sub(v).Dot2D(w.Sub(v))/l2, 0, 1)
	proj := v.Lerp(t, w)
	proj.Up = p.Up
	return p.Distance2D(proj), proj
}

// ClosestOnRings returns the horizontal distance from p to the nearest
// edge of any ring and the corresponding closest point. The distance is
// +Inf if there are no edges.
func ClosestOnRings(p LocalPoint, rings [][]LocalPoint) (float64, LocalPoint) {
	best, closest := gomath.Inf(1), p
	for _, ring := range rings {
		for i := range ring {
			j := (i + 1) % len(ring)
			if d, c := PointSegmentDistance(p, ring[i], ring[j]); d < best {
				best, closest = d, c
			}
		}
	}
	return best, closest
}

// Triangulate returns a triangulation of the polygon with the given
// exterior ring and holes; it is used for filled sector rendering.
func Triangulate(rings [][]LocalPoint) [][3]LocalPoint {
	if len(rings) == 0 {
		return nil
	}

	var poly earcut.Polygon
	for _, ring := range rings {
		// earcut wants open rings.
		if n := len(ring); n > 1 && ring[0] == ring[n-1] {
			ring = ring[:n-1]
		}
		vertices := make([]earcut.Vertex, len(ring))
		for i, v := range ring {
			vertices[i].P = [2]float64{v.East, v.North}
		}
		poly.Rings = append(poly.Rings, vertices)
	}

	var tris [][3]LocalPoint
	for _, tri := range earcut.Triangulate(poly) {
		var t [3]LocalPoint
		for i, v := range tri.Vertices {
			t[i] = LocalPoint{East: v.P[0], North: v.P[1]}
		}
		tris = append(tris, t)
	}
	return tris
}

// Extent2D is an axis-aligned horizontal bounding box in local meters.
type Extent2D struct {
	P0, P1 LocalPoint
}

func EmptyExtent2D() Extent2D {
	return Extent2D{
		P0: LocalPoint{East: gomath.Inf(1), North: gomath.Inf(1)},
		P1: LocalPoint{East: gomath.Inf(-1), North: gomath.Inf(-1)},
	}
}

func (e Extent2D) IsEmpty() bool {
	return e.P0.East > e.P1.East || e.P0.North > e.P1.North
}

func (e Extent2D) Width() float64  { return e.P1.East - e.P0.East }
func (e Extent2D) Height() float64 { return e.P1.North - e.P0.North }

func (e Extent2D) Center() LocalPoint {
	return e.P0.Lerp(0.5, e.P1)
}

// Union returns the extent grown to include p.
func (e Extent2D) Union(p LocalPoint) Extent2D {
	e.P0.East = min(e.P0.East, p.East)
	e.P0.North = min(e.P0.North, p.North)
	e.P1.East = max(e.P1.East, p.East)
	e.P1.North = max(e.P1.North, p.North)
	return e
}
