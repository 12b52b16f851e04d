// math/math_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"testing"

	"github.com/mmp/sectorsim/rand"
)

func TestToLocalKnownOffsets(t *testing.T) {
	o := MakeOrigin(50.5033, -3.476, 0)
	p := GeodeticPoint{Latitude: 50.5043, Longitude: -3.474, Altitude: 100}

	l := ToLocal(p, o)
	if Abs(l.North-111.2) > 0.5 {
		t.Errorf("north: got %f, expected ~111.2", l.North)
	}
	if Abs(l.East-141.4) > 0.5 {
		t.Errorf("east: got %f, expected ~141.4", l.East)
	}
	if l.Up != 100 {
		t.Errorf("up: got %f, expected 100", l.Up)
	}

	if z := ToLocal(o.Reference, o); z != (LocalPoint{}) {
		t.Errorf("origin should map to zero offsets, got %+v", z)
	}
}

func TestGeodeticRoundTrip(t *testing.T) {
	r := rand.Make()
	r.Seed(42)

	origins := []Origin{
		MakeOrigin(50.5033, -3.476, 0),
		MakeOrigin(40.6398, -73.7789, 4),
		MakeOrigin(-33.9461, 151.1772, 6),
		MakeOrigin(0, 0, 0),
		MakeOrigin(64.13, -21.94, 50),
	}

	for _, o := range origins {
		for range 100 {
			// Within roughly 50km of the origin.
			p := GeodeticPoint{
				Latitude:  o.Reference.Latitude + 0.9*(r.Float64()-0.5),
				Longitude: o.Reference.Longitude + 0.9*(r.Float64()-0.5),
				Altitude:  12000 * r.Float64(),
			}
			rt := ToGeodetic(ToLocal(p, o), o)
			if Abs(rt.Latitude-p.Latitude) > 1e-6 || Abs(rt.Longitude-p.Longitude) > 1e-6 ||
				Abs(rt.Altitude-p.Altitude) > 1e-6 {
				t.Errorf("origin %s: %+v round-tripped to %+v", o.Reference.DDString(), p, rt)
			}
		}
	}
}

func TestPolygonToLocal(t *testing.T) {
	o := MakeOrigin(50.5, -3.5, 0)
	poly := GeoJSONPolygon{
		Type: "Polygon",
		Coordinates: [][]GeoJSONPosition{
			{{-3.5, 50.5}, {-3.4, 50.5}, {-3.4, 50.6}, {-3.5, 50.5}},
			{{-3.45, 50.52, 300}, {-3.44, 50.52}, {-3.44, 50.53}},
		},
	}

	rings := PolygonToLocal(poly, o, 250)
	if len(rings) != 2 || len(rings[0]) != 4 || len(rings[1]) != 3 {
		t.Fatalf("ring shape mismatch: %v", rings)
	}

	for i, ring := range poly.Coordinates {
		for j, pos := range ring {
			expected := ToLocal(GeodeticPoint{Latitude: pos[1], Longitude: pos[0], Altitude: 250}, o)
			if rings[i][j] != expected {
				t.Errorf("ring %d vertex %d: got %+v, expected %+v", i, j, rings[i][j], expected)
			}
		}
	}

	// [lon, lat] ordering: the second vertex is due east of the origin.
	if v := rings[0][1]; v.East <= 0 || Abs(v.North) > 1e-9 {
		t.Errorf("expected due-east vertex, got %+v", v)
	}
}

func TestHeading(t *testing.T) {
	for _, hdg := range []float64{0, 45, 90, 180, 270, 359} {
		v := HeadingVector(hdg, 100)
		if got := v.Heading(); Abs(got-hdg) > 1e-9 && Abs(got-hdg) < 360-1e-9 {
			t.Errorf("heading %f: vector %+v has heading %f", hdg, v, got)
		}
		if Abs(v.Length2D()-100) > 1e-9 {
			t.Errorf("heading %f: length %f", hdg, v.Length2D())
		}
	}
	if h := NormalizeHeading(-90); h != 270 {
		t.Errorf("NormalizeHeading(-90) = %f", h)
	}
}

func TestIsFinite(t *testing.T) {
	if IsFinite(gomath.NaN()) || IsFinite(gomath.Inf(-1)) || !IsFinite(3) {
		t.Errorf("IsFinite misclassified values")
	}
}
