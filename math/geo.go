// math/geo.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
)

// EarthRadiusMeters is the WGS84 equatorial radius. The local frame is a
// tangent plane at the origin, not an ellipsoid, so a single radius is
// used for both axes.
const EarthRadiusMeters = 6378137

const FeetToMeters = 0.3048
const MetersToFeet = 1 / FeetToMeters

///////////////////////////////////////////////////////////////////////////
// GeodeticPoint

// GeodeticPoint is a position on the Earth: latitude and longitude in
// degrees and altitude in meters.
type GeodeticPoint struct {
	Latitude  float64 `json:"lat" yaml:"lat" msgpack:"lat"`
	Longitude float64 `json:"lon" yaml:"lon" msgpack:"lon"`
	Altitude  float64 `json:"alt_m" yaml:"alt_m" msgpack:"alt"`
}

// DDString returns the position in decimal degrees, e.g.:
// (39.860901, -75.274864)
func (p GeodeticPoint) DDString() string {
	return fmt.Sprintf("(%f, %f)", p.Latitude, p.Longitude)
}

///////////////////////////////////////////////////////////////////////////
// LocalPoint

// LocalPoint is an East-North-Up offset in meters from some Origin. The
// origin isn't recorded in the value; callers must keep track of which
// origin a LocalPoint was computed against and never mix points from
// different origins.
type LocalPoint struct {
	East  float64 `json:"east_m" yaml:"east_m" msgpack:"e"`
	North float64 `json:"north_m" yaml:"north_m" msgpack:"n"`
	Up    float64 `json:"up_m" yaml:"up_m" msgpack:"u"`
}

// a+b
func (a LocalPoint) Add(b LocalPoint) LocalPoint {
	return LocalPoint{East: a.East + b.East, North: a.North + b.North, Up: a.Up + b.Up}
}

// a-b
func (a LocalPoint) Sub(b LocalPoint) LocalPoint {
	return LocalPoint{East: a.East - b.East, North: a.North - b.North, Up: a.Up - b.Up}
}

// a*s
func (a LocalPoint) Scale(s float64) LocalPoint {
	return LocalPoint{East: s * a.East, North: s * a.North, Up: s * a.Up}
}

// Dot2D returns the dot product of the horizontal components.
func (a LocalPoint) Dot2D(b LocalPoint) float64 {
	return a.East*b.East + a.North*b.North
}

// Length2D returns the horizontal length of a.
func (a LocalPoint) Length2D() float64 {
	return gomath.Sqrt(a.East*a.East + a.North*a.North)
}

// Distance2D returns the horizontal distance between a and b.
func (a LocalPoint) Distance2D(b LocalPoint) float64 {
	return a.Sub(b).Length2D()
}

// Lerp linearly interpolates x of the way between a and b. x==0
// corresponds to a, x==1 corresponds to b, etc.
func (a LocalPoint) Lerp(x float64, b LocalPoint) LocalPoint {
	return LocalPoint{
		East:  Lerp(x, a.East, b.East),
		North: Lerp(x, a.North, b.North),
		Up:    Lerp(x, a.Up, b.Up),
	}
}

// Heading returns the compass heading in degrees of the horizontal
// components of a, treating it as a direction vector.
func (a LocalPoint) Heading() float64 {
	return NormalizeHeading(Degrees(gomath.Atan2(a.East, a.North)))
}

// HeadingVector returns a horizontal vector of the given length pointing
// along the compass heading hdg (degrees).
func HeadingVector(hdg float64, length float64) LocalPoint {
	r := Radians(hdg)
	return LocalPoint{East: length * gomath.Sin(r), North: length * gomath.Cos(r)}
}

///////////////////////////////////////////////////////////////////////////
// Origin

// Origin is the reference point at which local coordinates are zero.
type Origin struct {
	Reference GeodeticPoint `json:"reference" yaml:"reference"`
}

func MakeOrigin(lat, lon, alt float64) Origin {
	return Origin{Reference: GeodeticPoint{Latitude: lat, Longitude: lon, Altitude: alt}}
}

func (o Origin) ToLocal(p GeodeticPoint) LocalPoint {
	return ToLocal(p, o)
}

func (o Origin) ToGeodetic(p LocalPoint) GeodeticPoint {
	return ToGeodetic(p, o)
}

// ToLocal converts a geodetic point to ENU meters relative to the origin
// using a flat-earth approximation. Accuracy is good to a few tens of
// kilometers from the origin and degrades toward the poles, where the
// cosine-scaled longitude term goes to zero. Longitudes are not wrapped:
// callers working near the antimeridian must normalize first.
func ToLocal(p GeodeticPoint, o Origin) LocalPoint {
	ref := o.Reference
	originLat := Radians(ref.Latitude)
	dLat := Radians(p.Latitude - ref.Latitude)
	dLon := Radians(p.Longitude - ref.Longitude)

	return LocalPoint{
		East:  dLon * gomath.Cos(originLat) * EarthRadiusMeters,
		North: dLat * EarthRadiusMeters,
		Up:    p.Altitude - ref.Altitude,
	}
}

// ToGeodetic is the inverse of ToLocal.
func ToGeodetic(p LocalPoint, o Origin) GeodeticPoint {
	ref := o.Reference
	originLat := Radians(ref.Latitude)
	dLat := p.North / EarthRadiusMeters
	dLon := p.East / (EarthRadiusMeters * gomath.Cos(originLat))

	return GeodeticPoint{
		Latitude:  ref.Latitude + Degrees(dLat),
		Longitude: ref.Longitude + Degrees(dLon),
		Altitude:  ref.Altitude + p.Up,
	}
}

///////////////////////////////////////////////////////////////////////////
// GeoJSON

// GeoJSONPosition is a GeoJSON position. Important: 0 is longitude, 1 is
// latitude; further elements (altitude) are ignored.
type GeoJSONPosition []float64

func (p GeoJSONPosition) Longitude() float64 { return p[0] }
func (p GeoJSONPosition) Latitude() float64  { return p[1] }

// GeoJSONPolygon holds the rings of a GeoJSON polygon: the first ring is
// the exterior and any others are holes.
type GeoJSONPolygon struct {
	Type        string              `json:"type" yaml:"type"`
	Coordinates [][]GeoJSONPosition `json:"coordinates" yaml:"coordinates"`
}

// PolygonToLocal converts every ring of the polygon to local coordinates,
// using defaultAltitude (meters) for the altitude of each vertex. This is
// the only place where GeoJSON's [longitude, latitude] ordering is
// translated.
func PolygonToLocal(poly GeoJSONPolygon, o Origin, defaultAltitude float64) [][]LocalPoint {
	rings := make([][]LocalPoint, len(poly.Coordinates))
	for i, ring := range poly.Coordinates {
		rings[i] = make([]LocalPoint, len(ring))
		for j, pos := range ring {
			rings[i][j] = ToLocal(GeodeticPoint{
				Latitude:  pos.Latitude(),
				Longitude: pos.Longitude(),
				Altitude:  defaultAltitude,
			}, o)
		}
	}
	return rings
}
