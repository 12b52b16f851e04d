// aviation/sector.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"encoding/binary"
	"fmt"
	gomath "math"

	"github.com/mmp/sectorsim/math"
	"github.com/mmp/sectorsim/util"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

type SectorID = string

type Sector struct {
	ID        SectorID            `json:"id" yaml:"id"`
	Name      string              `json:"name" yaml:"name"`
	Boundary  math.GeoJSONPolygon `json:"boundary" yaml:"boundary"`
	FloorFt   float64             `json:"floor_ft" yaml:"floor_ft"`
	CeilingFt float64             `json:"ceiling_ft" yaml:"ceiling_ft"`
	Frequency string              `json:"frequency,omitempty" yaml:"frequency,omitempty"`
}

// SectorSet is a named grouping of sectors, e.g. for split and merge
// staffing configurations.
type SectorSet struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	SectorIDs []SectorID `json:"sector_ids" yaml:"sector_ids"`
}

type SectorConfig struct {
	Sectors []Sector    `json:"sectors" yaml:"sectors"`
	Sets    []SectorSet `json:"sets,omitempty" yaml:"sets,omitempty"`
}

// Sector returns the sector with the given id, or nil if there is none.
func (sc *SectorConfig) Sector(id SectorID) *Sector {
	if sc == nil {
		return nil
	}
	for i := range sc.Sectors {
		if sc.Sectors[i].ID == id {
			return &sc.Sectors[i]
		}
	}
	return nil
}

// Set returns the sectors in the set with the given id.
func (sc *SectorConfig) Set(id string) ([]*Sector, error) {
	for _, set := range sc.Sets {
		if set.ID != id {
			continue
		}
		var sectors []*Sector
		for _, sid := range set.SectorIDs {
			s := sc.Sector(sid)
			if s == nil {
				return nil, fmt.Errorf("%s: %s: %w", id, sid, ErrUnknownSector)
			}
			sectors = append(sectors, s)
		}
		return sectors, nil
	}
	return nil, fmt.Errorf("%s: %w", id, ErrUnknownSector)
}

// Validate returns all of the problems with the configuration joined
// into a single error, or nil.
func (sc *SectorConfig) Validate() error {
	var e util.ErrorLogger
	sc.Check(&e)
	return e.Err()
}

// Check records each problem with the configuration in e.
func (sc *SectorConfig) Check(e *util.ErrorLogger) {
	ids := make(map[SectorID]bool)
	for _, s := range sc.Sectors {
		if s.ID == "" {
			e.ErrorString("sector %q has no id: %w", s.Name, ErrInvalidBoundary)
			continue
		}

		e.Push("sector " + s.ID)
		if ids[s.ID] {
			e.Error(ErrDuplicateSectorID)
		}
		ids[s.ID] = true

		if s.FloorFt >= s.CeilingFt {
			e.ErrorString("floor %.0f, ceiling %.0f: %w", s.FloorFt, s.CeilingFt, ErrInvalidAltitudes)
		}
		if err := validateBoundary(s.Boundary); err != nil {
			e.Error(err)
		}
		e.Pop()
	}

	for _, set := range sc.Sets {
		e.Push("set " + set.ID)
		for _, sid := range set.SectorIDs {
			if !ids[sid] {
				e.ErrorString("%s: %w", sid, ErrUnknownSector)
			}
		}
		e.Pop()
	}
}

func validateBoundary(poly math.GeoJSONPolygon) error {
	if poly.Type != "" && poly.Type != "Polygon" {
		return fmt.Errorf("GeoJSON type %q: %w", poly.Type, ErrInvalidBoundary)
	}
	if len(poly.Coordinates) == 0 {
		return fmt.Errorf("no rings: %w", ErrInvalidBoundary)
	}
	for i, ring := range poly.Coordinates {
		if len(ring) < 4 {
			return fmt.Errorf("ring %d has %d positions: %w", i, len(ring), ErrInvalidBoundary)
		}
		for j, p := range ring {
			if len(p) < 2 {
				return fmt.Errorf("ring %d position %d: %w", i, j, ErrInvalidBoundary)
			}
		}
		first, last := ring[0], ring[len(ring)-1]
		if first.Longitude() != last.Longitude() || first.Latitude() != last.Latitude() {
			return fmt.Errorf("ring %d is not closed: %w", i, ErrInvalidBoundary)
		}
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////
// SectorGeometry

// SectorGeometry is a sector's boundary in the local frame of a specific
// origin. FloorUp and CeilingUp are relative to the origin's altitude.
type SectorGeometry struct {
	SectorID  SectorID
	Rings     [][]math.LocalPoint
	FloorUp   float64
	CeilingUp float64
	Extent    math.Extent2D
	Triangles [][3]math.LocalPoint
}

func MakeSectorGeometry(s *Sector, o math.Origin) *SectorGeometry {
	g := &SectorGeometry{
		SectorID:  s.ID,
		Rings:     math.PolygonToLocal(s.Boundary, o, o.Reference.Altitude),
		FloorUp:   s.FloorFt*math.FeetToMeters - o.Reference.Altitude,
		CeilingUp: s.CeilingFt*math.FeetToMeters - o.Reference.Altitude,
		Extent:    math.EmptyExtent2D(),
	}
	if len(g.Rings) > 0 {
		for _, p := range g.Rings[0] {
			g.Extent = g.Extent.Union(p)
		}
	}
	g.Triangles = math.Triangulate(g.Rings)
	return g
}

// Inside2D reports whether p is laterally inside the sector, ignoring
// altitude.
func (g *SectorGeometry) Inside2D(p math.LocalPoint) bool {
	return math.PointInRings(p, g.Rings)
}

func (g *SectorGeometry) Contains(p math.LocalPoint) bool {
	return p.Up >= g.FloorUp && p.Up < g.CeilingUp && g.Inside2D(p)
}

// Closest returns the lateral distance from p to the sector boundary and
// the closest boundary point. The distance is zero when p is inside.
func (g *SectorGeometry) Closest(p math.LocalPoint) (float64, math.LocalPoint) {
	d, c := math.ClosestOnRings(p, g.Rings)
	if g.Inside2D(p) {
		return 0, c
	}
	return d, c
}

///////////////////////////////////////////////////////////////////////////
// GeometryCache

type geometryKey struct {
	id       SectorID
	origin   math.GeodeticPoint
	boundary uint64
}

// GeometryCache memoizes sector geometry per origin. Sectors are keyed by
// id and a hash of their boundary and altitudes, so that a redefined
// sector with a reused id is not served stale geometry.
type GeometryCache struct {
	cache *lru.Cache[geometryKey, *SectorGeometry]
}

const DefaultGeometryCacheSize = 256

func NewGeometryCache(size int) *GeometryCache {
	if size <= 0 {
		size = DefaultGeometryCacheSize
	}
	c, err := lru.New[geometryKey, *SectorGeometry](size)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &GeometryCache{cache: c}
}

func (gc *GeometryCache) Get(s *Sector, o math.Origin) *SectorGeometry {
	key := geometryKey{id: s.ID, origin: o.Reference, boundary: hashSector(s)}
	if g, ok := gc.cache.Get(key); ok {
		return g
	}
	g := MakeSectorGeometry(s, o)
	gc.cache.Add(key, g)
	return g
}

func (gc *GeometryCache) Len() int {
	return gc.cache.Len()
}

func (gc *GeometryCache) Purge() {
	gc.cache.Purge()
}

func hashSector(s *Sector) uint64 {
	h := xxhash.New()
	var buf [8]byte
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], gomath.Float64bits(f))
		h.Write(buf[:])
	}
	put(s.FloorFt)
	put(s.CeilingFt)
	for _, ring := range s.Boundary.Coordinates {
		put(float64(len(ring)))
		for _, p := range ring {
			for _, v := range p {
				put(v)
			}
		}
	}
	return h.Sum64()
}

var defaultGeometryCache = NewGeometryCache(DefaultGeometryCacheSize)

// Geometry returns the sector's geometry relative to o from the shared
// geometry cache.
func (s *Sector) Geometry(o math.Origin) *SectorGeometry {
	return defaultGeometryCache.Get(s, o)
}

// Contains reports whether p is inside the sector laterally and between
// its floor (inclusive) and ceiling (exclusive).
func (s *Sector) Contains(p math.GeodeticPoint, o math.Origin) bool {
	return s.Geometry(o).Contains(math.ToLocal(p, o))
}
