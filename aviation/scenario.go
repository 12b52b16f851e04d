// aviation/scenario.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mmp/sectorsim/math"
	"github.com/mmp/sectorsim/util"

	"gopkg.in/yaml.v3"
)

type FileFormat int

const (
	FormatJSON FileFormat = iota
	FormatYAML
)

func (f FileFormat) String() string {
	switch f {
	case FormatJSON:
		return "JSON"
	case FormatYAML:
		return "YAML"
	default:
		return fmt.Sprintf("FileFormat(%d)", int(f))
	}
}

// FormatForFilename picks the file format from the filename's extension.
func FormatForFilename(name string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%s: %w", name, ErrUnknownFileFormat)
	}
}

// Scenario is everything needed to start a simulation: the local frame
// origin, the sector definitions, which of those sectors the controller
// owns, and the initial traffic.
type Scenario struct {
	Name          string              `json:"name" yaml:"name"`
	Origin        *math.GeodeticPoint `json:"origin" yaml:"origin"`
	Sectors       SectorConfig        `json:"sectors" yaml:"sectors"`
	OwnedSectors  []SectorID          `json:"owned_sectors,omitempty" yaml:"owned_sectors,omitempty"`
	Waypoints     []Waypoint          `json:"waypoints,omitempty" yaml:"waypoints,omitempty"`
	AircraftTypes []AircraftType      `json:"aircraft_types,omitempty" yaml:"aircraft_types,omitempty"`
	Airlines      []Airline           `json:"airlines,omitempty" yaml:"airlines,omitempty"`
	Tracks        []Track             `json:"tracks,omitempty" yaml:"tracks,omitempty"`
}

func (s *Scenario) LocalOrigin() math.Origin {
	if s.Origin == nil {
		return math.Origin{}
	}
	return math.Origin{Reference: *s.Origin}
}

// Airline returns the airline with the given ICAO code, or nil.
func (s *Scenario) Airline(icao string) *Airline {
	if idx := slices.IndexFunc(s.Airlines, func(a Airline) bool { return a.ICAO == icao }); idx != -1 {
		return &s.Airlines[idx]
	}
	return nil
}

// AircraftType returns the aircraft type with the given ICAO designator, or nil.
func (s *Scenario) AircraftType(icao string) *AircraftType {
	if idx := slices.IndexFunc(s.AircraftTypes, func(a AircraftType) bool { return a.ICAO == icao }); idx != -1 {
		return &s.AircraftTypes[idx]
	}
	return nil
}

// Validate returns all of the problems with the scenario joined into a
// single error, or nil.
func (s *Scenario) Validate() error {
	var e util.ErrorLogger
	s.Check(&e)
	return e.Err()
}

// Check records each problem with the scenario in e.
func (s *Scenario) Check(e *util.ErrorLogger) {
	if s.Origin == nil {
		e.Error(ErrNoOrigin)
	}

	s.Sectors.Check(e)

	for _, id := range s.OwnedSectors {
		if s.Sectors.Sector(id) == nil {
			e.ErrorString("owned sector %s: %w", id, ErrUnknownSector)
		}
	}
	for _, wp := range s.Waypoints {
		if err := wp.Kind.Validate(); err != nil {
			e.ErrorString("waypoint %s: %w", wp.ID, err)
		}
	}

	ids := make(map[string]bool)
	for _, t := range s.Tracks {
		if ids[t.ID] {
			e.ErrorString("track %s: %w", t.ID, ErrDuplicateTrackID)
		}
		ids[t.ID] = true
	}
}

func decode[T any](r io.Reader, format FileFormat, out *T) error {
	switch format {
	case FormatJSON:
		return util.UnmarshalJSON(r, out)
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(out); err != nil && err != io.EOF {
			return err
		}
		return nil
	default:
		return fmt.Errorf("%s: %w", format, ErrUnknownFileFormat)
	}
}

// LoadSectorConfig reads and validates a sector configuration.
func LoadSectorConfig(r io.Reader, format FileFormat) (*SectorConfig, error) {
	var sc SectorConfig
	if err := decode(r, format, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// LoadScenario reads and validates a scenario.
func LoadScenario(r io.Reader, format FileFormat) (*Scenario, error) {
	var s Scenario
	if err := decode(r, format, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadScenarioFile(filename string) (*Scenario, error) {
	format, err := FormatForFilename(filename)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	s, err := LoadScenario(bytes.NewReader(b), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return s, nil
}
