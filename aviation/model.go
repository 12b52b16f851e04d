// aviation/model.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmp/sectorsim/math"
)

///////////////////////////////////////////////////////////////////////////
// Navigation data

type WaypointKind string

const (
	WaypointFix     WaypointKind = "FIX"
	WaypointVOR     WaypointKind = "VOR"
	WaypointNDB     WaypointKind = "NDB"
	WaypointAirport WaypointKind = "AIRPORT"
	WaypointRNAV    WaypointKind = "RNAV"
)

func (k WaypointKind) Validate() error {
	switch k {
	case WaypointFix, WaypointVOR, WaypointNDB, WaypointAirport, WaypointRNAV:
		return nil
	default:
		return fmt.Errorf("%q: %w", string(k), ErrUnknownWaypointKind)
	}
}

// Waypoint unifies fixes and navaids.
type Waypoint struct {
	ID          string             `json:"id" yaml:"id"`
	Name        string             `json:"name" yaml:"name"`
	Kind        WaypointKind       `json:"kind" yaml:"kind"`
	Position    math.GeodeticPoint `json:"position" yaml:"position"`
	ElevationFt float64            `json:"elevation_ft,omitempty" yaml:"elevation_ft,omitempty"`
}

type Fix = Waypoint

type RouteLeg struct {
	From       Fix     `json:"from" yaml:"from"`
	To         Fix     `json:"to" yaml:"to"`
	Airway     string  `json:"airway,omitempty" yaml:"airway,omitempty"`
	DistanceNM float64 `json:"distance_nm,omitempty" yaml:"distance_nm,omitempty"`
}

type Route struct {
	ID              string     `json:"id" yaml:"id"`
	Name            string     `json:"name,omitempty" yaml:"name,omitempty"`
	Legs            []RouteLeg `json:"legs" yaml:"legs"`
	TotalDistanceNM float64    `json:"total_distance_nm,omitempty" yaml:"total_distance_nm,omitempty"`
}

// Fixes returns the route's fixes in order, without repeating the shared
// fix between consecutive legs.
func (r Route) Fixes() []Fix {
	var fixes []Fix
	for i, leg := range r.Legs {
		if i == 0 {
			fixes = append(fixes, leg.From)
		}
		fixes = append(fixes, leg.To)
	}
	return fixes
}

func (r Route) String() string {
	var ids []string
	for _, f := range r.Fixes() {
		ids = append(ids, f.ID)
	}
	return strings.Join(ids, " ")
}

// FlightPlan is the filed plan; it is kept separate from the live track
// intent.
type FlightPlan struct {
	Callsign            string  `json:"callsign" yaml:"callsign"`
	DepartureICAO       string  `json:"departure_icao" yaml:"departure_icao"`
	ArrivalICAO         string  `json:"arrival_icao" yaml:"arrival_icao"`
	AlternateICAO       string  `json:"alternate_icao,omitempty" yaml:"alternate_icao,omitempty"`
	Route               Route   `json:"route" yaml:"route"`
	CruiseAltitudeFt    float64 `json:"cruise_altitude_ft" yaml:"cruise_altitude_ft"`
	RequestedSpeedKt    float64 `json:"requested_speed_kt,omitempty" yaml:"requested_speed_kt,omitempty"`
	FiledEnrouteMinutes float64 `json:"filed_enroute_minutes,omitempty" yaml:"filed_enroute_minutes,omitempty"`
	Remarks             string  `json:"remarks,omitempty" yaml:"remarks,omitempty"`
}

///////////////////////////////////////////////////////////////////////////
// Aircraft and airlines

type AircraftPerformance struct {
	ClimbRateFpm     float64 `json:"climb_rate_fpm" yaml:"climb_rate_fpm"`
	DescentRateFpm   float64 `json:"descent_rate_fpm" yaml:"descent_rate_fpm"`
	CruiseSpeedKt    float64 `json:"cruise_speed_kt" yaml:"cruise_speed_kt"`
	MaxSpeedKt       float64 `json:"max_speed_kt" yaml:"max_speed_kt"`
	MinSpeedKt       float64 `json:"min_speed_kt" yaml:"min_speed_kt"`
	ServiceCeilingFt float64 `json:"service_ceiling_ft" yaml:"service_ceiling_ft"`
	TurnRateDegSec   float64 `json:"turn_rate_deg_sec,omitempty" yaml:"turn_rate_deg_sec,omitempty"`
}

type AircraftType struct {
	ICAO         string              `json:"icao" yaml:"icao"`
	Name         string              `json:"name" yaml:"name"`
	WakeCategory string              `json:"wake_category,omitempty" yaml:"wake_category,omitempty"`
	Performance  AircraftPerformance `json:"performance" yaml:"performance"`
}

type AirlineLivery struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	PrimaryColor   string `json:"primary_color,omitempty" yaml:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty" yaml:"secondary_color,omitempty"`
	TextureURL     string `json:"texture_url,omitempty" yaml:"texture_url,omitempty"`
}

// CallsignRule describes how flight numbers map to spoken callsigns.
type CallsignRule struct {
	AirlineICAO       string `json:"airline_icao" yaml:"airline_icao"`
	SpokenName        string `json:"spoken_name" yaml:"spoken_name"`
	Pattern           string `json:"pattern" yaml:"pattern"`
	AllowLeadingZeros bool   `json:"allow_leading_zeros,omitempty" yaml:"allow_leading_zeros,omitempty"`
}

type Airline struct {
	ICAO          string          `json:"icao" yaml:"icao"`
	IATA          string          `json:"iata,omitempty" yaml:"iata,omitempty"`
	Name          string          `json:"name" yaml:"name"`
	DefaultLivery *AirlineLivery  `json:"default_livery,omitempty" yaml:"default_livery,omitempty"`
	Liveries      []AirlineLivery `json:"liveries,omitempty" yaml:"liveries,omitempty"`
	CallsignRules []CallsignRule  `json:"callsign_rules,omitempty" yaml:"callsign_rules,omitempty"`
}

///////////////////////////////////////////////////////////////////////////
// Tracks

// TrackState is the latest observed state of a track. VelocityENU is in
// meters per second in the scenario's local frame.
type TrackState struct {
	Position         math.GeodeticPoint `json:"position" yaml:"position"`
	VelocityENU      math.LocalPoint    `json:"velocity_enu" yaml:"velocity_enu"`
	GroundspeedKt    float64            `json:"groundspeed_kt,omitempty" yaml:"groundspeed_kt,omitempty"`
	HeadingDeg       float64            `json:"heading_deg,omitempty" yaml:"heading_deg,omitempty"`
	VerticalSpeedFpm float64            `json:"vertical_speed_fpm,omitempty" yaml:"vertical_speed_fpm,omitempty"`
	Timestamp        time.Duration      `json:"timestamp" yaml:"timestamp"`
}

// TrackIntent holds controller clearances and the desired path.
type TrackIntent struct {
	FlightPlan        *FlightPlan `json:"flight_plan,omitempty" yaml:"flight_plan,omitempty"`
	AssignedRoute     *Route      `json:"assigned_route,omitempty" yaml:"assigned_route,omitempty"`
	TargetFixID       string      `json:"target_fix_id,omitempty" yaml:"target_fix_id,omitempty"`
	ClearedAltitudeFt float64     `json:"cleared_altitude_ft,omitempty" yaml:"cleared_altitude_ft,omitempty"`
	ClearedSpeedKt    float64     `json:"cleared_speed_kt,omitempty" yaml:"cleared_speed_kt,omitempty"`
	ClearedHeadingDeg float64     `json:"cleared_heading_deg,omitempty" yaml:"cleared_heading_deg,omitempty"`
}

type TrackHistoryEntry struct {
	State  TrackState `json:"state" yaml:"state"`
	Source string     `json:"source,omitempty" yaml:"source,omitempty"`
}

// HandoffState records where a track is in the handoff protocol. The
// protocol itself is outside the simulation; it only sets these flags.
type HandoffState struct {
	InboundOffered  bool `json:"inbound_offered,omitempty" yaml:"inbound_offered,omitempty"`
	OutboundOffered bool `json:"outbound_offered,omitempty" yaml:"outbound_offered,omitempty"`
	Accepted        bool `json:"accepted,omitempty" yaml:"accepted,omitempty"`
}

type Track struct {
	ID           string              `json:"id" yaml:"id"`
	Callsign     string              `json:"callsign" yaml:"callsign"`
	AircraftType *AircraftType       `json:"aircraft_type,omitempty" yaml:"aircraft_type,omitempty"`
	Airline      *Airline            `json:"airline,omitempty" yaml:"airline,omitempty"`
	State        TrackState          `json:"state" yaml:"state"`
	Intent       *TrackIntent        `json:"intent,omitempty" yaml:"intent,omitempty"`
	Status       TrackStatus         `json:"status" yaml:"status"`
	Handoff      HandoffState        `json:"handoff" yaml:"handoff"`
	History      []TrackHistoryEntry `json:"history,omitempty" yaml:"history,omitempty"`
}

// HasFlightPlan reports whether the track has filed intent; tracks
// without one are not known to the controller.
func (t *Track) HasFlightPlan() bool {
	return t.Intent != nil && t.Intent.FlightPlan != nil
}

// AppendHistory records the current state in the history, discarding the
// oldest entries so that no more than n are kept. The history slice is
// always freshly allocated so that earlier copies of the track that share
// its backing array are unaffected.
func (t *Track) AppendHistory(source string, n int) {
	if n <= 0 {
		t.History = nil
		return
	}
	start := max(0, len(t.History)+1-n)
	h := make([]TrackHistoryEntry, 0, min(len(t.History)+1, n))
	h = append(h, t.History[start:]...)
	t.History = append(h, TrackHistoryEntry{State: t.State, Source: source})
}

// UpdateStatus applies NextStatus to the track and returns whether the
// status changed.
func (t *Track) UpdateStatus(signals TrackStatusSignals) bool {
	next := NextStatus(t.Status, signals)
	changed := next != t.Status
	t.Status = next
	return changed
}
