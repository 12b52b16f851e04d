// aviation/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "errors"

var (
	ErrDuplicateSectorID   = errors.New("Duplicate sector ID")
	ErrDuplicateTrackID    = errors.New("Duplicate track ID")
	ErrInvalidAltitudes    = errors.New("Sector floor must be below its ceiling")
	ErrInvalidBoundary     = errors.New("Invalid sector boundary")
	ErrInvalidTrackStatus  = errors.New("Invalid track status")
	ErrNoOrigin            = errors.New("Scenario has no origin")
	ErrUnknownFileFormat   = errors.New("Unknown scenario file format")
	ErrUnknownSector       = errors.New("Unknown sector")
	ErrUnknownWaypointKind = errors.New("Unknown waypoint kind")
)
