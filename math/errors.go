// math/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import "errors"

var (
	ErrInvalidPixelsPerMeter = errors.New("pixels per meter must be positive and finite")
	ErrInvalidZoom           = errors.New("zoom factor must be positive and finite")
)
