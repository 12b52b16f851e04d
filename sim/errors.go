// sim/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
)

var (
	ErrInvalidFixedStep     = errors.New("Fixed step must be positive")
	ErrInvalidTimerInterval = errors.New("Timer interval must be positive")
	ErrNoStepFunc           = errors.New("No step function provided")
	ErrInvalidSpawnConfig   = errors.New("Invalid spawn configuration")
)
