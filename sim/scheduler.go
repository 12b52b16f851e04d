// sim/scheduler.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mmp/sectorsim/log"
)

// DefaultFixedStep is the simulation update period (10Hz).
const DefaultFixedStep = 100 * time.Millisecond

// hitchSteps is the number of steps in a single Advance beyond which we
// log a warning; it usually means the driver stalled.
const hitchSteps = 100

// RandomSource returns values in [0,1). All randomness used by step
// functions goes through the scheduler's source so that runs can be
// replayed by injecting a seeded or constant one.
type RandomSource func() float64

func ConstantRandom(v float64) RandomSource {
	return func() float64 { return v }
}

type SchedulerConfig struct {
	// FixedStep is the duration of each step; zero selects
	// DefaultFixedStep.
	FixedStep time.Duration
	// Step is called once per fixed step, always with FixedStep.
	Step func(dt time.Duration)
	// Random defaults to ConstantRandom(0.5).
	Random RandomSource
	Logger *log.Logger
}

// Scheduler turns irregular elapsed times into a sequence of equal-sized
// steps. Elapsed time that doesn't add up to a full step is carried over
// to the next call, so no time is lost. It is not safe for concurrent
// use; Runner serializes access to it.
type Scheduler struct {
	fixedStep   time.Duration
	accumulator time.Duration
	step        func(time.Duration)
	random      RandomSource
	lg          *log.Logger
}

func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.FixedStep == 0 {
		cfg.FixedStep = DefaultFixedStep
	}
	if cfg.FixedStep < 0 {
		return nil, fmt.Errorf("%s: %w", cfg.FixedStep, ErrInvalidFixedStep)
	}
	if cfg.Step == nil {
		return nil, ErrNoStepFunc
	}
	if cfg.Random == nil {
		cfg.Random = ConstantRandom(0.5)
	}

	return &Scheduler{
		fixedStep: cfg.FixedStep,
		step:      cfg.Step,
		random:    cfg.Random,
		lg:        cfg.Logger,
	}, nil
}

// Advance adds elapsed to the accumulated time and runs as many fixed
// steps as it now covers, returning the number run. Non-positive elapsed
// times are ignored.
func (s *Scheduler) Advance(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}

	s.accumulator += elapsed
	if n := s.accumulator / s.fixedStep; n > hitchSteps {
		s.lg.Warn("unexpected hitch in update rate", slog.Duration("elapsed", elapsed),
			slog.Int64("steps", int64(n)))
	}

	steps := 0
	for s.accumulator >= s.fixedStep {
		// Consume the time before stepping so that the step sees the
		// interpolation fraction of the state it is producing.
		s.accumulator -= s.fixedStep
		s.step(s.fixedStep)
		steps++
	}
	return steps
}

// AdvanceMs is Advance for drivers that measure time in (possibly
// fractional) milliseconds.
func (s *Scheduler) AdvanceMs(ms float64) int {
	return s.Advance(time.Duration(ms * float64(time.Millisecond)))
}

// InterpolationFraction returns the progress toward the next step in
// [0,1). While steps are being run it reports the fraction that will
// remain once they are all done.
func (s *Scheduler) InterpolationFraction() float64 {
	return float64(s.accumulator%s.fixedStep) / float64(s.fixedStep)
}

func (s *Scheduler) SampleRandom() float64 {
	return s.random()
}

func (s *Scheduler) FixedStep() time.Duration {
	return s.fixedStep
}

// Accumulated returns the elapsed time not yet consumed by a step.
func (s *Scheduler) Accumulated() time.Duration {
	return s.accumulator
}
