// sim/timer.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type timerState struct {
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// StartTimer starts a goroutine that samples the clock every timer
// interval and advances the runner by the time elapsed since the
// previous sample. It does nothing if the timer is already running. The
// timer stops when ctx is cancelled or StopTimer is called.
func (r *Runner) StartTimer(ctx context.Context) {
	r.timer.mu.Lock()
	defer r.timer.mu.Unlock()

	if r.timer.done != nil {
		select {
		case <-r.timer.done:
			// It exited because ctx was cancelled; start a new one.
		default:
			return
		}
	}

	stop, done := make(chan struct{}), make(chan struct{})
	r.timer.stop, r.timer.done = stop, done
	go r.runTimer(ctx, stop, done)
}

func (r *Runner) runTimer(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.timerInterval)
	defer ticker.Stop()

	r.lg.Info("timer started", slog.Duration("interval", r.timerInterval))
	defer r.lg.Info("timer stopped")

	last := r.clock.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			now := r.clock.Now()
			elapsed := now.Sub(last)
			last = now
			r.AdvanceBy(elapsed)
		}
	}
}

// StopTimer stops the timer goroutine and waits for it to exit; an
// advance already in progress completes first and none start after
// StopTimer returns. It does nothing if the timer isn't running. It must
// not be called from a listener, which runs on the timer goroutine.
func (r *Runner) StopTimer() {
	r.timer.mu.Lock()
	defer r.timer.mu.Unlock()

	if r.timer.stop == nil {
		return
	}
	close(r.timer.stop)
	<-r.timer.done
	r.timer.stop, r.timer.done = nil, nil
}

func (r *Runner) TimerRunning() bool {
	r.timer.mu.Lock()
	defer r.timer.mu.Unlock()

	if r.timer.done == nil {
		return false
	}
	select {
	case <-r.timer.done:
		return false
	default:
		return true
	}
}

// RunTimer runs the timer until ctx is cancelled. It is meant to be run
// under an errgroup alongside the other parts of a program.
func (r *Runner) RunTimer(ctx context.Context) error {
	r.StartTimer(ctx)
	<-ctx.Done()
	r.StopTimer()
	return nil
}
