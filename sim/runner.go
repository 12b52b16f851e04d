// sim/runner.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmp/sectorsim/log"
	"github.com/mmp/sectorsim/util"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/mmp/sectorsim/sim"

// Command modifies the world outside of the step function, e.g. in
// response to user input. Posted commands are applied in order at the
// start of the next step, so they take effect at a step boundary like
// everything else.
type Command func(w World, s *Scheduler) World

// Clock is the source of wall-clock time for timer-driven advances.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

type RunnerConfig struct {
	World World
	// Step defaults to DefaultStep.
	Step StepFunc
	// Random defaults to ConstantRandom(0.5).
	Random RandomSource
	// FixedStep defaults to DefaultFixedStep.
	FixedStep time.Duration
	// TimerInterval is the polling period for StartTimer; it defaults to
	// the fixed step.
	TimerInterval time.Duration
	// Clock defaults to the system clock.
	Clock   Clock
	Logger  *log.Logger
	Metrics *Metrics
	// Tracer records a span per advance and per step. It defaults to a
	// tracer from the global otel provider.
	Tracer trace.Tracer
}

// Runner owns the world state and advances it with a Scheduler, publishing
// a Snapshot to its listeners after each step. Advances, whether from
// AdvanceBy or the timer, are serialized: steps are applied one at a time
// in the order elapsed time arrives.
type Runner struct {
	// advanceMu is held for the duration of an advance, including listener
	// delivery. world, tick and the scheduler are only written while it
	// is held.
	advanceMu util.LoggingMutex
	scheduler *Scheduler
	step      StepFunc

	// mu protects the fields below; it is never held while user code
	// (step functions, listeners) runs.
	mu         util.LoggingMutex
	world      World
	tick       uint64
	alpha      float64
	subs       map[*Subscription]struct{}
	byListener map[SnapshotListener]*Subscription
	pending    []Command

	timer         timerState
	timerInterval time.Duration
	clock         Clock

	lg      *log.Logger
	metrics *Metrics
	tracer  trace.Tracer
	// advanceCtx parents step spans; it is only valid while advanceMu
	// is held.
	advanceCtx context.Context
}

func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Step == nil {
		cfg.Step = DefaultStep
	}
	if cfg.Clock == nil {
		cfg.Clock = wallClock{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}

	r := &Runner{
		advanceMu:  util.LoggingMutex{Name: "runner advance"},
		mu:         util.LoggingMutex{Name: "runner state"},
		step:       cfg.Step,
		world:      cfg.World,
		subs:       make(map[*Subscription]struct{}),
		byListener: make(map[SnapshotListener]*Subscription),
		clock:      cfg.Clock,
		lg:         cfg.Logger,
		metrics:    cfg.Metrics,
		tracer:     cfg.Tracer,
		advanceCtx: context.Background(),
	}

	var err error
	r.scheduler, err = NewScheduler(SchedulerConfig{
		FixedStep: cfg.FixedStep,
		Step:      r.runStep,
		Random:    cfg.Random,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	r.timerInterval = cfg.TimerInterval
	if r.timerInterval == 0 {
		r.timerInterval = r.scheduler.FixedStep()
	} else if r.timerInterval < 0 {
		return nil, fmt.Errorf("%s: %w", cfg.TimerInterval, ErrInvalidTimerInterval)
	}

	r.metrics.setTrackCounts(r.world)
	r.lg.Info("created runner", slog.Duration("fixed_step", r.scheduler.FixedStep()),
		slog.Duration("timer_interval", r.timerInterval), slog.Int("tracks", len(r.world.Tracks)))

	return r, nil
}

// AdvanceBy feeds elapsed time to the scheduler. A snapshot is emitted
// after each step that runs; if no step runs, a single snapshot with the
// unchanged tick and the updated interpolation fraction is emitted. It
// returns the number of steps run.
func (r *Runner) AdvanceBy(elapsed time.Duration) int {
	r.advanceMu.Lock(r.lg)
	defer r.advanceMu.Unlock(r.lg)

	ctx, span := r.tracer.Start(context.Background(), "sim.advance",
		trace.WithAttributes(attribute.Int64("elapsed_us", elapsed.Microseconds())))
	defer span.End()
	r.advanceCtx = ctx
	defer func() { r.advanceCtx = context.Background() }()

	n := r.scheduler.Advance(elapsed)
	span.SetAttributes(attribute.Int("steps", n))
	if n == 0 {
		r.mu.Lock(r.lg)
		r.alpha = r.scheduler.InterpolationFraction()
		snap, listeners := r.snapshotLocked()
		r.mu.Unlock(r.lg)

		r.emit(snap, listeners)
	}
	return n
}

func (r *Runner) AdvanceByMs(ms float64) int {
	return r.AdvanceBy(time.Duration(ms * float64(time.Millisecond)))
}

// runStep is the scheduler's step callback; it runs with advanceMu held.
func (r *Runner) runStep(dt time.Duration) {
	r.mu.Lock(r.lg)
	cmds := r.pending
	r.pending = nil
	r.mu.Unlock(r.lg)

	_, span := r.tracer.Start(r.advanceCtx, "sim.step",
		trace.WithAttributes(attribute.Int("commands", len(cmds))))
	defer span.End()

	start := time.Now()
	w := r.world
	for _, cmd := range cmds {
		w = cmd(w, r.scheduler)
	}
	w = r.step(w, dt, r.scheduler)
	r.metrics.observeStep(time.Since(start))

	r.mu.Lock(r.lg)
	r.world = w
	r.tick++
	r.alpha = r.scheduler.InterpolationFraction()
	snap, listeners := r.snapshotLocked()
	r.mu.Unlock(r.lg)

	span.SetAttributes(attribute.Int64("tick", int64(snap.Tick)),
		attribute.Int("tracks", len(w.Tracks)))

	r.metrics.setTrackCounts(w)
	r.emit(snap, listeners)
}

func (r *Runner) snapshotLocked() (Snapshot, []*Subscription) {
	snap := Snapshot{
		Tick:      r.tick,
		Alpha:     r.alpha,
		Timestamp: r.world.Timestamp,
		World:     r.world,
	}
	listeners := make([]*Subscription, 0, len(r.subs))
	for sub := range r.subs {
		listeners = append(listeners, sub)
	}
	return snap, listeners
}

func (r *Runner) emit(snap Snapshot, listeners []*Subscription) {
	for _, sub := range listeners {
		if sub.active() {
			sub.listener.OnSnapshot(snap)
		}
	}
	r.metrics.snapshotEmitted()
}

// OnSnapshot registers l to receive snapshots. Registering a listener
// that is already registered returns its existing subscription.
func (r *Runner) OnSnapshot(l SnapshotListener) *Subscription {
	return r.subscribe(l, callerSource())
}

func (r *Runner) subscribe(l SnapshotListener, source string) *Subscription {
	r.mu.Lock(r.lg)
	defer r.mu.Unlock(r.lg)

	keyed := isComparable(l)
	if keyed {
		if sub, ok := r.byListener[l]; ok {
			return sub
		}
	}

	sub := &Subscription{runner: r, listener: l, source: source}
	sub.live.Store(true)
	r.subs[sub] = struct{}{}
	if keyed {
		r.byListener[l] = sub
	}
	r.metrics.setListeners(len(r.subs))
	r.lg.Debug("subscribed", slog.Any("subscription", sub))
	return sub
}

// OffSnapshot removes l if it is registered.
func (r *Runner) OffSnapshot(l SnapshotListener) {
	if !isComparable(l) {
		r.lg.Warnf("%T: listener is not comparable; use the Subscription to unsubscribe", l)
		return
	}

	r.mu.Lock(r.lg)
	sub := r.byListener[l]
	r.mu.Unlock(r.lg)

	sub.Unsubscribe()
}

// SubscribeChan returns a channel that receives snapshots. Delivery never
// blocks: when the channel's buffer is full the snapshot is dropped. The
// channel is closed when the subscription is cancelled.
func (r *Runner) SubscribeChan(buffer int) (<-chan Snapshot, *Subscription) {
	cl := &chanListener{ch: make(chan Snapshot, max(buffer, 1)), metrics: r.metrics}
	return cl.ch, r.subscribe(cl, callerSource())
}

func (r *Runner) unsubscribe(sub *Subscription) {
	r.mu.Lock(r.lg)
	_, ok := r.subs[sub]
	if ok {
		sub.live.Store(false)
		delete(r.subs, sub)
		if isComparable(sub.listener) {
			delete(r.byListener, sub.listener)
		}
		r.metrics.setListeners(len(r.subs))
		r.lg.Debug("unsubscribed", slog.Any("subscription", sub))
	}
	r.mu.Unlock(r.lg)

	if ok {
		if c, isChan := sub.listener.(*chanListener); isChan {
			c.close()
		}
	}
}

// Post queues cmd to be applied at the start of the next step.
func (r *Runner) Post(cmd Command) {
	r.mu.Lock(r.lg)
	defer r.mu.Unlock(r.lg)
	r.pending = append(r.pending, cmd)
}

func (r *Runner) World() World {
	r.mu.Lock(r.lg)
	defer r.mu.Unlock(r.lg)
	return r.world
}

func (r *Runner) Tick() uint64 {
	r.mu.Lock(r.lg)
	defer r.mu.Unlock(r.lg)
	return r.tick
}

// Alpha returns the interpolation fraction as of the most recent snapshot.
func (r *Runner) Alpha() float64 {
	r.mu.Lock(r.lg)
	defer r.mu.Unlock(r.lg)
	return r.alpha
}

// NumListeners returns the number of active subscriptions.
func (r *Runner) NumListeners() int {
	r.mu.Lock(r.lg)
	defer r.mu.Unlock(r.lg)
	return len(r.subs)
}

// Scheduler returns the runner's scheduler. Callers must not call its
// Advance method; use AdvanceBy.
func (r *Runner) Scheduler() *Scheduler {
	return r.scheduler
}
