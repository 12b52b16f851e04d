// sim/subscription.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"sync"
	"sync/atomic"
)

// SnapshotListener receives snapshots synchronously from the goroutine
// that advanced the runner. Listeners must not call AdvanceBy; they may
// call the runner's accessors and subscribe or unsubscribe.
type SnapshotListener interface {
	OnSnapshot(Snapshot)
}

// ListenerFunc adapts a function to a SnapshotListener. Since functions
// aren't comparable, it is used through a pointer (see Listen); the same
// pointer registered twice is a single listener.
type ListenerFunc func(Snapshot)

func (f *ListenerFunc) OnSnapshot(s Snapshot) { (*f)(s) }

func Listen(f func(Snapshot)) *ListenerFunc {
	lf := ListenerFunc(f)
	return &lf
}

// chanListener delivers snapshots to a buffered channel, dropping them
// when the consumer has fallen behind.
type chanListener struct {
	mu      sync.Mutex
	ch      chan Snapshot
	closed  bool
	metrics *Metrics
}

func (c *chanListener) OnSnapshot(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.ch <- s:
	default:
		c.metrics.droppedSnapshot()
	}
}

func (c *chanListener) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

// Subscription is the handle for a registered listener.
type Subscription struct {
	runner   *Runner
	listener SnapshotListener
	// source is the registration callsite, for debugging leaked
	// subscriptions.
	source string
	live   atomic.Bool
}

func (s *Subscription) active() bool {
	return s.live.Load()
}

func (s *Subscription) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("source", s.source),
		slog.String("listener", fmt.Sprintf("%T", s.listener)))
}

// Unsubscribe removes the listener. Once it returns no new deliveries to
// the listener are started. Calling it more than once has no effect.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	if r := s.runner; r != nil {
		r.unsubscribe(s)
	}
}

func isComparable(l SnapshotListener) bool {
	return reflect.TypeOf(l).Comparable()
}

func callerSource() string {
	_, fn, line, _ := runtime.Caller(2)
	return fmt.Sprintf("%s:%d", fn, line)
}
