// util/sync.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"log/slog"
	gomath "math"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/mmp/sectorsim/log"

	"github.com/shirou/gopsutil/v3/cpu"
)

///////////////////////////////////////////////////////////////////////////
// LoggingMutex

var (
	heldMutexesMutex sync.Mutex
	heldMutexes      = make(map[*LoggingMutex]struct{})
)

const (
	// lockTimeout is how long Lock waits before reporting a likely
	// deadlock.
	lockTimeout = 10 * time.Second
	// longHold is the duration after which waiting for or holding a mutex
	// is logged as a warning.
	longHold = time.Second
)

// LoggingMutex is a sync.Mutex that records where it was acquired, logs
// acquisition and release at debug level, and complains when it is held
// or waited on for too long. Name identifies it in log messages.
type LoggingMutex struct {
	sync.Mutex
	Name string

	acq      time.Time
	acqStack []log.StackFrame
}

func (l *LoggingMutex) Lock(lg *log.Logger) {
	tryTime := time.Now()
	lg.Debug("attempting to acquire mutex", slog.Any("mutex", l))

	if !l.Mutex.TryLock() {
		locked := make(chan struct{}, 1)
		go func() {
			l.Mutex.Lock()
			locked <- struct{}{}
		}()

		select {
		case <-locked:
		case <-time.After(lockTimeout):
			reportStuck(l, lg)
			<-locked
		}
	}

	heldMutexesMutex.Lock()
	heldMutexes[l] = struct{}{}
	heldMutexesMutex.Unlock()

	l.acq = time.Now()
	l.acqStack = log.Callstack(l.acqStack)
	w := l.acq.Sub(tryTime)
	lg.Debug("acquired mutex", slog.Any("mutex", l), slog.Duration("wait", w))
	if w > longHold {
		lg.Warn("long wait to acquire mutex", slog.Any("mutex", l), slog.Duration("wait", w))
	}
}

// reportStuck logs the mutexes that are currently held along with the
// system load, which is usually enough to tell a deadlock from a
// starved process.
func reportStuck(l *LoggingMutex, lg *log.Logger) {
	heldMutexesMutex.Lock()
	var held []string
	for m := range heldMutexes {
		held = append(held, m.Name)
	}
	heldMutexesMutex.Unlock()
	slices.Sort(held)

	lg.Error("unable to acquire mutex", slog.Duration("timeout", lockTimeout),
		slog.Any("mutex", l), slog.Any("held_mutexes", held))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	if usage, err := cpu.Percent(time.Second, false); err == nil && len(usage) > 0 {
		lg.Errorf("CPU: %d%% alloc: %dMB sys mem: %dMB goroutines: %d",
			int(gomath.Round(usage[0])), m.Alloc/(1024*1024), m.Sys/(1024*1024),
			runtime.NumGoroutine())
	}
}

func (l *LoggingMutex) Unlock(lg *log.Logger) {
	heldMutexesMutex.Lock()
	// Held until we return so that the held set stays consistent with
	// anything logged below.
	defer heldMutexesMutex.Unlock()

	if _, ok := heldMutexes[l]; !ok {
		lg.Error("mutex not held", slog.Any("mutex", l))
	}
	delete(heldMutexes, l)

	if d := time.Since(l.acq); d > longHold {
		lg.Warn("mutex held for a long time", slog.Any("mutex", l), slog.Duration("held", d))
	}

	l.acq = time.Time{}
	l.acqStack = l.acqStack[:0]
	l.Mutex.Unlock()

	lg.Debug("released mutex", slog.String("mutex", l.Name))
}

func (l *LoggingMutex) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", l.Name),
		slog.Time("acq", l.acq),
		slog.Duration("held", time.Since(l.acq)),
		slog.Any("acq_stack", l.acqStack))
}
