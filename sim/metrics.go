// sim/metrics.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"net/http"
	"time"

	av "github.com/mmp/sectorsim/aviation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors updated by a Runner. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	Steps            prometheus.Counter
	Snapshots        prometheus.Counter
	DroppedSnapshots prometheus.Counter
	Listeners        prometheus.Gauge
	StepDuration     prometheus.Histogram
	TracksByStatus   *prometheus.GaugeVec
}

// NewMetrics registers the simulation metrics with reg, or with the
// default registry if reg is nil. Collectors that are already registered
// are reused, so multiple runners may share a registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	m := &Metrics{gatherer: gatherer}
	var err error
	if m.Steps, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sectorsim_steps_total",
		Help: "Total number of fixed simulation steps run.",
	})); err != nil {
		return nil, err
	}
	if m.Snapshots, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sectorsim_snapshots_total",
		Help: "Total number of snapshots published to listeners.",
	})); err != nil {
		return nil, err
	}
	if m.DroppedSnapshots, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sectorsim_dropped_snapshots_total",
		Help: "Snapshots dropped because a channel subscriber's buffer was full.",
	})); err != nil {
		return nil, err
	}
	if m.Listeners, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sectorsim_listeners",
		Help: "Current number of snapshot subscriptions.",
	})); err != nil {
		return nil, err
	}
	if m.StepDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sectorsim_step_duration_seconds",
		Help:    "Wall-clock time spent in the step function.",
		Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})); err != nil {
		return nil, err
	}
	if m.TracksByStatus, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sectorsim_tracks",
		Help: "Current number of tracks, labeled by status.",
	}, []string{"status"})); err != nil {
		return nil, err
	}

	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			var zero C
			return zero, fmt.Errorf("collector already registered with incompatible type %T", are.ExistingCollector)
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// Handler returns a /metrics handler for the registry the metrics were
// registered with.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) observeStep(d time.Duration) {
	if m == nil {
		return
	}
	m.Steps.Inc()
	m.StepDuration.Observe(d.Seconds())
}

func (m *Metrics) snapshotEmitted() {
	if m != nil {
		m.Snapshots.Inc()
	}
}

func (m *Metrics) droppedSnapshot() {
	if m != nil {
		m.DroppedSnapshots.Inc()
	}
}

func (m *Metrics) setListeners(n int) {
	if m != nil {
		m.Listeners.Set(float64(n))
	}
}

func (m *Metrics) setTrackCounts(w World) {
	if m == nil {
		return
	}
	counts := w.CountByStatus()
	for s := av.TrackStatusUnconcerned; s <= av.TrackStatusIntruder; s++ {
		m.TracksByStatus.WithLabelValues(s.String()).Set(float64(counts[s]))
	}
}
