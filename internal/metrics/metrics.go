// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts solver work with Prometheus collectors. A Recorder
// observes both the chain solver and the activity aggregator and can be
// written to a node-exporter textfile at the end of a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "purity_engine"

// Recorder holds the collectors of one run. It is safe for concurrent use.
type Recorder struct {
	registry *prometheus.Registry

	chains      prometheus.Counter
	pulses      prometheus.Counter
	degenerate  prometheus.Counter
	units       *prometheus.CounterVec
	unitSeconds prometheus.Histogram
}

// NewRecorder returns a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		chains: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chains_solved_total",
			Help:      "Chain transfer functions evaluated.",
		}),
		pulses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pulses_solved_total",
			Help:      "Schedule pulses propagated.",
		}),
		degenerate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degenerate_clusters_total",
			Help:      "Chains evaluated with coinciding decay constants.",
		}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_total",
			Help:      "Parent and sample units evaluated, by outcome.",
		}, []string{"outcome"}),
		unitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unit_duration_seconds",
			Help:      "Time spent evaluating one parent and sample unit.",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 10),
		}),
	}
	r.registry.MustRegister(r.chains, r.pulses, r.degenerate, r.units, r.unitSeconds)
	return r
}

// Registry returns the registry holding the collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ChainSolved counts one evaluated chain.
func (r *Recorder) ChainSolved() { r.chains.Inc() }

// PulseSolved counts one propagated pulse.
func (r *Recorder) PulseSolved() { r.pulses.Inc() }

// DegenerateChain counts a chain evaluated with merged constants.
func (r *Recorder) DegenerateChain(clusters int) { r.degenerate.Add(float64(clusters)) }

// UnitDone records the outcome and duration of one unit.
func (r *Recorder) UnitDone(elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	r.units.WithLabelValues(outcome).Inc()
	r.unitSeconds.Observe(elapsed.Seconds())
}

// WriteTextfile writes the current values in the Prometheus text format to
// path, replacing the file atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
