package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes recorded in slc_simulation_runs_total.
const (
	RunResultOK          = "ok"
	RunResultCached      = "cached"
	RunResultInvalid     = "invalid"
	RunResultUnavailable = "unavailable"
	RunResultCancelled   = "cancelled"
	RunResultError       = "error"
)

// Metrics groups the simulation collectors. A nil *Metrics records nothing.
type Metrics struct {
	RunsTotal      *prometheus.CounterVec
	PathsTotal     prometheus.Counter
	RunDuration    prometheus.Histogram
	ReturnsLookups *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slc",
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Simulation batch runs by result",
		}, []string{"result"}),
		PathsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slc",
			Subsystem: "simulation",
			Name:      "paths_total",
			Help:      "Simulated borrower paths",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "slc",
			Subsystem: "simulation",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a simulation batch",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ReturnsLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slc",
			Subsystem: "returns",
			Name:      "lookups_total",
			Help:      "Historical returns lookups by result",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.RunsTotal, m.PathsTotal, m.RunDuration, m.ReturnsLookups)
	}
	return m
}

func (m *Metrics) observeRun(result string, paths int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(result).Inc()
	if paths > 0 {
		m.PathsTotal.Add(float64(paths))
		m.RunDuration.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) observeLookup(result string) {
	if m == nil {
		return
	}
	m.ReturnsLookups.WithLabelValues(result).Inc()
}
