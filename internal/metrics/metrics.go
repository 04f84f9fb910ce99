// Package metrics exposes the Prometheus instrumentation points for the
// solve pipeline: per-solve duration and outcome, the chosen frame size,
// and how often best-fit-descent repair has to run. InitMetrics returns an
// instance bound to its own registry rather than a package-level singleton,
// keeping the core free of global mutable state.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector this module emits.
type Metrics struct {
	Registry *prometheus.Registry

	SolveDuration  *prometheus.HistogramVec
	FrameSize      *prometheus.GaugeVec
	SchedulesTotal *prometheus.CounterVec
	BFDRepairs     *prometheus.CounterVec
}

// InitMetrics builds a fresh registry and registers every collector under
// namespace/subsystem.
func InitMetrics(namespace, subsystem string) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,

		SolveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_duration_seconds",
				Help:      "Duration of one TaskSet solve, from frame geometry through schedule validation.",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"solver"},
		),

		FrameSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "frame_size",
				Help:      "Frame size chosen by the last geometry computation.",
			},
			[]string{},
		),

		SchedulesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "schedules_total",
				Help:      "Total number of solve attempts, partitioned by solver and outcome.",
			},
			[]string{"solver", "status"},
		),

		BFDRepairs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "bfd_repairs_total",
				Help:      "Number of jobs the flow solver's best-fit-descent pass had to re-place.",
			},
			[]string{},
		),
	}
}

// ObserveSolve records one solve attempt's duration and outcome.
func (m *Metrics) ObserveSolve(solver string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.SolveDuration.WithLabelValues(solver).Observe(duration.Seconds())
	m.SchedulesTotal.WithLabelValues(solver, status).Inc()
}

// ObserveFrameSize records the frame size the last geometry computation
// chose.
func (m *Metrics) ObserveFrameSize(frameSize int64) {
	m.FrameSize.WithLabelValues().Set(float64(frameSize))
}

// ObserveBFDRepairs records how many jobs one flow-solver invocation's
// repair pass re-placed.
func (m *Metrics) ObserveBFDRepairs(count int) {
	m.BFDRepairs.WithLabelValues().Add(float64(count))
}
