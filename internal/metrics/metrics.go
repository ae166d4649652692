// Package metrics counts solves with Prometheus collectors. There is no
// listener: the registry is dumped to a textfile for node_exporter.
package metrics

import (
	"time"

	"github.com/bastiangx/letterserve/pkg/letters"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "letterserve"

// Metrics holds the collectors on a private registry. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	reg      *prometheus.Registry
	solves   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	words    prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		reg: reg,
		solves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solves_total",
			Help:      "Letters queries answered, by mode and whether any word was found.",
		}, []string{"mode", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Time spent answering one Letters query.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"mode"}),
		words: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_words",
			Help:      "Distinct words in the loaded index.",
		}),
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// ObserveSolve records one answered query.
func (m *Metrics) ObserveSolve(mode letters.Mode, results int, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "found"
	if results == 0 {
		outcome = "empty"
	}
	m.solves.WithLabelValues(mode.String(), outcome).Inc()
	m.duration.WithLabelValues(mode.String()).Observe(elapsed.Seconds())
}

// SetIndexWords records the size of the loaded index.
func (m *Metrics) SetIndexWords(n int) {
	if m == nil {
		return
	}
	m.words.Set(float64(n))
}

// WriteTextfile writes every collector in text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.reg)
}

// Solver wraps a letters.ISolver and observes every query it answers.
type Solver struct {
	letters.ISolver
	metrics *Metrics
}

// Instrument returns s wrapped so its queries are recorded in m.
func Instrument(s letters.ISolver, m *Metrics) *Solver {
	return &Solver{ISolver: s, metrics: m}
}

// Solve answers a query and records it.
func (s *Solver) Solve(ls string) []string {
	words, _ := s.SolveLength(ls)
	return words
}

// SolveLength answers a query, reports the match length and records it.
func (s *Solver) SolveLength(ls string) ([]string, int) {
	start := time.Now()
	words, n := s.ISolver.SolveLength(ls)
	s.metrics.ObserveSolve(s.Mode(), len(words), time.Since(start))
	return words, n
}

var _ letters.ISolver = (*Solver)(nil)
