// Package metrics exposes client-side round statistics to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/lox/roshambo/internal/game"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records round and reset outcomes. It satisfies controller.Recorder.
type Metrics struct {
	rounds        *prometheus.CounterVec
	roundErrors   *prometheus.CounterVec
	roundDuration prometheus.Histogram
	resets        *prometheus.CounterVec
	gatherer      prometheus.Gatherer
}

// New creates the collectors and registers them with a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer(reg)
	m.gatherer = reg
	return m
}

// NewWithRegisterer creates the collectors and registers them with reg
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rounds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roshambo_rounds_total",
				Help: "Rounds completed, by outcome for the player",
			},
			[]string{"outcome"},
		),
		roundErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roshambo_round_errors_total",
				Help: "Rounds that failed, by error kind",
			},
			[]string{"kind"},
		),
		roundDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "roshambo_round_duration_seconds",
				Help:    "Time from submitting a move to showing its result",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 1.5, 2, 5, 10},
			},
		),
		resets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roshambo_resets_total",
				Help: "Reset requests, by result",
			},
			[]string{"result"},
		),
		gatherer: prometheus.DefaultGatherer,
	}

	reg.MustRegister(m.rounds, m.roundErrors, m.roundDuration, m.resets)

	// Pre-create label values so they export as zero
	for _, o := range []game.Outcome{game.Win, game.Lose, game.Draw} {
		m.rounds.WithLabelValues(o.String())
	}
	return m
}

// RoundCompleted records a finished round
func (m *Metrics) RoundCompleted(outcome game.Outcome, elapsed time.Duration) {
	m.rounds.WithLabelValues(outcome.String()).Inc()
	m.roundDuration.Observe(elapsed.Seconds())
}

// RoundFailed records a failed round
func (m *Metrics) RoundFailed(kind string) {
	m.roundErrors.WithLabelValues(kind).Inc()
}

// ResetCompleted records a successful reset
func (m *Metrics) ResetCompleted() {
	m.resets.WithLabelValues("ok").Inc()
}

// ResetFailed records a failed reset
func (m *Metrics) ResetFailed(kind string) {
	m.resets.WithLabelValues(kind).Inc()
}

// Handler serves the collected metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
