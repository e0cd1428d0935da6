// Package metrics holds the Prometheus collectors of the console.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	BracketRefreshes  *prometheus.CounterVec
	ScoreSubmissions  *prometheus.CounterVec
	BracketAnomalies  *prometheus.CounterVec
	AdvanceActivation *prometheus.CounterVec
}

// New creates the collectors on a private registry so tests can build as
// many instances as they like.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BracketRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bracket_console",
			Name:      "bracket_refreshes_total",
			Help:      "Bracket fetch-and-build cycles by result.",
		}, []string{"result"}),
		ScoreSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bracket_console",
			Name:      "score_submissions_total",
			Help:      "Score submissions by result.",
		}, []string{"result"}),
		BracketAnomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bracket_console",
			Name:      "bracket_data_anomalies_total",
			Help:      "Non-fatal match data anomalies by kind.",
		}, []string{"kind"}),
		AdvanceActivation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bracket_console",
			Name:      "advance_gate_actions_total",
			Help:      "Advance control interactions by action.",
		}, []string{"action"}),
	}
	m.registry.MustRegister(
		m.BracketRefreshes,
		m.ScoreSubmissions,
		m.BracketAnomalies,
		m.AdvanceActivation,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
