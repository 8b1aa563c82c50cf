// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the election service
type Metrics struct {
	registry *prometheus.Registry

	BallotSetsAccepted prometheus.Counter
	BallotsStored      prometheus.Counter
	Rejections         *prometheus.CounterVec
	WindowOpen         prometheus.Gauge
	RosterChanges      *prometheus.CounterVec
}

// New creates the metrics on a fresh registry, so every server (and every
// test) gets its own set.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		BallotSetsAccepted: f.NewCounter(prometheus.CounterOpts{
			Name: "campus_ballot_submissions_accepted_total",
			Help: "Complete ballot sets persisted",
		}),
		BallotsStored: f.NewCounter(prometheus.CounterOpts{
			Name: "campus_ballot_ballots_stored_total",
			Help: "Individual position ballots persisted",
		}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_ballot_submissions_rejected_total",
			Help: "Ballot submissions rejected, by reason",
		}, []string{"reason"}),
		WindowOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "campus_ballot_voting_window_open",
			Help: "1 while the voting window is open",
		}),
		RosterChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_ballot_roster_changes_total",
			Help: "Candidate additions and removals",
		}, []string{"op"}),
	}
}

func (m *Metrics) IncrementAccepted(ballots int) {
	m.BallotSetsAccepted.Inc()
	m.BallotsStored.Add(float64(ballots))
}

func (m *Metrics) IncrementRejected(reason string) {
	m.Rejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetWindowOpen(open bool) {
	if open {
		m.WindowOpen.Set(1)
		return
	}
	m.WindowOpen.Set(0)
}

func (m *Metrics) IncrementRosterChange(op string) {
	m.RosterChanges.WithLabelValues(op).Inc()
}

// Handler serves this registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
