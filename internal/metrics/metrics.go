// Package metrics holds the progression counters exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
)

const namespace = "mmm"

// Metrics is nil-safe: a nil *Metrics records nothing.
type Metrics struct {
	gamesFinalized   *prometheus.CounterVec
	ownershipChanges *prometheus.CounterVec
	finalizeRejected *prometheus.CounterVec
	finalizeReplays  prometheus.Counter
	finalizeDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gamesFinalized: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finalized_total",
			Help:      "Games finalized, by round.",
		}, []string{"round"}),
		ownershipChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ownership_changes_total",
			Help:      "Advancing teams that kept or changed owner.",
		}, []string{"outcome"}),
		finalizeRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finalize_rejected_total",
			Help:      "Finalize calls rejected, by error class.",
		}, []string{"reason"}),
		finalizeReplays: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finalize_replays_total",
			Help:      "Finalize calls on games that were already final.",
		}),
		finalizeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "finalize_duration_seconds",
			Help:      "Time spent in the finalize transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
}

func (m *Metrics) Finalized(round bracket.Round, ownerChanged bool) {
	if m == nil {
		return
	}
	m.gamesFinalized.WithLabelValues(strconv.Itoa(int(round))).Inc()
	outcome := "retained"
	if ownerChanged {
		outcome = "transferred"
	}
	m.ownershipChanges.WithLabelValues(outcome).Inc()
}

// Rejected classifies err as validation, integrity, or other.
func (m *Metrics) Rejected(err error) {
	if m == nil || err == nil {
		return
	}
	reason := "other"
	switch {
	case bracket.IsValidation(err):
		reason = "validation"
	case bracket.IsIntegrity(err):
		reason = "integrity"
	}
	m.finalizeRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) Replayed() {
	if m == nil {
		return
	}
	m.finalizeReplays.Inc()
}

func (m *Metrics) ObserveDuration(seconds float64) {
	if m == nil {
		return
	}
	m.finalizeDuration.Observe(seconds)
}

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
