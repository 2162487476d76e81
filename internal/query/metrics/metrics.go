package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attestgate",
		Subsystem: "query",
		Name:      "lookups_total",
		Help:      "Read-only lookups by kind and outcome.",
	}, []string{"kind", "outcome"})

	matchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attestgate",
		Subsystem: "query",
		Name:      "matches_total",
		Help:      "Paid match verifications by outcome.",
	}, []string{"outcome"})

	matchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "attestgate",
		Subsystem: "query",
		Name:      "match_duration_seconds",
		Help:      "End-to-end duration of a paid match verification.",
		Buckets:   prometheus.DefBuckets,
	})
)

func ObserveLookup(kind string, err error) {
	lookupsTotal.WithLabelValues(kind, outcome(err)).Inc()
}

func ObserveMatch(seconds float64, err error) {
	matchesTotal.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		matchDuration.Observe(seconds)
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
