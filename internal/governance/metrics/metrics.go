package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attestgate",
		Subsystem: "governance",
		Name:      "operations_total",
		Help:      "Governance operations by name and outcome.",
	}, []string{"operation", "outcome"})

	pausedState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "attestgate",
		Subsystem: "governance",
		Name:      "paused",
		Help:      "1 while the registry is paused, 0 otherwise.",
	})
)

func ObserveOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsTotal.WithLabelValues(operation, outcome).Inc()
}

func SetPaused(paused bool) {
	if paused {
		pausedState.Set(1)
		return
	}
	pausedState.Set(0)
}
