package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attestgate",
		Subsystem: "registry",
		Name:      "ingests_total",
		Help:      "Ingest calls by outcome.",
	}, []string{"outcome"})

	recordsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attestgate",
		Subsystem: "registry",
		Name:      "records_written_total",
		Help:      "Attestation records written across all ingest batches.",
	})

	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "attestgate",
		Subsystem: "registry",
		Name:      "ingest_batch_size",
		Help:      "Records per ingest batch.",
		Buckets:   []float64{1, 2, 3, 4, 5, 6, 7, 8, 9},
	})
)

func ObserveIngest(size int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ingestsTotal.WithLabelValues(outcome).Inc()
	if err == nil {
		recordsWritten.Add(float64(size))
		batchSize.Observe(float64(size))
	}
}
