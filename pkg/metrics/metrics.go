package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import pipeline instrumentation. Registered on the default registry so the
// promhttp controller picks everything up.
var (
	RowsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_rows_processed_total",
		Help: "Rows processed by import jobs, by outcome.",
	}, []string{"outcome"})

	ClassifierCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_classifier_calls_total",
		Help: "Fallback classifier calls, by result.",
	}, []string{"result"})

	ClassifierCost = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_classifier_cost_usd",
		Help: "Accumulated classifier spend in USD.",
	})

	JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_jobs_total",
		Help: "Import jobs by terminal status.",
	}, []string{"status"})
)
