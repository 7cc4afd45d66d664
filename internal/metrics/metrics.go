// Package metrics exposes prometheus counters for ledger activity. The host
// decides whether and where to serve them; the ledger only increments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var operationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "coinledger_operations_total",
		Help: "Ledger operations by name and outcome.",
	},
	[]string{"operation", "status"},
)

// RecordOperation counts one completed ledger operation.
func RecordOperation(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	operationsTotal.WithLabelValues(operation, status).Inc()
}
