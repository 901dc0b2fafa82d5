package storage

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts client operations per backend and outcome.
type Metrics struct {
	OperationsTotal *prometheus.CounterVec
}

// NewMetrics creates the storage client metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gateway",
				Subsystem: "storage",
				Name:      "operations_total",
				Help:      "Storage client operations by backend and outcome",
			},
			[]string{"operation", "backend", "status"},
		),
	}
}

// Register registers all metrics with the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	return reg.Register(m.OperationsTotal)
}

// observe records one operation outcome. Safe on a nil receiver so the
// client can run unmetered.
func (m *Metrics) observe(operation, backend string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.OperationsTotal.WithLabelValues(operation, backend, status).Inc()
}
