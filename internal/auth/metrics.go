package auth

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for login attempts.
type Metrics struct {
	LoginsTotal *prometheus.CounterVec
}

// NewMetrics registers the auth metrics with the default registry once.
//
// Metrics:
//   - vocabadmin_auth_logins_total{outcome} - login attempts by outcome
//     (success, rejected, invalid, error)
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			LoginsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "vocabadmin_auth_logins_total",
					Help: "Total number of login attempts by outcome",
				},
				[]string{"outcome"},
			),
		}
	})
	return globalMetrics
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}
