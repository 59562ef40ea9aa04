package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/ryanbastic/padboard/internal/model"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Board configuration mutations by operation and outcome (ok or error code).",
		},
		[]string{"operation", "outcome"},
	)

	storeBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_breaker_state",
			Help:      "Store circuit breaker state: 0 closed, 1 open, 2 half-open.",
		},
	)
)

// ObserveOperation counts one mutation outcome. Domain errors are labelled
// by their code; anything else is "internal".
func ObserveOperation(operation string, err error) {
	operationsTotal.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := model.CodeOf(err); code != "" {
		return string(code)
	}
	return "internal"
}

// SetBreakerState publishes the store circuit breaker state.
func SetBreakerState(state int) {
	storeBreakerState.Set(float64(state))
}
