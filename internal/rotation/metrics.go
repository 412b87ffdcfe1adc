package rotation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records per-step outcomes
type Metrics struct {
	stepTotal    *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
}

// NewMetrics registers the step metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		stepTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credrotate_step_total",
				Help: "Total number of rotation steps handled",
			},
			[]string{"step", "result"},
		),
		stepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credrotate_step_duration_seconds",
				Help:    "Duration of rotation steps in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"step"},
		),
	}
}

// observe is safe on a nil receiver so handlers without metrics skip it.
func (m *Metrics) observe(step Step, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.stepTotal.WithLabelValues(step.String(), result).Inc()
	m.stepDuration.WithLabelValues(step.String()).Observe(time.Since(start).Seconds())
}
