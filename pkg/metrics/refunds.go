package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RefundMetrics records submission outcomes for the refund workflow.
type RefundMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewRefundMetrics registers the refund metrics on the provided registerer.
func NewRefundMetrics(reg prometheus.Registerer) *RefundMetrics {
	if reg == nil {
		return &RefundMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "refund_submission_duration_seconds",
		Help:    "Duration of refund submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"refund_type"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "refund_submission_success",
		Help: "Successful refund submissions.",
	}, []string{"refund_type"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "refund_submission_failure",
		Help: "Failed refund submissions.",
	}, []string{"refund_type"})
	reg.MustRegister(duration, success, failure)
	return &RefundMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the given refund type.
func (m *RefundMetrics) ObserveDuration(refundType string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(refundType)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the given refund type.
func (m *RefundMetrics) IncSuccess(refundType string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(refundType)).Inc()
}

// IncFailure increments the failure counter for the given refund type.
func (m *RefundMetrics) IncFailure(refundType string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(refundType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
