package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	providerAttempts *prometheus.CounterVec
	notifications    *prometheus.CounterVec
	signalsDetected  *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
	latency          *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		providerAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crossalert_provider_attempts_total",
				Help: "Provider fetch attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		notifications: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crossalert_notifications_total",
				Help: "Push notifications by delivery status",
			},
			[]string{"status"},
		),
		signalsDetected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crossalert_signals_detected_total",
				Help: "Crossover signals detected by type",
			},
			[]string{"type"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crossalert_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "crossalert_last_close",
				Help: "Last resolved close price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crossalert_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordProviderAttempt records one provider fetch attempt.
func (r *Recorder) RecordProviderAttempt(provider, outcome string) {
	r.providerAttempts.WithLabelValues(provider, outcome).Inc()
}

// RecordNotification records a push delivery attempt outcome.
func (r *Recorder) RecordNotification(status string) {
	r.notifications.WithLabelValues(status).Inc()
}

// RecordSignal records a detected crossover signal.
func (r *Recorder) RecordSignal(signalType string) {
	r.signalsDetected.WithLabelValues(signalType).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastClose records the last resolved close price for a symbol.
func (r *Recorder) RecordLastClose(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
