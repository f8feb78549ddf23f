package metrics

import (
	"SignalGate/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	stageProcessed *prometheus.CounterVec
	stageRejected  *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	cycleLatency   prometheus.Histogram
	cycleSize      prometheus.Histogram
	rejectionRate  prometheus.Gauge
	providerErrors *prometheus.CounterVec
	messagesSent   *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		stageProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalgate_stage_processed_total",
				Help: "Signals evaluated per pipeline stage",
			},
			[]string{"stage"},
		),
		stageRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalgate_stage_rejected_total",
				Help: "Signals rejected per pipeline stage",
			},
			[]string{"stage"},
		),
		rejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalgate_rejections_total",
				Help: "Rejections by stage and reason",
			},
			[]string{"stage", "reason"},
		),
		cycleLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "signalgate_cycle_duration_seconds",
				Help:    "Duration of one pipeline evaluation cycle",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		cycleSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "signalgate_cycle_batch_size",
				Help:    "Signals evaluated per cycle",
				Buckets: prometheus.ExponentialBuckets(1, 4, 6),
			},
		),
		rejectionRate: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "signalgate_cycle_rejection_rate",
				Help: "Rejection rate of the most recent cycle",
			},
		),
		providerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalgate_provider_failures_total",
				Help: "External data provider failures by provider",
			},
			[]string{"provider"},
		),
		messagesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalgate_messages_sent_total",
				Help: "Admitted signals routed to a backend",
			},
			[]string{"backend", "symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalgate_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalgate_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordStage records per-stage throughput.
func (r *Recorder) RecordStage(stage string, processed, rejected int) {
	r.stageProcessed.WithLabelValues(stage).Add(float64(processed))
	r.stageRejected.WithLabelValues(stage).Add(float64(rejected))
}

// RecordRejection records rejections attributed to a reason.
func (r *Recorder) RecordRejection(stage string, reason models.Reason, count int) {
	if count <= 0 {
		return
	}
	r.rejections.WithLabelValues(stage, string(reason)).Add(float64(count))
}

// RecordCycle records one evaluation cycle.
func (r *Recorder) RecordCycle(seconds float64, processed, admitted int) {
	r.cycleLatency.Observe(seconds)
	r.cycleSize.Observe(float64(processed))
}

// RecordRejectionRate records the latest cycle rejection rate.
func (r *Recorder) RecordRejectionRate(rate float64) {
	r.rejectionRate.Set(rate)
}

// RecordProviderError records an external provider failure.
func (r *Recorder) RecordProviderError(provider string) {
	r.providerErrors.WithLabelValues(provider).Inc()
}

// RecordMessageSent records an admitted signal routed to a backend.
func (r *Recorder) RecordMessageSent(backend, symbol string) {
	r.messagesSent.WithLabelValues(backend, symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
