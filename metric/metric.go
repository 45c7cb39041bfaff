// Package metric holds the Prometheus instruments updated by the
// logger pipeline.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/philipp01105/syslogconsole/core"
)

const namespace = "syslogconsole"

// Send outcomes used as the status label
const (
	StatusSent    = "sent"
	StatusAborted = "aborted"
	StatusFailed  = "failed"
	StatusPaused  = "paused"
)

// Abort reasons used as the reason label
const (
	ReasonSerialize = "serialize"
	ReasonChunk     = "chunk"
)

// Metrics contains the instruments of one logger
type Metrics struct {
	Sends        *prometheus.CounterVec
	Aborted      *prometheus.CounterVec
	Fragments    *prometheus.CounterVec
	PayloadBytes prometheus.Histogram
	EmitErrors   *prometheus.CounterVec
	Normalized   prometheus.Counter
}

// New registers all instruments with reg. A nil reg creates the
// instruments without registering them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Sends: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_total",
			Help:      "Messages passed to Send, by severity and outcome",
		}, []string{"severity", "status"}),

		Aborted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aborted_total",
			Help:      "Messages dropped before transport, by reason",
		}, []string{"reason"}),

		Fragments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fragments_total",
			Help:      "Fragments handed to the transport",
		}, []string{"severity"}),

		PayloadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payload_bytes",
			Help:      "Size of serialized payloads before chunking",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),

		EmitErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emit_errors_total",
			Help:      "Transport failures while emitting fragments",
		}, []string{"severity"}),

		Normalized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_failures_total",
			Help:      "Children the error normalizer could not convert",
		}),
	}
}

// ObserveSend records the outcome of one Send. Nil receivers are no-ops
// so callers need not guard every call.
func (m *Metrics) ObserveSend(s core.Severity, status string) {
	if m == nil {
		return
	}
	m.Sends.WithLabelValues(s.String(), status).Inc()
}

// ObserveAbort records a message dropped for reason
func (m *Metrics) ObserveAbort(reason string) {
	if m == nil {
		return
	}
	m.Aborted.WithLabelValues(reason).Inc()
}

// ObservePayload records payload size and fragment count
func (m *Metrics) ObservePayload(s core.Severity, bytes, fragments int) {
	if m == nil {
		return
	}
	m.PayloadBytes.Observe(float64(bytes))
	m.Fragments.WithLabelValues(s.String()).Add(float64(fragments))
}

// ObserveEmitError records a transport failure
func (m *Metrics) ObserveEmitError(s core.Severity) {
	if m == nil {
		return
	}
	m.EmitErrors.WithLabelValues(s.String()).Inc()
}

// ObserveNormalizeFailures records n unconvertible children
func (m *Metrics) ObserveNormalizeFailures(n int) {
	if m == nil || n == 0 {
		return
	}
	m.Normalized.Add(float64(n))
}
