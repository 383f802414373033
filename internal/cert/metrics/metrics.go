// Package metrics exposes Prometheus instrumentation for certificate
// operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CertificatesIssuedTotal  prometheus.Counter
	IssueFailuresTotal       *prometheus.CounterVec
	OrphanedPinsTotal        prometheus.Counter
	ValidationsTotal         *prometheus.CounterVec
	ValidationCacheHitsTotal prometheus.Counter
	IssueDurationSeconds     prometheus.Histogram
	LedgerCallDuration       *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		CertificatesIssuedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certvault_certificates_issued_total",
			Help: "Total number of certificates issued successfully",
		}),
		IssueFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certvault_issue_failures_total",
			Help: "Total number of failed issuance attempts by stage",
		}, []string{"stage"}),
		OrphanedPinsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certvault_orphaned_pins_total",
			Help: "Total number of documents pinned but never recorded on chain",
		}),
		ValidationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certvault_validations_total",
			Help: "Total number of validation requests by outcome",
		}, []string{"outcome"}),
		ValidationCacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certvault_validation_cache_hits_total",
			Help: "Total number of validations answered from cache",
		}),
		IssueDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "certvault_issue_duration_seconds",
			Help:    "End-to-end latency of certificate issuance",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		LedgerCallDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "certvault_ledger_call_duration_seconds",
			Help:    "Latency of ledger RPC calls by method",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method"}),
	}
}

func (m *Metrics) RecordIssued(d time.Duration) {
	m.CertificatesIssuedTotal.Inc()
	m.IssueDurationSeconds.Observe(d.Seconds())
}

func (m *Metrics) RecordIssueFailure(stage string) {
	m.IssueFailuresTotal.WithLabelValues(stage).Inc()
}

func (m *Metrics) RecordOrphanedPin() {
	m.OrphanedPinsTotal.Inc()
}

func (m *Metrics) RecordValidation(outcome string, fromCache bool) {
	m.ValidationsTotal.WithLabelValues(outcome).Inc()
	if fromCache {
		m.ValidationCacheHitsTotal.Inc()
	}
}

func (m *Metrics) ObserveLedgerCall(method string, d time.Duration) {
	m.LedgerCallDuration.WithLabelValues(method).Observe(d.Seconds())
}
