package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeRecorded = "recorded"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	ReportsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trawler_reports_submitted_total",
			Help: "Phishing reports submitted, by outcome",
		},
		[]string{"outcome"}, // recorded, rejected, failed
	)

	EmailsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trawler_emails_created_total",
			Help: "Distinct emails stored for the first time",
		},
	)

	RecordDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trawler_record_duration_seconds",
			Help:    "Time spent recording a report, transaction included",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)
)

func IncrementSubmitted(outcome string) {
	ReportsSubmitted.WithLabelValues(outcome).Inc()
}

func IncrementEmailsCreated() {
	EmailsCreated.Inc()
}

func ObserveRecordDuration(duration time.Duration) {
	RecordDuration.Observe(duration.Seconds())
}
