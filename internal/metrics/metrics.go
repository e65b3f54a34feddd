package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemindersProcessed counts reminders examined by the dispatch job
	RemindersProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubcare_reminders_processed_total",
		Help: "Reminders examined by the dispatch job.",
	})

	// RemindersSent counts reminders successfully pushed
	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubcare_reminders_sent_total",
		Help: "Reminders delivered to the push gateway.",
	})

	// RemindersFailed counts reminders that reached a terminal failure
	RemindersFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubcare_reminders_failed_total",
		Help: "Reminders marked failed (missing user, no token, inactive user or gateway error).",
	})

	// RemindersSkipped counts reminders this invocation did not act on
	RemindersSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubcare_reminders_skipped_total",
		Help: "Reminders skipped (claim lost to a concurrent run, or dry run).",
	})

	// PushDuration observes push gateway call latency
	PushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clubcare_push_duration_seconds",
		Help:    "Latency of FCM send calls.",
		Buckets: prometheus.DefBuckets,
	})

	// RetentionDeleted counts rows removed by the retention job, per category
	RetentionDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubcare_retention_deleted_total",
		Help: "Rows deleted by the retention job.",
	}, []string{"category"})
)
