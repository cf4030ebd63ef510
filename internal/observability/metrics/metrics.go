package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "aqd_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	ticksTotal   *prometheus.CounterVec
	tickDuration prometheus.Histogram

	feedFetchTotal   *prometheus.CounterVec
	rowsSkippedTotal *prometheus.CounterVec

	sensorsUpsertedTotal *prometheus.CounterVec

	alertTransitionsTotal *prometheus.CounterVec
	notificationsTotal    *prometheus.CounterVec
)

// Init registers ingestion metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		ticksTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ticks_total",
				Help: "Total ingestion ticks by result",
			},
			[]string{"result"},
		)
		tickDuration = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "tick_duration_seconds",
				Help:    "Ingestion tick duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)
		feedFetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "feed_fetch_total",
				Help: "Total upstream feed fetches by feed and result",
			},
			[]string{"feed", "result"},
		)
		rowsSkippedTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_skipped_total",
				Help: "Malformed feed rows skipped during normalization",
			},
			[]string{"feed"},
		)
		sensorsUpsertedTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sensors_upserted_total",
				Help: "Sensor records upserted by source",
			},
			[]string{"source"},
		)
		alertTransitionsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alert_transitions_total",
				Help: "Alert threshold transitions by direction",
			},
			[]string{"direction"},
		)
		notificationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notifications_total",
				Help: "Notification dispatch attempts by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			ticksTotal,
			tickDuration,
			feedFetchTotal,
			rowsSkippedTotal,
			sensorsUpsertedTotal,
			alertTransitionsTotal,
			notificationsTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// IncTick records a completed tick.
func IncTick(result string) {
	if ticksTotal != nil {
		ticksTotal.WithLabelValues(result).Inc()
	}
}

// ObserveTickDuration records how long a tick took.
func ObserveTickDuration(d time.Duration) {
	if tickDuration != nil {
		tickDuration.Observe(d.Seconds())
	}
}

// IncFeedFetch records a feed fetch attempt.
func IncFeedFetch(feed, result string) {
	if feedFetchTotal != nil {
		feedFetchTotal.WithLabelValues(feed, result).Inc()
	}
}

// AddRowsSkipped records malformed rows skipped for a feed.
func AddRowsSkipped(feed string, n int) {
	if rowsSkippedTotal != nil && n > 0 {
		rowsSkippedTotal.WithLabelValues(feed).Add(float64(n))
	}
}

// AddSensorsUpserted records persisted sensor records for a source.
func AddSensorsUpserted(source string, n int) {
	if sensorsUpsertedTotal != nil && n > 0 {
		sensorsUpsertedTotal.WithLabelValues(source).Add(float64(n))
	}
}

// IncAlertTransition records a threshold transition.
func IncAlertTransition(direction string) {
	if alertTransitionsTotal != nil {
		alertTransitionsTotal.WithLabelValues(direction).Inc()
	}
}

// IncNotification records a notification dispatch attempt.
func IncNotification(result string) {
	if notificationsTotal != nil {
		notificationsTotal.WithLabelValues(result).Inc()
	}
}
