package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the sync worker

var (
	// API call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfb_api_calls_total",
			Help: "Total number of provider API calls",
		},
		[]string{"provider", "endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cfb_api_call_duration_seconds",
			Help:    "Duration of provider API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "endpoint"},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfb_sync_operations_total",
			Help: "Total number of sync operations",
		},
		[]string{"type", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cfb_sync_duration_seconds",
			Help:    "Duration of sync operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"type"},
	)

	SyncStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfb_sync_steps_total",
			Help: "Total number of scheduler sync steps",
		},
		[]string{"step", "status"},
	)

	SkippedRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfb_skipped_records_total",
			Help: "Total number of malformed records skipped during ingestion",
		},
		[]string{"kind"},
	)

	// Rating metrics
	RatingsApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cfb_ratings_applied_total",
			Help: "Total number of games whose rating update has run",
		},
	)

	// Weather metrics
	WeatherEnrichments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfb_weather_enrichments_total",
			Help: "Total number of weather enrichments by source",
		},
		[]string{"source"},
	)

	// Ingestion gauges
	TeamsIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cfb_teams_total",
			Help: "Total number of teams in database",
		},
	)

	GamesIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cfb_games_total",
			Help: "Total number of games in database",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfb_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cfb_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cfb_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync operation",
		},
	)
)

// RecordAPICall records a provider API call metric
func RecordAPICall(provider, endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(provider, endpoint, status).Inc()
	APICallDuration.WithLabelValues(provider, endpoint).Observe(duration)
}

// RecordSync records a sync operation
func RecordSync(syncType, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(syncType, status).Inc()
	SyncDuration.WithLabelValues(syncType).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordSyncStep records one scheduler step outcome
func RecordSyncStep(step, status string) {
	SyncStepsTotal.WithLabelValues(step, status).Inc()
}

// RecordSkippedRecord records a malformed record skipped during ingestion
func RecordSkippedRecord(kind string) {
	SkippedRecordsTotal.WithLabelValues(kind).Inc()
}

// RecordRatingApplied records one completed rating update
func RecordRatingApplied() {
	RatingsApplied.Inc()
}

// RecordWeatherEnrichment records one weather enrichment by source
// (observed, estimate, dome)
func RecordWeatherEnrichment(source string) {
	WeatherEnrichments.WithLabelValues(source).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateIngestionStats updates ingestion statistics
func UpdateIngestionStats(teams, games int64) {
	TeamsIngested.Set(float64(teams))
	GamesIngested.Set(float64(games))
}
