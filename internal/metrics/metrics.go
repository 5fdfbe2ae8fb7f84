// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the bridge: library scans, sync runs,
// duplicate detection, the unified-storage link layer, backups, and the
// local API/websocket surface that drives the UI.

var (
	// Scan metrics
	ScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scan_duration_seconds",
			Help:    "Duration of a library scan in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"side"}, // "stable", "lazer"
	)

	ScanSetsFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scan_sets_found_total",
			Help: "Total number of beatmap sets found by a scan",
		},
		[]string{"side"},
	)

	ScanErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scan_errors_total",
			Help: "Total number of scan errors",
		},
		[]string{"side", "error_kind"},
	)

	// Sync operation metrics
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Duration of a full sync run in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	SyncSetsImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_sets_imported_total",
			Help: "Total number of beatmap sets imported during sync",
		},
	)

	SyncSetsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_sets_skipped_total",
			Help: "Total number of beatmap sets skipped during sync (filter or duplicate)",
		},
	)

	SyncSetsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_sets_failed_total",
			Help: "Total number of beatmap sets that failed to import during sync",
		},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp",
			Help: "Unix timestamp of the last sync run that completed without cancellation",
		},
	)

	// Duplicate detection metrics
	DuplicateMatchesFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duplicate_matches_found_total",
			Help: "Total number of source sets matched to an existing target set",
		},
		[]string{"signal"}, // "hash", "set_id", "metadata", "composite"
	)

	DuplicateResolutionsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duplicate_resolutions_applied_total",
			Help: "Total number of duplicate resolutions applied, by chosen action",
		},
		[]string{"action"}, // "skip", "replace", "keep_both"
	)

	// Unified storage metrics
	UnifiedLinkHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "unified_link_health",
			Help: "Number of unified-storage links in each health state",
		},
		[]string{"status"}, // "healthy", "broken", "missing"
	)

	UnifiedGameRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "unified_game_running",
			Help: "1 if osu!stable or osu!lazer is currently running, 0 otherwise",
		},
	)

	// Backup metrics
	BackupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backup_duration_seconds",
			Help:    "Duration of a backup operation in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600},
		},
		[]string{"kind"}, // "full", "incremental"
	)

	BackupBytesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backup_bytes_written_total",
			Help: "Total number of compressed bytes written to backup archives",
		},
	)

	BackupFilesArchived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backup_files_archived_total",
			Help: "Total number of files written into backup archives",
		},
	)

	BackupErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backup_errors_total",
			Help: "Total number of backup or restore errors",
		},
		[]string{"operation", "error_kind"}, // operation: "backup", "restore"
	)

	// Local API/websocket metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of local API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Local API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight local API requests",
		},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active UI websocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of websocket messages sent to the UI",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of websocket messages received from the UI",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of websocket errors",
		},
		[]string{"error_type"},
	)

	// System metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordScan records a completed scan of one side of the bridge.
func RecordScan(side string, duration time.Duration, setsFound int, err error) {
	ScanDuration.WithLabelValues(side).Observe(duration.Seconds())
	ScanSetsFound.WithLabelValues(side).Add(float64(setsFound))
	if err != nil {
		ScanErrors.WithLabelValues(side, errorKind(err)).Inc()
	}
}

// RecordSyncOperation records the outcome of a full sync run.
func RecordSyncOperation(duration time.Duration, imported, skipped, failed int, cancelled bool) {
	SyncDuration.Observe(duration.Seconds())
	SyncSetsImported.Add(float64(imported))
	SyncSetsSkipped.Add(float64(skipped))
	SyncSetsFailed.Add(float64(failed))
	if !cancelled {
		SyncLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordDuplicateMatch records a source set matched to an existing
// target set by the given detection signal.
func RecordDuplicateMatch(signal string) {
	DuplicateMatchesFound.WithLabelValues(signal).Inc()
}

// RecordDuplicateResolution records which action a resolver applied to
// a detected duplicate.
func RecordDuplicateResolution(action string) {
	DuplicateResolutionsApplied.WithLabelValues(action).Inc()
}

// UpdateUnifiedLinkHealth replaces the link-health gauges with a fresh
// count per status, as reported by the unified-storage verify pass.
func UpdateUnifiedLinkHealth(healthy, broken, missing int) {
	UnifiedLinkHealth.WithLabelValues("healthy").Set(float64(healthy))
	UnifiedLinkHealth.WithLabelValues("broken").Set(float64(broken))
	UnifiedLinkHealth.WithLabelValues("missing").Set(float64(missing))
}

// SetUnifiedGameRunning reflects whether osu! is currently running.
func SetUnifiedGameRunning(running bool) {
	if running {
		UnifiedGameRunning.Set(1)
	} else {
		UnifiedGameRunning.Set(0)
	}
}

// RecordBackup records a completed backup operation.
func RecordBackup(kind string, duration time.Duration, bytesWritten int64, filesArchived int, err error) {
	BackupDuration.WithLabelValues(kind).Observe(duration.Seconds())
	BackupBytesWritten.Add(float64(bytesWritten))
	BackupFilesArchived.Add(float64(filesArchived))
	if err != nil {
		BackupErrors.WithLabelValues("backup", errorKind(err)).Inc()
	}
}

// RecordRestoreError records a failed restore attempt.
func RecordRestoreError(err error) {
	BackupErrors.WithLabelValues("restore", errorKind(err)).Inc()
}

// RecordAPIRequest records a local API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight local API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// errorKind truncates an error's message to a bounded, label-safe kind.
func errorKind(err error) string {
	msg := err.Error()
	if len(msg) > 50 {
		msg = msg[:50]
	}
	return msg
}
