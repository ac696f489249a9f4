// Package metrics provides Prometheus metrics for the document store.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docvault_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// File transfer metrics
	bytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docvault_file_bytes_uploaded_total",
			Help: "Total bytes accepted by upload",
		},
	)

	bytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docvault_file_bytes_downloaded_total",
			Help: "Total bytes served by download",
		},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_file_uploads_total",
			Help: "Total number of uploads",
		},
		[]string{"category", "status"},
	)

	downloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_file_downloads_total",
			Help: "Total number of downloads",
		},
		[]string{"status"},
	)

	permissionChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_permission_checks_total",
			Help: "Total file access checks",
		},
		[]string{"result"},
	)

	presignedURLsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_presigned_urls_total",
			Help: "Total presigned URL requests",
		},
		[]string{"status"},
	)

	// Storage backend metrics
	storageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docvault_storage_operation_duration_seconds",
			Help:    "Storage backend operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	storageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_storage_operations_total",
			Help: "Total storage backend operations",
		},
		[]string{"backend", "operation", "status"},
	)

	auditFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docvault_audit_write_failures_total",
			Help: "Audit events that could not be persisted",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordUpload records an upload attempt for a document category.
func RecordUpload(category string, bytes int64, success bool) {
	if success {
		bytesUploaded.Add(float64(bytes))
	}
	uploadsTotal.WithLabelValues(category, statusLabel(success)).Inc()
}

// RecordDownload records a download attempt.
func RecordDownload(bytes int64, success bool) {
	if success {
		bytesDownloaded.Add(float64(bytes))
	}
	downloadsTotal.WithLabelValues(statusLabel(success)).Inc()
}

// RecordPermissionCheck records the outcome of an access decision.
func RecordPermissionCheck(allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	permissionChecksTotal.WithLabelValues(result).Inc()
}

func RecordPresign(success bool) {
	presignedURLsTotal.WithLabelValues(statusLabel(success)).Inc()
}

// RecordStorageOperation records a storage backend call.
func RecordStorageOperation(backend, operation string, duration time.Duration, err error) {
	storageOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	storageOperationsTotal.WithLabelValues(backend, operation, statusLabel(err == nil)).Inc()
}

func RecordAuditFailure() {
	auditFailuresTotal.Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
