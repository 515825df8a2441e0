package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Messaging-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "messaging_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "messaging_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	ConversationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "messaging_api",
			Name:      "conversations_created_total",
			Help:      "Total conversations opened by clients",
		},
	)

	MessagesAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "messaging_api",
			Name:      "messages_appended_total",
			Help:      "Total messages appended to conversations",
		},
		[]string{"sender_role", "with_attachment"},
	)

	ConversationDeletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "messaging_api",
			Name:      "conversation_deletions_total",
			Help:      "Conversation deletions by kind (leave, hard)",
		},
		[]string{"kind"},
	)

	// Attachment storage operations
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "messaging_api",
			Name:      "storage_operations_total",
			Help:      "Total attachment storage operations",
		},
		[]string{"backend", "operation", "status"},
	)

	StorageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "messaging_api",
			Name:      "storage_duration_seconds",
			Help:      "Attachment storage operation duration in seconds",
			Buckets:   []float64{0.005, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"backend", "operation"},
	)

	AttachmentBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "messaging_api",
			Name:      "attachment_bytes_total",
			Help:      "Total attachment bytes stored",
		},
		[]string{"media_type"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "messaging_api",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the write rate limiter",
		},
	)
)

// RecordRequest records an HTTP request.
func RecordRequest(method, endpoint, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordStorageOperation records one attachment storage call.
func RecordStorageOperation(backend, operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StorageOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	StorageDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordAttachmentStored adds the stored payload size.
func RecordAttachmentStored(mediaType string, size int64) {
	AttachmentBytesTotal.WithLabelValues(mediaType).Add(float64(size))
}

// RecordMessageAppended counts a new message.
func RecordMessageAppended(senderRole string, withAttachment bool) {
	attachment := "false"
	if withAttachment {
		attachment = "true"
	}
	MessagesAppended.WithLabelValues(senderRole, attachment).Inc()
}

// RecordConversationDeleted counts a leave or a hard delete.
func RecordConversationDeleted(kind string) {
	ConversationDeletions.WithLabelValues(kind).Inc()
}
