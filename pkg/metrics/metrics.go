package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
		[]string{"method", "path", "status"},
	)

	// Gmail API 调用延迟（毫秒）
	GmailCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gmail_call_latency_ms",
			Help:    "Gmail API call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"operation", "status"},
	)

	// 每次统计扫描的邮件数
	MessagesScanned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analytics_messages_scanned",
			Help:    "Number of messages folded into one analytics report",
			Buckets: []float64{0, 10, 50, 100, 250, 500},
		},
	)

	// 发信计数
	EmailSentCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_sent_count",
			Help: "Total number of emails sent or replied to",
		},
		[]string{"status"}, // status: success, failed
	)

	// 凭证刷新计数
	CredentialRefreshCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credential_refresh_count",
			Help: "Total number of access token refresh attempts",
		},
		[]string{"status"},
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordGmailCallLatency 记录 Gmail API 调用延迟
func RecordGmailCallLatency(operation, status string, duration time.Duration) {
	GmailCallLatency.WithLabelValues(operation, status).Observe(float64(duration.Milliseconds()))
}

// RecordMessagesScanned 记录一次统计扫描的邮件数
func RecordMessagesScanned(n int) {
	MessagesScanned.Observe(float64(n))
}

// IncrementEmailSent 增加发信计数
func IncrementEmailSent(status string) {
	EmailSentCount.WithLabelValues(status).Inc()
}

// IncrementCredentialRefresh 增加凭证刷新计数
func IncrementCredentialRefresh(status string) {
	CredentialRefreshCount.WithLabelValues(status).Inc()
}
