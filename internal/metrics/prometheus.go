// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the learning backend.
var (
	// HTTP.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "route"},
	)

	// Streaks.
	StreakEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streak_evaluations_total",
			Help: "Total streak evaluations by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	StreakFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streak_failures_total",
			Help: "Total streak reads or writes that fell back to the zero status",
		},
		[]string{"operation"},
	)

	StreakLengthDays = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "streak_length_days",
			Help:    "Streak length after a recorded activity",
			Buckets: []float64{1, 2, 3, 5, 7, 14, 30, 60, 100, 365},
		},
	)

	// Achievements.
	AchievementsUnlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievements_unlocked_total",
			Help: "Total number of achievements unlocked",
		},
		[]string{"achievement"},
	)

	AchievementHolders = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "achievement_holders",
			Help: "Current number of users holding each achievement",
		},
		[]string{"achievement"},
	)

	AchievementQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "achievement_queue_depth",
			Help: "Pending achievement pop-ups across all active sessions",
		},
	)

	// Avatars.
	AvatarUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avatar_uploads_total",
			Help: "Total avatar upload attempts by status",
		},
		[]string{"status"},
	)

	AvatarUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "avatar_upload_bytes",
			Help:    "Size of accepted avatar uploads in bytes",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 8), // 16KB to 2MB
		},
	)

	// Chat relay.
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total AI chat relay requests by status",
		},
		[]string{"status"},
	)

	ChatUpstreamDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_upstream_duration_seconds",
			Help:    "Latency of the upstream language model call",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to ~32s
		},
	)
)

// RecordHTTPRequest records a handled request.
func RecordHTTPRequest(method, route, status string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDurationSeconds.WithLabelValues(method, route).Observe(seconds)
}

// RecordStreakEvaluation records a streak evaluation.
func RecordStreakEvaluation(mode, outcome string) {
	StreakEvaluationsTotal.WithLabelValues(mode, outcome).Inc()
}

// RecordStreakFailure records a degraded streak response.
func RecordStreakFailure(operation string) {
	StreakFailuresTotal.WithLabelValues(operation).Inc()
}

// ObserveStreakLength observes the streak length after recording activity.
func ObserveStreakLength(days int) {
	StreakLengthDays.Observe(float64(days))
}

// RecordAchievementUnlocked records an achievement unlock.
func RecordAchievementUnlocked(id string) {
	AchievementsUnlockedTotal.WithLabelValues(id).Inc()
}

// SetAchievementHolders sets the number of holders for an achievement.
func SetAchievementHolders(id string, count int64) {
	AchievementHolders.WithLabelValues(id).Set(float64(count))
}

// AddAchievementQueueDepth adjusts the pending pop-up gauge.
func AddAchievementQueueDepth(delta int) {
	AchievementQueueDepth.Add(float64(delta))
}

// RecordAvatarUpload records an avatar upload attempt.
func RecordAvatarUpload(status string) {
	AvatarUploadsTotal.WithLabelValues(status).Inc()
}

// ObserveAvatarSize observes the size of an accepted avatar.
func ObserveAvatarSize(bytes int64) {
	AvatarUploadBytes.Observe(float64(bytes))
}

// RecordChatRequest records a chat relay request.
func RecordChatRequest(status string) {
	ChatRequestsTotal.WithLabelValues(status).Inc()
}

// ObserveChatUpstreamDuration observes the upstream model latency.
func ObserveChatUpstreamDuration(seconds float64) {
	ChatUpstreamDurationSeconds.Observe(seconds)
}
