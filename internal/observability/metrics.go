package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce            sync.Once
	httpRequestsTotal       *prometheus.CounterVec
	httpLatencySeconds      *prometheus.HistogramVec
	httpErrorsTotal         *prometheus.CounterVec
	submissionsScoredTotal  *prometheus.CounterVec
	scoreDistribution       prometheus.Histogram
	analyzerFailuresTotal   prometheus.Counter
	achievementUnlocksTotal *prometheus.CounterVec
	notificationsPublished  *prometheus.CounterVec
	sseClientsActive        prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "econova",
			Name:      "http_requests_total",
			Help:      "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "econova",
			Name:      "http_latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "econova",
			Name:      "http_errors_total",
			Help:      "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsScoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "econova",
			Name:      "submissions_scored_total",
			Help:      "Total number of task submissions scored, by task type and verdict.",
		}, []string{"task_type", "verdict"})

		scoreDistribution = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "econova",
			Name:      "submission_confidence",
			Help:      "Distribution of submission confidence scores.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		})

		analyzerFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "econova",
			Name:      "analyzer_failures_total",
			Help:      "Total number of failed external evidence-analysis calls.",
		})

		achievementUnlocksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "econova",
			Name:      "achievement_unlocks_total",
			Help:      "Total number of achievement and badge unlocks awarded.",
		}, []string{"kind"})

		notificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "econova",
			Name:      "notifications_published_total",
			Help:      "Total number of notifications published, by type.",
		}, []string{"type"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "econova",
			Name:      "sse_clients_active",
			Help:      "Number of currently connected SSE notification streams.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			submissionsScoredTotal,
			scoreDistribution,
			analyzerFailuresTotal,
			achievementUnlocksTotal,
			notificationsPublished,
			sseClientsActive,
		)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SubmissionsScored exposes the counter for scored submissions.
func SubmissionsScored() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsScoredTotal
}

// ScoreDistribution exposes the confidence histogram.
func ScoreDistribution() prometheus.Histogram {
	RegisterMetrics()
	return scoreDistribution
}

// AnalyzerFailures exposes the counter for failed analyzer calls.
func AnalyzerFailures() prometheus.Counter {
	RegisterMetrics()
	return analyzerFailuresTotal
}

// AchievementUnlocks exposes the counter for progression unlocks.
func AchievementUnlocks() *prometheus.CounterVec {
	RegisterMetrics()
	return achievementUnlocksTotal
}

// NotificationsPublished exposes the counter for published notifications.
func NotificationsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublished
}

// SSEClientsActive exposes the gauge for connected notification streams.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}

// MetricsHandler serves the Prometheus scrape endpoint through fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
