package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 业务指标
	ModuleToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduverse_module_toggles_total",
			Help: "Module completion toggles by direction",
		},
		[]string{"direction"},
	)

	CourseCompletions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "eduverse_course_completions_total",
			Help: "Course completion transitions",
		},
	)

	BadgesAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduverse_badges_awarded_total",
			Help: "Badges newly awarded",
		},
		[]string{"badge"},
	)

	ResourceOrderConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "eduverse_resource_order_conflicts_total",
			Help: "Rejected resource reorder batches",
		},
	)

	LockWaitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eduverse_lock_wait_seconds",
			Help:    "Time spent waiting for per-entity locks",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"scope", "outcome"},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduverse_events_published_total",
			Help: "Domain events published",
		},
		[]string{"type", "status"},
	)

	EventsConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduverse_events_consumed_total",
			Help: "Domain events received by the in-process subscriber",
		},
		[]string{"type"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			ModuleToggles,
			CourseCompletions,
			BadgesAwarded,
			ResourceOrderConflicts,
			LockWaitDuration,
			EventsPublished,
			EventsConsumed,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

// ObserveLockWait 记录获取锁的耗时，outcome 为 acquired / timeout / canceled
func ObserveLockWait(scope, outcome string, started time.Time) {
	LockWaitDuration.WithLabelValues(scope, outcome).Observe(time.Since(started).Seconds())
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
