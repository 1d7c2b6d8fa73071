package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce sync.Once

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "movies_api",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "movies_api",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	authOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "movies_api",
		Name:      "auth_outcomes_total",
		Help:      "Authentication operations by outcome.",
	}, []string{"operation", "outcome"})

	syncRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "movies_api",
		Name:      "movie_sync_runs_total",
		Help:      "Movie synchronization runs by result.",
	}, []string{"result"})

	syncImported = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "movies_api",
		Name:      "movie_sync_imported_total",
		Help:      "Movies inserted by the synchronization job.",
	})
)

// InitMetrics registers the collectors with the default registry. Safe to call repeatedly.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, authOutcomes, syncRuns, syncImported)
	})
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	if path == "" {
		path = "/metrics"
	}
	InitMetrics()
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveAuth counts an authentication operation ("sign_up", "sign_in",
// "refresh") with its outcome ("success", "rejected", "conflict", "error").
func ObserveAuth(operation, outcome string) {
	authOutcomes.WithLabelValues(operation, outcome).Inc()
}

// ObserveSync counts a synchronization run and the movies it imported.
func ObserveSync(result string, imported int) {
	syncRuns.WithLabelValues(result).Inc()
	if imported > 0 {
		syncImported.Add(float64(imported))
	}
}
