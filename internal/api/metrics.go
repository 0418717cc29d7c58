package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP and discussion collectors for one registry.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	discussions  *prometheus.CounterVec
	fileAccesses prometheus.Counter
	gatherer     prometheus.Gatherer
}

// NewMetrics registers the collectors on reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the default registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		discussions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "training_discussion_posts_total",
				Help: "Comments and replies accepted, by item kind",
			},
			[]string{"type", "kind"},
		),
		fileAccesses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "training_file_access_urls_total",
			Help: "Signed file access URLs issued",
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.requests, m.duration, m.discussions, m.fileAccesses)
	return m
}

// Middleware records request counts and latencies per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func (m *Metrics) discussionPosted(postType, kind string) {
	m.discussions.WithLabelValues(postType, kind).Inc()
}

func (m *Metrics) fileAccessIssued() {
	m.fileAccesses.Inc()
}
