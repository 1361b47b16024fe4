package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "blog"
)

// Rejection reasons for comment creation
const (
	ReasonValidation    = "validation"
	ReasonParentMissing = "parent_not_found"
	ReasonParentArticle = "parent_other_article"
	ReasonMaxDepth      = "max_depth"
)

// Metrics holds all application metrics. A nil *Metrics records nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	CommentsCreatedTotal  *prometheus.CounterVec
	CommentsRejectedTotal *prometheus.CounterVec
	CommentsDeletedTotal  prometheus.Counter
	ArticlesPublished     prometheus.Counter
	TreeCacheLookups      *prometheus.CounterVec
	TreeBuildDuration     prometheus.Histogram
}

// New creates and registers all metrics with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "endpoint"},
		),
		CommentsCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comments_created_total",
				Help:      "Total number of comments created",
			},
			[]string{"author", "kind"},
		),
		CommentsRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comments_rejected_total",
				Help:      "Total number of rejected comment submissions",
			},
			[]string{"reason"},
		),
		CommentsDeletedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comments_deleted_total",
				Help:      "Total number of comments removed, descendants included",
			},
		),
		ArticlesPublished: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "articles_published_total",
				Help:      "Total number of publish events",
			},
		),
		TreeCacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comment_tree_cache_lookups_total",
				Help:      "Comment tree cache lookups by result",
			},
			[]string{"result"},
		),
		TreeBuildDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "comment_tree_build_duration_seconds",
				Help:      "Time spent building comment trees",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
		),
	}
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	if endpoint == "" {
		endpoint = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, categorizeStatus(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCommentCreated counts a stored comment
func (m *Metrics) RecordCommentCreated(guest, reply bool) {
	if m == nil {
		return
	}
	author, kind := "user", "top_level"
	if guest {
		author = "guest"
	}
	if reply {
		kind = "reply"
	}
	m.CommentsCreatedTotal.WithLabelValues(author, kind).Inc()
}

// RecordCommentRejected counts a refused comment submission
func (m *Metrics) RecordCommentRejected(reason string) {
	if m == nil {
		return
	}
	m.CommentsRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordCommentsDeleted counts removed comments
func (m *Metrics) RecordCommentsDeleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CommentsDeletedTotal.Add(float64(n))
}

// RecordArticlePublished counts a publish event
func (m *Metrics) RecordArticlePublished() {
	if m == nil {
		return
	}
	m.ArticlesPublished.Inc()
}

// RecordTreeCache counts a cache hit or miss
func (m *Metrics) RecordTreeCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.TreeCacheLookups.WithLabelValues(result).Inc()
}

// ObserveTreeBuild records how long a tree build took
func (m *Metrics) ObserveTreeBuild(d time.Duration) {
	if m == nil {
		return
	}
	m.TreeBuildDuration.Observe(d.Seconds())
}

// categorizeStatus converts status code to category (2xx, 3xx, 4xx, 5xx)
func categorizeStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// ShouldSkipEndpoint checks if endpoint should be excluded from metrics
func ShouldSkipEndpoint(path string) bool {
	return path == "/metrics" || path == "/health"
}
