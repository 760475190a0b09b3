package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exported at /metrics.
type Metrics struct {
	registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	PostsCreated    prometheus.Counter
	PostsDeleted    prometheus.Counter
	Likes           *prometheus.CounterVec
	Comments        prometheus.Counter
	AuthFailures    *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		PostsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "posts_created_total",
			Help: "Total number of posts created",
		}),
		PostsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "posts_deleted_total",
			Help: "Total number of posts deleted",
		}),
		Likes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "post_likes_total",
				Help: "Total number of like toggles by direction",
			},
			[]string{"direction"},
		),
		Comments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "post_comments_total",
			Help: "Total number of comments added",
		}),
		AuthFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_failures_total",
				Help: "Total number of rejected bearer credentials by reason",
			},
			[]string{"reason"},
		),
	}

	m.registry.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.PostsCreated,
		m.PostsDeleted,
		m.Likes,
		m.Comments,
		m.AuthFailures,
	)
	return m
}

// LikeToggled records one like toggle.
func (m *Metrics) LikeToggled(liked bool) {
	if liked {
		m.Likes.WithLabelValues("like").Inc()
	} else {
		m.Likes.WithLabelValues("unlike").Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
