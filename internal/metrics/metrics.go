// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readit_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "readit_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "readit_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	// LinksCreatedTotal counts add-link outcomes: created, duplicate, invalid, error.
	LinksCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readit_links_created_total",
			Help: "Add-link attempts by outcome",
		},
		[]string{"result"},
	)

	// CategoriesCreatedTotal counts add-category outcomes: created, duplicate, invalid, error.
	CategoriesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readit_categories_created_total",
			Help: "Add-category attempts by outcome",
		},
		[]string{"result"},
	)

	// TitleResolutionsTotal counts title fetches: ok, miss (no title or non-2xx), error.
	TitleResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readit_title_resolutions_total",
			Help: "Page title resolution attempts by outcome",
		},
		[]string{"result"},
	)

	InvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readit_view_invalidations_total",
			Help: "View invalidation signals by sink and outcome",
		},
		[]string{"sink", "result"},
	)
)

// Outcome labels shared by the create counters.
const (
	ResultCreated   = "created"
	ResultDuplicate = "duplicate"
	ResultInvalid   = "invalid"
	ResultError     = "error"
)
