// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRuns counts sync guard outcomes: success, failed or skipped.
	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_sync_runs_total",
		Help: "Sync guard runs by outcome.",
	}, []string{"status"})

	// ArticlesInserted counts article insert attempts that executed.
	ArticlesInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "news_articles_inserted_total",
		Help: "Article insert attempts issued against the mirror.",
	})

	// HTTPRequests counts requests by route pattern and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
)
