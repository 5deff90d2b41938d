package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flibproxy_http_requests_total",
		Help: "Total number of HTTP requests served by the proxy",
	}, []string{"method", "route", "status"})

	HttpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flibproxy_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// outcome: ok, status (не 2xx), error (сеть, таймаут)
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flibproxy_upstream_requests_total",
		Help: "Requests made to the catalog site by operation and outcome",
	}, []string{"op", "outcome"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flibproxy_upstream_duration_seconds",
		Help:    "Time until the catalog site returned response headers",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	DownloadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flibproxy_download_bytes_total",
		Help: "Bytes relayed to clients by the download proxy",
	})

	DownloadsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flibproxy_downloads_in_flight",
		Help: "Downloads currently being streamed",
	})
)
