package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	EndpointFiles = "files"
	EndpointFile  = "file"
)

var (
	// FetchesTotal counts calls to the external file API by endpoint and outcome.
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csvfiles_fetch_total",
			Help: "Total calls made to the external file API",
		},
		[]string{"endpoint", "outcome"},
	)

	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csvfiles_records_total",
			Help: "Total decoded CSV records by validation result",
		},
		[]string{"result"}, // valid, rejected
	)

	FilesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csvfiles_files_skipped_total",
			Help: "Total candidate files left out of the results",
		},
		[]string{"reason"},
	)

	ProcessDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "csvfiles_process_duration_seconds",
			Help:    "Duration of a full list, fetch and validate run",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		[]string{"status"}, // success, failure
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csvfiles_http_requests_total",
			Help: "Total HTTP requests served by route and status code",
		},
		[]string{"route", "code"},
	)
)
