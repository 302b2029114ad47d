package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollCycles tracks poll cycles by result
	PollCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faxroute_poll_cycles_total",
			Help: "Total number of poll cycles",
		},
		[]string{"result"},
	)

	// FaxesDiscovered tracks new fax identifiers entering the pipeline
	FaxesDiscovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "faxroute_faxes_discovered_total",
			Help: "Total number of newly discovered faxes",
		},
	)

	// FaxesProcessed tracks terminal pipeline outcomes
	FaxesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faxroute_faxes_processed_total",
			Help: "Total number of faxes reaching a terminal outcome",
		},
		[]string{"outcome"},
	)

	// Classifications tracks which decision-chain stage produced the category
	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faxroute_classifications_total",
			Help: "Total number of classifications by method",
		},
		[]string{"method"},
	)

	// DeliveryAttempts tracks mail delivery attempts by result
	DeliveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faxroute_delivery_attempts_total",
			Help: "Total number of mail delivery attempts",
		},
		[]string{"result"},
	)

	// BoundaryErrors tracks failures per external boundary
	BoundaryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faxroute_boundary_errors_total",
			Help: "Total number of external boundary errors",
		},
		[]string{"boundary", "kind"},
	)

	// BoundaryLatency tracks external boundary call latency
	BoundaryLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "faxroute_boundary_latency_seconds",
			Help:    "External boundary call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"boundary"},
	)

	// ProcessedSetSize tracks the size of the dedup set
	ProcessedSetSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "faxroute_processed_set_size",
			Help: "Number of fax identifiers in the processed set",
		},
	)

	// LastSuccessfulPoll tracks the timestamp of the last successful poll cycle
	LastSuccessfulPoll = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "faxroute_last_successful_poll_timestamp_seconds",
			Help: "Unix timestamp of the last successful poll cycle",
		},
	)

	// TmpFilesSwept tracks stale temp files removed by the sweeper
	TmpFilesSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "faxroute_tmp_files_swept_total",
			Help: "Total number of stale temp files removed by the sweeper",
		},
	)
)
