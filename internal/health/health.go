// Package health provides process health monitoring and status reporting.
package health

import "time"

// SystemStatus represents the overall health state of the process.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// Report contains the full health report.
type Report struct {
	Status             SystemStatus `json:"status"`
	LastSuccessfulPoll time.Time    `json:"last_successful_poll"`
	SecondsSincePoll   float64      `json:"seconds_since_poll"`
	CyclesTotal        uint64       `json:"cycles_total"`
	CycleErrors        uint64       `json:"cycle_errors"`
	FaxesProcessed     uint64       `json:"faxes_processed"`
	PartialFailures    uint64       `json:"partial_failures"`
	DownloadFailures   uint64       `json:"download_failures"`
	LastError          string       `json:"last_error,omitempty"`
}
