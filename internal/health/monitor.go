package health

import (
	"sync"
	"time"
)

// Monitor aggregates pipeline liveness signals. It is written by the poller
// and processor and read by the HTTP server.
type Monitor struct {
	pollInterval time.Duration

	mu               sync.RWMutex
	lastSuccess      time.Time
	cyclesTotal      uint64
	cycleErrors      uint64
	faxesProcessed   uint64
	partialFailures  uint64
	downloadFailures uint64
	lastError        string
	now              func() time.Time
}

// NewMonitor creates a monitor. pollInterval calibrates how stale the last
// successful cycle may be before the process counts as degraded.
func NewMonitor(pollInterval time.Duration) *Monitor {
	return &Monitor{
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// RecordCycleSuccess marks a completed poll cycle.
func (m *Monitor) RecordCycleSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cyclesTotal++
	m.lastSuccess = m.now()
	m.lastError = ""
}

// RecordCycleError marks a poll cycle that could not list pending faxes.
func (m *Monitor) RecordCycleError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cyclesTotal++
	m.cycleErrors++
	m.lastError = err.Error()
}

// RecordFaxProcessed counts one terminal fax outcome.
func (m *Monitor) RecordFaxProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faxesProcessed++
}

// RecordPartialFailure counts a fax with at least one failed destination.
func (m *Monitor) RecordPartialFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partialFailures++
}

// RecordDownloadFailure counts a fax whose download retries were exhausted.
func (m *Monitor) RecordDownloadFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadFailures++
}

// CheckHealth returns the current report. The process is healthy while
// poll cycles keep succeeding, degraded after missing a few intervals, and
// critical once polling has been silent for ten intervals (or never
// succeeded).
func (m *Monitor) CheckHealth() Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report := Report{
		LastSuccessfulPoll: m.lastSuccess,
		CyclesTotal:        m.cyclesTotal,
		CycleErrors:        m.cycleErrors,
		FaxesProcessed:     m.faxesProcessed,
		PartialFailures:    m.partialFailures,
		DownloadFailures:   m.downloadFailures,
		LastError:          m.lastError,
	}

	switch {
	case m.lastSuccess.IsZero():
		report.Status = StatusCritical
	default:
		since := m.now().Sub(m.lastSuccess)
		report.SecondsSincePoll = since.Seconds()
		switch {
		case since <= 3*m.pollInterval:
			report.Status = StatusHealthy
		case since <= 10*m.pollInterval:
			report.Status = StatusDegraded
		default:
			report.Status = StatusCritical
		}
	}
	return report
}
