package health

import (
	"errors"
	"testing"
	"time"
)

func TestMonitor_StatusTransitions(t *testing.T) {
	m := NewMonitor(time.Minute)
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	clock := base
	m.now = func() time.Time { return clock }

	// No successful cycle yet
	if got := m.CheckHealth().Status; got != StatusCritical {
		t.Errorf("Expected critical before first poll, got %s", got)
	}

	m.RecordCycleSuccess()
	if got := m.CheckHealth().Status; got != StatusHealthy {
		t.Errorf("Expected healthy right after poll, got %s", got)
	}

	clock = base.Add(5 * time.Minute)
	if got := m.CheckHealth().Status; got != StatusDegraded {
		t.Errorf("Expected degraded after 5 intervals, got %s", got)
	}

	clock = base.Add(30 * time.Minute)
	if got := m.CheckHealth().Status; got != StatusCritical {
		t.Errorf("Expected critical after 30 intervals, got %s", got)
	}
}

func TestMonitor_Counters(t *testing.T) {
	m := NewMonitor(time.Minute)

	m.RecordCycleSuccess()
	m.RecordCycleError(errors.New("gateway listing failed"))
	m.RecordFaxProcessed()
	m.RecordFaxProcessed()
	m.RecordPartialFailure()
	m.RecordDownloadFailure()

	report := m.CheckHealth()
	if report.CyclesTotal != 2 {
		t.Errorf("Expected 2 cycles, got %d", report.CyclesTotal)
	}
	if report.CycleErrors != 1 {
		t.Errorf("Expected 1 cycle error, got %d", report.CycleErrors)
	}
	if report.FaxesProcessed != 2 {
		t.Errorf("Expected 2 faxes processed, got %d", report.FaxesProcessed)
	}
	if report.PartialFailures != 1 || report.DownloadFailures != 1 {
		t.Errorf("Unexpected failure counters: %+v", report)
	}
	if report.LastError != "gateway listing failed" {
		t.Errorf("Expected last error retained, got %q", report.LastError)
	}
}
