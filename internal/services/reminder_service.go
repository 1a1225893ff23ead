package services

import (
	"log"

	"task-reminder-report/internal/models"
)

// ReminderService runs the full scan-then-dispatch cycle for one
// (audience, horizon) key. It is the entry point invoked by the recurring
// schedule, by continuation triggers, and by the API.
type ReminderService struct {
	scan     *ScanService
	dispatch *DispatchService
}

// NewReminderService creates a new reminder service and installs itself as
// the scan engine's continuation target, so a suspended scan's trigger
// re-runs the whole cycle
func NewReminderService(scan *ScanService, dispatch *DispatchService) *ReminderService {
	service := &ReminderService{scan: scan, dispatch: dispatch}
	scan.SetContinuation(service.runContinuation)
	return service
}

// RunCycle scans and, if the scan ran to completion, dispatches. A suspended
// scan returns without dispatching; the scheduled continuation will re-enter
// this cycle later.
func (s *ReminderService) RunCycle(audience string, horizon models.Horizon) (*models.ScanResult, error) {
	result, err := s.scan.Scan(audience, horizon)
	if err != nil {
		return nil, err
	}
	if result.Suspended {
		return result, nil
	}

	if err := s.dispatch.Dispatch(audience, horizon); err != nil {
		return result, err
	}
	return result, nil
}

// Scan exposes the scan stage on its own
func (s *ReminderService) Scan(audience string, horizon models.Horizon) (*models.ScanResult, error) {
	return s.scan.Scan(audience, horizon)
}

// Dispatch exposes the dispatch stage on its own
func (s *ReminderService) Dispatch(audience string, horizon models.Horizon) error {
	return s.dispatch.Dispatch(audience, horizon)
}

// Reset wipes all persisted pipeline state for a key
func (s *ReminderService) Reset(audience string, horizon models.Horizon) error {
	return s.scan.Reset(audience, horizon)
}

func (s *ReminderService) runContinuation(audience string, horizon models.Horizon) {
	if _, err := s.RunCycle(audience, horizon); err != nil {
		log.Printf("ERROR: Continuation cycle for %s/%s failed: %v", audience, horizon, err)
	}
}
