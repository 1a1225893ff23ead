package services

import (
	"fmt"
	"log"

	"task-reminder-report/internal/models"

	"github.com/robfig/cron/v3"
)

// ScheduleService handles the recurring kick-off of reminder cycles. Each
// audience's configuration carries cron expressions per horizon; this service
// loads them and starts a cycle whenever one fires. Continuations of a
// suspended scan are handled separately by the trigger service.
type ScheduleService struct {
	reminders *ReminderService
	audiences AudienceStore
	cron      *cron.Cron
}

// NewScheduleService creates a new schedule service
func NewScheduleService(reminders *ReminderService, audiences AudienceStore) *ScheduleService {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &ScheduleService{
		reminders: reminders,
		audiences: audiences,
		cron:      c,
	}
}

// Start starts the cron scheduler
func (s *ScheduleService) Start() {
	s.cron.Start()
	log.Println("Reminder cron scheduler started")
}

// Stop stops the cron scheduler
func (s *ScheduleService) Stop() {
	s.cron.Stop()
	log.Println("Reminder cron scheduler stopped")
}

// ScheduleAudience registers the recurring kick-off for one horizon of one
// audience. Cron expressions use seconds precision: second minute hour day
// month weekday.
func (s *ScheduleService) ScheduleAudience(audience string, horizon models.Horizon, spec string) (cron.EntryID, error) {
	entryID, err := s.cron.AddFunc(spec, func() {
		s.runScheduledCycle(audience, horizon)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to schedule reminder cycle for %s/%s: %w", audience, horizon, err)
	}

	log.Printf("Scheduled reminder cycle for %s/%s with schedule: %s", audience, horizon, spec)
	return entryID, nil
}

// UnscheduleAudience removes a scheduled reminder cycle
func (s *ScheduleService) UnscheduleAudience(entryID cron.EntryID) {
	s.cron.Remove(entryID)
	log.Printf("Unscheduled reminder cycle (entry ID: %d)", entryID)
}

// LoadAndScheduleAudiences loads all configured audiences and registers their
// schedule entries
func (s *ScheduleService) LoadAndScheduleAudiences() error {
	audiences, err := s.audiences.ListAudiences()
	if err != nil {
		return fmt.Errorf("failed to load audiences: %w", err)
	}

	scheduled := 0
	for _, audience := range audiences {
		for _, entry := range audience.Schedules {
			if !entry.Horizon.Valid() {
				log.Printf("WARNING: Audience %s has schedule with unknown horizon %q, skipping", audience.Name, entry.Horizon)
				continue
			}
			if _, err := s.ScheduleAudience(audience.Name, entry.Horizon, entry.Cron); err != nil {
				log.Printf("WARNING: Failed to schedule %s/%s: %v", audience.Name, entry.Horizon, err)
				continue
			}
			scheduled++
		}
	}

	log.Printf("Scheduled %d reminder cycle(s) across %d audience(s)", scheduled, len(audiences))
	return nil
}

func (s *ScheduleService) runScheduledCycle(audience string, horizon models.Horizon) {
	log.Printf("Scheduled reminder cycle firing for %s/%s", audience, horizon)

	result, err := s.reminders.RunCycle(audience, horizon)
	if err != nil {
		log.Printf("ERROR: Scheduled reminder cycle for %s/%s failed: %v", audience, horizon, err)
		return
	}
	if result.Suspended {
		log.Printf("Scheduled reminder cycle for %s/%s suspended, continuation pending", audience, horizon)
	}
}
