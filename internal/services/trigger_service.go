package services

import (
	"log"
	"sort"
	"sync"
	"time"

	"task-reminder-report/internal/utils"
)

// TriggerService schedules one-shot re-invocations of suspended scans. It is
// the in-process stand-in for the host's delayed-trigger facility: triggers
// are identified by opaque ids, can be cancelled before they fire, and carry
// a tag naming the (audience, horizon) key that owns them.
//
// Scheduling a trigger here does not persist it; the owning key's trigger
// record in the KV store is written by the caller, and the two writes are not
// atomic. A crash between them is the known desynchronization hazard handled
// by the manual reset path.
type TriggerService struct {
	mu     sync.Mutex
	timers map[string]*activeTrigger
}

type activeTrigger struct {
	id    string
	tag   string
	timer *time.Timer
}

// NewTriggerService creates a new trigger service
func NewTriggerService() *TriggerService {
	return &TriggerService{timers: make(map[string]*activeTrigger)}
}

// ScheduleOnce arranges for fn to run once after delay and returns the
// trigger id. The trigger removes itself from the active set when it fires.
func (s *TriggerService) ScheduleOnce(tag string, delay time.Duration, fn func()) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := utils.GenerateUUID()
	trigger := &activeTrigger{id: id, tag: tag}
	trigger.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		log.Printf("Continuation trigger %s firing (tag: %s)", id, tag)
		fn()
	})
	s.timers[id] = trigger

	log.Printf("Scheduled continuation trigger %s in %s (tag: %s)", id, delay, tag)
	return id
}

// Cancel stops a pending trigger. Cancelling an unknown or already-fired
// trigger is a no-op.
func (s *TriggerService) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trigger, exists := s.timers[id]
	if !exists {
		return
	}
	trigger.timer.Stop()
	delete(s.timers, id)
	log.Printf("Cancelled continuation trigger %s (tag: %s)", id, trigger.tag)
}

// ListActive returns the ids of all triggers that have not yet fired or been
// cancelled, in stable order
func (s *TriggerService) ListActive() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.timers))
	for id := range s.timers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CancelTagged stops every pending trigger carrying the given tag and returns
// how many were cancelled
func (s *TriggerService) CancelTagged(tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancelled := 0
	for id, trigger := range s.timers {
		if trigger.tag != tag {
			continue
		}
		trigger.timer.Stop()
		delete(s.timers, id)
		cancelled++
	}
	if cancelled > 0 {
		log.Printf("Cancelled %d continuation trigger(s) for tag %s", cancelled, tag)
	}
	return cancelled
}

// Stop cancels all pending triggers
func (s *TriggerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, trigger := range s.timers {
		trigger.timer.Stop()
		delete(s.timers, id)
	}
	log.Println("Trigger service stopped")
}
