package services

import (
	"encoding/json"
	"fmt"
	"log"

	"task-reminder-report/internal/models"
)

// Key namespaces. Keys are derived deterministically from (audience, horizon)
// so concurrent audience/horizon combinations never collide.
const (
	checkpointKeyPrefix = "reminder:checkpoint"
	statusKeyPrefix     = "reminder:status"
	resultKeyPrefix     = "reminder:result"
	triggerKeyPrefix    = "reminder:trigger"
)

// CheckpointService owns the persisted pipeline state for each
// (audience, horizon) key: the resume checkpoint, the completion gate, the
// finished result hand-off, and the continuation trigger ownership record.
type CheckpointService struct {
	kv KVStore
}

// NewCheckpointService creates a new checkpoint service
func NewCheckpointService(kv KVStore) *CheckpointService {
	return &CheckpointService{kv: kv}
}

// CheckpointKey returns the checkpoint key for one (audience, horizon) pair
func CheckpointKey(audience string, horizon models.Horizon) string {
	return fmt.Sprintf("%s:%s:%s", checkpointKeyPrefix, audience, horizon)
}

// StatusKey returns the completion-gate key for one (audience, horizon) pair
func StatusKey(audience string, horizon models.Horizon) string {
	return fmt.Sprintf("%s:%s:%s", statusKeyPrefix, audience, horizon)
}

// ResultKey returns the finished-result key for one (audience, horizon) pair
func ResultKey(audience string, horizon models.Horizon) string {
	return fmt.Sprintf("%s:%s:%s", resultKeyPrefix, audience, horizon)
}

// TriggerKey returns the trigger ownership key for one (audience, horizon) pair
func TriggerKey(audience string, horizon models.Horizon) string {
	return fmt.Sprintf("%s:%s:%s", triggerKeyPrefix, audience, horizon)
}

// LoadState loads the resume checkpoint for a key. A missing key returns
// (nil, nil). A malformed payload is treated as "no checkpoint" so the scan
// restarts from index 0 instead of wedging; forward progress over strictness.
func (s *CheckpointService) LoadState(audience string, horizon models.Horizon) (*models.AggregationState, error) {
	raw, found, err := s.kv.Get(CheckpointKey(audience, horizon))
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if !found {
		return nil, nil
	}

	var state models.AggregationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		log.Printf("WARNING: Malformed checkpoint for %s/%s, restarting scan from index 0: %v", audience, horizon, err)
		return nil, nil
	}
	if state.ResumeCursor < 0 {
		log.Printf("WARNING: Checkpoint for %s/%s has negative cursor %d, restarting scan from index 0", audience, horizon, state.ResumeCursor)
		return nil, nil
	}

	return &state, nil
}

// SaveState persists the resume checkpoint for a key
func (s *CheckpointService) SaveState(audience string, horizon models.Horizon, state models.AggregationState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	if err := s.kv.Set(CheckpointKey(audience, horizon), string(payload)); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// ClearState removes the resume checkpoint for a key
func (s *CheckpointService) ClearState(audience string, horizon models.Horizon) error {
	return s.kv.Delete(CheckpointKey(audience, horizon))
}

// HasState reports whether a resume checkpoint exists for a key, and the
// cursor it holds
func (s *CheckpointService) HasState(audience string, horizon models.Horizon) (bool, int, error) {
	state, err := s.LoadState(audience, horizon)
	if err != nil {
		return false, 0, err
	}
	if state == nil {
		return false, 0, nil
	}
	return true, state.ResumeCursor, nil
}

// SetPending marks the gate PENDING for a key. Called unconditionally at the
// start of every scan, including resumptions, so a mid-scan status read never
// sees a stale DONE.
func (s *CheckpointService) SetPending(audience string, horizon models.Horizon) error {
	return s.kv.Set(StatusKey(audience, horizon), string(models.ScanStatusPending))
}

// SetDone marks the gate DONE for a key
func (s *CheckpointService) SetDone(audience string, horizon models.Horizon) error {
	return s.kv.Set(StatusKey(audience, horizon), string(models.ScanStatusDone))
}

// Status reads the gate for a key. A missing key reads as ABSENT; so does an
// unrecognized persisted value.
func (s *CheckpointService) Status(audience string, horizon models.Horizon) (models.ScanStatus, error) {
	raw, found, err := s.kv.Get(StatusKey(audience, horizon))
	if err != nil {
		return models.ScanStatusAbsent, fmt.Errorf("failed to read gate: %w", err)
	}
	if !found {
		return models.ScanStatusAbsent, nil
	}

	switch models.ScanStatus(raw) {
	case models.ScanStatusPending:
		return models.ScanStatusPending, nil
	case models.ScanStatusDone:
		return models.ScanStatusDone, nil
	default:
		log.Printf("WARNING: Unrecognized gate value %q for %s/%s, treating as absent", raw, audience, horizon)
		return models.ScanStatusAbsent, nil
	}
}

// ClearStatus removes the gate for a key
func (s *CheckpointService) ClearStatus(audience string, horizon models.Horizon) error {
	return s.kv.Delete(StatusKey(audience, horizon))
}

// SaveResult persists the finished SourceReport sequence so the separate
// dispatch invocation can load it once the gate reads DONE
func (s *CheckpointService) SaveResult(audience string, horizon models.Horizon, reports []models.SourceReport) error {
	payload, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := s.kv.Set(ResultKey(audience, horizon), string(payload)); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// LoadResult loads the finished SourceReport sequence for a key. A missing or
// corrupt entry is treated as an empty result rather than an error so a DONE
// gate can still be consumed and cleared.
func (s *CheckpointService) LoadResult(audience string, horizon models.Horizon) ([]models.SourceReport, error) {
	raw, found, err := s.kv.Get(ResultKey(audience, horizon))
	if err != nil {
		return nil, fmt.Errorf("failed to load result: %w", err)
	}
	if !found {
		log.Printf("WARNING: No persisted result for %s/%s, dispatching empty report set", audience, horizon)
		return nil, nil
	}

	var reports []models.SourceReport
	if err := json.Unmarshal([]byte(raw), &reports); err != nil {
		log.Printf("WARNING: Malformed result for %s/%s, dispatching empty report set: %v", audience, horizon, err)
		return nil, nil
	}

	return reports, nil
}

// ClearResult removes the persisted result for a key
func (s *CheckpointService) ClearResult(audience string, horizon models.Horizon) error {
	return s.kv.Delete(ResultKey(audience, horizon))
}

// RecordTrigger stores the id of the continuation trigger owned by a key, so
// cleanup can find and cancel exactly the trigger it owns without disturbing
// unrelated scheduled work
func (s *CheckpointService) RecordTrigger(audience string, horizon models.Horizon, triggerID string) error {
	return s.kv.Set(TriggerKey(audience, horizon), triggerID)
}

// OwnedTrigger returns the continuation trigger id recorded for a key, if any
func (s *CheckpointService) OwnedTrigger(audience string, horizon models.Horizon) (string, bool, error) {
	return s.kv.Get(TriggerKey(audience, horizon))
}

// ClearTrigger removes the trigger ownership record for a key
func (s *CheckpointService) ClearTrigger(audience string, horizon models.Horizon) error {
	return s.kv.Delete(TriggerKey(audience, horizon))
}
