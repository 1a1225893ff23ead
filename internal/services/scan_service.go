package services

import (
	"fmt"
	"log"
	"time"

	"task-reminder-report/internal/models"
	"task-reminder-report/internal/utils"
)

// Reserved source names. These are presentation views built over the real
// sources, not work sources themselves, and are never scanned.
const (
	ReservedOngoingIndex   = "Ongoing Index"
	ReservedCompletedIndex = "Completed Index"
)

// weekLookahead is how many business days the WEEK horizon looks past today
const weekLookahead = 5

// ScanService is the resumable scan engine. One Scan invocation walks the
// source enumeration from the persisted cursor, accumulating one SourceReport
// per source that contributes at least one qualifying item, and suspends by
// checkpointing and scheduling its own re-invocation when the wall-clock
// budget runs out.
type ScanService struct {
	checkpoints *CheckpointService
	sources     SourceStore
	triggers    *TriggerService

	budget            time.Duration
	continuationDelay time.Duration

	// now is injectable for tests; defaults to time.Now
	now func() time.Time

	// continuation is invoked by a fired trigger to re-run the cycle for the
	// owning key. Set by the pipeline after construction.
	continuation func(audience string, horizon models.Horizon)
}

// NewScanService creates a new scan service
func NewScanService(
	checkpoints *CheckpointService,
	sources SourceStore,
	triggers *TriggerService,
	budget time.Duration,
	continuationDelay time.Duration,
) *ScanService {
	return &ScanService{
		checkpoints:       checkpoints,
		sources:           sources,
		triggers:          triggers,
		budget:            budget,
		continuationDelay: continuationDelay,
		now:               time.Now,
	}
}

// SetContinuation installs the function a continuation trigger re-invokes.
// The pipeline points this at its own scan-then-dispatch cycle.
func (s *ScanService) SetContinuation(fn func(audience string, horizon models.Horizon)) {
	s.continuation = fn
}

// Scan runs one scan invocation for the given (audience, horizon) key.
// It resumes from a persisted checkpoint when one exists, otherwise starts at
// index 0. The returned result has Suspended=true when the time budget was
// exceeded; the gate is left PENDING and a continuation has been scheduled.
// On natural completion the checkpoint is cleared, the owned continuation is
// cancelled, the result set is persisted, and the gate is set DONE.
func (s *ScanService) Scan(audience string, horizon models.Horizon) (*models.ScanResult, error) {
	if audience == "" {
		return nil, fmt.Errorf("audience is required")
	}
	if !horizon.Valid() {
		return nil, fmt.Errorf("unknown horizon %q", horizon)
	}

	start := s.now()
	today := utils.DateOnly(start)

	state, err := s.checkpoints.LoadState(audience, horizon)
	if err != nil {
		return nil, err
	}

	var accumulated []models.SourceReport
	cursor := 0
	if state != nil {
		accumulated = state.Accumulated
		cursor = state.ResumeCursor
		log.Printf("Resuming scan for %s/%s at source index %d (%d report(s) accumulated)",
			audience, horizon, cursor, len(accumulated))
	} else {
		log.Printf("Starting scan for %s/%s", audience, horizon)
	}

	// PENDING is set on every invocation, including resumptions, so a status
	// read during the scan never sees a stale DONE
	if err := s.checkpoints.SetPending(audience, horizon); err != nil {
		return nil, err
	}

	sources, err := s.sources.ListSources()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate sources: %w", err)
	}

	for i := cursor; i < len(sources); i++ {
		if s.now().Sub(start) > s.budget {
			if err := s.suspend(audience, horizon, accumulated, i); err != nil {
				return nil, err
			}
			return &models.ScanResult{Suspended: true}, nil
		}

		source := sources[i]
		if isReservedSource(source.Name) {
			continue
		}

		rows, err := s.sources.SourceRows(source.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to read source %s: %w", source.Name, err)
		}
		if len(rows) == 0 {
			continue
		}

		items := collectItems(rows, horizon, today)
		if len(items) == 0 {
			// a source with no qualifying items contributes no report at all
			continue
		}

		accumulated = append(accumulated, models.SourceReport{
			SourceName: source.Name,
			SourceURL:  source.URL,
			Items:      items,
		})
	}

	if err := s.finish(audience, horizon, accumulated); err != nil {
		return nil, err
	}

	log.Printf("Scan for %s/%s complete: %d source report(s)", audience, horizon, len(accumulated))
	return &models.ScanResult{Reports: accumulated}, nil
}

// suspend checkpoints the partial result and arranges one re-invocation.
// The two writes are not atomic; a crash between them leaves a checkpoint
// with no continuation, recovered only by the manual reset path.
func (s *ScanService) suspend(audience string, horizon models.Horizon, accumulated []models.SourceReport, cursor int) error {
	state := models.AggregationState{Accumulated: accumulated, ResumeCursor: cursor}
	if err := s.checkpoints.SaveState(audience, horizon, state); err != nil {
		return err
	}

	// replace any prior continuation for this key, never stack them
	if prior, found, err := s.checkpoints.OwnedTrigger(audience, horizon); err == nil && found {
		s.triggers.Cancel(prior)
	}

	tag := TriggerKey(audience, horizon)
	id := s.triggers.ScheduleOnce(tag, s.continuationDelay, func() {
		if s.continuation != nil {
			s.continuation(audience, horizon)
		}
	})
	if err := s.checkpoints.RecordTrigger(audience, horizon, id); err != nil {
		return err
	}

	log.Printf("Scan for %s/%s suspended at source index %d, continuation in %s",
		audience, horizon, cursor, s.continuationDelay)
	return nil
}

// finish clears the checkpoint and continuation, persists the result, and
// sets the gate DONE
func (s *ScanService) finish(audience string, horizon models.Horizon, accumulated []models.SourceReport) error {
	if err := s.checkpoints.ClearState(audience, horizon); err != nil {
		return err
	}

	if id, found, err := s.checkpoints.OwnedTrigger(audience, horizon); err == nil && found {
		s.triggers.Cancel(id)
		if err := s.checkpoints.ClearTrigger(audience, horizon); err != nil {
			return err
		}
	}

	if err := s.checkpoints.SaveResult(audience, horizon, accumulated); err != nil {
		return err
	}
	return s.checkpoints.SetDone(audience, horizon)
}

// Reset wipes all persisted state for a key: checkpoint, gate, result, and
// the owned continuation trigger. This is the manual recovery path for a
// desynchronized key (e.g. a stuck PENDING gate with no checkpoint).
func (s *ScanService) Reset(audience string, horizon models.Horizon) error {
	if id, found, err := s.checkpoints.OwnedTrigger(audience, horizon); err == nil && found {
		s.triggers.Cancel(id)
	}
	if err := s.checkpoints.ClearTrigger(audience, horizon); err != nil {
		return err
	}
	if err := s.checkpoints.ClearState(audience, horizon); err != nil {
		return err
	}
	if err := s.checkpoints.ClearResult(audience, horizon); err != nil {
		return err
	}
	if err := s.checkpoints.ClearStatus(audience, horizon); err != nil {
		return err
	}
	log.Printf("Reset persisted state for %s/%s", audience, horizon)
	return nil
}

// isReservedSource reports whether the name is one of the index views that
// are never scanned
func isReservedSource(name string) bool {
	return name == ReservedOngoingIndex || name == ReservedCompletedIndex
}

// collectItems extracts the qualifying work items of one source, in row order
func collectItems(rows []models.TaskRow, horizon models.Horizon, today time.Time) []models.WorkItem {
	var items []models.WorkItem
	for _, row := range rows {
		if row.DueDate == nil {
			// rows without a due date are not subject to reminding
			continue
		}
		if !includeRow(row, horizon, today) {
			continue
		}
		items = append(items, models.WorkItem{
			Label:    row.Item,
			Note:     row.Summary,
			DueDate:  utils.DateOnly(*row.DueDate),
			Assignee: row.Assignee,
		})
	}
	return items
}

// includeRow applies the horizon filter to one row. Comparisons are by
// calendar date, so a due date stored in one location and a server clock in
// another still land on the same calendar day.
func includeRow(row models.TaskRow, horizon models.Horizon, today time.Time) bool {
	if row.Completed {
		return false
	}

	due := *row.DueDate
	if !utils.DateAfter(due, today) {
		return true
	}
	if horizon != models.HorizonWeek {
		return false
	}
	for _, day := range utils.NextBusinessDays(today, weekLookahead) {
		if utils.SameDate(due, day) {
			return true
		}
	}
	return false
}
