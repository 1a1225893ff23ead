package services

import (
	"testing"
	"time"

	"task-reminder-report/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyNamespacesAreDisjoint(t *testing.T) {
	keys := []string{
		CheckpointKey("ops", models.HorizonToday),
		StatusKey("ops", models.HorizonToday),
		ResultKey("ops", models.HorizonToday),
		TriggerKey("ops", models.HorizonToday),
		CheckpointKey("ops", models.HorizonWeek),
		CheckpointKey("sales", models.HorizonToday),
	}

	seen := make(map[string]bool)
	for _, key := range keys {
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}

	assert.Equal(t, "reminder:checkpoint:ops:today", CheckpointKey("ops", models.HorizonToday))
	assert.Equal(t, "reminder:status:ops:week", StatusKey("ops", models.HorizonWeek))
}

func TestStateRoundtrip(t *testing.T) {
	svc := NewCheckpointService(newMemoryKV())

	state := models.AggregationState{
		ResumeCursor: 3,
		Accumulated: []models.SourceReport{
			{
				SourceName: "Maintenance",
				SourceURL:  "https://tracker/maintenance",
				Items: []models.WorkItem{
					{Label: "fix pump", Note: "valve 3", DueDate: time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), Assignee: "A"},
				},
			},
		},
	}
	require.NoError(t, svc.SaveState("ops", models.HorizonWeek, state))

	loaded, err := svc.LoadState("ops", models.HorizonWeek)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, state, *loaded)

	exists, cursor, err := svc.HasState("ops", models.HorizonWeek)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 3, cursor)

	require.NoError(t, svc.ClearState("ops", models.HorizonWeek))
	loaded, err = svc.LoadState("ops", models.HorizonWeek)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestLoadStateToleratesBadPayloads(t *testing.T) {
	kv := newMemoryKV()
	svc := NewCheckpointService(kv)

	require.NoError(t, kv.Set(CheckpointKey("ops", models.HorizonToday), "{broken"))
	state, err := svc.LoadState("ops", models.HorizonToday)
	require.NoError(t, err)
	assert.Nil(t, state)

	require.NoError(t, kv.Set(CheckpointKey("ops", models.HorizonToday), `{"resumeCursor":-2}`))
	state, err = svc.LoadState("ops", models.HorizonToday)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestGateTransitions(t *testing.T) {
	svc := NewCheckpointService(newMemoryKV())

	status, err := svc.Status("ops", models.HorizonToday)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusAbsent, status)

	require.NoError(t, svc.SetPending("ops", models.HorizonToday))
	status, err = svc.Status("ops", models.HorizonToday)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusPending, status)

	require.NoError(t, svc.SetDone("ops", models.HorizonToday))
	status, err = svc.Status("ops", models.HorizonToday)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusDone, status)

	// per-key isolation
	other, err := svc.Status("ops", models.HorizonWeek)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusAbsent, other)

	require.NoError(t, svc.ClearStatus("ops", models.HorizonToday))
	status, err = svc.Status("ops", models.HorizonToday)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusAbsent, status)
}

func TestGateUnrecognizedValueReadsAbsent(t *testing.T) {
	kv := newMemoryKV()
	svc := NewCheckpointService(kv)

	require.NoError(t, kv.Set(StatusKey("ops", models.HorizonToday), "halfway"))

	status, err := svc.Status("ops", models.HorizonToday)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusAbsent, status)
}

func TestResultRoundtripAndTolerance(t *testing.T) {
	kv := newMemoryKV()
	svc := NewCheckpointService(kv)

	reports := []models.SourceReport{
		{SourceName: "Projects", Items: []models.WorkItem{{Label: "task", DueDate: time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)}}},
	}
	require.NoError(t, svc.SaveResult("ops", models.HorizonToday, reports))

	loaded, err := svc.LoadResult("ops", models.HorizonToday)
	require.NoError(t, err)
	assert.Equal(t, reports, loaded)

	// missing and corrupt entries both read as empty
	missing, err := svc.LoadResult("sales", models.HorizonToday)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, kv.Set(ResultKey("ops", models.HorizonToday), "[[["))
	corrupt, err := svc.LoadResult("ops", models.HorizonToday)
	require.NoError(t, err)
	assert.Nil(t, corrupt)

	require.NoError(t, svc.ClearResult("ops", models.HorizonToday))
}

func TestTriggerOwnershipRecord(t *testing.T) {
	svc := NewCheckpointService(newMemoryKV())

	_, found, err := svc.OwnedTrigger("ops", models.HorizonWeek)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, svc.RecordTrigger("ops", models.HorizonWeek, "trigger-123"))
	id, found, err := svc.OwnedTrigger("ops", models.HorizonWeek)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "trigger-123", id)

	require.NoError(t, svc.ClearTrigger("ops", models.HorizonWeek))
	_, found, err = svc.OwnedTrigger("ops", models.HorizonWeek)
	require.NoError(t, err)
	assert.False(t, found)
}
