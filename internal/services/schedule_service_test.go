package services

import (
	"testing"
	"time"

	"task-reminder-report/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduleFixture(t *testing.T, audiences map[string]models.AudienceConfig) (*ScheduleService, *pipelineFixture) {
	t.Helper()

	pipeline := newPipelineFixture(t, filteringSources(), time.Minute, time.Hour, newFakeClock(scanToday).Now)
	store := &fakeAudiences{audiences: audiences}
	svc := NewScheduleService(pipeline.reminders, store)
	t.Cleanup(svc.Stop)
	return svc, pipeline
}

func TestScheduleAudienceRejectsBadCronSpec(t *testing.T) {
	svc, _ := newScheduleFixture(t, nil)

	_, err := svc.ScheduleAudience("ops", models.HorizonToday, "not a cron spec")
	assert.Error(t, err)

	_, err = svc.ScheduleAudience("ops", models.HorizonToday, "0 0 7 * * MON-FRI")
	assert.NoError(t, err)
}

func TestLoadAndScheduleAudiencesSkipsBadEntries(t *testing.T) {
	audiences := map[string]models.AudienceConfig{
		"ops": {
			Name: "ops",
			Mode: models.AudienceModeBroadcast,
			Schedules: []models.ScheduleEntry{
				{Horizon: models.HorizonToday, Cron: "0 0 7 * * MON-FRI"},
				{Horizon: models.Horizon("fortnight"), Cron: "0 0 7 * * *"},
				{Horizon: models.HorizonWeek, Cron: "five past nine"},
			},
		},
	}
	svc, _ := newScheduleFixture(t, audiences)

	// the malformed entries are logged and skipped, never fatal
	require.NoError(t, svc.LoadAndScheduleAudiences())
}

func TestScheduledCycleRuns(t *testing.T) {
	svc, pipeline := newScheduleFixture(t, nil)

	// fire every second
	_, err := svc.ScheduleAudience("ops", models.HorizonToday, "* * * * * *")
	require.NoError(t, err)
	svc.Start()

	require.Eventually(t, func() bool {
		return len(pipeline.notifier.sentMails()) >= 1
	}, 5*time.Second, 50*time.Millisecond)

	assert.Contains(t, pipeline.docs.replaced, "doc-ops-today")
}

func TestUnscheduleAudienceStopsFiring(t *testing.T) {
	svc, pipeline := newScheduleFixture(t, nil)

	entryID, err := svc.ScheduleAudience("ops", models.HorizonToday, "* * * * * *")
	require.NoError(t, err)
	svc.UnscheduleAudience(entryID)
	svc.Start()

	time.Sleep(1500 * time.Millisecond)
	assert.Empty(t, pipeline.notifier.sentMails())
}
