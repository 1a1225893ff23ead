package services

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleOnceFiresAndRemovesItself(t *testing.T) {
	svc := NewTriggerService()
	defer svc.Stop()

	var fired atomic.Int32
	id := svc.ScheduleOnce("reminder:trigger:ops:today", 10*time.Millisecond, func() {
		fired.Add(1)
	})
	require.NotEmpty(t, id)
	assert.Equal(t, []string{id}, svc.ListActive())

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		return len(svc.ListActive()) == 0
	}, time.Second, 5*time.Millisecond)

	// one-shot: it never fires again
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestCancelStopsPendingTrigger(t *testing.T) {
	svc := NewTriggerService()
	defer svc.Stop()

	var fired atomic.Int32
	id := svc.ScheduleOnce("reminder:trigger:ops:week", 20*time.Millisecond, func() {
		fired.Add(1)
	})
	svc.Cancel(id)

	assert.Empty(t, svc.ListActive())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	// cancelling an unknown id is a no-op
	svc.Cancel("no-such-trigger")
}

func TestCancelTaggedOnlyTouchesMatchingTriggers(t *testing.T) {
	svc := NewTriggerService()
	defer svc.Stop()

	var opsFired, salesFired atomic.Int32
	svc.ScheduleOnce("reminder:trigger:ops:today", 20*time.Millisecond, func() { opsFired.Add(1) })
	svc.ScheduleOnce("reminder:trigger:ops:today", 20*time.Millisecond, func() { opsFired.Add(1) })
	salesID := svc.ScheduleOnce("reminder:trigger:sales:today", 20*time.Millisecond, func() { salesFired.Add(1) })

	cancelled := svc.CancelTagged("reminder:trigger:ops:today")
	assert.Equal(t, 2, cancelled)
	assert.Equal(t, []string{salesID}, svc.ListActive())

	require.Eventually(t, func() bool {
		return salesFired.Load() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), opsFired.Load())
}

func TestStopCancelsEverything(t *testing.T) {
	svc := NewTriggerService()

	var fired atomic.Int32
	svc.ScheduleOnce("a", 20*time.Millisecond, func() { fired.Add(1) })
	svc.ScheduleOnce("b", 20*time.Millisecond, func() { fired.Add(1) })

	svc.Stop()
	assert.Empty(t, svc.ListActive())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
