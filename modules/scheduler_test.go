package modules

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerFiresOnce(t *testing.T) {
	s := NewScheduler()
	defer s.StopAll()

	var fired atomic.Int32
	key := TimerKey{Chat: 100, User: 42, Purpose: purposeKick}
	s.Schedule(key, 20*time.Millisecond, func() { fired.Add(1) })

	assert.Equal(t, 1, s.Active())
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, s.Active())
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	defer s.StopAll()

	var fired atomic.Int32
	key := TimerKey{Chat: 100, User: 42, Purpose: purposeKick}
	s.Schedule(key, 50*time.Millisecond, func() { fired.Add(1) })

	assert.True(t, s.Cancel(key))
	assert.False(t, s.Cancel(key))
	assert.False(t, s.Cancel(TimerKey{Chat: 1, User: 2, Purpose: "unknown"}))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestScheduleReplacesExistingTimer(t *testing.T) {
	s := NewScheduler()
	defer s.StopAll()

	var first, second atomic.Int32
	key := TimerKey{Chat: 100, User: 42, Purpose: purposeKick}
	s.Schedule(key, 30*time.Millisecond, func() { first.Add(1) })
	s.Schedule(key, 30*time.Millisecond, func() { second.Add(1) })

	assert.Equal(t, 1, s.Active())
	assert.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), first.Load())
}

func TestSchedulerKeysAreIndependent(t *testing.T) {
	s := NewScheduler()
	defer s.StopAll()

	var fired atomic.Int32
	s.Schedule(TimerKey{Chat: 100, User: 42, Purpose: purposeKick}, 20*time.Millisecond, func() { fired.Add(1) })
	s.Schedule(TimerKey{Chat: 100, User: 42, Purpose: purposeCleanQuestion}, 20*time.Millisecond, func() { fired.Add(1) })
	s.Schedule(TimerKey{Chat: 100, User: 43, Purpose: purposeKick}, 20*time.Millisecond, func() { fired.Add(1) })

	assert.Equal(t, 3, s.Active())
	assert.Eventually(t, func() bool { return fired.Load() == 3 }, time.Second, 5*time.Millisecond)
}

func TestStopAll(t *testing.T) {
	s := NewScheduler()

	var fired atomic.Int32
	for i := int64(0); i < 5; i++ {
		s.Schedule(TimerKey{Chat: 100, User: i, Purpose: purposeKick}, 50*time.Millisecond, func() { fired.Add(1) })
	}
	s.StopAll()

	assert.Equal(t, 0, s.Active())
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
