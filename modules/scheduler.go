package modules

import (
	"sync"
	"time"
)

// Timer purposes used by the gate.
const (
	purposeKick          = "kick"
	purposeCleanJoin     = "clean_join"
	purposeCleanQuestion = "clean_question"
	purposeReload        = "reload"
)

// TimerKey identifies a pending one-shot action. A structured key
// instead of a concatenated name rules out parsing collisions.
type TimerKey struct {
	Chat    int64
	User    int64
	Purpose string
}

// Scheduler owns the delayed kick/cleanup actions of the gate.
type Scheduler struct {
	mu     sync.Mutex
	timers map[TimerKey]*time.Timer
}

func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[TimerKey]*time.Timer)}
}

// Schedule registers a one-shot action. An existing timer under the same
// key is cancelled first so a duplicate schedule never doubles the side
// effect.
func (s *Scheduler) Schedule(key TimerKey, delay time.Duration, action func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.timers[key]; ok {
		old.Stop()
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		action()
	})
}

// Cancel is best-effort: cancelling an unknown or already-fired timer is
// a no-op. Returns whether a timer was still registered.
func (s *Scheduler) Cancel(key TimerKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.timers, key)
	return true
}

// Active returns the number of registered timers.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// StopAll cancels everything, for shutdown and tests.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}
