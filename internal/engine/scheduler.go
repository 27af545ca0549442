// internal/engine/scheduler.go
package engine

import (
	"sync"
	"time"
)

// scheduler tracks per-trigger debounce timers and throttle locks. Every
// handle is keyed by trigger id so registry teardown can cancel it; a
// deleted trigger must never fire after unregistration.
type scheduler struct {
	mu       sync.Mutex
	debounce map[string]*time.Timer
	throttle map[string]*time.Timer
}

func newScheduler() *scheduler {
	return &scheduler{
		debounce: make(map[string]*time.Timer),
		throttle: make(map[string]*time.Timer),
	}
}

// scheduleDebounce cancels any outstanding timer for the trigger and
// reschedules fn after d. Bursts therefore collapse to one firing using
// the latest call's closure.
func (s *scheduler) scheduleDebounce(triggerID string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.debounce[triggerID]; ok {
		timer.Stop()
	}
	s.debounce[triggerID] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.debounce, triggerID)
		s.mu.Unlock()
		fn()
	})
}

// tryThrottle reports whether the trigger may fire now. The first call
// locks the trigger for d; calls during the lock are dropped, not
// deferred.
func (s *scheduler) tryThrottle(triggerID string, d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, locked := s.throttle[triggerID]; locked {
		return false
	}
	s.throttle[triggerID] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.throttle, triggerID)
		s.mu.Unlock()
	})
	return true
}

// cancel stops and forgets any pending handles for one trigger.
func (s *scheduler) cancel(triggerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.debounce[triggerID]; ok {
		timer.Stop()
		delete(s.debounce, triggerID)
	}
	if timer, ok := s.throttle[triggerID]; ok {
		timer.Stop()
		delete(s.throttle, triggerID)
	}
}

// cancelAll stops every pending handle, for full engine teardown.
func (s *scheduler) cancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.debounce {
		timer.Stop()
		delete(s.debounce, id)
	}
	for id, timer := range s.throttle {
		timer.Stop()
		delete(s.throttle, id)
	}
}
