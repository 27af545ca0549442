// internal/state/store.go
package state

import (
	"sync"
)

// DefaultState is the object state every object starts in and returns to
// on reset.
const DefaultState = "default"

// Store holds the mutable runtime maps for one engine instance: variables,
// object states, and object visibility. One store per running lesson
// session; there is no package-level instance, so concurrent sessions
// cannot leak into each other.
//
// The store is plain storage with identity semantics. It never raises
// events itself; change notifications are the caller's job.
type Store struct {
	mu         sync.RWMutex
	vars       map[string]any
	initial    map[string]any
	states     map[string]string
	visibility map[string]bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		vars:       make(map[string]any),
		initial:    make(map[string]any),
		states:     make(map[string]string),
		visibility: make(map[string]bool),
	}
}

// DefineVariable declares a variable with its initial value. The current
// value is set to the initial value.
func (s *Store) DefineVariable(id string, initial any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initial[id] = initial
	s.vars[id] = initial
}

// Variable returns the current value of a variable.
func (s *Store) Variable(id string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[id]
	return v, ok
}

// SetVariable writes a variable and returns its previous value.
func (s *Store) SetVariable(id string, value any) (old any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old = s.vars[id]
	s.vars[id] = value
	return old
}

// ResetVariable restores a variable to its declared initial value (nil if
// it was never declared) and returns the new value.
func (s *Store) ResetVariable(id string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	initial := s.initial[id]
	s.vars[id] = initial
	return initial
}

// ObjectState returns the tracked state of an object, DefaultState if
// untracked.
func (s *Store) ObjectState(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[id]; ok {
		return st
	}
	return DefaultState
}

// SetObjectState writes an object's state and returns the previous one.
func (s *Store) SetObjectState(id, stateID string) (old string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.states[id]
	if !ok {
		old = DefaultState
	}
	s.states[id] = stateID
	return old
}

// Visible returns the tracked visibility of an object. Unknown objects are
// treated as visible.
func (s *Store) Visible(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.visibility[id]; ok {
		return v
	}
	return true
}

// SetVisible writes an object's visibility.
func (s *Store) SetVisible(id string, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visibility[id] = visible
}

// ToggleVisible flips an object's tracked visibility and returns the new
// value.
func (s *Store) ToggleVisible(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.visibility[id]
	if !ok {
		cur = true
	}
	s.visibility[id] = !cur
	return !cur
}

// Variables returns a copy of the current variable map, for debugging and
// script metadata.
func (s *Store) Variables() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}
