// internal/engine/registry.go
package engine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/courseloom/courseloom/internal/lesson"
)

// Scope is the binding context a trigger was registered under: a specific
// object, a specific slide, or global when both fields are empty. Object
// takes precedence when both are supplied.
type Scope struct {
	ObjectID string
	SlideID  string
}

// registration pairs a trigger with its scope, registration order, and
// runtime counters. Counters live here (not on the trigger) so they reset
// on unregister and never outlive the registration.
type registration struct {
	trigger *lesson.Trigger
	scope   Scope
	seq     uint64

	mu             sync.Mutex
	executionCount int
	lastExecution  time.Time
}

func (r *registration) counters() (count int, last time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.executionCount, r.lastExecution
}

func (r *registration) recordExecution(at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executionCount++
	r.lastExecution = at
}

// registry indexes registered triggers by scope. A trigger id is unique
// across all three indices and appears in exactly one of them.
type registry struct {
	mu       sync.RWMutex
	nextSeq  uint64
	all      map[string]*registration
	byObject map[string][]*registration
	bySlide  map[string][]*registration
	global   []*registration
}

func newRegistry() *registry {
	return &registry{
		all:      make(map[string]*registration),
		byObject: make(map[string][]*registration),
		bySlide:  make(map[string][]*registration),
	}
}

func (r *registry) register(t *lesson.Trigger, scope Scope) (*registration, error) {
	if t.ID == "" {
		return nil, fmt.Errorf("trigger has no id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.all[t.ID]; exists {
		return nil, fmt.Errorf("trigger %s already registered", t.ID)
	}

	reg := &registration{trigger: t, scope: scope, seq: r.nextSeq}
	r.nextSeq++
	r.all[t.ID] = reg

	switch {
	case scope.ObjectID != "":
		r.byObject[scope.ObjectID] = append(r.byObject[scope.ObjectID], reg)
	case scope.SlideID != "":
		r.bySlide[scope.SlideID] = append(r.bySlide[scope.SlideID], reg)
	default:
		r.global = append(r.global, reg)
	}

	return reg, nil
}

func (r *registry) unregister(id string) *registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remove(id)
}

// remove must be called with the lock held.
func (r *registry) remove(id string) *registration {
	reg, ok := r.all[id]
	if !ok {
		return nil
	}
	delete(r.all, id)

	switch {
	case reg.scope.ObjectID != "":
		r.byObject[reg.scope.ObjectID] = without(r.byObject[reg.scope.ObjectID], reg)
		if len(r.byObject[reg.scope.ObjectID]) == 0 {
			delete(r.byObject, reg.scope.ObjectID)
		}
	case reg.scope.SlideID != "":
		r.bySlide[reg.scope.SlideID] = without(r.bySlide[reg.scope.SlideID], reg)
		if len(r.bySlide[reg.scope.SlideID]) == 0 {
			delete(r.bySlide, reg.scope.SlideID)
		}
	default:
		r.global = without(r.global, reg)
	}

	return reg
}

func (r *registry) unregisterObject(objectID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for _, reg := range r.byObject[objectID] {
		removed = append(removed, reg.trigger.ID)
	}
	for _, id := range removed {
		r.remove(id)
	}
	return removed
}

func (r *registry) unregisterSlide(slideID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for _, reg := range r.bySlide[slideID] {
		removed = append(removed, reg.trigger.ID)
	}
	for _, id := range removed {
		r.remove(id)
	}
	return removed
}

func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = make(map[string]*registration)
	r.byObject = make(map[string][]*registration)
	r.bySlide = make(map[string][]*registration)
	r.global = nil
}

func (r *registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.all)
}

// candidates returns the triggers in scope for an event, ordered by
// descending priority; equal priority preserves registration order.
func (r *registry) candidates(objectID, slideID string) []*registration {
	r.mu.RLock()
	var out []*registration
	if objectID != "" {
		out = append(out, r.byObject[objectID]...)
	}
	if slideID != "" {
		out = append(out, r.bySlide[slideID]...)
	}
	out = append(out, r.global...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		pi := out[i].trigger.Settings.Priority
		pj := out[j].trigger.Settings.Priority
		if pi != pj {
			return pi > pj
		}
		return out[i].seq < out[j].seq
	})
	return out
}

func without(regs []*registration, target *registration) []*registration {
	out := regs[:0]
	for _, reg := range regs {
		if reg != target {
			out = append(out, reg)
		}
	}
	return out
}
