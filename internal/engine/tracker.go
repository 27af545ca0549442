// internal/engine/tracker.go
package engine

import (
	"sync"
	"time"

	"github.com/courseloom/courseloom/internal/lesson"
)

// DefaultHistoryCapacity bounds the in-memory execution history.
const DefaultHistoryCapacity = 1000

// ActionResult is the outcome of one action within an execution.
type ActionResult struct {
	ActionID string
	Kind     lesson.ActionKind
	Success  bool
	Error    string
	Duration time.Duration
}

// Execution is the immutable record of one trigger firing.
type Execution struct {
	ID        string
	TriggerID string
	EventType lesson.EventType
	Timestamp time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	Actions   []ActionResult
}

// Tracker keeps a bounded history of fired triggers for debugging and
// audit. It is a fixed-capacity ring buffer: append is O(1) and the
// oldest record is overwritten once the buffer is full, so pathological
// repeated firing cannot grow memory.
type Tracker struct {
	mu   sync.Mutex
	buf  []Execution
	next int
	size int
}

// NewTracker creates a tracker. A non-positive capacity selects
// DefaultHistoryCapacity.
func NewTracker(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &Tracker{buf: make([]Execution, capacity)}
}

// Add appends an execution record.
func (t *Tracker) Add(exec Execution) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf[t.next] = exec
	t.next = (t.next + 1) % len(t.buf)
	if t.size < len(t.buf) {
		t.size++
	}
}

// Len returns the number of stored records.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}

// Recent returns up to n records, newest first. n <= 0 returns all stored
// records.
func (t *Tracker) Recent(n int) []Execution {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n <= 0 || n > t.size {
		n = t.size
	}
	out := make([]Execution, 0, n)
	for i := 1; i <= n; i++ {
		idx := (t.next - i + len(t.buf)) % len(t.buf)
		out = append(out, t.buf[idx])
	}
	return out
}
