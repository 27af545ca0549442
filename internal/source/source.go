// internal/source/source.go
package source

import (
	"context"
	"time"

	"github.com/courseloom/courseloom/internal/engine"
	"github.com/courseloom/courseloom/internal/lesson"
)

// Event is one host-side event ready for dispatch into the engine.
type Event struct {
	Type      lesson.EventType
	Context   engine.EventContext
	Timestamp time.Time
}

// Source produces events for a headless lesson run.
type Source interface {
	// Start begins producing events, sending them to the channel.
	Start(ctx context.Context, events chan<- Event) error
	// Stop stops the source.
	Stop() error
}
