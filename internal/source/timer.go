// internal/source/timer.go
package source

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/courseloom/courseloom/internal/engine"
	"github.com/courseloom/courseloom/internal/lesson"
)

// TimerConfig describes a recurring lesson timer.
type TimerConfig struct {
	ID       string `yaml:"id"`
	Schedule string `yaml:"schedule"` // cron expression or "@every 5s"
}

// Timer emits timer events on a cron schedule.
type Timer struct {
	id     string
	cron   *cron.Cron
	events chan<- Event
}

// NewTimer creates a timer source.
func NewTimer(cfg TimerConfig) (*Timer, error) {
	c := cron.New(cron.WithSeconds())

	t := &Timer{
		id:   cfg.ID,
		cron: c,
	}

	_, err := c.AddFunc(cfg.Schedule, func() {
		if t.events != nil {
			t.events <- Event{
				Type: lesson.EventTimer,
				Context: engine.EventContext{
					Data: map[string]any{"timer": t.id},
				},
				Timestamp: time.Now(),
			}
		}
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Timer) Start(ctx context.Context, events chan<- Event) error {
	t.events = events
	t.cron.Start()

	<-ctx.Done()
	return ctx.Err()
}

func (t *Timer) Stop() error {
	t.cron.Stop()
	return nil
}
