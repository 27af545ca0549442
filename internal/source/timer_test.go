// internal/source/timer_test.go
package source

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseloom/courseloom/internal/lesson"
)

func TestNewTimerInvalidSchedule(t *testing.T) {
	_, err := NewTimer(TimerConfig{ID: "bad", Schedule: "not a schedule"})
	assert.Error(t, err)
}

func TestTimerEmitsEvents(t *testing.T) {
	timer, err := NewTimer(TimerConfig{ID: "tick", Schedule: "* * * * * *"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 10)
	done := make(chan error, 1)
	go func() { done <- timer.Start(ctx, events) }()
	defer timer.Stop()

	select {
	case ev := <-events:
		assert.Equal(t, lesson.EventTimer, ev.Type)
		assert.Equal(t, "tick", ev.Context.Data["timer"])
	case <-time.After(3 * time.Second):
		t.Fatal("no timer event received")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("timer did not stop")
	}
}
