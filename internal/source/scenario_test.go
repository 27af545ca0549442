// internal/source/scenario_test.go
package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseloom/courseloom/internal/lesson"
)

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walkthrough.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: quiz-walkthrough
timers:
  - id: idle-check
    schedule: "@every 30s"
events:
  - at_ms: 0
    type: click
    object_id: start-button
  - at_ms: 100
    type: keypress
    data:
      key: Enter
`), 0644))

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "quiz-walkthrough", s.Name)
	require.Len(t, s.Timers, 1)
	assert.Equal(t, "idle-check", s.Timers[0].ID)
	require.Len(t, s.Events, 2)
	assert.Equal(t, lesson.EventClick, s.Events[0].Type)
	assert.Equal(t, "start-button", s.Events[0].ObjectID)
	assert.Equal(t, "Enter", s.Events[1].Data["key"])
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPlayerEmitsInOrder(t *testing.T) {
	s := &Scenario{
		Name: "ordering",
		Events: []ScenarioEvent{
			{AtMs: 0, Type: lesson.EventClick, ObjectID: "a"},
			{AtMs: 10, Type: lesson.EventClick, ObjectID: "b"},
			{AtMs: 20, Type: lesson.EventHover, ObjectID: "c"},
		},
	}

	events := make(chan Event, 10)
	p := NewPlayer(s)
	require.NoError(t, p.Start(context.Background(), events))
	close(events)

	var ids []string
	for ev := range events {
		ids = append(ids, ev.Context.ObjectID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestPlayerHonorsOffsets(t *testing.T) {
	s := &Scenario{
		Events: []ScenarioEvent{
			{AtMs: 40, Type: lesson.EventClick},
		},
	}

	events := make(chan Event, 1)
	started := time.Now()
	require.NoError(t, NewPlayer(s).Start(context.Background(), events))

	assert.GreaterOrEqual(t, time.Since(started), 40*time.Millisecond)
}

func TestPlayerStop(t *testing.T) {
	s := &Scenario{
		Events: []ScenarioEvent{
			{AtMs: 0, Type: lesson.EventClick},
			{AtMs: 5000, Type: lesson.EventClick},
		},
	}

	events := make(chan Event, 10)
	p := NewPlayer(s)

	done := make(chan error, 1)
	go func() { done <- p.Start(context.Background(), events) }()

	// Let the first event go out, then abort the long wait.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Stop())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("player did not stop")
	}
}
