// internal/lesson/loader_test.go
package lesson

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLesson = `
id: intro-circuits
title: Introduction to Circuits
variables:
  - id: score
    initial: 0
  - id: learner
    initial: "Ada"
slides:
  - id: slide-1
    title: Welcome
    objects:
      - id: start-button
        name: Start
        triggers:
          - id: start-click
            event:
              type: click
            actions:
              - kind: go-to-slide
                slide_id: slide-2
  - id: slide-2
    title: Quiz
    objects:
      - id: hint
        hidden: true
    triggers:
      - id: hint-timer
        event:
          type: timer
        actions:
          - kind: show
            object_id: hint
triggers:
  - id: progress-check
    event:
      type: media-progress
      at_time_ms: 30000
    actions:
      - kind: set-variable
        variable: watched
        value: true
`

func writeLesson(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeLesson(t, t.TempDir(), "intro.yaml", sampleLesson)

	l, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "intro-circuits", l.ID)
	assert.Len(t, l.Variables, 2)
	assert.Len(t, l.Slides, 2)
	assert.Len(t, l.Triggers, 1)

	require.Len(t, l.Slides[0].Objects, 1)
	obj := l.Slides[0].Objects[0]
	assert.Equal(t, "start-button", obj.ID)
	require.Len(t, obj.Triggers, 1)
	assert.Equal(t, EventClick, obj.Triggers[0].Event.Type)

	assert.True(t, l.Slides[1].Objects[0].Hidden)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeLesson(t, t.TempDir(), "intro.yaml", sampleLesson)

	l, err := Load(path)
	require.NoError(t, err)

	// Omitted enabled means enabled.
	assert.True(t, l.Triggers[0].IsEnabled())

	// Media progress gets the default matching tolerance.
	assert.Equal(t, float64(100), l.Triggers[0].Event.ToleranceMs)

	// Actions default to fail-fast error handling.
	assert.Equal(t, ErrorFail, l.Triggers[0].Actions[0].OnError)

	// Objects start in the default state.
	assert.Equal(t, "default", l.Slides[0].Objects[0].InitialState)
}

func TestParseNestedActionDefaults(t *testing.T) {
	l, err := Parse([]byte(`
id: branching
triggers:
  - id: branch
    event:
      type: click
    actions:
      - kind: if-else
        condition:
          kind: variable
          variable: score
          operator: gte
          value: 70
        then:
          - kind: open-url
            url: https://example.com/pass
        else:
          - kind: loop
            loop_count: 3
            actions:
              - kind: play-audio
                sound_id: buzz
`))
	require.NoError(t, err)

	root := l.Triggers[0].Actions[0]
	require.Len(t, root.Then, 1)
	assert.Equal(t, "_blank", root.Then[0].Target)
	require.Len(t, root.Else, 1)
	require.Len(t, root.Else[0].Actions, 1)
	assert.Equal(t, ErrorFail, root.Else[0].Actions[0].OnError)
}

func TestParseDisabledTrigger(t *testing.T) {
	l, err := Parse([]byte(`
id: l
triggers:
  - id: off
    enabled: false
    event:
      type: click
`))
	require.NoError(t, err)
	assert.False(t, l.Triggers[0].IsEnabled())
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("id: [unclosed"))
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeLesson(t, dir, "a.yaml", "id: lesson-a")
	writeLesson(t, dir, "b.yml", "id: lesson-b")
	writeLesson(t, dir, "notes.txt", "not a lesson")

	lessons, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "lesson-a", lessons[0].ID)
	assert.Equal(t, "lesson-b", lessons[1].ID)
}

func TestLoadDirPropagatesParseError(t *testing.T) {
	dir := t.TempDir()
	writeLesson(t, dir, "bad.yaml", "id: [unclosed")

	_, err := LoadDir(dir)
	assert.Error(t, err)
}
