// internal/source/scenario.go
package source

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/courseloom/courseloom/internal/engine"
	"github.com/courseloom/courseloom/internal/lesson"
)

// ScenarioEvent is one scripted event in a playback timeline.
type ScenarioEvent struct {
	AtMs     int              `yaml:"at_ms"`
	Type     lesson.EventType `yaml:"type"`
	ObjectID string           `yaml:"object_id"`
	SlideID  string           `yaml:"slide_id"`
	Data     map[string]any   `yaml:"data"`
}

// Scenario is a scripted event timeline for headless lesson runs.
type Scenario struct {
	Name   string          `yaml:"name"`
	Timers []TimerConfig   `yaml:"timers"`
	Events []ScenarioEvent `yaml:"events"`
}

// LoadScenario reads a scenario document from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &s, nil
}

// Player replays a scenario's events at their configured offsets.
type Player struct {
	scenario *Scenario
	cancel   context.CancelFunc
}

// NewPlayer creates a scenario player.
func NewPlayer(s *Scenario) *Player {
	return &Player{scenario: s}
}

// Start emits the scenario's events in order, sleeping between offsets.
// It returns nil once the timeline is exhausted.
func (p *Player) Start(ctx context.Context, events chan<- Event) error {
	ctx, p.cancel = context.WithCancel(ctx)
	start := time.Now()

	for _, ev := range p.scenario.Events {
		due := start.Add(time.Duration(ev.AtMs) * time.Millisecond)
		if wait := time.Until(due); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}

		events <- Event{
			Type: ev.Type,
			Context: engine.EventContext{
				ObjectID: ev.ObjectID,
				SlideID:  ev.SlideID,
				Data:     ev.Data,
			},
			Timestamp: time.Now(),
		}
	}

	return nil
}

func (p *Player) Stop() error {
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}
