// internal/lesson/loader.go
package lesson

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads a lesson document from a YAML file.
func Load(path string) (*Lesson, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lesson file: %w", err)
	}
	return Parse(data)
}

// Parse unmarshals a lesson document from YAML bytes.
func Parse(data []byte) (*Lesson, error) {
	var l Lesson
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing lesson: %w", err)
	}
	applyDefaults(&l)
	return &l, nil
}

// LoadDir loads all lesson documents from a directory.
func LoadDir(dir string) ([]*Lesson, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading lessons directory: %w", err)
	}

	var lessons []*Lesson
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		l, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("loading lesson %s: %w", entry.Name(), err)
		}
		lessons = append(lessons, l)
	}

	return lessons, nil
}

func applyDefaults(l *Lesson) {
	for i := range l.Triggers {
		applyTriggerDefaults(&l.Triggers[i])
	}
	for i := range l.Slides {
		slide := &l.Slides[i]
		for j := range slide.Triggers {
			applyTriggerDefaults(&slide.Triggers[j])
		}
		for j := range slide.Objects {
			obj := &slide.Objects[j]
			if obj.InitialState == "" {
				obj.InitialState = "default"
			}
			for k := range obj.Triggers {
				applyTriggerDefaults(&obj.Triggers[k])
			}
		}
	}
}

func applyTriggerDefaults(t *Trigger) {
	if t.Event.Type == EventMediaProgress && t.Event.ToleranceMs == 0 {
		t.Event.ToleranceMs = 100
	}
	applyActionDefaults(t.Actions)
}

func applyActionDefaults(actions []Action) {
	for i := range actions {
		a := &actions[i]
		if a.OnError == "" {
			a.OnError = ErrorFail
		}
		if a.Kind == ActionOpenURL && a.Target == "" {
			a.Target = "_blank"
		}
		applyActionDefaults(a.Then)
		applyActionDefaults(a.Else)
		applyActionDefaults(a.Actions)
	}
}
