// internal/template/template_test.go
package template

import (
	"testing"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]any
		want     string
	}{
		{
			name:     "simple replacement",
			template: "Your score: {{score}}",
			vars:     map[string]any{"score": 42},
			want:     "Your score: 42",
		},
		{
			name:     "multiple replacements",
			template: "{{learner}} finished {{lesson}}",
			vars:     map[string]any{"learner": "avery", "lesson": "intro"},
			want:     "avery finished intro",
		},
		{
			name:     "missing variable",
			template: "Your score: {{score}}",
			vars:     map[string]any{},
			want:     "Your score: {{score}}",
		},
		{
			name:     "no placeholders",
			template: "Just plain text",
			vars:     map[string]any{"unused": "value"},
			want:     "Just plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expand(tt.template, tt.vars)
			if got != tt.want {
				t.Errorf("Expand() = %q, want %q", got, tt.want)
			}
		})
	}
}
