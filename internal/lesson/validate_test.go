// internal/lesson/validate_test.go
package lesson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLesson() *Lesson {
	l, err := Parse([]byte(`
id: quiz
slides:
  - id: slide-1
    objects:
      - id: button-1
        triggers:
          - id: t1
            event:
              type: click
            actions:
              - kind: show
                object_id: hint
`))
	if err != nil {
		panic(err)
	}
	return l
}

func TestValidateOK(t *testing.T) {
	assert.Empty(t, Validate(validLesson()))
}

func TestValidateDuplicateIDs(t *testing.T) {
	l, err := Parse([]byte(`
id: quiz
slides:
  - id: slide-1
    objects:
      - id: btn
      - id: btn
  - id: slide-1
triggers:
  - id: t1
    event:
      type: click
  - id: t1
    event:
      type: click
`))
	require.NoError(t, err)

	errs := Validate(l)
	require.NotEmpty(t, errs)

	found := map[string]bool{}
	for _, e := range errs {
		found[e.Error()] = true
	}
	assert.Contains(t, found, `duplicate object id "btn"`)
	assert.Contains(t, found, `duplicate slide id "slide-1"`)
	assert.Contains(t, found, `lesson: duplicate trigger id "t1"`)
}

func TestValidateUnknownKinds(t *testing.T) {
	l, err := Parse([]byte(`
id: quiz
triggers:
  - id: t1
    event:
      type: teleport
    conditions:
      - kind: phase-of-moon
    actions:
      - kind: explode
`))
	require.NoError(t, err)

	errs := Validate(l)
	assert.Len(t, errs, 3)
}

func TestValidateControlFlow(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"if-else without condition", `
id: l
triggers:
  - id: t
    event:
      type: click
    actions:
      - kind: if-else
        then:
          - kind: next-slide
`},
		{"loop without count", `
id: l
triggers:
  - id: t
    event:
      type: click
    actions:
      - kind: loop
        actions:
          - kind: next-slide
`},
		{"script without body", `
id: l
triggers:
  - id: t
    event:
      type: click
    actions:
      - kind: execute-script
`},
		{"open-url without url", `
id: l
triggers:
  - id: t
    event:
      type: click
    actions:
      - kind: open-url
`},
		{"bad on_error policy", `
id: l
triggers:
  - id: t
    event:
      type: click
    actions:
      - kind: next-slide
        on_error: shrug
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			assert.NotEmpty(t, Validate(l))
		})
	}
}

func TestValidateNestedActions(t *testing.T) {
	l, err := Parse([]byte(`
id: l
triggers:
  - id: t
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
          - kind: loop
            loop_count: 2
            actions:
              - kind: execute-script
`))
	require.NoError(t, err)

	errs := Validate(l)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "empty script")
}

func TestValidateMissingIDs(t *testing.T) {
	l, err := Parse([]byte(`
id: l
slides:
  - objects:
      - triggers:
          - event:
              type: click
`))
	require.NoError(t, err)

	errs := Validate(l)
	assert.Len(t, errs, 3)
}
