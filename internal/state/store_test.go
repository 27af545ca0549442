// internal/state/store_test.go
package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariableLifecycle(t *testing.T) {
	s := New()
	s.DefineVariable("score", 0)

	v, ok := s.Variable("score")
	assert.True(t, ok)
	assert.Equal(t, 0, v)

	old := s.SetVariable("score", 10)
	assert.Equal(t, 0, old)

	v, _ = s.Variable("score")
	assert.Equal(t, 10, v)

	current := s.ResetVariable("score")
	assert.Equal(t, 0, current)
}

func TestVariableUnknown(t *testing.T) {
	s := New()
	_, ok := s.Variable("missing")
	assert.False(t, ok)
}

func TestSetVariableWithoutDefinition(t *testing.T) {
	s := New()

	// Variables can appear at runtime without a declared initial value.
	old := s.SetVariable("attempts", 1)
	assert.Nil(t, old)

	v, ok := s.Variable("attempts")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	// Reset has no declared initial to fall back to.
	assert.Nil(t, s.ResetVariable("attempts"))
}

func TestObjectStateDefaults(t *testing.T) {
	s := New()

	assert.Equal(t, DefaultState, s.ObjectState("button-1"))

	old := s.SetObjectState("button-1", "hovered")
	assert.Equal(t, DefaultState, old)
	assert.Equal(t, "hovered", s.ObjectState("button-1"))
}

func TestVisibility(t *testing.T) {
	s := New()

	// Objects are visible until told otherwise.
	assert.True(t, s.Visible("hint"))

	s.SetVisible("hint", false)
	assert.False(t, s.Visible("hint"))

	assert.True(t, s.ToggleVisible("hint"))
	assert.False(t, s.ToggleVisible("hint"))
}

func TestVariablesSnapshotIsACopy(t *testing.T) {
	s := New()
	s.DefineVariable("name", "Ada")

	snap := s.Variables()
	snap["name"] = "mutated"

	v, _ := s.Variable("name")
	assert.Equal(t, "Ada", v)
}
