// internal/engine/registry_test.go
package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseloom/courseloom/internal/lesson"
)

func TestRegistryScopes(t *testing.T) {
	r := newRegistry()

	_, err := r.register(clickTrigger("obj-t"), Scope{ObjectID: "btn"})
	require.NoError(t, err)
	_, err = r.register(clickTrigger("slide-t"), Scope{SlideID: "slide-1"})
	require.NoError(t, err)
	_, err = r.register(clickTrigger("global-t"), Scope{})
	require.NoError(t, err)

	assert.Equal(t, 3, r.size())

	ids := func(regs []*registration) []string {
		out := make([]string, len(regs))
		for i, reg := range regs {
			out[i] = reg.trigger.ID
		}
		return out
	}

	// Object, slide, then global triggers are all in scope.
	assert.Equal(t, []string{"obj-t", "slide-t", "global-t"}, ids(r.candidates("btn", "slide-1")))

	// A different object sees only slide and global triggers.
	assert.Equal(t, []string{"slide-t", "global-t"}, ids(r.candidates("other", "slide-1")))

	// No object or slide context: global only.
	assert.Equal(t, []string{"global-t"}, ids(r.candidates("", "")))
}

func TestRegistryObjectScopeWins(t *testing.T) {
	r := newRegistry()

	// Both ids supplied: the trigger binds to the object.
	reg, err := r.register(clickTrigger("t"), Scope{ObjectID: "btn", SlideID: "slide-1"})
	require.NoError(t, err)
	assert.Equal(t, "btn", reg.scope.ObjectID)

	assert.Len(t, r.candidates("btn", ""), 1)
	assert.Empty(t, r.candidates("", "slide-1"))
}

func TestRegistryDuplicateID(t *testing.T) {
	r := newRegistry()

	_, err := r.register(clickTrigger("t"), Scope{})
	require.NoError(t, err)

	_, err = r.register(clickTrigger("t"), Scope{ObjectID: "btn"})
	assert.Error(t, err)
	assert.Equal(t, 1, r.size())
}

func TestRegistryMissingID(t *testing.T) {
	r := newRegistry()
	_, err := r.register(&lesson.Trigger{Event: lesson.Event{Type: lesson.EventClick}}, Scope{})
	assert.Error(t, err)
}

func TestRegistryPriorityOrdering(t *testing.T) {
	r := newRegistry()

	low := clickTrigger("low")
	low.Settings.Priority = 1
	high := clickTrigger("high")
	high.Settings.Priority = 10
	firstTie := clickTrigger("first-tie")
	secondTie := clickTrigger("second-tie")

	for _, trig := range []*lesson.Trigger{low, firstTie, high, secondTie} {
		_, err := r.register(trig, Scope{})
		require.NoError(t, err)
	}

	var got []string
	for _, reg := range r.candidates("", "") {
		got = append(got, reg.trigger.ID)
	}

	// Descending priority; equal priority keeps registration order.
	assert.Equal(t, []string{"high", "low", "first-tie", "second-tie"}, got)
}

func TestRegistryUnregister(t *testing.T) {
	r := newRegistry()
	_, err := r.register(clickTrigger("t"), Scope{ObjectID: "btn"})
	require.NoError(t, err)

	reg := r.unregister("t")
	require.NotNil(t, reg)
	assert.Equal(t, 0, r.size())
	assert.Empty(t, r.candidates("btn", ""))

	assert.Nil(t, r.unregister("t"), "second unregister is a no-op")
}

func TestRegistryUnregisterResetsCounters(t *testing.T) {
	r := newRegistry()
	trig := clickTrigger("t")

	reg, err := r.register(trig, Scope{})
	require.NoError(t, err)
	reg.recordExecution(time.Now())

	r.unregister("t")

	// Re-registering starts from a clean slate.
	reg2, err := r.register(trig, Scope{})
	require.NoError(t, err)
	count, last := reg2.counters()
	assert.Equal(t, 0, count)
	assert.True(t, last.IsZero())
}

func TestRegistryBulkUnregister(t *testing.T) {
	r := newRegistry()
	mustRegister := func(id string, scope Scope) {
		_, err := r.register(clickTrigger(id), scope)
		require.NoError(t, err)
	}

	mustRegister("o1", Scope{ObjectID: "btn"})
	mustRegister("o2", Scope{ObjectID: "btn"})
	mustRegister("s1", Scope{SlideID: "slide-1"})
	mustRegister("g1", Scope{})

	removed := r.unregisterObject("btn")
	assert.ElementsMatch(t, []string{"o1", "o2"}, removed)
	assert.Equal(t, 2, r.size())

	removed = r.unregisterSlide("slide-1")
	assert.Equal(t, []string{"s1"}, removed)
	assert.Equal(t, 1, r.size())

	r.clear()
	assert.Equal(t, 0, r.size())
}
