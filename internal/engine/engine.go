// internal/engine/engine.go
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/courseloom/courseloom/internal/lesson"
	"github.com/courseloom/courseloom/internal/script"
	"github.com/courseloom/courseloom/internal/state"
)

// HistorySink receives a copy of every execution record, in addition to
// the in-memory tracker. Used to mirror history into persistent storage.
type HistorySink interface {
	Record(exec Execution) error
}

// Engine is the trigger/condition/action runtime for one lesson session.
// It owns its own state store, registry, scheduler, and tracker; create
// one engine per running session.
type Engine struct {
	logger    *slog.Logger
	host      Host
	store     *state.Store
	scripts   *script.Runner
	registry  *registry
	scheduler *scheduler
	tracker   *Tracker
	history   HistorySink

	enabled atomic.Bool

	// baseCtx outlives individual HandleEvent calls; debounced firings
	// run against it rather than the (possibly finished) caller turn.
	baseCtx context.Context
	stop    context.CancelFunc

	historyCapacity int
	scriptTimeout   time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithHistorySink mirrors execution records into a persistent sink.
func WithHistorySink(sink HistorySink) Option {
	return func(e *Engine) { e.history = sink }
}

// WithHistoryCapacity sets the tracker ring-buffer capacity.
func WithHistoryCapacity(n int) Option {
	return func(e *Engine) { e.historyCapacity = n }
}

// WithScriptTimeout bounds sandboxed script wall-clock time.
func WithScriptTimeout(d time.Duration) Option {
	return func(e *Engine) { e.scriptTimeout = d }
}

// New creates an engine bound to a host capability implementation. The
// engine starts enabled.
func New(host Host, opts ...Option) *Engine {
	e := &Engine{
		host:      host,
		store:     state.New(),
		registry:  newRegistry(),
		scheduler: newScheduler(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.tracker = NewTracker(e.historyCapacity)
	e.scripts = script.NewRunner(e.scriptTimeout)
	e.baseCtx, e.stop = context.WithCancel(context.Background())
	e.enabled.Store(true)
	return e
}

// Store exposes the engine's state store.
func (e *Engine) Store() *state.Store {
	return e.store
}

// History exposes the in-memory execution tracker.
func (e *Engine) History() *Tracker {
	return e.tracker
}

// SetEnabled toggles global dispatch. While disabled, HandleEvent is a
// no-op; pending debounce timers are not cancelled.
func (e *Engine) SetEnabled(enabled bool) {
	e.enabled.Store(enabled)
}

// Enabled reports whether dispatch is active.
func (e *Engine) Enabled() bool {
	return e.enabled.Load()
}

// RegisterTrigger stores a trigger under one scope. Object scope wins if
// both object and slide are supplied; both empty registers globally.
func (e *Engine) RegisterTrigger(t *lesson.Trigger, scope Scope) error {
	_, err := e.registry.register(t, scope)
	if err != nil {
		return err
	}
	e.logger.Debug("trigger registered",
		"trigger", t.ID,
		"event", t.Event.Type,
		"object", scope.ObjectID,
		"slide", scope.SlideID,
	)
	return nil
}

// UnregisterTrigger removes a trigger from all indices, clears its
// runtime counters, and cancels any pending debounce timer so a deleted
// trigger cannot fire after teardown.
func (e *Engine) UnregisterTrigger(id string) {
	e.scheduler.cancel(id)
	if reg := e.registry.unregister(id); reg != nil {
		e.logger.Debug("trigger unregistered", "trigger", id)
	}
}

// UnregisterObjectTriggers bulk-removes all triggers scoped to an object.
func (e *Engine) UnregisterObjectTriggers(objectID string) {
	for _, id := range e.registry.unregisterObject(objectID) {
		e.scheduler.cancel(id)
	}
}

// UnregisterSlideTriggers bulk-removes all triggers scoped to a slide.
func (e *Engine) UnregisterSlideTriggers(slideID string) {
	for _, id := range e.registry.unregisterSlide(slideID) {
		e.scheduler.cancel(id)
	}
}

// ClearAllTriggers cancels every pending timer and wipes all indices.
func (e *Engine) ClearAllTriggers() {
	e.scheduler.cancelAll()
	e.registry.clear()
}

// TriggerCount returns the number of registered triggers.
func (e *Engine) TriggerCount() int {
	return e.registry.size()
}

// LoadLesson registers a lesson's variables, initial object state, and
// triggers under their authored scopes.
func (e *Engine) LoadLesson(l *lesson.Lesson) error {
	for _, v := range l.Variables {
		e.store.DefineVariable(v.ID, v.Initial)
	}
	for i := range l.Triggers {
		if err := e.RegisterTrigger(&l.Triggers[i], Scope{}); err != nil {
			return err
		}
	}
	for si := range l.Slides {
		slide := &l.Slides[si]
		for i := range slide.Triggers {
			if err := e.RegisterTrigger(&slide.Triggers[i], Scope{SlideID: slide.ID}); err != nil {
				return err
			}
		}
		for oi := range slide.Objects {
			obj := &slide.Objects[oi]
			if obj.Hidden {
				e.store.SetVisible(obj.ID, false)
			}
			if obj.InitialState != "" && obj.InitialState != state.DefaultState {
				e.store.SetObjectState(obj.ID, obj.InitialState)
			}
			for i := range obj.Triggers {
				if err := e.RegisterTrigger(&obj.Triggers[i], Scope{ObjectID: obj.ID}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Close cancels all pending timers and stops debounced firings. Already-
// started action chains are not aborted; there is no per-execution
// cancellation token.
func (e *Engine) Close() {
	e.enabled.Store(false)
	e.stop()
	e.scheduler.cancelAll()
	e.registry.clear()
}
