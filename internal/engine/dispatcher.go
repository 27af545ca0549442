// internal/engine/dispatcher.go
package engine

import (
	"context"
	"time"

	"github.com/courseloom/courseloom/internal/condition"
	"github.com/courseloom/courseloom/internal/lesson"
	"github.com/courseloom/courseloom/internal/script"
)

// HandleEvent is the engine's entry point. The host translates raw
// interaction, media, and timer events into calls here. It never panics
// and never returns an error: one failing trigger must not prevent
// sibling triggers in the same dispatch from running.
//
// Candidates are collected from the object, slide, and global scope
// indices, ordered by descending priority (ties keep registration
// order), and run through eligibility, the rate scheduler, and the
// executor in turn.
func (e *Engine) HandleEvent(ctx context.Context, eventType lesson.EventType, evctx EventContext) {
	if !e.enabled.Load() {
		return
	}

	candidates := e.registry.candidates(evctx.ObjectID, evctx.SlideID)
	if len(candidates) == 0 {
		return
	}

	e.logger.Debug("dispatching event",
		"event", eventType,
		"object", evctx.ObjectID,
		"slide", evctx.SlideID,
		"candidates", len(candidates),
	)

	for _, reg := range candidates {
		if !e.eligible(reg, eventType, evctx) {
			continue
		}

		if reg.trigger.Settings.PreventDefault && evctx.Native != nil {
			evctx.Native.PreventDefault()
		}

		executed := e.schedule(ctx, reg, eventType, evctx)

		// stopPropagation only applies when the trigger actually
		// executed on this turn; a debounced firing is deferred, not
		// an execution.
		if executed && reg.trigger.Settings.StopPropagation {
			break
		}
	}
}

// schedule routes an eligible trigger through debounce/throttle and
// reports whether an execution happened on this turn. Debounce takes
// precedence over throttle when both are configured.
func (e *Engine) schedule(ctx context.Context, reg *registration, eventType lesson.EventType, evctx EventContext) bool {
	settings := reg.trigger.Settings

	if settings.DebounceMs > 0 {
		d := time.Duration(settings.DebounceMs) * time.Millisecond
		// The deferred firing captures this (latest) event's context
		// and runs against the engine's base context; the caller's
		// turn is long gone by the time it fires.
		e.scheduler.scheduleDebounce(reg.trigger.ID, d, func() {
			e.execute(e.baseCtx, reg, eventType, evctx)
		})
		return false
	}

	if settings.ThrottleMs > 0 {
		d := time.Duration(settings.ThrottleMs) * time.Millisecond
		if !e.scheduler.tryThrottle(reg.trigger.ID, d) {
			e.logger.Debug("trigger throttled", "trigger", reg.trigger.ID)
			return false
		}
	}

	e.execute(ctx, reg, eventType, evctx)
	return true
}

// raiseVariableChange dispatches the synthetic variable-change event a
// write produces. This happens synchronously on the writing turn, so an
// action in one trigger can make other triggers (or itself) eligible
// again. No cycle or depth limiting exists.
func (e *Engine) raiseVariableChange(ctx context.Context, name string, old, value any) {
	e.HandleEvent(ctx, lesson.EventVariableChange, EventContext{
		Data: map[string]any{
			"variable": name,
			"value":    value,
			"old":      old,
		},
	})
}

// raiseStateChange dispatches state-exit for the old state followed by
// state-enter for the new one.
func (e *Engine) raiseStateChange(ctx context.Context, objectID, oldState, newState string) {
	e.HandleEvent(ctx, lesson.EventStateExit, EventContext{
		ObjectID: objectID,
		Data:     map[string]any{"state": oldState},
	})
	e.HandleEvent(ctx, lesson.EventStateEnter, EventContext{
		ObjectID: objectID,
		Data:     map[string]any{"state": newState},
	})
}

// expressionEvaluator adapts the script runner for condition predicates:
// the sandbox sees read-only state accessors and event metadata only, so
// condition evaluation cannot mutate anything.
func (e *Engine) expressionEvaluator(evctx EventContext) condition.ExpressionEvaluator {
	return &exprEvaluator{engine: e, evctx: evctx}
}

type exprEvaluator struct {
	engine *Engine
	evctx  EventContext
}

func (ev *exprEvaluator) EvalBool(expression string) (bool, error) {
	e := ev.engine
	env := script.Env{
		GetVariable: func(name string) any {
			v, _ := e.store.Variable(name)
			return v
		},
		ObjectVisible: e.store.Visible,
		ObjectState:   e.store.ObjectState,
		Event:         eventMetadata(ev.evctx),
	}
	return e.scripts.EvalBool(expression, env)
}

func eventMetadata(evctx EventContext) map[string]any {
	meta := map[string]any{
		"object_id": evctx.ObjectID,
		"slide_id":  evctx.SlideID,
	}
	for k, v := range evctx.Data {
		meta[k] = v
	}
	return meta
}
