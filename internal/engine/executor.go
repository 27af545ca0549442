// internal/engine/executor.go
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/courseloom/courseloom/internal/condition"
	"github.com/courseloom/courseloom/internal/lesson"
	"github.com/courseloom/courseloom/internal/logging"
	"github.com/courseloom/courseloom/internal/script"
	"github.com/courseloom/courseloom/internal/template"
)

// announceRedelay is the pause between clearing the live region and
// setting the message, forcing assistive technology to re-announce.
const announceRedelay = 50 * time.Millisecond

// execute runs one trigger's full action sequence and records the
// outcome. Errors are caught here and never propagate to the dispatcher;
// a failing trigger must not prevent siblings in the same dispatch.
func (e *Engine) execute(ctx context.Context, reg *registration, eventType lesson.EventType, evctx EventContext) {
	t := reg.trigger
	started := time.Now()
	exec := Execution{
		ID:        uuid.NewString(),
		TriggerID: t.ID,
		EventType: eventType,
		Timestamp: started,
	}

	logger := logging.WithTrigger(e.logger, t.ID)

	err := e.runTrigger(ctx, reg, evctx, &exec)
	exec.Duration = time.Since(started)
	exec.Success = err == nil
	if err != nil {
		exec.Error = err.Error()
		logger.Error("trigger execution failed",
			"event", eventType,
			"error", err,
		)
	} else {
		logger.Debug("trigger executed",
			"event", eventType,
			"duration", exec.Duration,
			"actions", len(exec.Actions),
		)
	}

	// Counters update only once the whole sequence has settled, success
	// or caught failure, never per action.
	reg.recordExecution(time.Now())

	e.tracker.Add(exec)
	if e.history != nil {
		if err := e.history.Record(exec); err != nil {
			e.logger.Warn("failed to record execution history", "trigger", t.ID, "error", err)
		}
	}
}

func (e *Engine) runTrigger(ctx context.Context, reg *registration, evctx EventContext, exec *Execution) error {
	t := reg.trigger

	if t.Settings.DelayMs > 0 {
		if err := e.wait(ctx, time.Duration(t.Settings.DelayMs)*time.Millisecond); err != nil {
			return err
		}
	}

	if msg := t.Settings.Announce; msg != "" {
		e.announce(ctx, msg)
	}

	return e.runActions(ctx, reg, evctx, t.Actions, exec)
}

// runActions executes a (possibly nested) action list strictly in order.
// Each action is fully settled before the next begins.
func (e *Engine) runActions(ctx context.Context, reg *registration, evctx EventContext, actions []lesson.Action, exec *Execution) error {
	for i := range actions {
		a := &actions[i]
		if err := e.runActionWithPolicy(ctx, reg, evctx, a, exec); err != nil {
			if a.OnError == lesson.ErrorIgnore || reg.trigger.Settings.ContinueOnError {
				continue
			}
			return err
		}
	}
	return nil
}

// runActionWithPolicy applies the per-action delay and retry policy and
// appends the final outcome to the execution record.
func (e *Engine) runActionWithPolicy(ctx context.Context, reg *registration, evctx EventContext, a *lesson.Action, exec *Execution) error {
	if a.DelayMs > 0 {
		if err := e.wait(ctx, time.Duration(a.DelayMs)*time.Millisecond); err != nil {
			return err
		}
	}

	attempts := 1
	if a.OnError == lesson.ErrorRetry && a.MaxRetries > 0 {
		attempts += a.MaxRetries
	}

	started := time.Now()
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = e.runAction(ctx, reg, evctx, a, exec); err == nil {
			break
		}
	}

	result := ActionResult{
		ActionID: a.ID,
		Kind:     a.Kind,
		Success:  err == nil,
		Duration: time.Since(started),
	}
	if err != nil {
		result.Error = err.Error()
	}
	exec.Actions = append(exec.Actions, result)
	return err
}

// runAction interprets one action. The switch is exhaustive over the
// closed action catalog; unknown kinds are rejected at load time and
// again here.
func (e *Engine) runAction(ctx context.Context, reg *registration, evctx EventContext, a *lesson.Action, exec *Execution) error {
	switch a.Kind {
	case lesson.ActionShow:
		id := e.resolveTarget(a.ObjectID, reg)
		e.store.SetVisible(id, true)
		return e.host.ShowObject(ctx, id)

	case lesson.ActionHide:
		id := e.resolveTarget(a.ObjectID, reg)
		e.store.SetVisible(id, false)
		return e.host.HideObject(ctx, id)

	case lesson.ActionToggleVisibility:
		id := e.resolveTarget(a.ObjectID, reg)
		if e.store.ToggleVisible(id) {
			return e.host.ShowObject(ctx, id)
		}
		return e.host.HideObject(ctx, id)

	case lesson.ActionFadeIn:
		id := e.resolveTarget(a.ObjectID, reg)
		e.store.SetVisible(id, true)
		return e.host.AnimateObject(ctx, id, fadeAnimation(a, "fade-in"))

	case lesson.ActionFadeOut:
		id := e.resolveTarget(a.ObjectID, reg)
		e.store.SetVisible(id, false)
		return e.host.AnimateObject(ctx, id, fadeAnimation(a, "fade-out"))

	case lesson.ActionGoToState:
		return e.setObjectState(ctx, reg, a.ObjectID, a.StateID)

	case lesson.ActionResetState:
		return e.setObjectState(ctx, reg, a.ObjectID, "default")

	case lesson.ActionAnimate:
		id := e.resolveTarget(a.ObjectID, reg)
		var anim lesson.Animation
		if a.Animation != nil {
			anim = *a.Animation
		}
		return e.host.AnimateObject(ctx, id, anim)

	case lesson.ActionGoToSlide:
		return e.host.GoToSlide(ctx, SlideRef{ID: a.SlideID, Index: a.SlideIndex})

	case lesson.ActionNextSlide:
		return e.host.NextSlide(ctx)

	case lesson.ActionPreviousSlide:
		return e.host.PreviousSlide(ctx)

	case lesson.ActionShowLayer:
		return e.host.ShowLayer(ctx, a.LayerID)

	case lesson.ActionHideLayer:
		return e.host.HideLayer(ctx, a.LayerID)

	case lesson.ActionPlayMedia:
		return e.host.PlayMedia(ctx, e.resolveTarget(a.ObjectID, reg))

	case lesson.ActionPauseMedia:
		return e.host.PauseMedia(ctx, e.resolveTarget(a.ObjectID, reg))

	case lesson.ActionSeekMedia:
		id := e.resolveTarget(a.ObjectID, reg)
		if a.SeekMs != nil {
			// Seek completes before any requested play starts.
			if err := e.host.SeekMedia(ctx, id, *a.SeekMs); err != nil {
				return err
			}
		}
		if a.Play {
			return e.host.PlayMedia(ctx, id)
		}
		return nil

	case lesson.ActionPlayTimeline:
		return e.host.PlayTimeline(ctx, a.TimelineID)

	case lesson.ActionPauseTimeline:
		return e.host.PauseTimeline(ctx, a.TimelineID)

	case lesson.ActionSeekTimeline:
		var pos float64
		if a.SeekMs != nil {
			pos = *a.SeekMs
		}
		return e.host.SeekTimeline(ctx, a.TimelineID, pos)

	case lesson.ActionSetVariable:
		e.setVariable(ctx, a.Variable, a.Value)
		return nil

	case lesson.ActionIncrementVariable:
		e.adjustVariable(ctx, a.Variable, delta(a))
		return nil

	case lesson.ActionDecrementVariable:
		e.adjustVariable(ctx, a.Variable, -delta(a))
		return nil

	case lesson.ActionToggleVariable:
		cur, _ := e.store.Variable(a.Variable)
		e.setVariable(ctx, a.Variable, !truthy(cur))
		return nil

	case lesson.ActionResetVariable:
		old, _ := e.store.Variable(a.Variable)
		value := e.store.ResetVariable(a.Variable)
		e.raiseVariableChange(ctx, a.Variable, old, value)
		return nil

	case lesson.ActionPlayAudio:
		return e.host.PlaySound(ctx, a.SoundID)

	case lesson.ActionStopAudio:
		return e.host.StopSound(ctx, a.SoundID)

	case lesson.ActionStopAllAudio:
		return e.host.StopAllSounds(ctx)

	case lesson.ActionEmitStatement:
		var st lesson.Statement
		if a.Statement != nil {
			st = *a.Statement
		}
		// Fire and forget: delivery problems are the transport's to log.
		if err := e.host.EmitStatement(ctx, st); err != nil {
			e.logger.Debug("statement emission failed", "error", err)
		}
		return nil

	case lesson.ActionOpenURL:
		target := a.Target
		if target == "" {
			target = "_blank"
		}
		return e.host.OpenURL(ctx, e.expand(a.URL), target)

	case lesson.ActionExecuteScript:
		return e.scripts.Run(ctx, a.Script, e.scriptEnv(ctx, reg, evctx))

	case lesson.ActionIfElse:
		if a.Condition == nil {
			return fmt.Errorf("if-else action %s has no condition", a.ID)
		}
		ok, err := condition.Evaluate(a.Condition, e.store, e.expressionEvaluator(evctx))
		if err != nil {
			return err
		}
		// Exactly one branch runs, never both, never neither.
		if ok {
			return e.runActions(ctx, reg, evctx, a.Then, exec)
		}
		return e.runActions(ctx, reg, evctx, a.Else, exec)

	case lesson.ActionLoop:
		for i := 0; i < a.LoopCount; i++ {
			if a.LoopVariable != "" {
				e.setVariable(ctx, a.LoopVariable, float64(i))
			}
			if err := e.runActions(ctx, reg, evctx, a.Actions, exec); err != nil {
				return err
			}
		}
		return nil

	case lesson.ActionDelay:
		return e.wait(ctx, time.Duration(a.DurationMs)*time.Millisecond)

	case lesson.ActionDispatchEvent:
		return e.host.DispatchEvent(ctx, a.EventName, e.expandPayload(a.Payload))

	default:
		return fmt.Errorf("unknown action kind: %s", a.Kind)
	}
}

// setObjectState writes the state map, notifies the host, and raises the
// synthetic state-exit/state-enter pair.
func (e *Engine) setObjectState(ctx context.Context, reg *registration, objectID, stateID string) error {
	id := e.resolveTarget(objectID, reg)
	old := e.store.SetObjectState(id, stateID)
	if err := e.host.SetObjectState(ctx, id, stateID); err != nil {
		return err
	}
	e.raiseStateChange(ctx, id, old, stateID)
	return nil
}

// setVariable writes the variable map and synchronously raises
// variable-change back through the dispatcher.
func (e *Engine) setVariable(ctx context.Context, name string, value any) {
	old := e.store.SetVariable(name, value)
	e.raiseVariableChange(ctx, name, old, value)
}

func (e *Engine) adjustVariable(ctx context.Context, name string, by float64) {
	cur, _ := e.store.Variable(name)
	base, _ := toNumber(cur)
	e.setVariable(ctx, name, base+by)
}

// resolveTarget maps an empty or "self" object reference to the
// trigger's own scope object.
func (e *Engine) resolveTarget(objectID string, reg *registration) string {
	if objectID == "" || objectID == lesson.SourceSelf {
		return reg.scope.ObjectID
	}
	return objectID
}

// announce clears the live region, then sets the message after a short
// delay so assistive technology re-announces repeated messages. The
// delayed set does not block the action sequence.
func (e *Engine) announce(ctx context.Context, message string) {
	if err := e.host.Announce(ctx, ""); err != nil {
		e.logger.Debug("announcement clear failed", "error", err)
		return
	}
	msg := e.expand(message)
	time.AfterFunc(announceRedelay, func() {
		if err := e.host.Announce(e.baseCtx, msg); err != nil {
			e.logger.Debug("announcement failed", "error", err)
		}
	})
}

// scriptEnv assembles the full capability allow-list for execute-script
// actions. Variable writes route through setVariable so scripts produce
// the same variable-change cascades as variable actions.
func (e *Engine) scriptEnv(ctx context.Context, reg *registration, evctx EventContext) script.Env {
	return script.Env{
		GetVariable: func(name string) any {
			v, _ := e.store.Variable(name)
			return v
		},
		SetVariable: func(name string, value any) {
			e.setVariable(ctx, name, value)
		},
		ShowObject: func(id string) error {
			e.store.SetVisible(id, true)
			return e.host.ShowObject(ctx, id)
		},
		HideObject: func(id string) error {
			e.store.SetVisible(id, false)
			return e.host.HideObject(ctx, id)
		},
		SetObjectState: func(id, stateID string) error {
			return e.setObjectState(ctx, reg, id, stateID)
		},
		ObjectVisible: e.store.Visible,
		ObjectState:   e.store.ObjectState,
		GoToSlide: func(id string) error {
			return e.host.GoToSlide(ctx, SlideRef{ID: id})
		},
		NextSlide:     func() error { return e.host.NextSlide(ctx) },
		PreviousSlide: func() error { return e.host.PreviousSlide(ctx) },
		PlayMedia:     func(id string) error { return e.host.PlayMedia(ctx, id) },
		PauseMedia:    func(id string) error { return e.host.PauseMedia(ctx, id) },
		SeekMedia: func(id string, positionMs float64) error {
			return e.host.SeekMedia(ctx, id, positionMs)
		},
		PlaySound:     func(id string) error { return e.host.PlaySound(ctx, id) },
		StopSound:     func(id string) error { return e.host.StopSound(ctx, id) },
		PlayTimeline:  func(id string) error { return e.host.PlayTimeline(ctx, id) },
		PauseTimeline: func(id string) error { return e.host.PauseTimeline(ctx, id) },
		Log: func(message string) {
			e.logger.Info("script log", "trigger", reg.trigger.ID, "message", message)
		},
		Sleep: func(ms int) {
			_ = e.wait(ctx, time.Duration(ms)*time.Millisecond)
		},
		Event: eventMetadata(evctx),
	}
}

// wait suspends for d, honoring context cancellation.
func (e *Engine) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) expand(s string) string {
	return template.Expand(s, e.store.Variables())
}

func (e *Engine) expandPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if s, ok := v.(string); ok {
			out[k] = e.expand(s)
		} else {
			out[k] = v
		}
	}
	return out
}

func fadeAnimation(a *lesson.Action, name string) lesson.Animation {
	if a.Animation != nil {
		return *a.Animation
	}
	return lesson.Animation{Name: name, DurationMs: 300}
}

func delta(a *lesson.Action) float64 {
	if a.Delta != nil {
		return *a.Delta
	}
	return 1
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	default:
		if n, ok := toNumber(val); ok {
			return n != 0
		}
		return true
	}
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
