// internal/lesson/validate.go
package lesson

import (
	"fmt"
)

var validEventTypes = map[EventType]bool{
	EventClick: true, EventDoubleClick: true, EventHover: true,
	EventKeyPress: true, EventMouseDown: true, EventMouseUp: true,
	EventMediaProgress: true, EventMediaComplete: true,
	EventVariableChange: true, EventStateEnter: true, EventStateExit: true,
	EventSlideEnter: true, EventSlideExit: true, EventTimer: true,
	EventCustom: true,
}

var validConditionKinds = map[ConditionKind]bool{
	ConditionVariable: true, ConditionObjectVisible: true,
	ConditionObjectHidden: true, ConditionObjectState: true,
	ConditionExpression: true,
}

var validActionKinds = map[ActionKind]bool{
	ActionShow: true, ActionHide: true, ActionToggleVisibility: true,
	ActionFadeIn: true, ActionFadeOut: true,
	ActionGoToState: true, ActionResetState: true, ActionAnimate: true,
	ActionGoToSlide: true, ActionNextSlide: true, ActionPreviousSlide: true,
	ActionShowLayer: true, ActionHideLayer: true,
	ActionPlayMedia: true, ActionPauseMedia: true, ActionSeekMedia: true,
	ActionPlayTimeline: true, ActionPauseTimeline: true, ActionSeekTimeline: true,
	ActionSetVariable: true, ActionIncrementVariable: true,
	ActionDecrementVariable: true, ActionToggleVariable: true,
	ActionResetVariable: true,
	ActionPlayAudio:     true, ActionStopAudio: true, ActionStopAllAudio: true,
	ActionEmitStatement: true, ActionOpenURL: true, ActionExecuteScript: true,
	ActionIfElse: true, ActionLoop: true, ActionDelay: true,
	ActionDispatchEvent: true,
}

// Validate checks a lesson document for structural problems: duplicate ids,
// unknown kinds, and malformed control-flow actions. Returns all problems
// found rather than stopping at the first.
func Validate(l *Lesson) []error {
	var errs []error

	seenTriggers := make(map[string]bool)
	seenObjects := make(map[string]bool)
	seenSlides := make(map[string]bool)

	check := func(t *Trigger, where string) {
		errs = append(errs, validateTrigger(t, where, seenTriggers)...)
	}

	for i := range l.Triggers {
		check(&l.Triggers[i], "lesson")
	}
	for i := range l.Slides {
		slide := &l.Slides[i]
		if slide.ID == "" {
			errs = append(errs, fmt.Errorf("slide %d: missing id", i))
		} else if seenSlides[slide.ID] {
			errs = append(errs, fmt.Errorf("duplicate slide id %q", slide.ID))
		}
		seenSlides[slide.ID] = true

		for j := range slide.Triggers {
			check(&slide.Triggers[j], "slide "+slide.ID)
		}
		for j := range slide.Objects {
			obj := &slide.Objects[j]
			if obj.ID == "" {
				errs = append(errs, fmt.Errorf("slide %s: object %d missing id", slide.ID, j))
			} else if seenObjects[obj.ID] {
				errs = append(errs, fmt.Errorf("duplicate object id %q", obj.ID))
			}
			seenObjects[obj.ID] = true

			for k := range obj.Triggers {
				check(&obj.Triggers[k], "object "+obj.ID)
			}
		}
	}

	return errs
}

func validateTrigger(t *Trigger, where string, seen map[string]bool) []error {
	var errs []error

	if t.ID == "" {
		errs = append(errs, fmt.Errorf("%s: trigger missing id", where))
	} else if seen[t.ID] {
		errs = append(errs, fmt.Errorf("%s: duplicate trigger id %q", where, t.ID))
	}
	seen[t.ID] = true

	if !validEventTypes[t.Event.Type] {
		errs = append(errs, fmt.Errorf("trigger %s: unknown event type %q", t.ID, t.Event.Type))
	}

	for i, c := range t.Conditions {
		if !validConditionKinds[c.Kind] {
			errs = append(errs, fmt.Errorf("trigger %s: condition %d has unknown kind %q", t.ID, i, c.Kind))
		}
	}

	errs = append(errs, validateActions(t.ID, t.Actions)...)
	return errs
}

func validateActions(triggerID string, actions []Action) []error {
	var errs []error
	for i := range actions {
		a := &actions[i]
		if !validActionKinds[a.Kind] {
			errs = append(errs, fmt.Errorf("trigger %s: action %d has unknown kind %q", triggerID, i, a.Kind))
			continue
		}
		switch a.Kind {
		case ActionIfElse:
			if a.Condition == nil {
				errs = append(errs, fmt.Errorf("trigger %s: if-else action %s has no condition", triggerID, a.ID))
			} else if !validConditionKinds[a.Condition.Kind] {
				errs = append(errs, fmt.Errorf("trigger %s: if-else action %s has unknown condition kind %q", triggerID, a.ID, a.Condition.Kind))
			}
			errs = append(errs, validateActions(triggerID, a.Then)...)
			errs = append(errs, validateActions(triggerID, a.Else)...)
		case ActionLoop:
			if a.LoopCount <= 0 {
				errs = append(errs, fmt.Errorf("trigger %s: loop action %s has non-positive loop_count %d", triggerID, a.ID, a.LoopCount))
			}
			errs = append(errs, validateActions(triggerID, a.Actions)...)
		case ActionExecuteScript:
			if a.Script == "" {
				errs = append(errs, fmt.Errorf("trigger %s: execute-script action %s has empty script", triggerID, a.ID))
			}
		case ActionOpenURL:
			if a.URL == "" {
				errs = append(errs, fmt.Errorf("trigger %s: open-url action %s has empty url", triggerID, a.ID))
			}
		}
		if a.OnError != "" && a.OnError != ErrorFail && a.OnError != ErrorIgnore && a.OnError != ErrorRetry {
			errs = append(errs, fmt.Errorf("trigger %s: action %s has unknown on_error policy %q", triggerID, a.ID, a.OnError))
		}
	}
	return errs
}
