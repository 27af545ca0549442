// internal/engine/eligibility.go
package engine

import (
	"strings"
	"time"

	"github.com/courseloom/courseloom/internal/condition"
	"github.com/courseloom/courseloom/internal/lesson"
)

// eligible runs the ordered eligibility checks for one candidate,
// cheapest first, short-circuiting on the first failure. Conditions are
// checked last because they may reach into the script sandbox.
func (e *Engine) eligible(reg *registration, eventType lesson.EventType, evctx EventContext) bool {
	t := reg.trigger

	if !t.IsEnabled() {
		return false
	}
	if t.Event.Type != eventType {
		return false
	}

	if src := t.Event.SourceObjectID; src != "" {
		if src == lesson.SourceSelf {
			src = reg.scope.ObjectID
		}
		if src != evctx.ObjectID {
			return false
		}
	}

	count, last := reg.counters()
	if t.Settings.ExecuteOnce && count > 0 {
		return false
	}
	if t.Settings.ExecuteCount > 0 && count >= t.Settings.ExecuteCount {
		return false
	}
	if t.Settings.CooldownMs > 0 && !last.IsZero() {
		cooldown := time.Duration(t.Settings.CooldownMs) * time.Millisecond
		if time.Since(last) < cooldown {
			return false
		}
	}

	if !eventMatches(&t.Event, evctx) {
		return false
	}

	if len(t.Conditions) > 0 {
		ok, err := condition.EvaluateAll(t.Conditions, e.store, e.expressionEvaluator(evctx))
		if err != nil {
			e.logger.Warn("condition evaluation failed", "trigger", t.ID, "error", err)
			return false
		}
		if !ok {
			return false
		}
	}

	return true
}

// eventMatches applies the event-kind-specific predicate. Kinds without
// extra configuration always match.
func eventMatches(ev *lesson.Event, evctx EventContext) bool {
	switch ev.Type {
	case lesson.EventKeyPress:
		return keyMatches(ev, evctx)
	case lesson.EventMouseDown, lesson.EventMouseUp:
		return mouseMatches(ev, evctx)
	case lesson.EventMediaProgress:
		return mediaMatches(ev, evctx)
	case lesson.EventVariableChange:
		return variableMatches(ev, evctx)
	default:
		return true
	}
}

func keyMatches(ev *lesson.Event, evctx EventContext) bool {
	key := dataString(evctx.Data, "key")

	if ev.KeyCombo != "" {
		return comboMatches(ev.KeyCombo, key, evctx.Data)
	}
	if len(ev.Keys) > 0 {
		for _, k := range ev.Keys {
			if k == key {
				return true
			}
		}
		return false
	}
	if ev.Key != "" {
		return ev.Key == key
	}
	return true
}

// comboMatches parses a combo string like "ctrl+shift+k". Every named
// modifier must be pressed and every unnamed modifier must be absent
// (exact match, not "at least"); the trailing key matches
// case-insensitively.
func comboMatches(combo, key string, data map[string]any) bool {
	want := map[string]bool{"ctrl": false, "shift": false, "alt": false, "meta": false}
	wantKey := ""

	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		part = strings.TrimSpace(part)
		if _, isModifier := want[part]; isModifier {
			want[part] = true
		} else {
			wantKey = part
		}
	}

	for name, required := range want {
		if dataBool(data, name) != required {
			return false
		}
	}
	return strings.EqualFold(key, wantKey)
}

var buttonCodes = map[string]int{"left": 0, "middle": 1, "right": 2}

func mouseMatches(ev *lesson.Event, evctx EventContext) bool {
	if ev.Button != "" {
		code, known := buttonCodes[strings.ToLower(ev.Button)]
		if !known {
			return false
		}
		if button, ok := dataInt(evctx.Data, "button"); !ok || button != code {
			return false
		}
	}

	// Only listed modifiers are constrained.
	for name, required := range map[string]*bool{
		"ctrl": ev.Ctrl, "shift": ev.Shift, "alt": ev.Alt, "meta": ev.Meta,
	} {
		if required != nil && dataBool(evctx.Data, name) != *required {
			return false
		}
	}
	return true
}

func mediaMatches(ev *lesson.Event, evctx EventContext) bool {
	if ev.AtTimeMs != nil {
		tolerance := ev.ToleranceMs
		if tolerance <= 0 {
			tolerance = 100
		}
		t, ok := dataFloat(evctx.Data, "time_ms")
		if !ok || abs(t-*ev.AtTimeMs) > tolerance {
			return false
		}
	}
	if ev.AtProgress != nil {
		p, ok := dataFloat(evctx.Data, "progress")
		if !ok || abs(p-*ev.AtProgress) > 0.01 {
			return false
		}
	}
	return true
}

func variableMatches(ev *lesson.Event, evctx EventContext) bool {
	if ev.Variable != "" && dataString(evctx.Data, "variable") != ev.Variable {
		return false
	}
	op := ev.Operator
	if op == "" || op == lesson.OpChanged {
		return true
	}
	ok, err := condition.Compare(op, evctx.Data["value"], ev.Value)
	if err != nil {
		return false
	}
	return ok
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func dataString(data map[string]any, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

func dataBool(data map[string]any, key string) bool {
	if b, ok := data[key].(bool); ok {
		return b
	}
	return false
}

func dataInt(data map[string]any, key string) (int, bool) {
	switch n := data[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func dataFloat(data map[string]any, key string) (float64, bool) {
	switch n := data[key].(type) {
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
