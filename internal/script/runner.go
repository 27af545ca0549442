// internal/script/runner.go
package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shopify/go-lua"
)

// ErrTimeout indicates a script did not finish before its deadline. The
// runner cannot forcibly halt a script that never yields control back to
// a capability call; such a script keeps running on its goroutine and may
// still complete its side effects after the timeout is reported. This is
// an accepted limitation of cooperative timeouts.
var ErrTimeout = errors.New("script execution timed out")

// DefaultTimeout bounds script wall-clock time when no explicit timeout
// is configured.
const DefaultTimeout = 5 * time.Second

// Env is the capability allow-list visible to a script. Only the non-nil
// operations become reachable identifiers inside the sandbox; the Lua
// state opens no standard libraries, so nothing else exists.
type Env struct {
	GetVariable func(name string) any
	SetVariable func(name string, value any)

	ShowObject     func(id string) error
	HideObject     func(id string) error
	SetObjectState func(id, stateID string) error
	ObjectVisible  func(id string) bool
	ObjectState    func(id string) string

	GoToSlide     func(id string) error
	NextSlide     func() error
	PreviousSlide func() error

	PlayMedia  func(id string) error
	PauseMedia func(id string) error
	SeekMedia  func(id string, positionMs float64) error

	PlaySound func(id string) error
	StopSound func(id string) error

	PlayTimeline  func(id string) error
	PauseTimeline func(id string) error

	Log   func(message string)
	Sleep func(ms int) // cooperative yield point, honors the deadline race

	// Read-only metadata exposed as the `event` table.
	Event map[string]any
}

// Runner executes sandboxed scripts with a wall-clock timeout.
type Runner struct {
	timeout time.Duration
}

// NewRunner creates a runner. A non-positive timeout selects
// DefaultTimeout.
func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{timeout: timeout}
}

// Run executes a script body against the capability environment. The
// script races the runner's timeout; whichever settles first decides the
// outcome. See ErrTimeout for the preemption caveat.
func (r *Runner) Run(ctx context.Context, source string, env Env) error {
	l := lua.NewState()
	register(l, env)

	done := make(chan error, 1)
	go func() {
		done <- runProtected(l, source)
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EvalBool evaluates a boolean expression in the sandbox, synchronously
// on the calling goroutine. Intended for condition predicates: pass an
// Env with read-only operations only.
func (r *Runner) EvalBool(expression string, env Env) (bool, error) {
	l := lua.NewState()
	register(l, env)

	if err := runProtected(l, "return ("+expression+")"); err != nil {
		return false, err
	}
	result := l.ToBoolean(-1)
	l.Pop(1)
	return result, nil
}

func runProtected(l *lua.State, source string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("script panic: %v", rec)
		}
	}()
	if err := lua.DoString(l, source); err != nil {
		return fmt.Errorf("script error: %w", err)
	}
	return nil
}

// register installs the allow-listed capabilities as globals. The state
// has no standard libraries opened, so the registered names and the
// `event` table are the only reachable identifiers.
func register(l *lua.State, env Env) {
	registerFunc(l, "get_variable", env.GetVariable != nil, func(l *lua.State) int {
		name := lua.CheckString(l, 1)
		pushValue(l, env.GetVariable(name))
		return 1
	})
	registerFunc(l, "set_variable", env.SetVariable != nil, func(l *lua.State) int {
		name := lua.CheckString(l, 1)
		env.SetVariable(name, toValue(l, 2))
		return 0
	})

	registerIDFunc(l, "show_object", env.ShowObject)
	registerIDFunc(l, "hide_object", env.HideObject)
	registerFunc(l, "set_object_state", env.SetObjectState != nil, func(l *lua.State) int {
		id := lua.CheckString(l, 1)
		stateID := lua.CheckString(l, 2)
		if err := env.SetObjectState(id, stateID); err != nil {
			lua.Errorf(l, "set_object_state: %s", err.Error())
		}
		return 0
	})
	registerFunc(l, "object_visible", env.ObjectVisible != nil, func(l *lua.State) int {
		l.PushBoolean(env.ObjectVisible(lua.CheckString(l, 1)))
		return 1
	})
	registerFunc(l, "object_state", env.ObjectState != nil, func(l *lua.State) int {
		l.PushString(env.ObjectState(lua.CheckString(l, 1)))
		return 1
	})

	registerIDFunc(l, "go_to_slide", env.GoToSlide)
	registerNullaryFunc(l, "next_slide", env.NextSlide)
	registerNullaryFunc(l, "previous_slide", env.PreviousSlide)

	registerIDFunc(l, "play_media", env.PlayMedia)
	registerIDFunc(l, "pause_media", env.PauseMedia)
	registerFunc(l, "seek_media", env.SeekMedia != nil, func(l *lua.State) int {
		id := lua.CheckString(l, 1)
		pos := lua.CheckNumber(l, 2)
		if err := env.SeekMedia(id, pos); err != nil {
			lua.Errorf(l, "seek_media: %s", err.Error())
		}
		return 0
	})

	registerIDFunc(l, "play_sound", env.PlaySound)
	registerIDFunc(l, "stop_sound", env.StopSound)
	registerIDFunc(l, "play_timeline", env.PlayTimeline)
	registerIDFunc(l, "pause_timeline", env.PauseTimeline)

	registerFunc(l, "log", env.Log != nil, func(l *lua.State) int {
		env.Log(lua.CheckString(l, 1))
		return 0
	})
	registerFunc(l, "sleep", env.Sleep != nil, func(l *lua.State) int {
		env.Sleep(int(lua.CheckNumber(l, 1)))
		return 0
	})

	l.NewTable()
	for k, v := range env.Event {
		pushValue(l, v)
		l.SetField(-2, k)
	}
	l.SetGlobal("event")
}

func registerFunc(l *lua.State, name string, available bool, fn lua.Function) {
	if !available {
		return
	}
	l.Register(name, fn)
}

func registerIDFunc(l *lua.State, name string, fn func(string) error) {
	if fn == nil {
		return
	}
	l.Register(name, func(l *lua.State) int {
		if err := fn(lua.CheckString(l, 1)); err != nil {
			lua.Errorf(l, "%s: %s", name, err.Error())
		}
		return 0
	})
}

func registerNullaryFunc(l *lua.State, name string, fn func() error) {
	if fn == nil {
		return
	}
	l.Register(name, func(l *lua.State) int {
		if err := fn(); err != nil {
			lua.Errorf(l, "%s: %s", name, err.Error())
		}
		return 0
	})
}

func pushValue(l *lua.State, v any) {
	switch val := v.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(val)
	case string:
		l.PushString(val)
	case int:
		l.PushNumber(float64(val))
	case int64:
		l.PushNumber(float64(val))
	case float64:
		l.PushNumber(val)
	case float32:
		l.PushNumber(float64(val))
	default:
		l.PushString(fmt.Sprintf("%v", val))
	}
}

func toValue(l *lua.State, index int) any {
	switch l.TypeOf(index) {
	case lua.TypeNil:
		return nil
	case lua.TypeBoolean:
		return l.ToBoolean(index)
	case lua.TypeNumber:
		n, _ := l.ToNumber(index)
		return n
	case lua.TypeString:
		s, _ := l.ToString(index)
		return s
	default:
		return nil
	}
}
