// internal/engine/host_test.go
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/courseloom/courseloom/internal/lesson"
)

// recordingHost captures every capability call as "method:args" strings
// and can be told to fail specific methods.
type recordingHost struct {
	mu        sync.Mutex
	calls     []string
	fail      map[string]error
	failTimes map[string]int // fail only the first N calls when > 0
}

func newRecordingHost() *recordingHost {
	return &recordingHost{
		fail:      make(map[string]error),
		failTimes: make(map[string]int),
	}
}

func (h *recordingHost) failWith(method string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fail[method] = err
}

func (h *recordingHost) failFirst(method string, n int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fail[method] = err
	h.failTimes[method] = n
}

func (h *recordingHost) record(method string, args ...any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	call := method
	for _, a := range args {
		call += fmt.Sprintf(":%v", a)
	}
	h.calls = append(h.calls, call)

	err := h.fail[method]
	if err != nil {
		if n, limited := h.failTimes[method]; limited {
			if n <= 0 {
				return nil
			}
			h.failTimes[method] = n - 1
		}
	}
	return err
}

func (h *recordingHost) recorded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func (h *recordingHost) ShowObject(_ context.Context, id string) error {
	return h.record("ShowObject", id)
}
func (h *recordingHost) HideObject(_ context.Context, id string) error {
	return h.record("HideObject", id)
}
func (h *recordingHost) SetObjectState(_ context.Context, id, stateID string) error {
	return h.record("SetObjectState", id, stateID)
}
func (h *recordingHost) AnimateObject(_ context.Context, id string, anim lesson.Animation) error {
	return h.record("AnimateObject", id, anim.Name)
}
func (h *recordingHost) GoToSlide(_ context.Context, ref SlideRef) error {
	return h.record("GoToSlide", ref.ID)
}
func (h *recordingHost) NextSlide(_ context.Context) error     { return h.record("NextSlide") }
func (h *recordingHost) PreviousSlide(_ context.Context) error { return h.record("PreviousSlide") }
func (h *recordingHost) ShowLayer(_ context.Context, id string) error {
	return h.record("ShowLayer", id)
}
func (h *recordingHost) HideLayer(_ context.Context, id string) error {
	return h.record("HideLayer", id)
}
func (h *recordingHost) PlayMedia(_ context.Context, id string) error {
	return h.record("PlayMedia", id)
}
func (h *recordingHost) PauseMedia(_ context.Context, id string) error {
	return h.record("PauseMedia", id)
}
func (h *recordingHost) SeekMedia(_ context.Context, id string, positionMs float64) error {
	return h.record("SeekMedia", id, positionMs)
}
func (h *recordingHost) PlayTimeline(_ context.Context, id string) error {
	return h.record("PlayTimeline", id)
}
func (h *recordingHost) PauseTimeline(_ context.Context, id string) error {
	return h.record("PauseTimeline", id)
}
func (h *recordingHost) SeekTimeline(_ context.Context, id string, positionMs float64) error {
	return h.record("SeekTimeline", id, positionMs)
}
func (h *recordingHost) PlaySound(_ context.Context, id string) error {
	return h.record("PlaySound", id)
}
func (h *recordingHost) StopSound(_ context.Context, id string) error {
	return h.record("StopSound", id)
}
func (h *recordingHost) StopAllSounds(_ context.Context) error { return h.record("StopAllSounds") }
func (h *recordingHost) EmitStatement(_ context.Context, st lesson.Statement) error {
	return h.record("EmitStatement", st.Verb, st.Object)
}
func (h *recordingHost) OpenURL(_ context.Context, url, target string) error {
	return h.record("OpenURL", url, target)
}
func (h *recordingHost) Announce(_ context.Context, message string) error {
	return h.record("Announce", message)
}
func (h *recordingHost) DispatchEvent(_ context.Context, name string, payload map[string]any) error {
	if msg, ok := payload["message"].(string); ok {
		return h.record("DispatchEvent", name, msg)
	}
	return h.record("DispatchEvent", name)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(opts ...Option) (*Engine, *recordingHost) {
	host := newRecordingHost()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(host, opts...), host
}

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

func clickTrigger(id string, actions ...lesson.Action) *lesson.Trigger {
	return &lesson.Trigger{
		ID:      id,
		Event:   lesson.Event{Type: lesson.EventClick},
		Actions: actions,
	}
}
