// internal/engine/capability.go
package engine

import (
	"context"

	"github.com/courseloom/courseloom/internal/lesson"
)

// SlideRef addresses a slide by id or by numeric index.
type SlideRef struct {
	ID    string
	Index *int
}

// Host is the injected capability API through which the engine affects
// the player. It is the only seam to the render layer: the engine holds
// the authoritative variable/state/visibility maps itself and calls the
// host so the player can reflect the change. Implementations are trusted
// to complete; only the script runner carries its own timeout.
type Host interface {
	ShowObject(ctx context.Context, id string) error
	HideObject(ctx context.Context, id string) error
	SetObjectState(ctx context.Context, id, stateID string) error
	AnimateObject(ctx context.Context, id string, anim lesson.Animation) error

	GoToSlide(ctx context.Context, ref SlideRef) error
	NextSlide(ctx context.Context) error
	PreviousSlide(ctx context.Context) error
	ShowLayer(ctx context.Context, id string) error
	HideLayer(ctx context.Context, id string) error

	PlayMedia(ctx context.Context, id string) error
	PauseMedia(ctx context.Context, id string) error
	SeekMedia(ctx context.Context, id string, positionMs float64) error

	PlayTimeline(ctx context.Context, id string) error
	PauseTimeline(ctx context.Context, id string) error
	SeekTimeline(ctx context.Context, id string, positionMs float64) error

	PlaySound(ctx context.Context, id string) error
	StopSound(ctx context.Context, id string) error
	StopAllSounds(ctx context.Context) error

	// EmitStatement is fire-and-forget: the executor ignores its error.
	EmitStatement(ctx context.Context, st lesson.Statement) error

	OpenURL(ctx context.Context, url, target string) error

	// Announce pushes a message to the screen-reader live region. An
	// empty message clears the region.
	Announce(ctx context.Context, message string) error

	DispatchEvent(ctx context.Context, name string, payload map[string]any) error
}

// NativeEvent is the host-side event a dispatch originated from, exposed
// only so preventDefault can reach it.
type NativeEvent interface {
	PreventDefault()
}

// EventContext carries the optional context of one inbound event.
type EventContext struct {
	ObjectID string
	SlideID  string
	Native   NativeEvent
	Data     map[string]any
}
