// internal/host/console.go
package host

import (
	"context"
	"log/slog"

	"github.com/courseloom/courseloom/internal/engine"
	"github.com/courseloom/courseloom/internal/lesson"
)

// Console is a headless Host implementation that logs every capability
// call instead of rendering. Used by the CLI runner and lesson previews.
type Console struct {
	logger *slog.Logger
}

// NewConsole creates a console host.
func NewConsole(logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{logger: logger}
}

func (c *Console) ShowObject(ctx context.Context, id string) error {
	c.logger.Info("show object", "object", id)
	return nil
}

func (c *Console) HideObject(ctx context.Context, id string) error {
	c.logger.Info("hide object", "object", id)
	return nil
}

func (c *Console) SetObjectState(ctx context.Context, id, stateID string) error {
	c.logger.Info("set object state", "object", id, "state", stateID)
	return nil
}

func (c *Console) AnimateObject(ctx context.Context, id string, anim lesson.Animation) error {
	c.logger.Info("animate object", "object", id, "animation", anim.Name, "duration_ms", anim.DurationMs)
	return nil
}

func (c *Console) GoToSlide(ctx context.Context, ref engine.SlideRef) error {
	if ref.Index != nil {
		c.logger.Info("go to slide", "index", *ref.Index)
	} else {
		c.logger.Info("go to slide", "slide", ref.ID)
	}
	return nil
}

func (c *Console) NextSlide(ctx context.Context) error {
	c.logger.Info("next slide")
	return nil
}

func (c *Console) PreviousSlide(ctx context.Context) error {
	c.logger.Info("previous slide")
	return nil
}

func (c *Console) ShowLayer(ctx context.Context, id string) error {
	c.logger.Info("show layer", "layer", id)
	return nil
}

func (c *Console) HideLayer(ctx context.Context, id string) error {
	c.logger.Info("hide layer", "layer", id)
	return nil
}

func (c *Console) PlayMedia(ctx context.Context, id string) error {
	c.logger.Info("play media", "media", id)
	return nil
}

func (c *Console) PauseMedia(ctx context.Context, id string) error {
	c.logger.Info("pause media", "media", id)
	return nil
}

func (c *Console) SeekMedia(ctx context.Context, id string, positionMs float64) error {
	c.logger.Info("seek media", "media", id, "position_ms", positionMs)
	return nil
}

func (c *Console) PlayTimeline(ctx context.Context, id string) error {
	c.logger.Info("play timeline", "timeline", id)
	return nil
}

func (c *Console) PauseTimeline(ctx context.Context, id string) error {
	c.logger.Info("pause timeline", "timeline", id)
	return nil
}

func (c *Console) SeekTimeline(ctx context.Context, id string, positionMs float64) error {
	c.logger.Info("seek timeline", "timeline", id, "position_ms", positionMs)
	return nil
}

func (c *Console) PlaySound(ctx context.Context, id string) error {
	c.logger.Info("play sound", "sound", id)
	return nil
}

func (c *Console) StopSound(ctx context.Context, id string) error {
	c.logger.Info("stop sound", "sound", id)
	return nil
}

func (c *Console) StopAllSounds(ctx context.Context) error {
	c.logger.Info("stop all sounds")
	return nil
}

func (c *Console) EmitStatement(ctx context.Context, st lesson.Statement) error {
	c.logger.Info("emit statement", "verb", st.Verb, "object", st.Object)
	return nil
}

func (c *Console) OpenURL(ctx context.Context, url, target string) error {
	c.logger.Info("open url", "url", url, "target", target)
	return nil
}

func (c *Console) Announce(ctx context.Context, message string) error {
	if message == "" {
		return nil
	}
	c.logger.Info("announce", "message", message)
	return nil
}

func (c *Console) DispatchEvent(ctx context.Context, name string, payload map[string]any) error {
	c.logger.Info("dispatch event", "name", name, "payload", payload)
	return nil
}
