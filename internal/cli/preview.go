// internal/cli/preview.go
package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/courseloom/courseloom/internal/engine"
	"github.com/courseloom/courseloom/internal/host"
	"github.com/courseloom/courseloom/internal/lesson"
)

// NewPreviewCommand creates the preview command: load a lesson, keep the
// engine running, and hot-reload whenever the file changes on disk.
// Useful while authoring — save the YAML and the trigger set refreshes
// without restarting.
func NewPreviewCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <lesson.yaml>",
		Short: "Preview a lesson with hot reload on file change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return previewLesson(cmd.Context(), opts, args[0])
		},
	}
}

func previewLesson(ctx context.Context, opts *RootOptions, lessonPath string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	eng := engine.New(host.NewConsole(opts.Logger),
		engine.WithLogger(opts.Logger),
		engine.WithScriptTimeout(time.Duration(opts.Runtime.ScriptTimeout)*time.Millisecond),
	)
	defer eng.Close()

	if err := reloadLesson(ctx, opts, eng, lessonPath); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating lesson watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the containing directory: editors replace files on save, which
	// drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(lessonPath)); err != nil {
		return fmt.Errorf("watching lesson directory: %w", err)
	}

	opts.Logger.Info("preview started", "lesson", lessonPath)

	// Debounce: wait 500ms after the last write before reloading.
	var debounceTimer *time.Timer
	debounceCh := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(lessonPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(500*time.Millisecond, func() {
				select {
				case debounceCh <- struct{}{}:
				default:
				}
			})

		case <-debounceCh:
			opts.Logger.Info("lesson changed, reloading")
			if err := reloadLesson(ctx, opts, eng, lessonPath); err != nil {
				// Keep the previous lesson running; the author will save again.
				opts.Logger.Error("reload failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			opts.Logger.Error("lesson watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func reloadLesson(ctx context.Context, opts *RootOptions, eng *engine.Engine, path string) error {
	doc, err := lesson.Load(path)
	if err != nil {
		return err
	}
	if errs := lesson.Validate(doc); len(errs) > 0 {
		return fmt.Errorf("lesson is invalid: %v (and %d more)", errs[0], len(errs)-1)
	}

	eng.ClearAllTriggers()
	if err := eng.LoadLesson(doc); err != nil {
		return err
	}

	opts.Logger.Info("lesson loaded", "lesson", doc.ID, "triggers", eng.TriggerCount())
	if len(doc.Slides) > 0 {
		eng.HandleEvent(ctx, lesson.EventSlideEnter, engine.EventContext{SlideID: doc.Slides[0].ID})
	}
	return nil
}
