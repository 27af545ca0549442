// internal/cli/run.go
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/courseloom/courseloom/internal/engine"
	"github.com/courseloom/courseloom/internal/history"
	"github.com/courseloom/courseloom/internal/host"
	"github.com/courseloom/courseloom/internal/lesson"
	"github.com/courseloom/courseloom/internal/logging"
	"github.com/courseloom/courseloom/internal/source"
)

// NewRunCommand creates the run command: play a lesson headlessly
// against a scripted event scenario.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	var scenarioPath string

	cmd := &cobra.Command{
		Use:   "run <lesson.yaml>",
		Short: "Run a lesson headlessly with a scripted event scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if scenarioPath == "" {
				return fmt.Errorf("a scenario file is required (--scenario)")
			}
			return runLesson(cmd.Context(), opts, args[0], scenarioPath)
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "scenario YAML with the event timeline")
	return cmd
}

func runLesson(ctx context.Context, opts *RootOptions, lessonPath, scenarioPath string) error {
	doc, err := lesson.Load(lessonPath)
	if err != nil {
		return err
	}
	if errs := lesson.Validate(doc); len(errs) > 0 {
		return fmt.Errorf("lesson is invalid: %v (and %d more)", errs[0], len(errs)-1)
	}

	scenario, err := source.LoadScenario(scenarioPath)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engineOpts := []engine.Option{
		engine.WithLogger(opts.Logger),
		engine.WithScriptTimeout(time.Duration(opts.Runtime.ScriptTimeout) * time.Millisecond),
	}
	if opts.Runtime.HistoryDB != "" {
		db, err := history.Open(opts.Runtime.HistoryDB)
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		defer db.Close()
		engineOpts = append(engineOpts, engine.WithHistorySink(db))
	}

	logger := logging.WithLesson(opts.Logger, doc.ID)

	eng := engine.New(host.NewConsole(logger), engineOpts...)
	defer eng.Close()

	if err := eng.LoadLesson(doc); err != nil {
		return err
	}
	logger.Info("lesson loaded",
		"triggers", eng.TriggerCount(),
		"scenario", scenario.Name,
	)

	events := make(chan source.Event, 100)

	sources := make([]source.Source, 0, len(scenario.Timers))
	for _, cfg := range scenario.Timers {
		timer, err := source.NewTimer(cfg)
		if err != nil {
			return fmt.Errorf("creating timer %s: %w", cfg.ID, err)
		}
		sources = append(sources, timer)
	}
	for _, src := range sources {
		go func(s source.Source) {
			if err := s.Start(ctx, events); err != nil && err != context.Canceled {
				logger.Error("event source error", "error", err)
			}
		}(src)
	}
	defer func() {
		for _, s := range sources {
			s.Stop()
		}
	}()

	// The first slide is entered as the lesson begins.
	if len(doc.Slides) > 0 {
		eng.HandleEvent(ctx, lesson.EventSlideEnter, engine.EventContext{SlideID: doc.Slides[0].ID})
	}

	player := source.NewPlayer(scenario)
	playerDone := make(chan error, 1)
	go func() {
		playerDone <- player.Start(ctx, events)
	}()

	for {
		select {
		case ev := <-events:
			eng.HandleEvent(ctx, ev.Type, ev.Context)
		case err := <-playerDone:
			// Drain anything the timeline left behind before reporting.
			for {
				select {
				case ev := <-events:
					eng.HandleEvent(ctx, ev.Type, ev.Context)
				default:
					printSummary(logger, eng)
					if err != nil && err != context.Canceled {
						return err
					}
					return nil
				}
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func printSummary(logger *slog.Logger, eng *engine.Engine) {
	records := eng.History().Recent(0)
	failures := 0
	for _, r := range records {
		if !r.Success {
			failures++
		}
	}
	logger.Info("scenario complete",
		"executions", len(records),
		"failures", failures,
	)
}
