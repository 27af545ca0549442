// internal/cli/root.go
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/courseloom/courseloom/internal/config"
	"github.com/courseloom/courseloom/internal/logging"
)

// RootOptions holds global flags and runtime configuration shared by all
// commands.
type RootOptions struct {
	Verbose bool
	Runtime config.Runtime
	Logger  *slog.Logger
}

// NewRootCommand creates the root command for the courseloom CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "courseloom",
		Short: "Courseloom - interactive lesson trigger engine",
		Long:  "A headless runtime for authored e-learning lessons: triggers, conditions, and action sequences.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			rt, err := config.Load()
			if err != nil {
				return err
			}
			if opts.Verbose {
				rt.LogLevel = "debug"
			}
			opts.Runtime = rt
			opts.Logger = newLogger(rt)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewPreviewCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

func newLogger(rt config.Runtime) *slog.Logger {
	if rt.LogFile != "" {
		if w, err := logging.NewRotatingWriter(rt.LogFile, 50*1024*1024); err == nil {
			return logging.NewLogger(rt.LogFormat, rt.LogLevel, w)
		}
	}
	return logging.NewLogger(rt.LogFormat, rt.LogLevel, os.Stdout)
}
