// internal/cli/history.go
package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/courseloom/courseloom/internal/history"
)

// NewHistoryCommand creates the history command: query the persisted
// execution history database.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	var (
		triggerID string
		limit     int
		cleanup   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect persisted trigger executions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Runtime.HistoryDB == "" {
				return fmt.Errorf("no history database configured (set COURSELOOM_HISTORY_DB)")
			}

			db, err := history.Open(opts.Runtime.HistoryDB)
			if err != nil {
				return err
			}
			defer db.Close()

			if cleanup > 0 {
				removed, err := db.Cleanup(cleanup)
				if err != nil {
					return err
				}
				fmt.Printf("removed %d executions older than %d days\n", removed, cleanup)
				return nil
			}

			records, err := db.GetHistory(triggerID, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no executions recorded")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tTRIGGER\tEVENT\tDURATION\tRESULT")
			for _, r := range records {
				result := "ok"
				if !r.Success {
					result = "error: " + r.Error
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%dms\t%s\n",
					r.StartedAt.Format("2006-01-02 15:04:05"),
					r.TriggerID,
					r.EventType,
					r.DurationMs,
					result,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&triggerID, "trigger", "", "filter by trigger id")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of records")
	cmd.Flags().IntVar(&cleanup, "cleanup", 0, "delete records older than N days and exit")
	return cmd
}
