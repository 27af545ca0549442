// internal/cli/validate.go
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/courseloom/courseloom/internal/lesson"
	"github.com/courseloom/courseloom/internal/security"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <lesson.yaml | lessons-dir>",
		Short: "Validate lesson documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			var lessons []*lesson.Lesson
			if info.IsDir() {
				if err := security.ValidateDirectoryPermissions(path); err != nil {
					opts.Logger.Warn("lessons directory has unsafe permissions", "error", err)
				}
				lessons, err = lesson.LoadDir(path)
				if err != nil {
					return err
				}
			} else {
				doc, err := lesson.Load(path)
				if err != nil {
					return err
				}
				lessons = append(lessons, doc)
			}

			failed := 0
			for _, doc := range lessons {
				errs := lesson.Validate(doc)
				if len(errs) == 0 {
					fmt.Printf("OK    %s\n", doc.ID)
					continue
				}
				failed++
				fmt.Printf("FAIL  %s\n", doc.ID)
				for _, e := range errs {
					fmt.Printf("      %v\n", e)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d lessons invalid", failed, len(lessons))
			}
			fmt.Printf("%d lessons valid\n", len(lessons))
			return nil
		},
	}
}
