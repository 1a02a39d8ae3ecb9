package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/orderlens/orderlens/internal/adapters/driving/tui"
	"github.com/orderlens/orderlens/internal/core/domain"
)

var reviewCmd = &cobra.Command{
	Use:   "review [source-id]",
	Short: "Review analysis results interactively",
	Long: `Synchronises the named source (or all sources) and opens an
interactive terminal UI to browse the results.

Controls:
  ↑/k, ↓/j - Navigate documents
  Enter    - Show line items and totals
  Esc      - Back
  q        - Quit`,
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}
	if configStore == nil {
		return errors.New("config store not configured")
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("review requires an interactive terminal; use 'orderlens sync' instead")
	}

	// Panic recovery keeps terminal state readable after a TUI crash.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in review UI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ctx := context.Background()

	sources, err := resolveSources(args)
	if err != nil {
		return err
	}

	var analyses []domain.Analysis
	for _, source := range sources {
		cmd.Printf("Synchronising source: %s...\n", source.ID)

		results, err := syncSourceWithProgress(ctx, cmd, syncOrchestrator, source)
		if err != nil {
			return fmt.Errorf("sync failed for %s: %w", source.ID, err)
		}
		analyses = append(analyses, results...)
	}

	if len(analyses) == 0 {
		cmd.Println("No documents analysed; nothing to review.")
		return nil
	}

	return tui.Run(analyses)
}
