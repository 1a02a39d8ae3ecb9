package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driving"
)

var syncCmd = &cobra.Command{
	Use:   "sync [source-id]",
	Short: "Analyse pending documents from sources",
	Long: `Fetches, normalises and analyses pending documents from configured
sources. If a source ID is provided, only that source is processed;
otherwise all sources are.

Sources are defined in the configuration file, for example:

  [sources.work-gmail]
  name = "Work inbox"
  type = "gmail"
  label_ids = "INBOX"

  [sources.local-drop]
  name = "Drop folder"
  type = "filesystem"
  path = "/srv/orders"

Only the sync cursor is stored between runs; analysis results are
printed and discarded.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}
	if configStore == nil {
		return errors.New("config store not configured")
	}

	ctx := context.Background()

	sources, err := resolveSources(args)
	if err != nil {
		return err
	}

	var total, failed int
	for _, source := range sources {
		cmd.Printf("Synchronising source: %s...\n", source.ID)

		analyses, err := syncSourceWithProgress(ctx, cmd, syncOrchestrator, source)
		if err != nil {
			return fmt.Errorf("sync failed for %s: %w", source.ID, err)
		}

		for _, analysis := range analyses {
			printAnalysisLine(cmd, analysis)
		}
		total += len(analyses)

		if status, statusErr := syncOrchestrator.Status(ctx, source.ID); statusErr == nil && status != nil {
			failed += status.ErrorCount
		}
	}

	cmd.Printf("\nDone: %d documents analysed, %d failed.\n", total, failed)
	return nil
}

// resolveSources returns the single named source or, with no
// argument, every configured source.
func resolveSources(args []string) ([]domain.Source, error) {
	if len(args) > 0 {
		source, err := configStore.Source(args[0])
		if err != nil {
			return nil, fmt.Errorf("unknown source %q: %w", args[0], err)
		}
		return []domain.Source{source}, nil
	}

	sources := configStore.Sources()
	if len(sources) == 0 {
		return nil, errors.New("no sources configured; add one to the config file first")
	}
	return sources, nil
}

// syncSourceWithProgress runs a sync while reporting progress.
func syncSourceWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	syncOrch driving.SyncOrchestrator,
	source domain.Source,
) ([]domain.Analysis, error) {
	type result struct {
		analyses []domain.Analysis
		err      error
	}
	resCh := make(chan result, 1)
	go func() {
		analyses, err := syncOrch.Sync(ctx, source)
		resCh <- result{analyses, err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case res := <-resCh:
			status, statusErr := syncOrch.Status(ctx, source.ID)
			if statusErr == nil && status != nil && status.DocumentsProcessed > 0 {
				cmd.Printf("\rProcessed %d documents (%d errors)\n",
					status.DocumentsProcessed, status.ErrorCount)
			}
			return res.analyses, res.err
		case <-ticker.C:
			status, statusErr := syncOrch.Status(ctx, source.ID)
			if statusErr == nil && status != nil && status.DocumentsProcessed > lastCount {
				cmd.Printf("\rProcessing... %d documents", status.DocumentsProcessed)
				lastCount = status.DocumentsProcessed
			}
		}
	}
}

func printAnalysisLine(cmd *cobra.Command, analysis domain.Analysis) {
	subject := analysis.Subject
	if subject == "" {
		subject = analysis.URI
	}
	cmd.Printf("  [%s] %s (%d items, %.2f %s)\n",
		analysis.Tag, subject, len(analysis.Items),
		analysis.Totals.Amount, analysis.Totals.Currency)
}
