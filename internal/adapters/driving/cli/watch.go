package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [source-id]",
	Short: "Continuously analyse new documents from a source",
	Long: `Watches a source and analyses documents as they appear, printing one
result per document. Runs until interrupted.

Only filesystem sources support watching; Gmail sources should be
polled with 'orderlens sync' instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}
	if configStore == nil {
		return errors.New("config store not configured")
	}

	source, err := configStore.Source(args[0])
	if err != nil {
		return fmt.Errorf("unknown source %q: %w", args[0], err)
	}

	cmd.Printf("Watching source %s (press Ctrl-C to stop)...\n", source.ID)

	if err := syncOrchestrator.Watch(cmd.Context(), source); err != nil &&
		!errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}

	cmd.Println("Watch stopped.")
	return nil
}
