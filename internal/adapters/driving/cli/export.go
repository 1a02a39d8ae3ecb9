package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orderlens/orderlens/internal/core/domain"
)

var exportCmd = &cobra.Command{
	Use:   "export [source-id]",
	Short: "Analyse sources and export the results to a spreadsheet",
	Long: `Synchronises the named source (or all sources) and writes the
analysis results to an Excel workbook with a documents sheet and a
line-items sheet.

Examples:
  orderlens export work-gmail -o orders.xlsx
  orderlens export`,
	RunE: runExport,
}

// exportOutput is the workbook path.
var exportOutput string

func init() {
	exportCmd.Flags().StringVarP(
		&exportOutput, "output", "o", "orderlens.xlsx", "Output file path")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil || exporter == nil {
		return errors.New("export service not configured")
	}
	if configStore == nil {
		return errors.New("config store not configured")
	}

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
		cmd.Println("No documents analysed; nothing to export.")
		return nil
	}

	data, err := exporter.Export(analyses)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOutput, err)
	}

	cmd.Printf("Exported %d documents to %s\n", len(analyses), exportOutput)
	return nil
}
