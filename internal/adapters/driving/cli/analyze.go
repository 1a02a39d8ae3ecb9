package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orderlens/orderlens/internal/core/domain"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyse a single document",
	Long: `Analyses one document file and prints the classification, extracted
line items, and totals.

Supported formats: .eml (raw email), .pdf, .txt, .csv, .md.
With no file argument, reads an .eml message from stdin.

Examples:
  orderlens analyze order.eml
  orderlens analyze quote.pdf --json
  cat message.eml | orderlens analyze`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

// analyzeJSON switches output to the wire-format record.
var analyzeJSON bool

// analyzeMIMETypes maps file extensions to the MIME types the
// normaliser registry dispatches on.
var analyzeMIMETypes = map[string]string{
	".eml": "message/rfc822",
	".pdf": "application/pdf",
	".txt": "text/plain",
	".csv": "text/csv",
	".md":  "text/markdown",
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the result as a JSON record")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analysisService == nil || normaliserRegistry == nil {
		return errors.New("analysis service not configured")
	}

	ctx := context.Background()

	doc, err := readAnalyzeInput(cmd, args)
	if err != nil {
		return err
	}

	mail, err := normaliserRegistry.Normalise(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	analysis, err := analysisService.Analyze(ctx, *mail)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		data, err := json.MarshalIndent(analysis.Record(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printAnalysis(cmd, analysis)
	return nil
}

// readAnalyzeInput builds the raw document from the file argument or,
// when absent, from stdin.
func readAnalyzeInput(cmd *cobra.Command, args []string) (*domain.RawDocument, error) {
	if len(args) == 0 {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(content) == 0 {
			return nil, fmt.Errorf("no input: %w", domain.ErrNoInput)
		}
		return &domain.RawDocument{
			SourceID: "cli",
			URI:      "stdin",
			MIMEType: "message/rfc822",
			Content:  content,
		}, nil
	}

	path := args[0]
	mimeType, ok := analyzeMIMETypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file extension %q",
			domain.ErrUnsupportedType, filepath.Ext(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &domain.RawDocument{
		SourceID: "cli",
		URI:      "file://" + abs,
		MIMEType: mimeType,
		Content:  content,
		Metadata: map[string]any{
			"filename": filepath.Base(path),
		},
	}, nil
}

func printAnalysis(cmd *cobra.Command, analysis domain.Analysis) {
	cmd.Printf("Classification: %s\n", analysis.Tag)
	if analysis.From != "" {
		cmd.Printf("From:           %s\n", analysis.From)
	}
	if analysis.Subject != "" {
		cmd.Printf("Subject:        %s\n", analysis.Subject)
	}
	if analysis.Date != "" {
		cmd.Printf("Date:           %s\n", analysis.Date)
	}

	if len(analysis.Items) > 0 {
		cmd.Println("\nLine items:")
		for _, item := range analysis.Items {
			cmd.Printf("  %-40s qty %-4d @ %10.2f = %10.2f\n",
				item.Name, item.Quantity, item.UnitPrice, item.Total)
		}
	} else {
		cmd.Println("\nNo line items found.")
	}

	cmd.Printf("\nTotal: %.2f %s\n", analysis.Totals.Amount, analysis.Totals.Currency)
}
