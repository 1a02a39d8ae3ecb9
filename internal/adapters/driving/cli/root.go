// Package cli implements the orderlens command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/orderlens/orderlens/internal/adapters/driven/auth"
	"github.com/orderlens/orderlens/internal/adapters/driven/config/file"
	"github.com/orderlens/orderlens/internal/adapters/driven/export/xlsx"
	"github.com/orderlens/orderlens/internal/core/ports/driven"
	"github.com/orderlens/orderlens/internal/core/ports/driving"
	"github.com/orderlens/orderlens/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the composition root before Execute runs.
var (
	analysisService    driving.AnalysisService
	syncOrchestrator   driving.SyncOrchestrator
	normaliserRegistry driven.NormaliserRegistry
	configStore        *file.ConfigStore
	tokenProvider      *auth.TokenProvider
	exporter           *xlsx.Exporter
)

// Bootstrap builds the service graph once the config directory is
// known. The composition root supplies it so commands can construct
// services after flag parsing.
type Bootstrap func(configDir string) (*Services, error)

var bootstrap Bootstrap

// Services bundles everything the commands depend on.
type Services struct {
	Analysis driving.AnalysisService
	Sync     driving.SyncOrchestrator
	Registry driven.NormaliserRegistry
	Config   *file.ConfigStore
	Auth     *auth.TokenProvider
	Exporter *xlsx.Exporter
}

// Global flags.
var (
	flagVerbose   bool
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:   "orderlens",
	Short: "Classify purchase orders and quotes in email",
	Long: `OrderLens analyses email and document files, classifies each as a
purchase order (PO), a price quote (QUOTE), or UNKNOWN, and extracts
the product line items and totals it finds.

Documents can come from a local directory, a Gmail account, stdin, or
the HTTP API. Results are emitted as JSON records or exported to a
spreadsheet; nothing but sync cursors and OAuth tokens is stored.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if flagVerbose {
			logger.SetVerbose(true)
		}
		// version never needs the service graph
		if cmd.Name() == "version" {
			return nil
		}
		if bootstrap == nil {
			return nil
		}
		services, err := bootstrap(flagConfigDir)
		if err != nil {
			return err
		}
		SetServices(services)
		return nil
	},
}

// SetServices wires the command tree to its dependencies.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	analysisService = s.Analysis
	syncOrchestrator = s.Sync
	normaliserRegistry = s.Registry
	configStore = s.Config
	tokenProvider = s.Auth
	exporter = s.Exporter
}

// SetBootstrap registers the service graph builder.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a context; long-running
// commands stop when it is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(
		&flagVerbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(
		&flagConfigDir, "config-dir", "", "Configuration directory (default ~/.orderlens)")
}
