// Command orderlens analyses email and document files, classifying
// each as a purchase order or a price quote and extracting the
// product line items and totals.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/orderlens/orderlens/internal/adapters/driven/auth"
	"github.com/orderlens/orderlens/internal/adapters/driven/config/file"
	"github.com/orderlens/orderlens/internal/adapters/driven/export/xlsx"
	"github.com/orderlens/orderlens/internal/adapters/driven/notify"
	"github.com/orderlens/orderlens/internal/adapters/driven/storage/sqlite"
	"github.com/orderlens/orderlens/internal/adapters/driving/cli"
	"github.com/orderlens/orderlens/internal/connectors"
	"github.com/orderlens/orderlens/internal/core/services"
	"github.com/orderlens/orderlens/internal/normalisers"
	"github.com/orderlens/orderlens/internal/normalisers/eml"
	"github.com/orderlens/orderlens/internal/normalisers/pdf"
	"github.com/orderlens/orderlens/internal/normalisers/plaintext"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(buildServices)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildServices wires the full service graph from the config
// directory. Called once per invocation after flag parsing.
func buildServices(configDir string) (*cli.Services, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		configDir = filepath.Join(home, ".orderlens")
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("config store: %w", err)
	}

	store, err := sqlite.NewStore(filepath.Join(configDir, "data"))
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	oauthConfig := auth.GoogleOAuthConfig(
		configStore.GetString("google.client_id"),
		configStore.GetString("google.client_secret"),
		"",
	)
	tokenProvider := auth.NewTokenProvider(oauthConfig, store.CredentialsStore())

	pdfNormaliser := pdf.New()
	registry := normalisers.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(pdfNormaliser)
	registry.Register(eml.New(pdfNormaliser))

	analyzer := services.NewAnalyzer()

	orchestrator := services.NewSyncOrchestrator(
		store.SyncStateStore(),
		connectors.NewFactory(tokenProvider),
		registry,
		analyzer,
		notify.NewConsoleNotifier(os.Stdout),
	)

	return &cli.Services{
		Analysis: analyzer,
		Sync:     orchestrator,
		Registry: registry,
		Config:   configStore,
		Auth:     tokenProvider,
		Exporter: xlsx.New(),
	}, nil
}
