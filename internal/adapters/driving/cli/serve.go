package cli

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/orderlens/orderlens/internal/adapters/driving/api"
	"github.com/orderlens/orderlens/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server.

Endpoints:
  GET  /health        Liveness check
  GET  /version       Version info
  POST /analyze       Analyse an uploaded document or raw text

Environment variables are read from a .env file in the working
directory when present.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "HTTP port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if analysisService == nil || normaliserRegistry == nil {
		return errors.New("analysis service not configured")
	}

	// Optional .env overlay; absence is not an error.
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded environment from .env")
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	server := api.NewServer(analysisService, normaliserRegistry, version)

	addr := fmt.Sprintf(":%d", port)
	cmd.Printf("API server listening on http://localhost%s\n", addr)
	return server.Run(addr)
}
