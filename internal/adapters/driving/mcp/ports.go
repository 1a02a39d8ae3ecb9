package mcp

import (
	"github.com/orderlens/orderlens/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces the MCP server needs.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Analysis classifies documents and extracts items and totals.
	Analysis driving.AnalysisService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	return nil
}
