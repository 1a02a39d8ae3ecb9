// Package mcp provides an MCP (Model Context Protocol) server adapter
// for OrderLens. It lets AI assistants classify documents and extract
// line items through the analysis core.
package mcp

import "errors"

// ErrMissingAnalysisService is returned when the analysis service is not provided.
var ErrMissingAnalysisService = errors.New("mcp: analysis service is required")
