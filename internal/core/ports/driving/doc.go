// Package driving defines the inbound ports of the application core.
// Driving adapters (CLI, HTTP API, MCP server, TUI) call the core
// through these interfaces.
package driving
