// Package driving provides interfaces for external actors (primary/inbound ports).
//
// The CLI, TUI and MCP adapters drive the core through these interfaces.
package driving
