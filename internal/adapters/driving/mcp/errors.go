// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants submit text for plagiarism and generated-text
// analysis and read corpus statistics.
package mcp

import "errors"

// ErrMissingAnalysisService is returned when the analysis service is not provided.
var ErrMissingAnalysisService = errors.New("mcp: analysis service is required")
