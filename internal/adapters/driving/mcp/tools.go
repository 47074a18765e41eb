package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driving/view"
)

// AnalyzeInput is the input schema for the analyze_text tool.
type AnalyzeInput struct {
	Text  string `json:"text" jsonschema:"the text to check for plagiarism and machine generation"`
	Label string `json:"label,omitempty" jsonschema:"optional name recorded with the result, e.g. a filename"`
}

// CorpusStatsInput is the empty input schema for the corpus_stats tool.
type CorpusStatsInput struct{}

// BackendsInput is the empty input schema for the list_backends tool.
type BackendsInput struct{}

// BackendsOutput is the output schema for the list_backends tool.
type BackendsOutput struct {
	Backends []view.Backend `json:"backends"`
}

// registerTools registers the detection tools, plus corpus_stats when a
// corpus is available.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "analyze_text",
		Description: "Check text for overlap with previously seen material and estimate how likely " +
			"it is machine-generated. Unmeasured scores are null.",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_backends",
		Description: "List detection backends in the order they are tried",
	}, s.handleBackends)

	if s.ports.Corpus != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "corpus_stats",
			Description: "Report how many documents the local corpus holds",
		}, s.handleCorpusStats)
	}
}

// handleAnalyze handles the analyze_text tool invocation.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, view.Result, error) {
	result, err := s.ports.Analysis.Analyze(ctx, input.Text, input.Label)
	if err != nil {
		return nil, view.Result{}, err
	}
	return nil, view.FromResult(result), nil
}

// handleCorpusStats handles the corpus_stats tool invocation.
func (s *Server) handleCorpusStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ CorpusStatsInput,
) (*mcp.CallToolResult, view.Stats, error) {
	if s.ports.Corpus == nil {
		return nil, view.Stats{}, errors.New("corpus is not available")
	}
	stats, err := s.ports.Corpus.Stats(ctx)
	if err != nil {
		return nil, view.Stats{}, err
	}
	return nil, view.FromStats(stats), nil
}

// handleBackends handles the list_backends tool invocation.
func (s *Server) handleBackends(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ BackendsInput,
) (*mcp.CallToolResult, BackendsOutput, error) {
	return nil, BackendsOutput{Backends: view.FromBackends(s.ports.Analysis.Backends())}, nil
}
