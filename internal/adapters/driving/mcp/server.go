package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/provenance-cli/internal/logger"
)

const (
	// Version is reported to clients during initialization.
	Version = "0.2.0"

	serverName  = "provenance"
	serverTitle = "Provenance plagiarism and generated-text detection"

	// shutdownGrace bounds how long in-flight HTTP sessions may drain.
	shutdownGrace = 5 * time.Second
)

// Server exposes detection and the local corpus to MCP clients.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates an MCP server over the given ports. Corpus tools and
// resources are registered only when a corpus port is present.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    serverName,
		Title:   serverTitle,
		Version: Version,
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(impl, &mcp.ServerOptions{
			Instructions: instructionsFor(ports),
		}),
	}

	s.registerTools()
	if ports.Corpus != nil {
		s.registerResources()
	}

	return s, nil
}

// instructionsFor tells clients how to read detection results and which
// tools this server offers.
func instructionsFor(ports *Ports) string {
	var b strings.Builder
	b.WriteString("Scores text for overlap with previously analyzed material (plagiarism) " +
		"and for the likelihood that it was machine-generated.\n\n")
	b.WriteString("Call analyze_text with the complete text and an optional label. " +
		"Percentages run from 0 to 100. A null score means no backend measured that dimension. " +
		"When degraded is true every backend failed and the scores carry no evidence.\n\n")
	b.WriteString("list_backends shows the detection backends in the order they are tried.")
	if ports.Corpus != nil {
		b.WriteString("\n\nAnalyzed text joins the local corpus, so resubmitting a text matches itself. " +
			"corpus_stats and the " + uriScheme + "corpus resources describe the stored material.")
	}
	return b.String()
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("mcp: serving over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is
// cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutting down http server: %v", err)
		}
	}()

	logger.Info("mcp: serving on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving mcp over http: %w", err)
	}
	return nil
}
