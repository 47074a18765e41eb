// Package httpapi exposes analysis over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/provenance-cli/internal/core/ports/driving"
	"github.com/custodia-labs/provenance-cli/internal/logger"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = "127.0.0.1:8787"

// maxBodyBytes caps request bodies.
const maxBodyBytes = 8 << 20

// ErrMissingAnalysisService is returned when the analysis service is not provided.
var ErrMissingAnalysisService = errors.New("httpapi: analysis service is required")

// Server serves the analysis API.
type Server struct {
	analysis driving.AnalysisService
	corpus   driving.CorpusService
	engine   *gin.Engine
}

// NewServer creates an API server. corpus may be nil, in which case the
// corpus endpoints answer 503.
func NewServer(analysis driving.AnalysisService, corpus driving.CorpusService) (*Server, error) {
	if analysis == nil {
		return nil, ErrMissingAnalysisService
	}

	s := &Server{
		analysis: analysis,
		corpus:   corpus,
	}
	s.engine = s.newRouter()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// newRouter constructs a gin engine with registered routes.
func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", handleHealth)

	v1 := r.Group("/v1")
	v1.POST("/analyze", s.handleAnalyze)
	v1.GET("/backends", s.handleBackends)
	v1.GET("/corpus/stats", s.handleCorpusStats)
	v1.GET("/corpus/documents", s.handleCorpusList)
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// requestLogger logs each request at debug level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http: %s %s -> %d in %s", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
