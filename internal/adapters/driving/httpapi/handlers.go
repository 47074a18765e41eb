package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driving/view"
	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

// defaultListLimit is the page size of the corpus listing.
const defaultListLimit = 20

// AnalyzeRequest is the body of POST /v1/analyze. Text is validated by
// the analysis service so empty input maps to 422 like any other
// validation error.
type AnalyzeRequest struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DocumentItem is one entry of GET /v1/corpus/documents.
type DocumentItem struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Words     int    `json:"words"`
	Sentences int    `json:"sentences"`
	CreatedAt string `json:"created_at"`
}

// handleAnalyze scores the submitted text. Degraded results are returned
// with 200; the body's degraded flag tells them apart.
func (s *Server) handleAnalyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := s.analysis.Analyze(c.Request.Context(), req.Text, req.Label)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, view.FromResult(result))
}

func (s *Server) handleBackends(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"backends": view.FromBackends(s.analysis.Backends())})
}

func (s *Server) handleCorpusStats(c *gin.Context) {
	if s.corpus == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "corpus is not available"})
		return
	}

	stats, err := s.corpus.Stats(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, view.FromStats(stats))
}

func (s *Server) handleCorpusList(c *gin.Context) {
	if s.corpus == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "corpus is not available"})
		return
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	docs, err := s.corpus.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	items := make([]DocumentItem, len(docs))
	for i, d := range docs {
		items[i] = DocumentItem{
			ID:        d.ID,
			Label:     d.Label,
			Words:     d.WordCount,
			Sentences: d.SentenceCount,
			CreatedAt: d.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	c.JSON(http.StatusOK, gin.H{"documents": items})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStorage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
