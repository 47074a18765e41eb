package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driving"
	"github.com/custodia-labs/provenance-cli/internal/logger"
	"github.com/custodia-labs/provenance-cli/internal/similarity"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// CorpusService manages the corpus directly, outside of analysis.
type CorpusService struct {
	store     driven.CorpusStore
	extractor *similarity.Extractor
}

// NewCorpusService creates a corpus service. Features are extracted with
// the same similarity settings the local backend compares with.
func NewCorpusService(store driven.CorpusStore, settings domain.SimilaritySettings) *CorpusService {
	return &CorpusService{
		store:     store,
		extractor: similarity.NewExtractor(settings),
	}
}

// Add extracts features from text and appends it to the corpus.
func (s *CorpusService) Add(ctx context.Context, label, text string) (domain.DocumentRef, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.DocumentRef{}, domain.NewValidationError("text is empty")
	}

	doc := s.extractor.Extract(label, text)
	ref, err := s.store.Append(ctx, &doc)
	if err != nil {
		return domain.DocumentRef{}, fmt.Errorf("add document %q: %w", label, err)
	}
	if ref.Duplicate {
		logger.Debug("corpus: %q duplicates %s", label, ref.ID)
	}
	return ref, nil
}

// Get retrieves a stored document by ID.
func (s *CorpusService) Get(ctx context.Context, id string) (*domain.StoredDocument, error) {
	if id == "" {
		return nil, domain.NewValidationError("document ID is empty")
	}
	return s.store.Get(ctx, id)
}

// List returns summaries of the newest documents first.
func (s *CorpusService) List(ctx context.Context, limit int) ([]domain.DocumentSummary, error) {
	return s.store.List(ctx, limit)
}

// Stats returns aggregate corpus counters.
func (s *CorpusService) Stats(ctx context.Context) (domain.CorpusStats, error) {
	return s.store.Stats(ctx)
}
