package driving

import (
	"context"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

// CorpusService manages the corpus of previously seen material.
type CorpusService interface {
	// Add extracts features from text and appends it to the corpus.
	Add(ctx context.Context, label, text string) (domain.DocumentRef, error)

	// Get retrieves a stored document by ID.
	Get(ctx context.Context, id string) (*domain.StoredDocument, error)

	// List returns summaries of the newest documents first.
	List(ctx context.Context, limit int) ([]domain.DocumentSummary, error)

	// Stats returns aggregate corpus counters.
	Stats(ctx context.Context) (domain.CorpusStats, error)
}
