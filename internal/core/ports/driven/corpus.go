package driven

import (
	"context"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

// CorpusStore persists previously analysed documents.
// Documents are appended and never edited. Writers are serialised
// relative to each other; readers see a stable snapshot.
type CorpusStore interface {
	// Append durably stores a fully feature-extracted document.
	// Content whose hash is already stored is not written again and the
	// existing reference is returned with Duplicate set.
	// On failure nothing is written and a *domain.StorageError is returned.
	Append(ctx context.Context, doc *domain.StoredDocument) (domain.DocumentRef, error)

	// All returns every stored document in insertion order.
	// The slice is a snapshot: appends that begin after the call started
	// are not reflected in it.
	All(ctx context.Context) ([]domain.StoredDocument, error)

	// Get retrieves a document by ID.
	// Returns domain.ErrNotFound if the document does not exist.
	Get(ctx context.Context, id string) (*domain.StoredDocument, error)

	// List returns summaries of the newest documents first.
	// A limit of zero or less returns every document.
	List(ctx context.Context, limit int) ([]domain.DocumentSummary, error)

	// Stats returns aggregate counters.
	Stats(ctx context.Context) (domain.CorpusStats, error)

	// Close releases the underlying medium.
	Close() error
}
