package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
	"github.com/custodia-labs/provenance-cli/internal/textproc"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusStore = (*CorpusStore)(nil)

// CorpusStore is an in-memory implementation of driven.CorpusStore.
// Nothing survives the process; it backs tests and --ephemeral runs.
type CorpusStore struct {
	mu     sync.RWMutex
	docs   []domain.StoredDocument
	byHash map[string]int
	byID   map[string]int
	terms  map[string]struct{}
	words  int
	closed bool

	now func() time.Time
}

// NewCorpusStore creates an empty in-memory corpus.
func NewCorpusStore() *CorpusStore {
	return &CorpusStore{
		byHash: make(map[string]int),
		byID:   make(map[string]int),
		terms:  make(map[string]struct{}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Append stores a copy of doc. It assigns the document ID (when empty)
// and the creation time.
func (s *CorpusStore) Append(ctx context.Context, doc *domain.StoredDocument) (domain.DocumentRef, error) {
	if err := ctx.Err(); err != nil {
		return domain.DocumentRef{}, &domain.StorageError{Op: "append", Err: err}
	}
	if doc.ContentHash == "" {
		doc.ContentHash = textproc.Hash(doc.Text)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.DocumentRef{}, &domain.StorageError{Op: "append", Err: errClosed}
	}
	if i, ok := s.byHash[doc.ContentHash]; ok {
		existing := s.docs[i]
		return domain.DocumentRef{
			ID:          existing.ID,
			ContentHash: existing.ContentHash,
			Duplicate:   true,
			CreatedAt:   existing.CreatedAt,
		}, nil
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	doc.CreatedAt = s.now()

	s.docs = append(s.docs, clone(*doc))
	s.byHash[doc.ContentHash] = len(s.docs) - 1
	s.byID[doc.ID] = len(s.docs) - 1
	for term := range doc.Features {
		s.terms[term] = struct{}{}
	}
	s.words += doc.WordCount

	return domain.DocumentRef{
		ID:          doc.ID,
		ContentHash: doc.ContentHash,
		CreatedAt:   doc.CreatedAt,
	}, nil
}

// All returns copies of every document in insertion order.
func (s *CorpusStore) All(ctx context.Context) ([]domain.StoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StorageError{Op: "snapshot", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.StoredDocument, len(s.docs))
	for i := range s.docs {
		out[i] = clone(s.docs[i])
	}
	return out, nil
}

// Get retrieves a copy of a document by ID.
func (s *CorpusStore) Get(_ context.Context, id string) (*domain.StoredDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := clone(s.docs[i])
	return &doc, nil
}

// List returns summaries, newest first.
func (s *CorpusStore) List(_ context.Context, limit int) ([]domain.DocumentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.docs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.DocumentSummary, 0, n)
	for i := len(s.docs) - 1; i >= 0 && len(out) < n; i-- {
		d := s.docs[i]
		out = append(out, domain.DocumentSummary{
			ID:            d.ID,
			Label:         d.Label,
			WordCount:     d.WordCount,
			SentenceCount: len(d.Sentences),
			CreatedAt:     d.CreatedAt,
		})
	}
	return out, nil
}

// Stats returns aggregate counters.
func (s *CorpusStore) Stats(_ context.Context) (domain.CorpusStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.CorpusStats{
		DocumentCount: len(s.docs),
		TotalTerms:    s.words,
		DistinctTerms: len(s.terms),
	}
	if len(s.docs) > 0 {
		stats.LastAddedAt = s.docs[len(s.docs)-1].CreatedAt
	}
	return stats, nil
}

// Close marks the store closed. Reads keep working; appends fail.
func (s *CorpusStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// clone deep-copies the slices and maps of a document so callers cannot
// mutate stored state.
func clone(d domain.StoredDocument) domain.StoredDocument {
	d.Sentences = slices.Clone(d.Sentences)
	d.Features = maps.Clone(d.Features)
	if d.SentenceVectors != nil {
		vecs := make([]map[string]float64, len(d.SentenceVectors))
		for i, v := range d.SentenceVectors {
			vecs[i] = maps.Clone(v)
		}
		d.SentenceVectors = vecs
	}
	return d
}
