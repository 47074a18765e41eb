package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

func testDoc(label, text string) *domain.StoredDocument {
	return &domain.StoredDocument{
		Label:           label,
		Text:            text,
		Sentences:       []string{text},
		Features:        map[string]float64{label: 0.5, "shared": 0.5},
		SentenceVectors: []map[string]float64{{label: 1}},
		WordCount:       len(text) / 5,
	}
}

func TestCorpusStore_AppendAndGet(t *testing.T) {
	store := NewCorpusStore()
	ctx := context.Background()

	ref, err := store.Append(ctx, testDoc("alpha", "The alpha document talks about harbours."))
	require.NoError(t, err)
	assert.NotEmpty(t, ref.ID)
	assert.NotEmpty(t, ref.ContentHash)
	assert.False(t, ref.Duplicate)

	got, err := store.Get(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Label)
	assert.Equal(t, ref.CreatedAt, got.CreatedAt)
}

func TestCorpusStore_KeepsGivenID(t *testing.T) {
	store := NewCorpusStore()
	doc := testDoc("alpha", "Fixed identifier document text.")
	doc.ID = "fixed-id"

	ref, err := store.Append(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", ref.ID)
}

func TestCorpusStore_Duplicate(t *testing.T) {
	store := NewCorpusStore()
	ctx := context.Background()

	first, err := store.Append(ctx, testDoc("a", "Same words here."))
	require.NoError(t, err)
	second, err := store.Append(ctx, testDoc("b", "same WORDS here"))
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Equal(t, first.ID, second.ID)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DocumentCount)
}

func TestCorpusStore_GetNotFound(t *testing.T) {
	_, err := NewCorpusStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCorpusStore_SnapshotIsolation(t *testing.T) {
	store := NewCorpusStore()
	ctx := context.Background()

	_, err := store.Append(ctx, testDoc("one", "First document of the corpus."))
	require.NoError(t, err)

	snapshot, err := store.All(ctx)
	require.NoError(t, err)

	_, err = store.Append(ctx, testDoc("two", "Second document of the corpus."))
	require.NoError(t, err)

	// Mutating the snapshot must not leak into the store.
	snapshot[0].Features["injected"] = 1
	snapshot[0].Sentences[0] = "changed"

	assert.Len(t, snapshot, 1)
	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.NotContains(t, all[0].Features, "injected")
	assert.Equal(t, "First document of the corpus.", all[0].Sentences[0])
}

func TestCorpusStore_ListNewestFirst(t *testing.T) {
	store := NewCorpusStore()
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := store.Append(ctx, testDoc(fmt.Sprintf("d%d", i), fmt.Sprintf("Document body number %d.", i)))
		require.NoError(t, err)
	}

	list, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "d3", list[0].Label)
	assert.Equal(t, "d2", list[1].Label)
	assert.Equal(t, 1, list[0].SentenceCount)

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCorpusStore_Stats(t *testing.T) {
	store := NewCorpusStore()
	ctx := context.Background()

	empty, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.DocumentCount)
	assert.True(t, empty.LastAddedAt.IsZero())

	_, err = store.Append(ctx, testDoc("alpha", "Alpha text that is long enough."))
	require.NoError(t, err)
	_, err = store.Append(ctx, testDoc("beta", "Beta text that is long enough too."))
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DocumentCount)
	assert.Equal(t, 3, stats.DistinctTerms) // alpha, beta, shared
	assert.Greater(t, stats.TotalTerms, 0)
	assert.False(t, stats.LastAddedAt.IsZero())
}

func TestCorpusStore_CancelledContext(t *testing.T) {
	store := NewCorpusStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Append(ctx, testDoc("a", "Never written."))
	assert.ErrorIs(t, err, domain.ErrStorage)

	_, err = store.All(ctx)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestCorpusStore_Closed(t *testing.T) {
	store := NewCorpusStore()
	require.NoError(t, store.Close())

	_, err := store.Append(context.Background(), testDoc("a", "After close."))
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestCorpusStore_ConcurrentAppends(t *testing.T) {
	store := NewCorpusStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = store.Append(ctx, testDoc(fmt.Sprintf("w%d", i), fmt.Sprintf("Concurrent writer %d.", i)))
			_, _ = store.All(ctx)
		}(i)
	}
	wg.Wait()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, stats.DocumentCount)
}
