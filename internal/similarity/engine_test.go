package similarity

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

const (
	essay = "Renewable energy sources are transforming the global electricity market at remarkable speed. " +
		"Solar panels have become cheaper than coal in many regions of the world. " +
		"Wind farms now supply a significant share of power in northern Europe. " +
		"Governments continue to subsidise storage technologies to balance intermittent supply. " +
		"Critics argue that grid upgrades remain too slow for the transition."

	monastery = "The medieval monastery preserved ancient manuscripts through careful copying by hand. " +
		"Monks worked in cold scriptoria during long winter months. " +
		"Illuminated letters decorated the opening pages of important religious texts. " +
		"Many libraries were later dispersed during periods of political upheaval."

	basketball = "Professional basketball teams rely on advanced statistics to evaluate players. " +
		"Coaches study shooting percentages and defensive ratings before every game. " +
		"Young athletes train for years to reach the highest leagues."
)

func newTestEngine() *Engine {
	return NewEngine(domain.DefaultSettings().Similarity)
}

func storedDoc(e *Engine, id, text string) domain.StoredDocument {
	doc := e.Extractor().Extract(id+".txt", text)
	doc.ID = id
	return doc
}

func query(e *Engine, text string) *domain.StoredDocument {
	doc := e.Extractor().Extract("query", text)
	return &doc
}

func TestEngine_EmptyCorpus(t *testing.T) {
	e := newTestEngine()

	report, err := e.Compare(context.Background(), query(e, essay), nil)

	require.NoError(t, err)
	assert.Equal(t, 0.0, report.Score)
	assert.Equal(t, 0, report.SourcesFound)
	assert.Empty(t, report.Matches)
}

func TestEngine_ExactCopyScoresVeryHigh(t *testing.T) {
	e := newTestEngine()
	corpus := []domain.StoredDocument{
		storedDoc(e, "monastery", monastery),
		storedDoc(e, "essay", essay),
		storedDoc(e, "basketball", basketball),
	}

	report, err := e.Compare(context.Background(), query(e, essay), corpus)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.Score, domain.DefaultSettings().Similarity.VeryHigh)
	assert.GreaterOrEqual(t, report.SourcesFound, 1)
	require.NotEmpty(t, report.Matches)
	assert.Equal(t, "essay", report.Matches[0].SourceID)
	assert.Equal(t, "essay.txt", report.Matches[0].SourceLabel)
	assert.Equal(t, domain.ConfidenceHigh, report.Matches[0].Confidence)
	assert.False(t, report.Degraded)
}

func TestEngine_MatchConfidenceFollowsVeryHigh(t *testing.T) {
	cfg := domain.DefaultSettings().Similarity
	tests := []struct {
		name       string
		veryHigh   float64
		percent    float64
		similarity float64
		want       domain.Confidence
	}{
		{"above default threshold", 80, 85, 0.95, domain.ConfidenceHigh},
		{"raised threshold demotes", 95, 85, 0.95, domain.ConfidenceMedium},
		{"lowered threshold promotes", 50, 60, 0.4, domain.ConfidenceHigh},
		{"weak match", 80, 30, 0.4, domain.ConfidenceLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.VeryHigh = tt.veryHigh
			e := NewEngine(cfg)
			assert.Equal(t, tt.want, e.matchConfidence(tt.percent, tt.similarity))
		})
	}
}

func TestEngine_ExactCopyOfSingleDocumentCorpus(t *testing.T) {
	e := newTestEngine()
	corpus := []domain.StoredDocument{storedDoc(e, "only", basketball)}

	report, err := e.Compare(context.Background(), query(e, basketball), corpus)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.Score, 80.0)
	assert.Equal(t, 1, report.SourcesFound)
}

func TestEngine_UnrelatedTextHasNoSources(t *testing.T) {
	e := newTestEngine()
	corpus := []domain.StoredDocument{
		storedDoc(e, "monastery", monastery),
		storedDoc(e, "basketball", basketball),
	}

	report, err := e.Compare(context.Background(), query(e, essay), corpus)

	require.NoError(t, err)
	assert.Equal(t, 0, report.SourcesFound)
	assert.Equal(t, 0.0, report.Score)
	assert.Empty(t, report.Matches)
}

func TestEngine_PartialCopy(t *testing.T) {
	e := newTestEngine()
	corpus := []domain.StoredDocument{storedDoc(e, "essay", essay)}

	text := "Solar panels have become cheaper than coal in many regions of the world. " +
		"Wind farms now supply a significant share of power in northern Europe. " +
		"My grandmother grew tomatoes and beans in a small garden behind the house. " +
		"Every summer we picked berries along the river and made jam together."

	report, err := e.Compare(context.Background(), query(e, text), corpus)

	require.NoError(t, err)
	assert.Equal(t, 1, report.SourcesFound)
	assert.Greater(t, report.Coverage, 0.3)
	assert.Less(t, report.Coverage, 0.8)
	assert.Greater(t, report.Score, 30.0)
	require.Len(t, report.Matches, 1)
	assert.Equal(t, domain.LayerSentence, report.Matches[0].Layer)
	assert.NotEmpty(t, report.Matches[0].Excerpt)
	assert.Less(t, report.Matches[0].MatchedLength, len(text))
}

func TestEngine_GrowthKeepsUnrelatedScoresStable(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	q := query(e, basketball)

	small := []domain.StoredDocument{storedDoc(e, "monastery", monastery)}
	before, err := e.Compare(ctx, q, small)
	require.NoError(t, err)

	grown := append(small,
		storedDoc(e, "essay", essay),
		storedDoc(e, "copy", basketball),
	)
	after, err := e.Compare(ctx, q, grown)
	require.NoError(t, err)

	assert.Equal(t, 0.0, before.Score)
	assert.Equal(t, 1, after.SourcesFound)
	require.Len(t, after.Matches, 1)
	assert.Equal(t, "copy", after.Matches[0].SourceID)
	assert.GreaterOrEqual(t, after.Score, 80.0)
}

func TestEngine_DegradedEditLayer(t *testing.T) {
	cfg := domain.DefaultSettings().Similarity
	cfg.MaxEditCells = 10
	e := NewEngine(cfg)
	corpus := []domain.StoredDocument{storedDoc(e, "essay", essay)}

	report, err := e.Compare(context.Background(), query(e, essay), corpus)

	require.NoError(t, err)
	assert.True(t, report.Degraded)
	assert.GreaterOrEqual(t, report.Score, 80.0)
}

func TestEngine_CancelledContext(t *testing.T) {
	e := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Compare(ctx, query(e, essay), []domain.StoredDocument{storedDoc(e, "essay", essay)})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_RankTieBreaksOnShorterMatch(t *testing.T) {
	e := newTestEngine()
	long := domain.StoredDocument{ID: "long"}
	short := domain.StoredDocument{ID: "short"}

	matches := e.rank([]*evidence{
		{doc: &long, sentenceBest: 0.8, coverage: 0.8, matchedChars: 120},
		{doc: &short, sentenceBest: 0.8, coverage: 0.8, matchedChars: 40},
	}, 500)

	require.Len(t, matches, 2)
	assert.Equal(t, "short", matches[0].SourceID)
	assert.Equal(t, 40, matches[0].MatchedLength)
	assert.Equal(t, "long", matches[1].SourceID)
}

func TestEngine_RankIsBounded(t *testing.T) {
	e := newTestEngine()
	docs := make([]domain.StoredDocument, 15)
	evs := make([]*evidence, 15)
	for i := range docs {
		docs[i] = domain.StoredDocument{ID: fmt.Sprintf("doc-%02d", i)}
		evs[i] = &evidence{doc: &docs[i], cosine: 0.7 + float64(i)/100}
	}

	matches := e.rank(evs, 100)

	require.Len(t, matches, 10)
	assert.Equal(t, "doc-14", matches[0].SourceID)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Similarity, matches[i].Similarity)
	}
}

func TestExtractor_Extract(t *testing.T) {
	e := newTestEngine()
	doc := e.Extractor().Extract("essay.txt", essay)

	assert.Equal(t, "essay.txt", doc.Label)
	assert.Len(t, doc.Sentences, 5)
	assert.Len(t, doc.SentenceVectors, 5)
	assert.NotEmpty(t, doc.Features)
	assert.Len(t, doc.ContentHash, 64)
	assert.Greater(t, doc.WordCount, 50)
	assert.Empty(t, doc.ID)
	assert.Contains(t, doc.Features, "solar panels")
	assert.Contains(t, doc.Features, "solar panels cheaper")
}
