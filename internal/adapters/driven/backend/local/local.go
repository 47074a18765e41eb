// Package local provides the detection backend that needs no network:
// corpus similarity and the generated-text heuristic, run side by side
// over a snapshot of the corpus. Every successful analysis is appended to
// the corpus so later comparisons can find it.
package local

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
	"github.com/custodia-labs/provenance-cli/internal/heuristic"
	"github.com/custodia-labs/provenance-cli/internal/logger"
	"github.com/custodia-labs/provenance-cli/internal/similarity"
)

// Ensure Backend implements the interface.
var _ driven.Backend = (*Backend)(nil)

// Method is the audit tag of local results.
const Method = "local_statistical"

// workers is the size of the pool running similarity and heuristic.
const workers = 2

// Backend runs the local engines against a corpus store.
type Backend struct {
	store      driven.CorpusStore
	similarity *similarity.Engine
	heuristic  *heuristic.Engine
}

// New creates a local backend over store.
func New(store driven.CorpusStore, settings domain.Settings) *Backend {
	return &Backend{
		store:      store,
		similarity: similarity.NewEngine(settings.Similarity),
		heuristic:  heuristic.NewEngine(settings.Heuristic),
	}
}

// Name returns "local".
func (b *Backend) Name() string {
	return domain.BackendLocal
}

// Measures returns both dimensions.
func (b *Backend) Measures() domain.Measure {
	return domain.MeasureAll
}

// Submit scores text against a corpus snapshot and then appends it.
//
// The append happens only after both engines finished and only while ctx
// is still live, so an abandoned call never adds the text. A failed corpus
// read or write becomes a warning; the heuristic score still stands.
func (b *Backend) Submit(ctx context.Context, text string) (*domain.RawScore, error) {
	label := domain.LabelFrom(ctx)
	query := b.similarity.Extractor().Extract(label, text)

	score := &domain.RawScore{
		Measured: domain.MeasureAI,
		Method:   Method,
	}

	snapshot, err := b.store.All(ctx)
	switch {
	case err == nil:
		score.Measured |= domain.MeasurePlagiarism
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		logger.Warn("local: reading corpus: %v", err)
		score.Warnings = append(score.Warnings, fmt.Sprintf("corpus unavailable, plagiarism not measured: %v", err))
	}

	var (
		report   *similarity.Report
		estimate heuristic.Estimate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	g.Go(func() error {
		defer logger.Timed("local: similarity")()
		r, err := b.similarity.Compare(gctx, &query, snapshot)
		if err != nil {
			return fmt.Errorf("compare corpus: %w", err)
		}
		report = r
		return nil
	})
	g.Go(func() error {
		defer logger.Timed("local: heuristic")()
		estimate = b.heuristic.Estimate(text)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	score.PlagiarismPercent = report.Score
	score.SourcesFound = report.SourcesFound
	score.Matches = report.Matches
	score.AIPercent = estimate.Percent
	score.AIConfidence = estimate.Confidence
	if report.Degraded {
		score.Warnings = append(score.Warnings, "long text compared with the positional overlap approximation")
	}
	if estimate.Signals.Authorship {
		logger.Debug("local: authorship phrasing damped the heuristic score")
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if ref, err := b.store.Append(ctx, &query); err != nil {
		if !errors.Is(err, domain.ErrStorage) {
			err = &domain.StorageError{Op: "append", Err: err}
		}
		logger.Warn("local: %v", err)
		score.Warnings = append(score.Warnings, fmt.Sprintf("text not added to corpus: %v", err))
	} else if ref.Duplicate {
		logger.Debug("local: content already in corpus as %s", ref.ID)
	} else {
		logger.Debug("local: added %s to corpus", ref.ID)
	}

	return score, nil
}
