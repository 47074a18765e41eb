package similarity

import (
	"context"
	"sort"
	"unicode/utf8"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/textproc"
)

// minSentenceTerms is the fewest content words a sentence needs to be compared.
const minSentenceTerms = 3

// editLengthRatio is the smallest shorter/longer length ratio for which the
// edit-distance layer runs. Near-verbatim copies have similar lengths.
const editLengthRatio = 0.75

// excerptChars bounds the excerpt attached to a match.
const excerptChars = 200

// Report is the outcome of comparing one text against a corpus snapshot.
type Report struct {
	// Score is the combined plagiarism percentage (0-100).
	Score float64

	// SourcesFound counts every matching document, including those
	// beyond the bounded Matches list.
	SourcesFound int

	// Matches is ranked by similarity descending and bounded.
	Matches []domain.SourceMatch

	// Coverage is the share of the input's sentences matched by any source (0-1).
	Coverage float64

	// Degraded is true when any layer used the positional approximation.
	Degraded bool
}

// Engine compares texts against corpus snapshots.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg       domain.SimilaritySettings
	extractor *Extractor
}

// NewEngine creates a similarity engine.
func NewEngine(cfg domain.SimilaritySettings) *Engine {
	return &Engine{
		cfg:       cfg,
		extractor: NewExtractor(cfg),
	}
}

// Extractor returns the feature extractor matching the engine's settings.
func (e *Engine) Extractor() *Extractor {
	return e.extractor
}

// evidence collects the per-layer similarities of one corpus document.
type evidence struct {
	doc          *domain.StoredDocument
	cosine       float64
	sentenceBest float64
	coverage     float64
	edit         float64
	editDegraded bool
	matchedChars int
	excerpt      string
}

// layersAbove counts the layers above their thresholds.
func (ev *evidence) layersAbove(cfg domain.SimilaritySettings) int {
	n := 0
	if ev.cosine >= cfg.DocumentThreshold {
		n++
	}
	if ev.sentenceBest >= cfg.SentenceThreshold {
		n++
	}
	if ev.edit >= cfg.DocumentThreshold {
		n++
	}
	return n
}

// strongest returns the highest layer value and its layer name.
func (ev *evidence) strongest() (float64, domain.MatchLayer) {
	best, layer := ev.cosine, domain.LayerDocument
	if ev.coverage > best {
		best, layer = ev.coverage, domain.LayerSentence
	}
	if ev.edit > best {
		best, layer = ev.edit, domain.LayerEditDist
		if ev.editDegraded {
			layer = domain.LayerPositional
		}
	}
	return best, layer
}

// Compare scores query against every document of the snapshot.
// The query must come from the engine's Extractor. An empty snapshot
// yields a zero report. The context is checked between documents.
func (e *Engine) Compare(ctx context.Context, query *domain.StoredDocument, corpus []domain.StoredDocument) (*Report, error) {
	report := &Report{}
	if len(corpus) == 0 {
		return report, nil
	}

	// IDF over the snapshot plus the query, computed fresh for this pass.
	index := NewTermIndex(e.cfg.VocabularySize)
	for i := range corpus {
		index.Add(corpus[i].Features)
	}
	index.Add(query.Features)
	queryVec := index.Weigh(query.Features)

	querySentences := sentenceVectors(query)
	sentenceChars := make([]int, len(query.Sentences))
	totalChars := 0
	for i, s := range query.Sentences {
		sentenceChars[i] = utf8.RuneCountInString(s)
		totalChars += sentenceChars[i]
	}
	// Best similarity per query sentence across all sources.
	unionBest := make([]float64, len(query.Sentences))

	queryNorm := textproc.Normalize(query.Text)
	queryLen := utf8.RuneCountInString(queryNorm)

	var matched []*evidence
	for i := range corpus {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc := &corpus[i]
		ev := &evidence{doc: doc}

		ev.cosine = Cosine(queryVec, index.Weigh(doc.Features))
		e.compareSentences(ev, querySentences, sentenceChars, totalChars, unionBest)
		ev.edit, ev.editDegraded = e.compareText(queryNorm, queryLen, doc.Text)

		if ev.layersAbove(e.cfg) > 0 {
			matched = append(matched, ev)
		}
	}

	report.Coverage = coverage(unionBest, sentenceChars, totalChars, e.cfg.SentenceThreshold)
	report.SourcesFound = len(matched)

	best, agreeing := 0.0, 0
	for _, ev := range matched {
		score, _ := ev.strongest()
		if score > best {
			best, agreeing = score, ev.layersAbove(e.cfg)
		}
		if ev.editDegraded {
			report.Degraded = true
		}
	}
	if agreeing >= 2 {
		best *= e.cfg.AgreementBonus
	}
	if len(matched) > 0 && report.Coverage > best {
		best = report.Coverage
	}
	report.Score = clampPercent(best * 100)
	report.Matches = e.rank(matched, queryLen)

	return report, nil
}

// compareSentences fills the sentence layer of ev and raises unionBest.
func (e *Engine) compareSentences(
	ev *evidence,
	querySentences []map[string]float64,
	sentenceChars []int,
	totalChars int,
	unionBest []float64,
) {
	docSentences := sentenceVectors(ev.doc)
	docVecs := make([]Vector, len(docSentences))
	for j, sv := range docSentences {
		docVecs[j] = NewVector(sv)
	}

	weighted := 0.0
	for i, qs := range querySentences {
		if len(qs) < minSentenceTerms {
			continue
		}
		qv := NewVector(qs)
		best, bestIdx := 0.0, -1
		for j, ds := range docSentences {
			if len(ds) < minSentenceTerms {
				continue
			}
			sim := max(Jaccard(qs, ds), Cosine(qv, docVecs[j]))
			if sim > best {
				best, bestIdx = sim, j
			}
		}
		if best > ev.sentenceBest {
			ev.sentenceBest = best
			if bestIdx >= 0 {
				ev.excerpt = ev.doc.Sentences[bestIdx]
			}
		}
		if best > unionBest[i] {
			unionBest[i] = best
		}
		if best >= e.cfg.SentenceThreshold {
			weighted += float64(sentenceChars[i]) * best
			ev.matchedChars += sentenceChars[i]
		}
	}
	if totalChars > 0 {
		ev.coverage = weighted / float64(totalChars)
	}
}

// compareText runs the edit-distance layer on normalised texts of similar
// length. Comparisons beyond the matrix budget use the positional overlap
// approximation and report degraded=true.
func (e *Engine) compareText(queryNorm string, queryLen int, text string) (float64, bool) {
	docNorm := textproc.Normalize(text)
	docLen := utf8.RuneCountInString(docNorm)
	if queryLen == 0 || docLen == 0 {
		return 0, false
	}
	if float64(min(queryLen, docLen))/float64(max(queryLen, docLen)) < editLengthRatio {
		return 0, false
	}
	if queryLen*docLen > e.cfg.MaxEditCells {
		return PositionalOverlap(queryNorm, docNorm), true
	}
	return EditSimilarity(queryNorm, docNorm), false
}

// rank converts evidence into bounded, ranked source matches: similarity
// descending, then shorter matched length first, then source ID.
func (e *Engine) rank(matched []*evidence, queryLen int) []domain.SourceMatch {
	matches := make([]domain.SourceMatch, 0, len(matched))
	for _, ev := range matched {
		score, layer := ev.strongest()
		if ev.layersAbove(e.cfg) >= 2 {
			score *= e.cfg.AgreementBonus
		}
		similarity := max(ev.cosine, ev.sentenceBest, ev.edit)

		length := ev.matchedChars
		if layer != domain.LayerSentence || length == 0 {
			length = queryLen
		}

		percent := clampPercent(score * 100)
		matches = append(matches, domain.SourceMatch{
			SourceID:       ev.doc.ID,
			SourceLabel:    ev.doc.Label,
			MatchedPercent: percent,
			Similarity:     similarity,
			Confidence:     e.matchConfidence(percent, similarity),
			Layer:          layer,
			MatchedLength:  length,
			Excerpt:        excerpt(ev.excerpt),
			Degraded:       layer == domain.LayerPositional,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if a.MatchedLength != b.MatchedLength {
			return a.MatchedLength < b.MatchedLength
		}
		return a.SourceID < b.SourceID
	})

	if len(matches) > e.cfg.MaxMatches {
		matches = matches[:e.cfg.MaxMatches]
	}
	return matches
}

// sentenceVectors returns the stored sentence vectors, deriving them when
// the document was stored without them.
func sentenceVectors(doc *domain.StoredDocument) []map[string]float64 {
	if len(doc.SentenceVectors) == len(doc.Sentences) {
		return doc.SentenceVectors
	}
	vecs := make([]map[string]float64, len(doc.Sentences))
	for i, s := range doc.Sentences {
		vecs[i] = sentenceVector(s)
	}
	return vecs
}

// coverage is the similarity-weighted share of sentence characters whose
// best match reaches the threshold.
func coverage(best []float64, chars []int, total int, threshold float64) float64 {
	if total == 0 {
		return 0
	}
	weighted := 0.0
	for i, sim := range best {
		if sim >= threshold {
			weighted += float64(chars[i]) * sim
		}
	}
	return weighted / float64(total)
}

// matchConfidence grades a source match: high once its percentage reaches
// the very-high threshold, medium when the raw similarity clears the
// document threshold.
func (e *Engine) matchConfidence(percent, similarity float64) domain.Confidence {
	switch {
	case percent >= e.cfg.VeryHigh:
		return domain.ConfidenceHigh
	case similarity >= e.cfg.DocumentThreshold:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptChars {
		return s
	}
	return string([]rune(s)[:excerptChars-3]) + "..."
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
