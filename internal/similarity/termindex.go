package similarity

import (
	"math"
	"sort"
)

// DefaultVocabularySize bounds the number of terms that carry weight.
const DefaultVocabularySize = 5000

// TermIndex maps terms to integer ids and counts, for each term, how many
// documents contain it. IDF is always derived from the current document
// count, so extending the index immediately re-weights every term.
type TermIndex struct {
	ids   map[string]int
	terms []string
	df    []int
	docs  int
	limit int

	// vocab caches the bounded vocabulary until the next Add.
	vocab map[string]struct{}
}

// NewTermIndex creates an empty index whose vocabulary keeps at most limit
// terms. A limit of zero or less uses DefaultVocabularySize.
func NewTermIndex(limit int) *TermIndex {
	if limit <= 0 {
		limit = DefaultVocabularySize
	}
	return &TermIndex{
		ids:   make(map[string]int),
		limit: limit,
	}
}

// Add counts one document. Each term of features counts once.
func (ix *TermIndex) Add(features map[string]float64) {
	ix.docs++
	ix.vocab = nil
	for term := range features {
		id, ok := ix.ids[term]
		if !ok {
			id = len(ix.terms)
			ix.ids[term] = id
			ix.terms = append(ix.terms, term)
			ix.df = append(ix.df, 0)
		}
		ix.df[id]++
	}
}

// Docs returns the number of documents counted.
func (ix *TermIndex) Docs() int {
	return ix.docs
}

// Len returns the number of distinct terms seen.
func (ix *TermIndex) Len() int {
	return len(ix.terms)
}

// ID returns the integer id of a term.
func (ix *TermIndex) ID(term string) (int, bool) {
	id, ok := ix.ids[term]
	return id, ok
}

// DF returns the number of documents containing term.
func (ix *TermIndex) DF(term string) int {
	id, ok := ix.ids[term]
	if !ok {
		return 0
	}
	return ix.df[id]
}

// IDF returns ln(docs / df) for term, or 0 for unseen terms.
func (ix *TermIndex) IDF(term string) float64 {
	df := ix.DF(term)
	if df == 0 || ix.docs == 0 {
		return 0
	}
	return math.Log(float64(ix.docs) / float64(df))
}

// Vocabulary returns the bounded vocabulary: the terms with the highest
// document frequency, ties broken alphabetically.
func (ix *TermIndex) Vocabulary() map[string]struct{} {
	if ix.vocab != nil {
		return ix.vocab
	}

	ids := make([]int, len(ix.terms))
	for i := range ids {
		ids[i] = i
	}
	if len(ids) > ix.limit {
		sort.Slice(ids, func(a, b int) bool {
			if ix.df[ids[a]] != ix.df[ids[b]] {
				return ix.df[ids[a]] > ix.df[ids[b]]
			}
			return ix.terms[ids[a]] < ix.terms[ids[b]]
		})
		ids = ids[:ix.limit]
	}

	vocab := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		vocab[ix.terms[id]] = struct{}{}
	}
	ix.vocab = vocab
	return vocab
}

// Weigh converts a term-frequency map into a TF-IDF vector restricted to
// the vocabulary. Terms present in every document weigh zero and are dropped.
func (ix *TermIndex) Weigh(tf map[string]float64) Vector {
	vocab := ix.Vocabulary()
	weighted := make(map[string]float64, len(tf))
	for term, f := range tf {
		if _, ok := vocab[term]; !ok {
			continue
		}
		if w := f * ix.IDF(term); w != 0 {
			weighted[term] = w
		}
	}
	return NewVector(weighted)
}
