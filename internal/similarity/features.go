package similarity

import (
	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/textproc"
)

// Extractor derives the stored features of a text.
type Extractor struct {
	ngramMin         int
	ngramMax         int
	minSentenceChars int
}

// NewExtractor creates an extractor from similarity settings.
func NewExtractor(cfg domain.SimilaritySettings) *Extractor {
	x := &Extractor{
		ngramMin:         cfg.NGramMin,
		ngramMax:         cfg.NGramMax,
		minSentenceChars: cfg.MinSentenceChars,
	}
	if x.ngramMin < 1 {
		x.ngramMin = 1
	}
	if x.ngramMax < x.ngramMin {
		x.ngramMax = x.ngramMin
	}
	if x.minSentenceChars <= 0 {
		x.minSentenceChars = textproc.DefaultMinSentenceChars
	}
	return x
}

// Terms returns the n-gram terms of text over its content words.
func (x *Extractor) Terms(text string) []string {
	return textproc.NGrams(textproc.ContentWords(textproc.Words(text)), x.ngramMin, x.ngramMax)
}

// Extract returns a document with sentences, a term-frequency feature
// vector and per-sentence vectors. ID and CreatedAt are left for the store.
func (x *Extractor) Extract(label, text string) domain.StoredDocument {
	sentences := textproc.Sentences(text, x.minSentenceChars)
	sentenceVectors := make([]map[string]float64, len(sentences))
	for i, s := range sentences {
		sentenceVectors[i] = sentenceVector(s)
	}

	return domain.StoredDocument{
		Label:           label,
		Text:            text,
		ContentHash:     textproc.Hash(text),
		Sentences:       sentences,
		Features:        TermFrequencies(x.Terms(text)),
		SentenceVectors: sentenceVectors,
		WordCount:       len(textproc.Words(text)),
	}
}

// sentenceVector is the unigram content-word frequency of one sentence.
func sentenceVector(sentence string) map[string]float64 {
	return TermFrequencies(textproc.ContentWords(textproc.Words(sentence)))
}
