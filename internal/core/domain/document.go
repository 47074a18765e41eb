package domain

import "time"

// StoredDocument is a previously analysed text together with the features
// derived from it. Documents are appended to the corpus and never edited.
type StoredDocument struct {
	// ID is the unique identifier for the document.
	ID string

	// Label is the caller-supplied audit label (e.g. a filename).
	Label string

	// Text is the raw submitted text.
	Text string

	// ContentHash is the sha256 of the normalised text, used for dedupe.
	ContentHash string

	// Sentences is the ordered list of sentences extracted from Text.
	Sentences []string

	// Features is the sparse term-frequency vector (term -> count/length).
	// Inverse document frequency is applied at query time, never stored.
	Features map[string]float64

	// SentenceVectors holds one term-frequency vector per sentence,
	// aligned with Sentences. It may be nil.
	SentenceVectors []map[string]float64

	// WordCount is the number of tokens in Text.
	WordCount int

	// CreatedAt is when the document was committed to the corpus.
	CreatedAt time.Time
}

// DocumentRef identifies a document after it has been added to the corpus.
type DocumentRef struct {
	ID          string
	ContentHash string

	// Duplicate is true when identical content was already stored
	// and no new document was written.
	Duplicate bool

	CreatedAt time.Time
}

// DocumentSummary is a lightweight listing entry without text or features.
type DocumentSummary struct {
	ID            string
	Label         string
	WordCount     int
	SentenceCount int
	CreatedAt     time.Time
}

// CorpusStats is a cheap aggregate view of the corpus.
type CorpusStats struct {
	// DocumentCount is the number of stored documents.
	DocumentCount int

	// TotalTerms is the total number of tokens across all documents.
	// It never decreases as the corpus grows.
	TotalTerms int

	// DistinctTerms is the number of distinct feature terms.
	DistinctTerms int

	// LastAddedAt is the creation time of the newest document.
	// Zero when the corpus is empty.
	LastAddedAt time.Time
}
