package domain

import (
	"fmt"
	"time"
)

// Backend names.
const (
	BackendPlagiarismCheck = "plagiarismcheck"
	BackendCopyleaks       = "copyleaks"
	BackendGPTZero         = "gptzero"
	BackendLocal           = "local"
)

// KnownBackends returns every backend name in default priority order.
func KnownBackends() []string {
	return []string{BackendPlagiarismCheck, BackendCopyleaks, BackendGPTZero, BackendLocal}
}

// IsKnownBackend returns true if name identifies a backend this build supports.
func IsKnownBackend(name string) bool {
	for _, b := range KnownBackends() {
		if b == name {
			return true
		}
	}
	return false
}

// Settings is the typed configuration object supplied at start-up.
// Tunable constants live here rather than in code.
type Settings struct {
	Backends   BackendSettings
	Similarity SimilaritySettings
	Heuristic  HeuristicSettings
	Timeouts   TimeoutSettings
	Corpus     CorpusSettings
	Input      InputSettings
}

// BackendSettings configures the ranked backend list.
type BackendSettings struct {
	// Order is the priority order, highest first.
	Order []string

	// Remote holds per-backend credentials keyed by backend name.
	Remote map[string]RemoteSettings
}

// RemoteSettings holds credentials and endpoint overrides for a remote backend.
type RemoteSettings struct {
	Enabled bool

	// BaseURL overrides the vendor endpoint. Empty uses the default.
	BaseURL string

	// APIKey is the vendor token or key.
	APIKey string

	// Account is the login identity for backends that need one (e.g. an email).
	Account string
}

// HasKey returns true if an API key is present.
func (r RemoteSettings) HasKey() bool {
	return r.APIKey != ""
}

// SimilaritySettings tunes the local similarity engine.
type SimilaritySettings struct {
	// DocumentThreshold is the whole-document cosine above which a source matches.
	DocumentThreshold float64

	// SentenceThreshold is the sentence-level overlap above which a source matches.
	SentenceThreshold float64

	// VeryHigh is the plagiarism percentage considered a near-certain copy.
	VeryHigh float64

	// AgreementBonus multiplies the combined score when several layers agree.
	AgreementBonus float64

	MaxMatches       int
	VocabularySize   int
	NGramMin         int
	NGramMax         int
	MinSentenceChars int

	// MaxEditCells bounds the edit-distance matrix; larger comparisons
	// use the positional overlap approximation.
	MaxEditCells int
}

// HeuristicSettings tunes the generated-text heuristic.
type HeuristicSettings struct {
	WeightPerplexity float64
	WeightBurstiness float64
	WeightStructural float64

	// AuthorshipDamping scales the score when personal or acknowledgement
	// phrasing is present (0 removes the score, 1 disables damping).
	AuthorshipDamping float64

	// Ceiling is the maximum score the heuristic may report.
	Ceiling float64

	// MinWords is the length below which the estimate has low confidence.
	MinWords int
}

// TimeoutSettings bounds request latency.
type TimeoutSettings struct {
	// Request caps the total wall time of one analysis.
	Request time.Duration

	// Backend caps a single backend invocation. Keeping it well below
	// Request leaves time for the backends after a hung one.
	Backend time.Duration

	// TruncateChars is the input size handed to slow backends.
	TruncateChars int
}

// CorpusSettings locates the corpus.
type CorpusSettings struct {
	// Path is the SQLite database file. Empty uses the default data directory.
	Path string
}

// InputSettings validates submitted text.
type InputSettings struct {
	// MinChars is the minimum trimmed length of analysable text.
	MinChars int
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Backends: BackendSettings{
			Order:  KnownBackends(),
			Remote: map[string]RemoteSettings{},
		},
		Similarity: SimilaritySettings{
			DocumentThreshold: 0.7,
			SentenceThreshold: 0.3,
			VeryHigh:          80,
			AgreementBonus:    1.2,
			MaxMatches:        10,
			VocabularySize:    5000,
			NGramMin:          1,
			NGramMax:          3,
			MinSentenceChars:  20,
			MaxEditCells:      4_000_000,
		},
		Heuristic: HeuristicSettings{
			WeightPerplexity:  0.4,
			WeightBurstiness:  0.3,
			WeightStructural:  0.3,
			AuthorshipDamping: 0.3,
			Ceiling:           90,
			MinWords:          30,
		},
		Timeouts: TimeoutSettings{
			Request:       25 * time.Second,
			Backend:       10 * time.Second,
			TruncateChars: 3000,
		},
		Input: InputSettings{
			MinChars: 20,
		},
	}
}

// Validate checks the settings for internal consistency.
func (s *Settings) Validate() error {
	if len(s.Backends.Order) == 0 {
		return fmt.Errorf("%w: backend order is empty", ErrInvalidSettings)
	}
	seen := make(map[string]bool, len(s.Backends.Order))
	for _, name := range s.Backends.Order {
		if !IsKnownBackend(name) {
			return fmt.Errorf("%w: unknown backend %q", ErrInvalidSettings, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: backend %q listed twice", ErrInvalidSettings, name)
		}
		seen[name] = true
	}

	sim := s.Similarity
	if !inUnit(sim.DocumentThreshold) || !inUnit(sim.SentenceThreshold) {
		return fmt.Errorf("%w: similarity thresholds must be within (0, 1]", ErrInvalidSettings)
	}
	if sim.VeryHigh <= 0 || sim.VeryHigh > 100 {
		return fmt.Errorf("%w: very high threshold must be within (0, 100]", ErrInvalidSettings)
	}
	if sim.AgreementBonus < 1 || sim.AgreementBonus > 1.3 {
		return fmt.Errorf("%w: agreement bonus must be within [1, 1.3]", ErrInvalidSettings)
	}
	if sim.NGramMin < 1 || sim.NGramMax < sim.NGramMin || sim.NGramMax > 5 {
		return fmt.Errorf("%w: n-gram range %d..%d is invalid", ErrInvalidSettings, sim.NGramMin, sim.NGramMax)
	}
	if sim.MaxMatches < 1 || sim.VocabularySize < 1 || sim.MaxEditCells < 1 {
		return fmt.Errorf("%w: similarity limits must be positive", ErrInvalidSettings)
	}

	h := s.Heuristic
	if h.WeightPerplexity < 0 || h.WeightBurstiness < 0 || h.WeightStructural < 0 {
		return fmt.Errorf("%w: heuristic weights must not be negative", ErrInvalidSettings)
	}
	if h.WeightPerplexity+h.WeightBurstiness+h.WeightStructural == 0 {
		return fmt.Errorf("%w: heuristic weights are all zero", ErrInvalidSettings)
	}
	if h.AuthorshipDamping < 0 || h.AuthorshipDamping > 1 {
		return fmt.Errorf("%w: authorship damping must be within [0, 1]", ErrInvalidSettings)
	}
	if h.Ceiling <= 0 || h.Ceiling > 100 {
		return fmt.Errorf("%w: heuristic ceiling must be within (0, 100]", ErrInvalidSettings)
	}

	if s.Timeouts.Request <= 0 || s.Timeouts.Backend <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidSettings)
	}
	if s.Timeouts.TruncateChars < 100 {
		return fmt.Errorf("%w: truncate size must be at least 100 characters", ErrInvalidSettings)
	}
	return nil
}

func inUnit(v float64) bool {
	return v > 0 && v <= 1
}

// SettingSource tells where a resolved setting value came from.
type SettingSource string

// Setting sources, lowest precedence first.
const (
	SourceDefault     SettingSource = "default"
	SourceFile        SettingSource = "file"
	SourceEnvironment SettingSource = "env"
)

// SettingEntry is one resolved key for display. Secrets are masked.
type SettingEntry struct {
	Key    string
	Value  string
	Source SettingSource
}
