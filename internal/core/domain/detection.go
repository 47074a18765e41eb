package domain

import (
	"strings"
	"time"
)

// Method tags recorded on degraded results. Successful results carry the
// method reported by the backend that produced them.
const (
	// MethodExhausted marks a result where every backend failed.
	MethodExhausted = "exhausted"

	// MethodTimeoutFallback marks a result where the time ceiling was hit
	// before any backend produced a usable score.
	MethodTimeoutFallback = "timeout_fallback"
)

// Measure is a bit set of the score dimensions a backend actually measured.
type Measure uint8

// Score dimensions.
const (
	// MeasurePlagiarism covers the overlap with previously seen material.
	MeasurePlagiarism Measure = 1 << iota

	// MeasureAI covers the machine-generation likelihood.
	MeasureAI
)

// MeasureAll covers both dimensions.
const MeasureAll = MeasurePlagiarism | MeasureAI

// Has reports whether every dimension in x is present in m.
func (m Measure) Has(x Measure) bool {
	return x != 0 && m&x == x
}

// String returns a readable list of the measured dimensions.
func (m Measure) String() string {
	var parts []string
	if m.Has(MeasurePlagiarism) {
		parts = append(parts, "plagiarism")
	}
	if m.Has(MeasureAI) {
		parts = append(parts, "ai")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Confidence labels how far a score sits from its decision boundary.
type Confidence string

// Confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// RiskLevel buckets the strongest score of a result.
type RiskLevel string

// Risk levels.
const (
	RiskHigh    RiskLevel = "high"
	RiskMedium  RiskLevel = "medium"
	RiskLow     RiskLevel = "low"
	RiskMinimal RiskLevel = "minimal"
)

// RiskFor returns the risk level for a 0-100 score.
func RiskFor(score float64) RiskLevel {
	switch {
	case score >= 80:
		return RiskHigh
	case score >= 50:
		return RiskMedium
	case score >= 20:
		return RiskLow
	default:
		return RiskMinimal
	}
}

// MatchLayer names the similarity layer that produced a source match.
type MatchLayer string

// Similarity layers.
const (
	LayerDocument   MatchLayer = "document_cosine"
	LayerSentence   MatchLayer = "sentence_overlap"
	LayerEditDist   MatchLayer = "edit_distance"
	LayerPositional MatchLayer = "position_overlap"
	LayerRemote     MatchLayer = "remote"
)

// SourceMatch is one piece of evidence that the input overlaps a source.
type SourceMatch struct {
	// SourceID identifies the matched corpus document or remote source.
	SourceID string

	// SourceLabel is the matched document's label or the remote source URL.
	SourceLabel string

	// MatchedPercent is the share of the input attributed to this source (0-100).
	MatchedPercent float64

	// Similarity is the raw similarity of the strongest layer (0-1).
	Similarity float64

	Confidence Confidence
	Layer      MatchLayer

	// MatchedLength is the number of characters of the input that matched.
	MatchedLength int

	// Excerpt is the best matching sentence of the source, if any.
	Excerpt string

	// Degraded is true when the match came from a lower-fidelity approximation.
	Degraded bool
}

// RawScore is the common shape every backend translates its payload into.
type RawScore struct {
	PlagiarismPercent float64
	AIPercent         float64

	// Measured lists the dimensions the backend actually scored.
	// Unmeasured dimensions are reported as zero and must not be trusted.
	Measured Measure

	SourcesFound int
	Matches      []SourceMatch
	AIConfidence Confidence

	// Method is an optional backend-specific audit tag.
	Method string

	// Warnings are non-fatal issues, e.g. a failed corpus write.
	Warnings []string
}

// AttemptOutcome is the terminal state of one backend attempt.
type AttemptOutcome string

// Attempt outcomes.
const (
	OutcomeSucceeded AttemptOutcome = "succeeded"
	OutcomeFailed    AttemptOutcome = "failed"
	OutcomeInvalid   AttemptOutcome = "invalid"
	OutcomeTimedOut  AttemptOutcome = "timed_out"
	OutcomeSkipped   AttemptOutcome = "skipped"
)

// Attempt records one step of the orchestrator for auditability.
type Attempt struct {
	Backend string
	Outcome AttemptOutcome
	Error   string
	Elapsed time.Duration
}

// DetectionResult is the value object returned for one analysis request.
// It is never mutated after being returned.
type DetectionResult struct {
	// Label is the caller-supplied audit label.
	Label string

	PlagiarismPercent float64
	SourcesFound      int

	// Matches is bounded and ranked by similarity descending.
	Matches []SourceMatch

	AIPercent    float64
	AIConfidence Confidence

	// Confidence is ConfidenceNone for degraded results.
	Confidence Confidence

	Measured Measure

	// Backend is the name of the backend that produced the scores.
	// Empty for degraded results.
	Backend string

	// Method is the audit tag: the backend's method, or one of the
	// degraded tags MethodExhausted and MethodTimeoutFallback.
	Method string

	RiskLevel RiskLevel
	Degraded  bool
	Attempts  []Attempt
	Warnings  []string

	Elapsed    time.Duration
	AnalyzedAt time.Time
}

// BackendStatus describes a configured backend for listing.
type BackendStatus struct {
	Name      string
	Priority  int
	Available bool
	Remote    bool
	Measures  Measure
}
