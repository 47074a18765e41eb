// Package view holds the JSON shapes shared by the CLI, HTTP and MCP
// adapters. Unmeasured dimensions are emitted as null, never as zero.
// Timestamps are RFC 3339 strings in UTC.
package view

import (
	"time"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

// Result is the wire form of a detection result.
type Result struct {
	Label             string    `json:"label,omitempty"`
	PlagiarismPercent *float64  `json:"plagiarism_percent" jsonschema:"share of the text found in known sources (0-100), null when not measured"`
	SourcesFound      int       `json:"sources_found"`
	Matches           []Match   `json:"matches"`
	AIPercent         *float64  `json:"ai_percent" jsonschema:"likelihood the text is machine-generated (0-100), null when not measured"`
	AIConfidence      string    `json:"ai_confidence,omitempty"`
	Confidence        string    `json:"confidence"`
	Measured          []string  `json:"measured"`
	Backend           string    `json:"backend,omitempty"`
	Method            string    `json:"method"`
	RiskLevel         string    `json:"risk_level"`
	Degraded          bool      `json:"degraded"`
	Attempts          []Attempt `json:"attempts"`
	Warnings          []string  `json:"warnings,omitempty"`
	ElapsedMS         int64     `json:"elapsed_ms"`
	AnalyzedAt        string    `json:"analyzed_at,omitempty"`
}

// Match is the wire form of a source match.
type Match struct {
	SourceID       string  `json:"source_id"`
	SourceLabel    string  `json:"source_label,omitempty"`
	MatchedPercent float64 `json:"matched_percent"`
	Similarity     float64 `json:"similarity"`
	Confidence     string  `json:"confidence"`
	Layer          string  `json:"layer"`
	MatchedLength  int     `json:"matched_length,omitempty"`
	Excerpt        string  `json:"excerpt,omitempty"`
	Degraded       bool    `json:"degraded,omitempty"`
}

// Attempt is the wire form of one orchestrator step.
type Attempt struct {
	Backend   string `json:"backend"`
	Outcome   string `json:"outcome"`
	Error     string `json:"error,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// Backend is the wire form of a backend status.
type Backend struct {
	Name      string   `json:"name"`
	Priority  int      `json:"priority"`
	Available bool     `json:"available"`
	Remote    bool     `json:"remote"`
	Measures  []string `json:"measures"`
}

// Stats is the wire form of corpus statistics.
type Stats struct {
	DocumentCount int    `json:"document_count"`
	TotalTerms    int    `json:"total_terms"`
	DistinctTerms int    `json:"distinct_terms"`
	LastAddedAt   string `json:"last_added_at,omitempty"`
}

// FromResult converts a detection result.
func FromResult(r *domain.DetectionResult) Result {
	out := Result{
		Label:        r.Label,
		SourcesFound: r.SourcesFound,
		Matches:      make([]Match, 0, len(r.Matches)),
		AIConfidence: string(r.AIConfidence),
		Confidence:   string(r.Confidence),
		Measured:     measures(r.Measured),
		Backend:      r.Backend,
		Method:       r.Method,
		RiskLevel:    string(r.RiskLevel),
		Degraded:     r.Degraded,
		Attempts:     make([]Attempt, 0, len(r.Attempts)),
		Warnings:     r.Warnings,
		ElapsedMS:    r.Elapsed.Milliseconds(),
	}
	if !r.AnalyzedAt.IsZero() {
		out.AnalyzedAt = r.AnalyzedAt.UTC().Format(time.RFC3339)
	}
	if r.Measured.Has(domain.MeasurePlagiarism) {
		v := r.PlagiarismPercent
		out.PlagiarismPercent = &v
	}
	if r.Measured.Has(domain.MeasureAI) {
		v := r.AIPercent
		out.AIPercent = &v
	} else {
		out.AIConfidence = ""
	}

	for _, m := range r.Matches {
		out.Matches = append(out.Matches, Match{
			SourceID:       m.SourceID,
			SourceLabel:    m.SourceLabel,
			MatchedPercent: m.MatchedPercent,
			Similarity:     m.Similarity,
			Confidence:     string(m.Confidence),
			Layer:          string(m.Layer),
			MatchedLength:  m.MatchedLength,
			Excerpt:        m.Excerpt,
			Degraded:       m.Degraded,
		})
	}
	for _, a := range r.Attempts {
		out.Attempts = append(out.Attempts, Attempt{
			Backend:   a.Backend,
			Outcome:   string(a.Outcome),
			Error:     a.Error,
			ElapsedMS: a.Elapsed.Milliseconds(),
		})
	}
	return out
}

// FromBackends converts backend statuses, keeping their order.
func FromBackends(statuses []domain.BackendStatus) []Backend {
	out := make([]Backend, len(statuses))
	for i, s := range statuses {
		out[i] = Backend{
			Name:      s.Name,
			Priority:  s.Priority,
			Available: s.Available,
			Remote:    s.Remote,
			Measures:  measures(s.Measures),
		}
	}
	return out
}

// FromStats converts corpus statistics.
func FromStats(s domain.CorpusStats) Stats {
	out := Stats{
		DocumentCount: s.DocumentCount,
		TotalTerms:    s.TotalTerms,
		DistinctTerms: s.DistinctTerms,
	}
	if !s.LastAddedAt.IsZero() {
		out.LastAddedAt = s.LastAddedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func measures(m domain.Measure) []string {
	out := []string{}
	if m.Has(domain.MeasurePlagiarism) {
		out = append(out, "plagiarism")
	}
	if m.Has(domain.MeasureAI) {
		out = append(out, "ai")
	}
	return out
}
