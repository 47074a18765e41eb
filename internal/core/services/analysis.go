package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driving"
	"github.com/custodia-labs/provenance-cli/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// AnalysisService validates requests, applies the request ceiling and
// turns the orchestrator outcome into a DetectionResult.
type AnalysisService struct {
	orchestrator *Orchestrator
	timeouts     domain.TimeoutSettings
	minChars     int
	now          func() time.Time
}

// NewAnalysisService creates an analysis service over ranked backends.
func NewAnalysisService(backends []driven.BackendDescriptor, settings domain.Settings) *AnalysisService {
	return &AnalysisService{
		orchestrator: NewOrchestrator(backends, settings.Timeouts),
		timeouts:     settings.Timeouts,
		minChars:     settings.Input.MinChars,
		now:          time.Now,
	}
}

// Analyze scores text. Invalid input returns a *domain.ValidationError
// before any backend runs. Every other path returns a result: either the
// first accepted backend score, or a degraded zero-score result.
func (s *AnalysisService) Analyze(ctx context.Context, text, label string) (*domain.DetectionResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, domain.NewValidationError("text is empty")
	}
	if n := utf8.RuneCountInString(trimmed); n < s.minChars {
		return nil, domain.NewValidationError("text has %d characters, at least %d are required", n, s.minChars)
	}

	start := s.now()
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Request)
	defer cancel()
	ctx = domain.WithLabel(ctx, label)

	logger.Debug("analysis: label=%q chars=%d ceiling=%s", label, utf8.RuneCountInString(trimmed), s.timeouts.Request)
	outcome := s.orchestrator.Run(ctx, trimmed)

	var result *domain.DetectionResult
	if outcome.Succeeded() {
		result = succeededResult(outcome)
	} else {
		result = degradedResult(outcome)
		logger.Warn("analysis: no backend produced a score for %q (%s)", label, result.Method)
	}
	result.Label = label
	result.Attempts = outcome.Attempts
	result.AnalyzedAt = start
	result.Elapsed = s.now().Sub(start)

	logger.Debug("analysis: %s via %s, plagiarism=%.1f ai=%.1f risk=%s in %s",
		label, result.Method, result.PlagiarismPercent, result.AIPercent, result.RiskLevel, result.Elapsed)
	return result, nil
}

// Backends lists the configured backends in priority order.
func (s *AnalysisService) Backends() []domain.BackendStatus {
	descs := s.orchestrator.Backends()
	statuses := make([]domain.BackendStatus, len(descs))
	for i, d := range descs {
		statuses[i] = d.Status()
	}
	return statuses
}

func succeededResult(outcome *Outcome) *domain.DetectionResult {
	score := outcome.Score
	result := &domain.DetectionResult{
		Measured:     score.Measured,
		Backend:      strings.Join(outcome.Backends, "+"),
		Method:       score.Method,
		AIConfidence: domain.ConfidenceNone,
	}
	if result.Backend == "" {
		result.Backend = outcome.Backend
	}
	if result.Method == "" {
		result.Method = result.Backend
	}

	if score.Measured.Has(domain.MeasurePlagiarism) {
		result.PlagiarismPercent = score.PlagiarismPercent
		result.SourcesFound = score.SourcesFound
		result.Matches = score.Matches
	}
	if score.Measured.Has(domain.MeasureAI) {
		result.AIPercent = score.AIPercent
		result.AIConfidence = score.AIConfidence
		if result.AIConfidence == "" {
			result.AIConfidence = domain.ConfidenceMedium
		}
	}

	result.RiskLevel = domain.RiskFor(max(result.PlagiarismPercent, result.AIPercent))
	result.Confidence = overallConfidence(result)
	result.Warnings = append(result.Warnings, score.Warnings...)
	for _, a := range outcome.Attempts {
		if a.Outcome == domain.OutcomeFailed || a.Outcome == domain.OutcomeInvalid || a.Outcome == domain.OutcomeTimedOut {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s %s: %s", a.Backend, a.Outcome, a.Error))
		}
	}
	return result
}

func degradedResult(outcome *Outcome) *domain.DetectionResult {
	method := domain.MethodExhausted
	if outcome.TimedOut {
		method = domain.MethodTimeoutFallback
	}
	return &domain.DetectionResult{
		Method:       method,
		Confidence:   domain.ConfidenceNone,
		AIConfidence: domain.ConfidenceNone,
		RiskLevel:    domain.RiskFor(0),
		Degraded:     true,
		Warnings:     []string{"no detection backend produced a usable score"},
	}
}

// overallConfidence follows the dimension behind the risk level: the AI
// confidence when AI dominates, otherwise the strongest source match.
func overallConfidence(r *domain.DetectionResult) domain.Confidence {
	aiDominates := r.Measured.Has(domain.MeasureAI) &&
		(!r.Measured.Has(domain.MeasurePlagiarism) || r.AIPercent >= r.PlagiarismPercent)
	switch {
	case aiDominates:
		return r.AIConfidence
	case len(r.Matches) > 0 && r.Matches[0].Confidence != "":
		return r.Matches[0].Confidence
	default:
		return domain.ConfidenceMedium
	}
}
