package driving

import (
	"context"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

// AnalysisService is the detection entry point.
type AnalysisService interface {
	// Analyze scores text for overlap with the corpus and for signs of
	// machine generation. The label is used for logging and audit only.
	// Empty or too-short text returns a *domain.ValidationError and leaves
	// the corpus untouched. Backend failures never surface as errors; they
	// produce a degraded result instead.
	Analyze(ctx context.Context, text, label string) (*domain.DetectionResult, error)

	// Backends lists the configured backends in priority order.
	Backends() []domain.BackendStatus
}
