package mcp

import (
	"context"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	result    *domain.DetectionResult
	err       error
	statuses  []domain.BackendStatus
	lastText  string
	lastLabel string
}

func (m *mockAnalysisService) Analyze(_ context.Context, text, label string) (*domain.DetectionResult, error) {
	m.lastText = text
	m.lastLabel = label
	return m.result, m.err
}

func (m *mockAnalysisService) Backends() []domain.BackendStatus {
	return m.statuses
}

// mockCorpusService is a mock implementation of driving.CorpusService.
type mockCorpusService struct {
	stats     domain.CorpusStats
	summaries []domain.DocumentSummary
	document  *domain.StoredDocument
	err       error
}

func (m *mockCorpusService) Add(_ context.Context, _, _ string) (domain.DocumentRef, error) {
	return domain.DocumentRef{}, m.err
}

func (m *mockCorpusService) Get(_ context.Context, _ string) (*domain.StoredDocument, error) {
	return m.document, m.err
}

func (m *mockCorpusService) List(_ context.Context, _ int) ([]domain.DocumentSummary, error) {
	return m.summaries, m.err
}

func (m *mockCorpusService) Stats(_ context.Context) (domain.CorpusStats, error) {
	return m.stats, m.err
}
