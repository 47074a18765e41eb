package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
)

// mockBackend returns a fixed score or error, optionally after a delay.
type mockBackend struct {
	name     string
	measures domain.Measure
	score    *domain.RawScore
	err      error
	delay    time.Duration
	panicMsg string

	calls    atomic.Int32
	mu       sync.Mutex
	lastText string
}

func (m *mockBackend) Name() string {
	return m.name
}

func (m *mockBackend) Measures() domain.Measure {
	if m.measures == 0 {
		return domain.MeasureAll
	}
	return m.measures
}

func (m *mockBackend) Submit(ctx context.Context, text string) (*domain.RawScore, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.lastText = text
	m.mu.Unlock()

	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.score, m.err
}

func (m *mockBackend) text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastText
}

// stubbornBackend ignores cancellation and reports late.
type stubbornBackend struct {
	delay    time.Duration
	finished chan struct{}
}

func (s *stubbornBackend) Name() string             { return "stubborn" }
func (s *stubbornBackend) Measures() domain.Measure { return domain.MeasureAll }

func (s *stubbornBackend) Submit(_ context.Context, _ string) (*domain.RawScore, error) {
	time.Sleep(s.delay)
	close(s.finished)
	return aiScore(10), nil
}

func aiScore(percent float64) *domain.RawScore {
	return &domain.RawScore{AIPercent: percent, Measured: domain.MeasureAI, Method: "mock"}
}

func fullScore(plagiarism, ai float64) *domain.RawScore {
	return &domain.RawScore{
		PlagiarismPercent: plagiarism,
		AIPercent:         ai,
		Measured:          domain.MeasureAll,
		AIConfidence:      domain.ConfidenceHigh,
		Method:            "mock",
	}
}

func descriptor(priority int, b *mockBackend) driven.BackendDescriptor {
	return driven.BackendDescriptor{Name: b.name, Priority: priority, Backend: b}
}

func testTimeouts() domain.TimeoutSettings {
	return domain.TimeoutSettings{
		Request:       2 * time.Second,
		Backend:       time.Second,
		TruncateChars: 300,
	}
}
