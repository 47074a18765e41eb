// Package gptzero provides a detection backend for the GPTZero API.
// It measures the generated-text dimension only.
package gptzero

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/backend/remote"
	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
)

// Ensure Backend implements the interfaces.
var (
	_ driven.Backend = (*Backend)(nil)
	_ driven.Pinger  = (*Backend)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.gptzero.me"
	DefaultTimeout = 60 * time.Second

	// MinChars is the shortest text the API scores.
	MinChars = 50
)

// Method is the audit tag of GPTZero results.
const Method = "gptzero_predict"

// Config holds configuration for the GPTZero backend.
type Config struct {
	// APIKey is the GPTZero API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.gptzero.me).
	BaseURL string

	// Timeout is the HTTP client timeout (default: 60s).
	Timeout time.Duration

	// RateLimit overrides the default request rate.
	RateLimit remote.RateLimitConfig
}

// Backend scores text with GPTZero.
type Backend struct {
	client  *remote.Client
	baseURL string
	apiKey  string
}

type predictRequest struct {
	Document     string `json:"document"`
	Multilingual bool   `json:"multilingual"`
}

type predictResponse struct {
	Documents []struct {
		AverageGeneratedProb *float64 `json:"average_generated_prob"`
		ClassProbabilities   *struct {
			AI    float64 `json:"ai"`
			Human float64 `json:"human"`
			Mixed float64 `json:"mixed"`
		} `json:"class_probabilities"`
		ConfidenceCategory string `json:"confidence_category"`
	} `json:"documents"`
}

// New creates a GPTZero backend.
func New(cfg Config) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gptzero: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Backend{
		client: remote.NewClient(domain.BackendGPTZero,
			&http.Client{Timeout: cfg.Timeout},
			remote.NewRateLimiter(cfg.RateLimit)),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}, nil
}

// Name returns "gptzero".
func (b *Backend) Name() string {
	return domain.BackendGPTZero
}

// Measures returns the generated-text dimension.
func (b *Backend) Measures() domain.Measure {
	return domain.MeasureAI
}

// Limiter exposes the rate limiter so availability can reflect back-off.
func (b *Backend) Limiter() *remote.RateLimiter {
	return b.client.Limiter()
}

// Submit scores text. The class probability of "ai" is preferred; older
// responses only carry average_generated_prob.
func (b *Backend) Submit(ctx context.Context, text string) (*domain.RawScore, error) {
	if len(strings.TrimSpace(text)) < MinChars {
		return nil, fmt.Errorf("gptzero: text shorter than %d characters", MinChars)
	}

	req, err := remote.NewJSONRequest(ctx, http.MethodPost,
		remote.JoinURL(b.baseURL, "v2", "predict", "text"),
		predictRequest{Document: text, Multilingual: true})
	if err != nil {
		return nil, err
	}
	b.authorize(req)

	var resp predictResponse
	if err := b.client.Do(req, &resp); err != nil {
		return nil, fmt.Errorf("predict text: %w", err)
	}
	if len(resp.Documents) == 0 {
		return nil, errors.New("gptzero: response has no documents")
	}

	doc := resp.Documents[0]
	var probability float64
	switch {
	case doc.ClassProbabilities != nil:
		probability = doc.ClassProbabilities.AI
	case doc.AverageGeneratedProb != nil:
		probability = *doc.AverageGeneratedProb
	default:
		return nil, errors.New("gptzero: response has no generated probability")
	}

	return &domain.RawScore{
		AIPercent:    remote.Percent(probability),
		Measured:     domain.MeasureAI,
		AIConfidence: confidence(doc.ConfidenceCategory),
		Method:       Method,
	}, nil
}

// Ping checks that the API key is accepted.
func (b *Backend) Ping(ctx context.Context) error {
	req, err := remote.NewJSONRequest(ctx, http.MethodGet, remote.JoinURL(b.baseURL, "v2", "model-versions", "ai-scan"), nil)
	if err != nil {
		return err
	}
	b.authorize(req)
	if err := b.client.Do(req, nil); err != nil {
		return fmt.Errorf("ping gptzero: %w", err)
	}
	return nil
}

func (b *Backend) authorize(req *http.Request) {
	req.Header.Set("x-api-key", b.apiKey)
}

func confidence(category string) domain.Confidence {
	switch strings.ToLower(category) {
	case "high":
		return domain.ConfidenceHigh
	case "medium":
		return domain.ConfidenceMedium
	case "low":
		return domain.ConfidenceLow
	default:
		return domain.ConfidenceMedium
	}
}
