// Package copyleaks provides a detection backend for the Copyleaks
// writer detector. It measures the generated-text dimension only.
package copyleaks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

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
	DefaultBaseURL     = "https://api.copyleaks.com"
	DefaultIdentityURL = "https://id.copyleaks.com"
	DefaultTimeout     = 60 * time.Second

	// MinChars is the shortest text the writer detector scores.
	MinChars = 255
)

// Method is the audit tag of Copyleaks results.
const Method = "copyleaks_writer_detector"

// Config holds configuration for the Copyleaks backend.
type Config struct {
	// Email is the Copyleaks account email (required).
	Email string

	// APIKey is the Copyleaks API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.copyleaks.com).
	BaseURL string

	// IdentityURL is the login base URL (default: https://id.copyleaks.com).
	IdentityURL string

	// Timeout is the HTTP client timeout (default: 60s).
	Timeout time.Duration

	// Sandbox asks the API for mock results that do not consume credits.
	Sandbox bool

	// RateLimit overrides the default request rate.
	RateLimit remote.RateLimitConfig
}

// Backend scores text with the Copyleaks writer detector.
type Backend struct {
	client  *remote.Client
	baseURL string
	sandbox bool
	newID   func() string
}

type checkRequest struct {
	Text    string `json:"text"`
	Sandbox bool   `json:"sandbox"`
}

type checkResponse struct {
	Summary *struct {
		Human float64 `json:"human"`
		AI    float64 `json:"ai"`
	} `json:"summary"`
	ModelVersion string `json:"modelVersion"`
}

// New creates a Copyleaks backend. Logins happen lazily on the first
// request and are reused until the token expires.
func New(cfg Config) (*Backend, error) {
	if cfg.Email == "" || cfg.APIKey == "" {
		return nil, errors.New("copyleaks: email and API key are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.IdentityURL == "" {
		cfg.IdentityURL = DefaultIdentityURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	limiter := remote.NewRateLimiter(cfg.RateLimit)
	base := &http.Client{Timeout: cfg.Timeout}

	login := &loginTokenSource{
		ctx:         context.Background(),
		client:      remote.NewClient(domain.BackendCopyleaks, base, limiter),
		identityURL: cfg.IdentityURL,
		email:       cfg.Email,
		key:         cfg.APIKey,
		now:         time.Now,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	authed := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(nil, login))
	authed.Timeout = cfg.Timeout

	return &Backend{
		client:  remote.NewClient(domain.BackendCopyleaks, authed, limiter),
		baseURL: cfg.BaseURL,
		sandbox: cfg.Sandbox,
		newID:   func() string { return uuid.New().String() },
	}, nil
}

// Name returns "copyleaks".
func (b *Backend) Name() string {
	return domain.BackendCopyleaks
}

// Measures returns the generated-text dimension.
func (b *Backend) Measures() domain.Measure {
	return domain.MeasureAI
}

// Limiter exposes the rate limiter so availability can reflect back-off.
func (b *Backend) Limiter() *remote.RateLimiter {
	return b.client.Limiter()
}

// Submit runs a synchronous writer-detector check under a fresh scan ID.
func (b *Backend) Submit(ctx context.Context, text string) (*domain.RawScore, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinChars {
		return nil, fmt.Errorf("copyleaks: text shorter than %d characters", MinChars)
	}

	req, err := remote.NewJSONRequest(ctx, http.MethodPost,
		remote.JoinURL(b.baseURL, "v2", "writer-detector", b.newID(), "check"),
		checkRequest{Text: text, Sandbox: b.sandbox})
	if err != nil {
		return nil, err
	}

	var resp checkResponse
	if err := b.client.Do(req, &resp); err != nil {
		return nil, fmt.Errorf("check writer: %w", err)
	}
	if resp.Summary == nil {
		return nil, errors.New("copyleaks: response has no summary")
	}

	return &domain.RawScore{
		AIPercent:    remote.Percent(resp.Summary.AI),
		Measured:     domain.MeasureAI,
		AIConfidence: confidence(resp.Summary.AI),
		Method:       Method,
	}, nil
}

// Ping forces a login, which validates the credentials.
func (b *Backend) Ping(ctx context.Context) error {
	req, err := remote.NewJSONRequest(ctx, http.MethodGet, remote.JoinURL(b.baseURL, "v3", "scans", "credits"), nil)
	if err != nil {
		return err
	}
	if err := b.client.Do(req, nil); err != nil {
		return fmt.Errorf("ping copyleaks: %w", err)
	}
	return nil
}

// confidence grades the vendor probability by its distance from 0.5.
func confidence(probability float64) domain.Confidence {
	d := probability - 0.5
	if d < 0 {
		d = -d
	}
	switch {
	case d >= 0.4:
		return domain.ConfidenceHigh
	case d >= 0.2:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
