// Package plagiarismcheck provides a detection backend for the
// PlagiarismCheck.org API. It measures plagiarism and, when the generated
// text endpoint answers, the generated-text dimension too.
package plagiarismcheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/backend/remote"
	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
	"github.com/custodia-labs/provenance-cli/internal/logger"
)

// Ensure Backend implements the interfaces.
var (
	_ driven.Backend = (*Backend)(nil)
	_ driven.Pinger  = (*Backend)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL      = "https://plagiarismcheck.org/api/v1"
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 3 * time.Second
	DefaultAuthor       = "provenance@localhost"

	// MaxChars is the largest text the API accepts.
	MaxChars = 5000
)

// Method is the audit tag of PlagiarismCheck results.
const Method = "plagiarismcheck_report"

// Config holds configuration for the PlagiarismCheck backend.
type Config struct {
	// Token is the X-API-TOKEN value (required).
	Token string

	// BaseURL is the API base URL (default: https://plagiarismcheck.org/api/v1).
	BaseURL string

	// Author is reported to the API as the submitting account.
	Author string

	// Timeout is the per-request HTTP timeout (default: 30s).
	Timeout time.Duration

	// PollInterval is the delay between report polls (default: 3s).
	PollInterval time.Duration

	// RateLimit overrides the default request rate.
	RateLimit remote.RateLimitConfig
}

// Backend scores text with PlagiarismCheck.org.
type Backend struct {
	client       *remote.Client
	baseURL      string
	token        string
	author       string
	pollInterval time.Duration
}

type submitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Text struct {
			ID       int64 `json:"id"`
			ReportID int64 `json:"report_id"`
		} `json:"text"`
	} `json:"data"`
}

type reportResponse struct {
	Data struct {
		ReportData *struct {
			MatchedPercent float64  `json:"matched_percent"`
			SourcesCount   int      `json:"sources_count"`
			MatchedLength  int      `json:"matched_length"`
			Sources        []source `json:"sources"`
		} `json:"report_data"`
	} `json:"data"`
}

type source struct {
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	Percent       float64 `json:"plagiarism_percent"`
	MatchedLength int     `json:"matched_length"`
}

type aiResponse struct {
	AIScore *float64 `json:"ai_score"`
	Data    struct {
		Percent *float64 `json:"percent"`
	} `json:"data"`
}

// New creates a PlagiarismCheck backend.
func New(cfg Config) (*Backend, error) {
	if cfg.Token == "" {
		return nil, errors.New("plagiarismcheck: API token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Author == "" {
		cfg.Author = DefaultAuthor
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	return &Backend{
		client: remote.NewClient(domain.BackendPlagiarismCheck,
			&http.Client{Timeout: cfg.Timeout},
			remote.NewRateLimiter(cfg.RateLimit)),
		baseURL:      cfg.BaseURL,
		token:        cfg.Token,
		author:       cfg.Author,
		pollInterval: cfg.PollInterval,
	}, nil
}

// Name returns "plagiarismcheck".
func (b *Backend) Name() string {
	return domain.BackendPlagiarismCheck
}

// Measures returns both dimensions.
func (b *Backend) Measures() domain.Measure {
	return domain.MeasureAll
}

// Limiter exposes the rate limiter so availability can reflect back-off.
func (b *Backend) Limiter() *remote.RateLimiter {
	return b.client.Limiter()
}

// Submit uploads the text, polls for the plagiarism report and, in
// parallel, asks for the generated-text score. A failed generated-text
// check leaves that dimension unmeasured and adds a warning.
func (b *Backend) Submit(ctx context.Context, text string) (*domain.RawScore, error) {
	text = capChars(text, MaxChars)

	textID, err := b.submit(ctx, text)
	if err != nil {
		return nil, err
	}

	var (
		report *reportResponse
		ai     *float64
		aiErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, err = b.pollReport(gctx, textID)
		return err
	})
	g.Go(func() error {
		ai, aiErr = b.checkAI(gctx, text)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := report.Data.ReportData
	score := &domain.RawScore{
		PlagiarismPercent: data.MatchedPercent,
		Measured:          domain.MeasurePlagiarism,
		SourcesFound:      data.SourcesCount,
		Method:            Method,
	}
	if score.SourcesFound < len(data.Sources) {
		score.SourcesFound = len(data.Sources)
	}
	for i, s := range data.Sources {
		score.Matches = append(score.Matches, domain.SourceMatch{
			SourceID:       strconv.Itoa(i + 1),
			SourceLabel:    firstNonEmpty(s.URL, s.Title),
			MatchedPercent: s.Percent,
			Similarity:     s.Percent / 100,
			Confidence:     domain.ConfidenceMedium,
			Layer:          domain.LayerRemote,
			MatchedLength:  s.MatchedLength,
		})
	}

	if aiErr != nil {
		logger.Debug("plagiarismcheck: generated-text check failed: %v", aiErr)
		score.Warnings = append(score.Warnings, "plagiarismcheck generated-text check unavailable")
	} else if ai != nil {
		score.AIPercent = *ai
		score.Measured |= domain.MeasureAI
		score.AIConfidence = domain.ConfidenceMedium
	}

	return score, nil
}

// submit uploads the text and returns its ID.
func (b *Backend) submit(ctx context.Context, text string) (int64, error) {
	req, err := remote.NewFormRequest(ctx, remote.JoinURL(b.baseURL, "text"), url.Values{
		"author": {b.author},
		"text":   {text},
	})
	if err != nil {
		return 0, err
	}
	b.authorize(req)

	var resp submitResponse
	if err := b.client.Do(req, &resp, http.StatusCreated, http.StatusOK); err != nil {
		return 0, fmt.Errorf("submit text: %w", err)
	}
	if !resp.Success || resp.Data.Text.ID == 0 {
		return 0, fmt.Errorf("plagiarismcheck: submission rejected: %s", resp.Message)
	}
	return resp.Data.Text.ID, nil
}

// pollReport fetches the report until it is ready or ctx ends.
func (b *Backend) pollReport(ctx context.Context, textID int64) (*reportResponse, error) {
	endpoint := remote.JoinURL(b.baseURL, "text", "report", strconv.FormatInt(textID, 10))
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		req, err := remote.NewJSONRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		b.authorize(req)

		var resp reportResponse
		err = b.client.Do(req, &resp, http.StatusOK, http.StatusAccepted)
		if err != nil {
			return nil, fmt.Errorf("fetch report: %w", err)
		}
		if resp.Data.ReportData != nil {
			return &resp, nil
		}

		logger.Debug("plagiarismcheck: report %d not ready", textID)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for report: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// checkAI returns the generated-text percentage, or nil when the
// response carries none.
func (b *Backend) checkAI(ctx context.Context, text string) (*float64, error) {
	req, err := remote.NewFormRequest(ctx, remote.JoinURL(b.baseURL, "chat-gpt"), url.Values{
		"author": {b.author},
		"text":   {text},
	})
	if err != nil {
		return nil, err
	}
	b.authorize(req)

	var resp aiResponse
	if err := b.client.Do(req, &resp, http.StatusOK, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("check generated text: %w", err)
	}
	if resp.AIScore != nil {
		return resp.AIScore, nil
	}
	return resp.Data.Percent, nil
}

// Ping checks that the token is accepted.
func (b *Backend) Ping(ctx context.Context) error {
	req, err := remote.NewJSONRequest(ctx, http.MethodGet, remote.JoinURL(b.baseURL, "user"), nil)
	if err != nil {
		return err
	}
	b.authorize(req)
	if err := b.client.Do(req, nil); err != nil {
		return fmt.Errorf("ping plagiarismcheck: %w", err)
	}
	return nil
}

func (b *Backend) authorize(req *http.Request) {
	req.Header.Set("X-API-TOKEN", b.token)
}

func capChars(text string, limit int) string {
	rs := []rune(text)
	if len(rs) <= limit {
		return text
	}
	return string(rs[:limit])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
