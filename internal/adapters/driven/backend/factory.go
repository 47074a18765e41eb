// Package backend builds the ranked list of detection backends from
// settings. Each backend lives in its own sub-package.
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/backend/copyleaks"
	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/backend/gptzero"
	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/backend/local"
	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/backend/plagiarismcheck"
	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/backend/remote"
	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for credential validation.
const pingTimeout = 10 * time.Second

// Remote is implemented by every vendor adapter.
type Remote interface {
	driven.Backend
	driven.Pinger
	Limiter() *remote.RateLimiter
}

// BuildResult holds the ranked descriptors and any construction warnings.
type BuildResult struct {
	Descriptors []driven.BackendDescriptor

	// Warnings are non-fatal issues, e.g. a remote backend with broken settings.
	Warnings []string
}

// Build creates one descriptor per entry of settings.Backends.Order, in
// that order. Remote backends without credentials are kept but reported
// unavailable; the local backend is always available.
func Build(settings domain.Settings, store driven.CorpusStore) *BuildResult {
	result := &BuildResult{}

	for i, name := range settings.Backends.Order {
		desc := driven.BackendDescriptor{
			Name:     name,
			Priority: i + 1,
		}

		if name == domain.BackendLocal {
			desc.Backend = local.New(store, settings)
			result.Descriptors = append(result.Descriptors, desc)
			continue
		}

		desc.Remote = true
		desc.Slow = true
		cfg := settings.Backends.Remote[name]
		if !configured(name, cfg) {
			result.Descriptors = append(result.Descriptors, desc)
			continue
		}

		b, err := CreateRemote(name, cfg, settings.Timeouts.Backend)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", name, err))
			result.Descriptors = append(result.Descriptors, desc)
			continue
		}

		limiter := b.Limiter()
		desc.Backend = b
		desc.Available = func() bool {
			return !limiter.BackingOff()
		}
		result.Descriptors = append(result.Descriptors, desc)
	}

	return result
}

// CreateRemote creates the vendor adapter for name.
func CreateRemote(name string, cfg domain.RemoteSettings, timeout time.Duration) (Remote, error) {
	switch name {
	case domain.BackendPlagiarismCheck:
		return plagiarismcheck.New(plagiarismcheck.Config{
			Token:   cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Author:  cfg.Account,
			Timeout: timeout,
		})

	case domain.BackendCopyleaks:
		return copyleaks.New(copyleaks.Config{
			Email:   cfg.Account,
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Timeout: timeout,
		})

	case domain.BackendGPTZero:
		return gptzero.New(gptzero.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Timeout: timeout,
		})

	default:
		return nil, fmt.Errorf("%w: %s is not a remote backend", domain.ErrBackendUnavailable, name)
	}
}

// ValidateCredentials creates the adapter for name and pings it.
// This is intended for the settings command to check keys as they are entered.
func ValidateCredentials(ctx context.Context, name string, cfg domain.RemoteSettings) error {
	b, err := CreateRemote(name, cfg, pingTimeout)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := b.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable (%w)", domain.ErrBackendUnavailable, name, err)
	}
	return nil
}

// configured returns true if the backend is enabled and has its credentials.
func configured(name string, cfg domain.RemoteSettings) bool {
	if !cfg.Enabled || !cfg.HasKey() {
		return false
	}
	if name == domain.BackendCopyleaks && cfg.Account == "" {
		return false
	}
	return true
}
