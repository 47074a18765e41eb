package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
)

type callResult struct {
	score *domain.RawScore
	err   error
}

// BoundedCall runs backend.Submit with a wall-clock ceiling.
//
// It returns as soon as the backend finishes or the ceiling passes,
// whichever comes first. On overrun it returns a *domain.TimeoutSignal and
// the late result is dropped; the result channel is buffered so the
// backend goroutine never blocks on its send. Other failures are returned
// as a *domain.BackendError.
func BoundedCall(ctx context.Context, ceiling time.Duration, backend driven.Backend, text string) (*domain.RawScore, error) {
	name := backend.Name()
	if ceiling <= 0 {
		return nil, &domain.TimeoutSignal{Backend: name, Ceiling: ceiling}
	}

	ctx, cancel := context.WithTimeout(ctx, ceiling)
	defer cancel()

	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: fmt.Errorf("backend panicked: %v", r)}
			}
		}()
		score, err := backend.Submit(ctx, text)
		done <- callResult{score: score, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil {
			return r.score, nil
		}
		if errors.Is(r.err, context.DeadlineExceeded) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &domain.TimeoutSignal{Backend: name, Ceiling: ceiling}
		}
		return nil, &domain.BackendError{Backend: name, Err: r.err}

	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &domain.TimeoutSignal{Backend: name, Ceiling: ceiling}
		}
		return nil, &domain.BackendError{Backend: name, Err: ctx.Err()}
	}
}
