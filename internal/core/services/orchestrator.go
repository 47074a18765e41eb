package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
	"github.com/custodia-labs/provenance-cli/internal/logger"
	"github.com/custodia-labs/provenance-cli/internal/textproc"
)

// orchestratorState is a step of the failover machine.
type orchestratorState int

const (
	stateIdle orchestratorState = iota
	stateTrying
	stateSupplementing
	stateSucceeded
	stateExhausted
)

func (s orchestratorState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateTrying:
		return "trying"
	case stateSupplementing:
		return "supplementing"
	case stateSucceeded:
		return "succeeded"
	case stateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is the terminal state of one orchestrator run.
type Outcome struct {
	// Backend is the backend whose score was accepted first. Empty when
	// exhausted.
	Backend string

	// Backends lists every backend that contributed to Score, starting
	// with Backend.
	Backends []string

	// Score is the accepted score, merged with the dimensions supplied by
	// lower-priority backends. Nil when exhausted.
	Score *domain.RawScore

	// Attempts lists every backend in priority order with its outcome.
	Attempts []domain.Attempt

	// TimedOut is true when an attempt or the request ceiling timed out.
	TimedOut bool
}

// Succeeded returns true if a backend produced an accepted score.
func (o *Outcome) Succeeded() bool {
	return o.Score != nil
}

// Orchestrator tries ranked backends in order until an acceptable score
// covers both dimensions. A score that leaves a dimension unmeasured is
// kept, and lower-priority backends able to measure the rest are tried to
// supplement it. Failures and invalid scores advance to the next backend;
// they are recorded but never returned.
type Orchestrator struct {
	backends []driven.BackendDescriptor
	timeouts domain.TimeoutSettings
	now      func() time.Time
}

// NewOrchestrator creates an orchestrator over descriptors sorted by priority.
func NewOrchestrator(backends []driven.BackendDescriptor, timeouts domain.TimeoutSettings) *Orchestrator {
	return &Orchestrator{
		backends: backends,
		timeouts: timeouts,
		now:      time.Now,
	}
}

// Backends returns the descriptors in priority order.
func (o *Orchestrator) Backends() []driven.BackendDescriptor {
	return o.backends
}

// Run drives Idle -> Trying(i) -> Supplementing(j) -> Succeeded, or
// Trying(i+1) -> Exhausted when nothing is accepted. ctx carries the
// request ceiling; each attempt gets the smaller of the backend timeout
// and the time left on ctx.
func (o *Orchestrator) Run(ctx context.Context, text string) *Outcome {
	out := &Outcome{Attempts: make([]domain.Attempt, 0, len(o.backends))}
	state := stateIdle
	total := len(o.backends)

	for i, d := range o.backends {
		var missing domain.Measure
		if out.Score != nil {
			missing = domain.MeasureAll &^ out.Score.Measured
			if missing == 0 {
				break
			}
			// Backends that cannot fill the gap are not tried.
			if d.Backend != nil && d.Backend.Measures()&missing == 0 {
				continue
			}
			state = stateSupplementing
		} else {
			state = stateTrying
		}

		if ctx.Err() != nil {
			out.TimedOut = out.TimedOut || errors.Is(ctx.Err(), context.DeadlineExceeded)
			out.Attempts = append(out.Attempts, domain.Attempt{
				Backend: d.Name,
				Outcome: domain.OutcomeSkipped,
				Error:   "request ceiling reached",
			})
			continue
		}
		if !d.IsAvailable() {
			logger.Debug("orchestrator: skipping %s (%d/%d), unavailable", d.Name, i+1, total)
			out.Attempts = append(out.Attempts, domain.Attempt{
				Backend: d.Name,
				Outcome: domain.OutcomeSkipped,
				Error:   domain.ErrBackendUnavailable.Error(),
			})
			continue
		}

		logger.Debug("orchestrator: %s %s (%d/%d)", state, d.Name, i+1, total)
		attempt, score := o.try(ctx, d, text)
		out.Attempts = append(out.Attempts, attempt)

		switch attempt.Outcome {
		case domain.OutcomeSucceeded:
			if out.Score == nil {
				out.Backend = d.Name
				out.Backends = append(out.Backends, d.Name)
				out.Score = cloneScore(score)
				if out.Score.Method == "" {
					out.Score.Method = d.Name
				}
			} else if taken := supplement(out.Score, score, missing, d.Name); taken != 0 {
				out.Backends = append(out.Backends, d.Name)
				logger.Debug("orchestrator: %s supplied %s", d.Name, taken)
			}
		case domain.OutcomeTimedOut:
			out.TimedOut = true
			logger.Debug("orchestrator: %s timed out after %s", d.Name, attempt.Elapsed)
		default:
			logger.Debug("orchestrator: %s %s: %s", d.Name, attempt.Outcome, attempt.Error)
		}
	}

	state = stateExhausted
	if out.Score != nil {
		state = stateSucceeded
	}
	logger.Debug("orchestrator: %s after %d attempts", state, len(out.Attempts))
	return out
}

// cloneScore copies a backend score so merging never writes through to
// the backend's value.
func cloneScore(s *domain.RawScore) *domain.RawScore {
	c := *s
	c.Matches = slices.Clone(s.Matches)
	c.Warnings = slices.Clone(s.Warnings)
	return &c
}

// supplement copies into dst the dimensions of src listed in missing and
// returns the ones taken. Dimensions dst already measured are left alone.
func supplement(dst, src *domain.RawScore, missing domain.Measure, name string) domain.Measure {
	taken := src.Measured & missing
	if taken == 0 {
		return 0
	}
	if taken.Has(domain.MeasurePlagiarism) {
		dst.PlagiarismPercent = src.PlagiarismPercent
		dst.SourcesFound = src.SourcesFound
		dst.Matches = slices.Clone(src.Matches)
	}
	if taken.Has(domain.MeasureAI) {
		dst.AIPercent = src.AIPercent
		dst.AIConfidence = src.AIConfidence
	}
	dst.Measured |= taken
	method := src.Method
	if method == "" {
		method = name
	}
	if method != dst.Method {
		dst.Method += "+" + method
	}
	dst.Warnings = append(dst.Warnings, src.Warnings...)
	return taken
}

// try runs one bounded attempt and classifies its outcome.
func (o *Orchestrator) try(ctx context.Context, d driven.BackendDescriptor, text string) (domain.Attempt, *domain.RawScore) {
	attempt := domain.Attempt{Backend: d.Name}

	ceiling := o.timeouts.Backend
	if deadline, ok := ctx.Deadline(); ok {
		ceiling = min(ceiling, deadline.Sub(o.now()))
	}
	if d.Slow {
		text = textproc.Truncate(text, o.timeouts.TruncateChars)
	}

	start := o.now()
	score, err := BoundedCall(ctx, ceiling, d.Backend, text)
	attempt.Elapsed = o.now().Sub(start)

	switch {
	case errors.Is(err, domain.ErrTimeout):
		attempt.Outcome = domain.OutcomeTimedOut
		attempt.Error = err.Error()
		return attempt, nil
	case err != nil:
		attempt.Outcome = domain.OutcomeFailed
		attempt.Error = err.Error()
		return attempt, nil
	}

	if err := ValidateScore(score, d.Backend.Measures()); err != nil {
		attempt.Outcome = domain.OutcomeInvalid
		attempt.Error = err.Error()
		return attempt, nil
	}

	attempt.Outcome = domain.OutcomeSucceeded
	return attempt, score
}

// ValidateScore accepts a score only if it measured at least one of the
// backend's dimensions and every measured value is finite and within
// [0, 100].
func ValidateScore(score *domain.RawScore, capabilities domain.Measure) error {
	if score == nil {
		return errors.New("no score returned")
	}
	if score.Measured == 0 {
		return errors.New("no dimension measured")
	}
	if score.Measured&^capabilities != 0 {
		return fmt.Errorf("measured %s beyond backend capabilities %s", score.Measured, capabilities)
	}
	if score.Measured.Has(domain.MeasurePlagiarism) {
		if err := validPercent("plagiarism", score.PlagiarismPercent); err != nil {
			return err
		}
	}
	if score.Measured.Has(domain.MeasureAI) {
		if err := validPercent("ai", score.AIPercent); err != nil {
			return err
		}
	}
	for _, m := range score.Matches {
		if err := validPercent("match "+m.SourceID, m.MatchedPercent); err != nil {
			return err
		}
	}
	if score.SourcesFound < 0 {
		return fmt.Errorf("negative source count %d", score.SourcesFound)
	}
	return nil
}

func validPercent(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s score is not finite", name)
	}
	if v < 0 || v > 100 {
		return fmt.Errorf("%s score %.2f outside [0, 100]", name, v)
	}
	return nil
}
