package driven

import (
	"context"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

// Backend is a detection strategy. Remote services and the local engine
// implement the same contract; vendor payloads are translated into
// domain.RawScore at the adapter boundary.
type Backend interface {
	// Name returns the backend identifier used in results and logs.
	Name() string

	// Measures returns the score dimensions this backend can produce.
	Measures() domain.Measure

	// Submit scores the text. Failures are returned as errors; the
	// orchestrator wraps them in a *domain.BackendError.
	Submit(ctx context.Context, text string) (*domain.RawScore, error)
}

// Pinger is implemented by backends that can cheaply check reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackendDescriptor is a ranked, configured backend.
// Descriptors are built at start-up from settings and read-only afterwards.
type BackendDescriptor struct {
	// Name identifies the backend.
	Name string

	// Priority is the rank in the configured order, 1 being tried first.
	Priority int

	// Slow marks backends that receive truncated input.
	Slow bool

	// Remote marks backends that call a third-party service.
	Remote bool

	// Available reports whether the backend can be tried, e.g. credentials
	// are present. Nil means always available.
	Available func() bool

	// Backend is the callable implementation. Nil when the backend could
	// not be constructed; such descriptors are never available.
	Backend Backend
}

// IsAvailable returns true if the backend can be tried.
func (d BackendDescriptor) IsAvailable() bool {
	if d.Backend == nil {
		return false
	}
	if d.Available == nil {
		return true
	}
	return d.Available()
}

// Status returns a listing view of the descriptor.
func (d BackendDescriptor) Status() domain.BackendStatus {
	status := domain.BackendStatus{
		Name:      d.Name,
		Priority:  d.Priority,
		Available: d.IsAvailable(),
		Remote:    d.Remote,
	}
	if d.Backend != nil {
		status.Measures = d.Backend.Measures()
	}
	return status
}
