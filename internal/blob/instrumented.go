package blob

import (
	"context"
	"errors"
	"time"

	"github.com/sells-group/postcode-lookup/internal/monitoring"
)

// Instrumented records fetch outcomes and latency for an inner Source.
type Instrumented struct {
	inner   Source
	metrics *monitoring.Metrics
}

// NewInstrumented wraps inner. A nil metrics value disables recording.
func NewInstrumented(inner Source, metrics *monitoring.Metrics) *Instrumented {
	return &Instrumented{inner: inner, metrics: metrics}
}

// Fetch delegates to the inner source.
func (s *Instrumented) Fetch(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	data, err := s.inner.Fetch(ctx, name)

	outcome := monitoring.OutcomeOK
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = monitoring.OutcomeNotFound
	case err != nil:
		outcome = monitoring.OutcomeError
	}
	s.metrics.ObserveFetch(outcome, time.Since(start))

	return data, err
}
