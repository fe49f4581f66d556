package blob

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sells-group/postcode-lookup/internal/resilience"
)

// Guarded fails fast once the inner source keeps failing, so a dead host does
// not absorb a full speculative fan-out on every search. Missing documents are
// expected and never count as failures.
type Guarded struct {
	inner   Source
	breaker *resilience.Breaker
}

// NewGuarded wraps inner with a circuit breaker.
func NewGuarded(inner Source, threshold int, cfg resilience.Config) *Guarded {
	cfg.FailureThreshold = threshold
	cfg.Counts = func(err error) bool { return !errors.Is(err, ErrNotFound) }
	if cfg.OnStateChange == nil {
		cfg.OnStateChange = func(from, to resilience.State) {
			zap.L().Warn("blob: circuit breaker state change",
				zap.Stringer("from", from), zap.Stringer("to", to))
		}
	}
	return &Guarded{inner: inner, breaker: resilience.New(cfg)}
}

// Fetch delegates to the inner source unless the breaker is open.
func (g *Guarded) Fetch(ctx context.Context, name string) ([]byte, error) {
	return resilience.Do(ctx, g.breaker, func(ctx context.Context) ([]byte, error) {
		return g.inner.Fetch(ctx, name)
	})
}

// State returns the breaker state.
func (g *Guarded) State() resilience.State {
	return g.breaker.State()
}
