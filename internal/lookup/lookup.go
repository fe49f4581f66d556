// Package lookup resolves postcodes to substations and reconstructs the set
// of postcodes a substation serves from the chunks loaded so far.
package lookup

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/postcode-lookup/internal/chunkstore"
	"github.com/sells-group/postcode-lookup/internal/monitoring"
	"github.com/sells-group/postcode-lookup/internal/postcode"
	"github.com/sells-group/postcode-lookup/internal/substation"
)

// Sentinel errors returned by Service.
var (
	ErrNotFound          = eris.New("lookup: postcode not found")
	ErrSubstationMissing = eris.New("lookup: substation missing from directory")
	ErrInvalidInput      = eris.New("lookup: invalid input")
)

// Defaults used when Options leaves a field zero.
const (
	DefaultFanoutConcurrency = 100
	DefaultSuggestLimit      = 10
	DefaultSuggestMinChars   = 3
	DefaultPageSize          = 100
)

// Options tunes a Service.
type Options struct {
	FanoutConcurrency int
	SuggestLimit      int
	SuggestMinChars   int
	PageSize          int
}

func (o Options) withDefaults() Options {
	if o.FanoutConcurrency <= 0 {
		o.FanoutConcurrency = DefaultFanoutConcurrency
	}
	if o.SuggestLimit <= 0 {
		o.SuggestLimit = DefaultSuggestLimit
	}
	if o.SuggestMinChars <= 0 {
		o.SuggestMinChars = DefaultSuggestMinChars
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	return o
}

// Service ties the chunk store and substation directory together. One
// Service is one lookup session: its cache lives as long as the store does.
type Service struct {
	store   *chunkstore.Store
	dir     *substation.Directory
	metrics *monitoring.Metrics
	opts    Options
	log     *zap.Logger
}

// NewService creates a Service. metrics may be nil.
func NewService(store *chunkstore.Store, dir *substation.Directory, metrics *monitoring.Metrics, opts Options) *Service {
	return &Service{
		store:   store,
		dir:     dir,
		metrics: metrics,
		opts:    opts.withDefaults(),
		log:     zap.L().With(zap.String("component", "lookup")),
	}
}

// Store returns the session's chunk store.
func (s *Service) Store() *chunkstore.Store { return s.store }

// Directory returns the substation directory.
func (s *Service) Directory() *substation.Directory { return s.dir }

// Options returns the effective options.
func (s *Service) Options() Options { return s.opts }

// Resolve returns the entry for an exact canonical postcode. The input is not
// normalized. An unrecognizable outward code, an unavailable chunk, or a
// missing key all return ErrNotFound.
func (s *Service) Resolve(ctx context.Context, canonical string) (chunkstore.Entry, error) {
	outward, ok := postcode.OutwardCode(canonical)
	if !ok {
		return chunkstore.Entry{}, eris.Wrapf(ErrNotFound, "lookup: %q is not a postcode", canonical)
	}

	chunk, err := s.store.Get(ctx, outward)
	if err != nil {
		s.log.Debug("chunk unavailable", zap.String("chunk", outward), zap.Error(err))
		return chunkstore.Entry{}, eris.Wrapf(ErrNotFound, "lookup: %s", canonical)
	}

	entry, ok := chunk[canonical]
	if !ok {
		return chunkstore.Entry{}, eris.Wrapf(ErrNotFound, "lookup: %s", canonical)
	}
	return entry, nil
}
