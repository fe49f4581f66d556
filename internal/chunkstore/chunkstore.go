// Package chunkstore loads per-outward-code postcode chunks on demand and
// memoizes them for the lifetime of the Store.
package chunkstore

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/postcode-lookup/internal/blob"
	"github.com/sells-group/postcode-lookup/internal/monitoring"
)

// ErrUnavailable reports that a chunk could not be fetched or decoded.
var ErrUnavailable = eris.New("chunkstore: chunk unavailable")

// Entry is the value stored for one postcode.
type Entry struct {
	SubstationID string  `json:"substation_id"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
}

// Chunk maps canonical postcodes to their entries. Chunks are immutable once
// cached; callers must not modify them.
type Chunk map[string]Entry

// Named pairs a cached chunk with its outward code.
type Named struct {
	Name  string
	Chunk Chunk
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Entries   int   `json:"entries"`
	Postcodes int   `json:"postcodes"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Failures  int64 `json:"failures"`
}

// Store is an append-only chunk cache in front of a blob source. Entries are
// never evicted. Failed loads are not cached.
type Store struct {
	src     blob.Source
	metrics *monitoring.Metrics
	log     *zap.Logger

	mu     sync.RWMutex
	chunks map[string]Chunk
	order  []string

	hits     atomic.Int64
	misses   atomic.Int64
	failures atomic.Int64
}

// New creates an empty Store. metrics may be nil.
func New(src blob.Source, metrics *monitoring.Metrics) *Store {
	return &Store{
		src:     src,
		metrics: metrics,
		log:     zap.L().With(zap.String("component", "chunkstore")),
		chunks:  make(map[string]Chunk),
	}
}

// Get returns the chunk for outward, loading it on a miss. Concurrent misses
// for the same key each fetch; the cache still ends up with one entry.
func (s *Store) Get(ctx context.Context, outward string) (Chunk, error) {
	if c, ok := s.lookup(outward); ok {
		s.hits.Add(1)
		s.metrics.CacheLookup(true)
		s.log.Debug("cache hit", zap.String("chunk", outward))
		return c, nil
	}
	s.misses.Add(1)
	s.metrics.CacheLookup(false)

	data, err := s.src.Fetch(ctx, blob.ChunkName(outward))
	if err != nil {
		s.failures.Add(1)
		return nil, eris.Wrapf(unavailable(err), "chunkstore: load %s", outward)
	}

	var c Chunk
	if err := json.Unmarshal(data, &c); err != nil {
		s.failures.Add(1)
		return nil, eris.Wrapf(unavailable(err), "chunkstore: decode %s", outward)
	}
	if c == nil {
		c = Chunk{}
	}

	return s.store(outward, c), nil
}

func (s *Store) lookup(outward string) (Chunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chunks[outward]
	return c, ok
}

func (s *Store) store(outward string, c Chunk) Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chunks[outward]; !ok {
		s.order = append(s.order, outward)
	}
	s.chunks[outward] = c
	s.metrics.SetCacheEntries(len(s.chunks))
	return c
}

// Snapshot returns the cached chunks in insertion order.
func (s *Store) Snapshot() []Named {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Named, len(s.order))
	for i, name := range s.order {
		out[i] = Named{Name: name, Chunk: s.chunks[name]}
	}
	return out
}

// Names returns the cached outward codes in insertion order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Len returns the number of cached chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Stats returns counters and cache size.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	entries := len(s.chunks)
	postcodes := 0
	for _, c := range s.chunks {
		postcodes += len(c)
	}
	s.mu.RUnlock()

	return Stats{
		Entries:   entries,
		Postcodes: postcodes,
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Failures:  s.failures.Load(),
	}
}

// unavailableError tags a cause as ErrUnavailable while keeping it in the
// chain for errors.Is.
type unavailableError struct {
	cause error
}

func unavailable(cause error) error {
	return &unavailableError{cause: cause}
}

func (e *unavailableError) Error() string {
	return ErrUnavailable.Error() + ": " + e.cause.Error()
}

func (e *unavailableError) Unwrap() []error {
	return []error{ErrUnavailable, e.cause}
}
