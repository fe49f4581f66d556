package lookup

import (
	"context"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/postcode-lookup/internal/postcode"
)

// maxAreaSuffix is the highest numeric district tried for an area prefix.
// Districts above it, and irregular ones like EC1A, are only seen if they are
// already cached.
const maxAreaSuffix = 99

// LoadResult is the outcome of one speculative chunk load.
type LoadResult struct {
	Name string
	Err  error
}

// AreaReport summarises one reconstruction.
type AreaReport struct {
	Prefix      string   `json:"prefix"`
	Attempted   int      `json:"attempted"`
	Loaded      int      `json:"loaded"`
	Unavailable int      `json:"unavailable"`
	Scanned     int      `json:"scanned_chunks"`
	Postcodes   []string `json:"postcodes"`
}

// AreaCandidates returns the chunk names tried for an area prefix:
// {prefix}1 through {prefix}99, then the bare prefix.
func AreaCandidates(prefix string) []string {
	names := make([]string, 0, maxAreaSuffix+1)
	for n := 1; n <= maxAreaSuffix; n++ {
		names = append(names, prefix+strconv.Itoa(n))
	}
	return append(names, prefix)
}

// ReconstructArea returns every cached postcode served by substationID, sorted,
// after speculatively loading the chunks that share postcode's area prefix.
func (s *Service) ReconstructArea(ctx context.Context, pc, substationID string) ([]string, error) {
	report, err := s.ReconstructAreaReport(ctx, pc, substationID)
	if err != nil {
		return nil, err
	}
	return report.Postcodes, nil
}

// ReconstructAreaReport is ReconstructArea with load statistics. Individual
// load failures are counted and otherwise ignored. Cancelling ctx does not
// abort the loads.
func (s *Service) ReconstructAreaReport(ctx context.Context, pc, substationID string) (*AreaReport, error) {
	prefix, ok := postcode.AreaPrefix(pc)
	if !ok {
		return &AreaReport{Postcodes: []string{}}, nil
	}

	names := AreaCandidates(prefix)
	results := s.loadAll(ctx, names)

	report := &AreaReport{Prefix: prefix, Attempted: len(results)}
	for _, r := range results {
		if r.Err != nil {
			report.Unavailable++
			s.log.Debug("speculative load failed", zap.String("chunk", r.Name), zap.Error(r.Err))
			continue
		}
		report.Loaded++
	}

	report.Postcodes, report.Scanned = s.scan(substationID)

	s.metrics.ObserveArea(report.Loaded)
	s.log.Info("area reconstructed",
		zap.String("prefix", prefix),
		zap.String("substation_id", substationID),
		zap.Int("attempted", report.Attempted),
		zap.Int("loaded", report.Loaded),
		zap.Int("unavailable", report.Unavailable),
		zap.Int("scanned_chunks", report.Scanned),
		zap.Int("postcodes", len(report.Postcodes)),
	)
	return report, nil
}

// loadAll fetches every name through the store and waits for all of them.
// Tasks never return an error, so no failure cancels its siblings. Loads are
// detached from ctx cancellation: once started they run to completion and
// fill the cache, bounded only by the source's own timeouts.
func (s *Service) loadAll(ctx context.Context, names []string) []LoadResult {
	ctx = context.WithoutCancel(ctx)
	results := make([]LoadResult, len(names))

	var g errgroup.Group
	g.SetLimit(s.opts.FanoutConcurrency)
	for i, name := range names {
		g.Go(func() error {
			_, err := s.store.Get(ctx, name)
			results[i] = LoadResult{Name: name, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// scan collects postcodes mapped to substationID across every cached chunk.
func (s *Service) scan(substationID string) ([]string, int) {
	snap := s.store.Snapshot()
	out := []string{}
	for _, n := range snap {
		for pc, e := range n.Chunk {
			if e.SubstationID == substationID {
				out = append(out, pc)
			}
		}
	}
	sort.Strings(out)
	return out, len(snap)
}
