package lookup

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/postcode-lookup/internal/blob"
	"github.com/sells-group/postcode-lookup/internal/chunkstore"
	"github.com/sells-group/postcode-lookup/internal/monitoring"
	"github.com/sells-group/postcode-lookup/internal/substation"
)

const testDirectory = `{
  "S1": {"name":"Tottenham Hale","dno":"UKPN","license_area":"London","postcode_count":1},
  "SUB42": {"name":"Inverness","dno":"SSEN","license_area":"North Scotland","postcode_count":4,
    "boundary":{"type":"Polygon","coordinates":[[[-4.3,57.4],[-4.1,57.4],[-4.1,57.6],[-4.3,57.4]]]}}
}`

var testChunks = map[string]string{
	"chunks/N15.json": `{"N15 5QA":{"substation_id":"S1","lat":51.5,"lng":-0.1}}`,
	"chunks/IV1.json": `{
		"IV1 1AA":{"substation_id":"SUB42","lat":57.48,"lng":-4.22},
		"IV1 1AB":{"substation_id":"SUB42","lat":57.48,"lng":-4.23},
		"IV1 9ZZ":{"substation_id":"OTHER","lat":57.49,"lng":-4.21}
	}`,
	"chunks/IV2.json": `{
		"IV2 3BB":{"substation_id":"SUB42","lat":57.47,"lng":-4.19},
		"IV2 3BA":{"substation_id":"SUB42","lat":57.47,"lng":-4.18}
	}`,
	"chunks/IV150.json": `{"IV150 1AA":{"substation_id":"SUB42"}}`,
	"chunks/X9.json":    `{"X9 9XX":{"substation_id":"GHOST"}}`,
}

type fixture struct {
	svc     *Service
	store   *chunkstore.Store
	metrics *monitoring.Metrics
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, body := range testChunks {
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0o644))
	}
	require.NoError(t, afero.WriteFile(fs, "substations.json", []byte(testDirectory), 0o644))

	src := blob.NewFsSource(fs)
	dir, err := substation.Load(context.Background(), src)
	require.NoError(t, err)

	m := monitoring.NewMetrics(prometheus.NewRegistry())
	store := chunkstore.New(src, m)
	return fixture{svc: NewService(store, dir, m, opts), store: store, metrics: m}
}

func TestResolve(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	e, err := f.svc.Resolve(ctx, "N15 5QA")
	require.NoError(t, err)
	assert.Equal(t, chunkstore.Entry{SubstationID: "S1", Lat: 51.5, Lng: -0.1}, e)

	tests := []struct {
		name string
		in   string
	}{
		{name: "chunk absent", in: "N16 1AA"},
		{name: "key absent", in: "N15 5QB"},
		{name: "not a postcode", in: "HELLO"},
		{name: "not normalized", in: "n15 5qa"},
		{name: "empty", in: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Resolve(ctx, tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}

	// Failed loads are not cached.
	assert.Equal(t, []string{"N15"}, f.store.Names())
}

func TestReconstructAreaSpansOutwardCodes(t *testing.T) {
	f := newFixture(t, Options{})

	got, err := f.svc.ReconstructArea(context.Background(), "IV1 1AA", "SUB42")
	require.NoError(t, err)
	assert.Equal(t, []string{"IV1 1AA", "IV1 1AB", "IV2 3BA", "IV2 3BB"}, got)
}

func TestReconstructAreaReport(t *testing.T) {
	f := newFixture(t, Options{FanoutConcurrency: 7})

	report, err := f.svc.ReconstructAreaReport(context.Background(), "IV1 1AA", "SUB42")
	require.NoError(t, err)
	assert.Equal(t, "IV", report.Prefix)
	assert.Equal(t, 100, report.Attempted)
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 98, report.Unavailable)
	assert.Equal(t, 2, report.Scanned)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.AreaRuns), 0.001)
}

func TestReconstructAreaDeterministic(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	first, err := f.svc.ReconstructArea(ctx, "IV2 3BB", "SUB42")
	require.NoError(t, err)
	for range 3 {
		again, err := f.svc.ReconstructArea(ctx, "IV2 3BB", "SUB42")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestReconstructAreaScansEarlierChunks(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	// IV150 is outside the 1..99 range and only seen once it is cached.
	got, err := f.svc.ReconstructArea(ctx, "IV1 1AA", "SUB42")
	require.NoError(t, err)
	assert.NotContains(t, got, "IV150 1AA")

	_, err = f.store.Get(ctx, "IV150")
	require.NoError(t, err)

	got, err = f.svc.ReconstructArea(ctx, "IV1 1AA", "SUB42")
	require.NoError(t, err)
	assert.Contains(t, got, "IV150 1AA")
	assert.Len(t, got, 5)
}

func TestReconstructAreaNoPrefix(t *testing.T) {
	f := newFixture(t, Options{})

	got, err := f.svc.ReconstructArea(context.Background(), "123", "SUB42")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, f.store.Len())
}

func TestReconstructAreaIgnoresCancellation(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, err := f.store.Get(ctx, "IV1")
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	// Abandoned requests still warm the cache.
	report, err := f.svc.ReconstructAreaReport(cancelled, "IV1 1AA", "SUB42")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 98, report.Unavailable)
	assert.Equal(t, []string{"IV1 1AA", "IV1 1AB", "IV2 3BA", "IV2 3BB"}, report.Postcodes)
	assert.ElementsMatch(t, []string{"IV1", "IV2"}, f.store.Names())
}

func TestAreaCandidates(t *testing.T) {
	names := AreaCandidates("IV")
	require.Len(t, names, 100)
	assert.Equal(t, "IV1", names[0])
	assert.Equal(t, "IV99", names[98])
	assert.Equal(t, "IV", names[99])
}
