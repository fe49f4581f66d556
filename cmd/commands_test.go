package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/postcode-lookup/internal/config"
	"github.com/sells-group/postcode-lookup/internal/lookup"
)

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"substations.json": `{
			"SUB42": {"name":"Inverness","dno":"SSEN","license_area":"North Scotland","postcode_count":12345,
				"boundary":{"type":"Polygon","coordinates":[[[-4.3,57.4],[-4.1,57.4],[-4.1,57.6],[-4.3,57.4]]]}}
		}`,
		"chunks/IV1.json": `{"IV1 1AA":{"substation_id":"SUB42","lat":57.48,"lng":-4.22}}`,
		"chunks/IV2.json": `{"IV2 3BB":{"substation_id":"SUB42","lat":57.47,"lng":-4.19}}`,
		"chunks/IV3.json": `{"IV3 5AA":{"substation_id":"MISSING","lat":57.47,"lng":-4.25}}`,
	}
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func testConfig(dataDir string) *config.Config {
	c := &config.Config{}
	c.Source.Kind = "dir"
	c.Source.Dir = dataDir
	c.Lookup.FanoutConcurrency = 10
	c.Lookup.SuggestLimit = 10
	c.Lookup.SuggestMinChars = 3
	c.Lookup.PageSize = 100
	return c
}

func newTestSession(t *testing.T) *sessionEnv {
	t.Helper()
	env, err := initSession(context.Background(), testConfig(writeDataDir(t)), "cli")
	require.NoError(t, err)
	t.Cleanup(env.Close)
	return env
}

func TestInitSessionMissingDirectory(t *testing.T) {
	_, err := initSession(context.Background(), testConfig(t.TempDir()), "cli")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load substation directory")
}

func TestInitSessionInvalidConfig(t *testing.T) {
	c := testConfig(t.TempDir())
	c.Source.Kind = "ftp"
	_, err := initSession(context.Background(), c, "cli")
	require.Error(t, err)
}

func TestRunLookupText(t *testing.T) {
	env := newTestSession(t)

	var buf bytes.Buffer
	require.NoError(t, runLookup(context.Background(), env.Service, &buf, "iv11aa", 1, formatText))
	out := buf.String()
	assert.Contains(t, out, "IV1 1AA")
	assert.Contains(t, out, "Inverness [SUB42]")
	assert.Contains(t, out, "12,345")
	assert.Contains(t, out, "2 found (page 1 of 1)")
	assert.Contains(t, out, "  IV2 3BB\n")
}

func TestRunLookupJSON(t *testing.T) {
	env := newTestSession(t)

	var buf bytes.Buffer
	require.NoError(t, runLookup(context.Background(), env.Service, &buf, "IV2 3BB", 1, formatJSON))

	var res lookup.SearchResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	assert.Equal(t, "SUB42", res.Substation.ID)
	assert.Equal(t, []string{"IV1 1AA", "IV2 3BB"}, res.Area.Items)
}

func TestRunLookupErrors(t *testing.T) {
	env := newTestSession(t)
	ctx := context.Background()

	err := runLookup(ctx, env.Service, &bytes.Buffer{}, "zz99 9zz", 1, formatText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `postcode "ZZ99 9ZZ" not found`)

	err = runLookup(ctx, env.Service, &bytes.Buffer{}, "  ", 1, formatText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please enter a postcode")

	err = runLookup(ctx, env.Service, &bytes.Buffer{}, "IV3 5AA", 1, formatText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "substation details not found")
}

func TestRunSuggest(t *testing.T) {
	env := newTestSession(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, runSuggest(ctx, env.Service, &buf, "IV1", nil))
	assert.Empty(t, buf.String())

	buf.Reset()
	require.NoError(t, runSuggest(ctx, env.Service, &buf, "iv1", []string{" iv1 ", "NOPE9", ""}))
	assert.Equal(t, "IV1 1AA\n", buf.String())
}

func TestRunSubstation(t *testing.T) {
	env := newTestSession(t)

	var buf bytes.Buffer
	require.NoError(t, runSubstation(env.Service, &buf, "SUB42", formatYAML))
	assert.Contains(t, buf.String(), "name: Inverness")
	assert.Contains(t, buf.String(), "bounds:")

	err := runSubstation(env.Service, &bytes.Buffer{}, "NOPE", formatText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunArea(t *testing.T) {
	env := newTestSession(t)

	var buf bytes.Buffer
	require.NoError(t, runArea(context.Background(), env.Service, &buf, "iv1 1aa", "SUB42", formatText))
	out := buf.String()
	assert.Contains(t, out, `Prefix "IV": 3 of 100 chunks loaded, 97 unavailable, 3 scanned`)
	assert.Contains(t, out, "2 postcodes served by SUB42")
}
