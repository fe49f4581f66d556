package blob

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkName(t *testing.T) {
	assert.Equal(t, "chunks/N15", ChunkName("N15"))
}

func TestObjectPath(t *testing.T) {
	p, err := objectPath("chunks/N15")
	require.NoError(t, err)
	assert.Equal(t, "chunks/N15.json", p)

	p, err = objectPath(SubstationsName)
	require.NoError(t, err)
	assert.Equal(t, "substations.json", p)
}

func TestObjectPathRejectsEscapes(t *testing.T) {
	for _, name := range []string{"", "/etc/passwd", "../secret", "chunks/../../x", "chunks//N1", `chunks\N1`, "chunks/./N1"} {
		_, err := objectPath(name)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrNotFound), name)
	}
}

func TestReadDocument(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		limit  int64
		tooBig bool
	}{
		{name: "under limit", body: "{}", limit: 8},
		{name: "exactly at limit", body: "12345678", limit: 8},
		{name: "one byte over", body: "123456789", limit: 8, tooBig: true},
		{name: "empty", body: "", limit: 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := readDocument(strings.NewReader(tt.body), "chunks/N15", tt.limit)
			if tt.tooBig {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrTooLarge))
				assert.Nil(t, data)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.body, string(data))
		})
	}
}
