// Package blob retrieves the static JSON documents that back postcode lookups:
// the substation directory and the per-outward-code chunks.
package blob

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/rotisserie/eris"
)

// Logical document names.
const (
	SubstationsName = "substations"
	chunkPrefix     = "chunks/"
	docExt          = ".json"
)

// maxDocumentBytes caps a single document read. The largest published
// substation directory is well under this.
const maxDocumentBytes = 256 << 20

var (
	// ErrNotFound reports that the named document does not exist in the source.
	ErrNotFound = eris.New("blob: not found")
	// ErrTooLarge reports a document that exceeds the read cap.
	ErrTooLarge = eris.New("blob: document too large")
)

// Source fetches a document by logical name.
type Source interface {
	// Fetch returns the document body. A missing document returns an error
	// matching ErrNotFound.
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// ChunkName returns the logical name of the chunk for an outward code.
func ChunkName(outward string) string {
	return chunkPrefix + outward
}

// objectPath maps a logical name to its relative file path, e.g.
// "chunks/N15" -> "chunks/N15.json". Names that could escape the source root
// are rejected with ErrNotFound.
func objectPath(name string) (string, error) {
	if name == "" ||
		strings.HasPrefix(name, "/") ||
		strings.Contains(name, "\\") ||
		strings.Contains(name, "\x00") {
		return "", eris.Wrapf(ErrNotFound, "blob: invalid name %q", name)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", eris.Wrapf(ErrNotFound, "blob: invalid name %q", name)
		}
	}
	return path.Clean(name) + docExt, nil
}

// readDocument reads r fully, failing with ErrTooLarge rather than truncating
// once more than limit bytes arrive.
func readDocument(r io.Reader, name string, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, eris.Wrapf(err, "blob: read %s", name)
	}
	if int64(len(data)) > limit {
		return nil, eris.Wrapf(ErrTooLarge, "blob: %s exceeds %d bytes", name, limit)
	}
	return data, nil
}
