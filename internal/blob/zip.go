package blob

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ZipSource serves documents from a single published data bundle. Entries
// are indexed once at open time; the archive is read-only afterwards.
type ZipSource struct {
	closer  io.Closer
	entries map[string]*zip.File
}

// OpenZipSource opens the archive at zipPath. Insecure entry names are
// tolerated and filtered out during indexing. prefix is the directory inside
// the archive that holds substations.json, e.g. "data"; empty means the root.
func OpenZipSource(zipPath, prefix string) (*ZipSource, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, eris.Wrap(err, "zip: open archive")
	}
	s := newZipSource(&r.Reader, prefix)
	s.closer = r
	return s, nil
}

// NewZipSource indexes an archive that is already in memory or on disk.
func NewZipSource(ra io.ReaderAt, size int64, prefix string) (*ZipSource, error) {
	r, err := zip.NewReader(ra, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, eris.Wrap(err, "zip: read archive")
	}
	return newZipSource(r, prefix), nil
}

func newZipSource(r *zip.Reader, prefix string) *ZipSource {
	prefix = strings.Trim(prefix, "/")
	entries := make(map[string]*zip.File, len(r.File))
	skipped := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		// Entries that would escape the bundle root are never served.
		clean := path.Clean(f.Name)
		if strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") || clean == ".." {
			skipped++
			continue
		}
		if prefix != "" {
			if !strings.HasPrefix(clean, prefix+"/") {
				continue
			}
			clean = strings.TrimPrefix(clean, prefix+"/")
		}
		entries[clean] = f
	}
	if skipped > 0 {
		zap.L().Warn("zip: skipped unsafe entries", zap.Int("count", skipped))
	}
	return &ZipSource{entries: entries}
}

// Len returns the number of documents in the bundle.
func (s *ZipSource) Len() int {
	return len(s.entries)
}

// Fetch reads the named document from the archive.
func (s *ZipSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "blob: context cancelled")
	}
	p, err := objectPath(name)
	if err != nil {
		return nil, err
	}

	f, ok := s.entries[p]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "blob: %s", name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, eris.Wrapf(err, "zip: open entry %s", p)
	}
	defer rc.Close() //nolint:errcheck

	return readDocument(rc, name, maxDocumentBytes)
}

// Close releases the underlying archive file, if any.
func (s *ZipSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
