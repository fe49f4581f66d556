package blob

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
)

// DirSource reads documents from a directory tree laid out as
// {root}/substations.json and {root}/chunks/{outward}.json.
type DirSource struct {
	fs afero.Fs
}

// NewDirSource creates a DirSource rooted at dir on the OS filesystem.
func NewDirSource(dir string) *DirSource {
	return NewFsSource(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// NewFsSource creates a DirSource over an arbitrary afero filesystem whose
// root holds the documents.
func NewFsSource(fsys afero.Fs) *DirSource {
	return &DirSource{fs: fsys}
}

// Fetch reads the named document.
func (s *DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "blob: context cancelled")
	}
	p, err := objectPath(name)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, filepath.FromSlash(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(ErrNotFound, "blob: %s", name)
		}
		return nil, eris.Wrapf(err, "blob: read %s", name)
	}
	return data, nil
}
