package assets

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirLoader loads assets from a directory on disk. Each load opens the
// directory as an os.Root, so nothing outside it can be read.
type DirLoader struct {
	path string
}

// NewDirLoader checks that path is a readable directory.
func NewDirLoader(path string) (*DirLoader, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	_ = root.Close()
	return &DirLoader{path: abs}, nil
}

// Path returns the absolute directory.
func (d *DirLoader) Path() string { return d.path }

func (d *DirLoader) LoadStyle(name string) (string, error) {
	return d.load(styleKind, name)
}

func (d *DirLoader) LoadTemplate(name string) (string, error) {
	return d.load(templateKind, name)
}

func (d *DirLoader) load(k kind, name string) (string, error) {
	root, err := os.OpenRoot(d.path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	defer func() { _ = root.Close() }()
	return read(root.FS(), k, name)
}

var _ AssetLoader = (*DirLoader)(nil)
