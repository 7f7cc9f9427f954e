package resource

import (
	"io/fs"
	"os"
	"path/filepath"
)

// DirSource resolves resources inside one OS directory.
type DirSource struct {
	dir string
}

// NewDirSource creates a source rooted at dir. The directory does not need
// to exist; a missing directory simply contains no resources.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: filepath.Clean(dir)}
}

func (s *DirSource) path(name string) string {
	return filepath.Join(s.dir, filepath.FromSlash(name))
}

func (s *DirSource) Location(name string) string { return s.path(name) }

func (s *DirSource) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(s.path(name))
}

func (s *DirSource) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(s.path(name))
}
