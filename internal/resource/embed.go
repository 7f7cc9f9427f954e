package resource

import (
	"io/fs"
	"path"
	"strings"
)

// EmbedSource resolves resources inside a subtree of an fs.FS. Paths always
// use forward slashes.
type EmbedSource struct {
	fsys fs.FS
	root string
}

// NewEmbedSource wraps fsys, treating root as the directory resources live in.
func NewEmbedSource(fsys fs.FS, root string) *EmbedSource {
	return &EmbedSource{fsys: fsys, root: path.Clean(strings.ReplaceAll(root, "\\", "/"))}
}

func (s *EmbedSource) path(name string) string {
	return path.Join(s.root, strings.ReplaceAll(name, "\\", "/"))
}

func (s *EmbedSource) Location(name string) string { return "embed:" + s.path(name) }

func (s *EmbedSource) Stat(name string) (fs.FileInfo, error) {
	return fs.Stat(s.fsys, s.path(name))
}

func (s *EmbedSource) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(s.fsys, s.path(name))
}
