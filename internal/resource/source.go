package resource

import (
	"io/fs"
)

// Source is one location on the search path.
type Source interface {
	// Location describes where name would live, for diagnostics.
	Location(name string) string

	// Stat returns file information for name. A missing resource yields an
	// error matching fs.ErrNotExist.
	Stat(name string) (fs.FileInfo, error)

	// ReadFile returns the content of name.
	ReadFile(name string) ([]byte, error)
}

// Resource is a discovered resource handle.
type Resource struct {
	name string
	src  Source
}

// Name returns the logical resource name.
func (r Resource) Name() string { return r.name }

// Location returns where the resource was found.
func (r Resource) Location() string { return r.src.Location(r.name) }

// Read returns the resource content.
func (r Resource) Read() ([]byte, error) {
	return r.src.ReadFile(r.name)
}
