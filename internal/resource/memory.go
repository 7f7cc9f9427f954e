package resource

import (
	"fmt"
	"io/fs"
	"path"
	"sync"
	"time"
)

type memoryFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return false }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryFile struct {
	content []byte
	readErr error
	statErr error
	info    *memoryFileInfo
}

// MemorySource is an in-memory Source for tests and programmatic defaults.
type MemorySource struct {
	label string

	mu    sync.RWMutex
	files map[string]*memoryFile
}

// NewMemorySource creates an empty source. label appears in locations.
func NewMemorySource(label string) *MemorySource {
	return &MemorySource{
		label: label,
		files: make(map[string]*memoryFile),
	}
}

// AddFile adds or replaces a resource.
func (s *MemorySource) AddFile(name, content string) {
	s.put(name, &memoryFile{content: []byte(content)}, len(content))
}

// AddUnreadable adds a resource that is discoverable but fails on read.
func (s *MemorySource) AddUnreadable(name string, err error) {
	s.put(name, &memoryFile{readErr: err}, 0)
}

// AddUninspectable adds a resource whose Stat fails with err.
func (s *MemorySource) AddUninspectable(name string, err error) {
	s.put(name, &memoryFile{statErr: err}, 0)
}

func (s *MemorySource) put(name string, f *memoryFile, size int) {
	name = path.Clean(name)
	f.info = &memoryFileInfo{name: path.Base(name), size: int64(size), modTime: time.Now()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = f
}

func (s *MemorySource) lookup(name string) (*memoryFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[path.Clean(name)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", s.Location(name), fs.ErrNotExist)
	}
	return f, nil
}

func (s *MemorySource) Location(name string) string {
	return "mem://" + s.label + "/" + path.Clean(name)
}

func (s *MemorySource) Stat(name string) (fs.FileInfo, error) {
	f, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	if f.statErr != nil {
		return nil, f.statErr
	}
	return f.info, nil
}

func (s *MemorySource) ReadFile(name string) ([]byte, error) {
	f, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]byte(nil), f.content...), nil
}
