package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Locator discovers resources across an ordered list of sources.
type Locator struct {
	sources []Source
}

// NewLocator creates a locator. Sources are searched in the order given;
// that order is the discovery order reported by Discover.
func NewLocator(sources ...Source) *Locator {
	return &Locator{sources: append([]Source(nil), sources...)}
}

// Sources returns the search path.
func (l *Locator) Sources() []Source {
	return append([]Source(nil), l.sources...)
}

// Discover returns every resource named name, in search path order.
// Sources that do not contain it, or hold a directory under that name, are
// skipped. Any other stat failure, permission denied included, aborts
// discovery.
func (l *Locator) Discover(name string) ([]Resource, error) {
	var found []Resource
	for _, src := range l.sources {
		info, err := src.Stat(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to inspect %s: %w", src.Location(name), err)
		}
		if info.IsDir() {
			continue
		}
		found = append(found, Resource{name: name, src: src})
	}
	return found, nil
}

// StandardSources builds the default search path:
//   - each directory of pathList (os.PathListSeparator separated)
//   - the per-user configuration directory, under app
//   - /etc/app on Unix-like systems
//
// followed by fallback sources, which therefore have the lowest precedence.
func StandardSources(app, pathList string, fallback ...Source) []Source {
	var sources []Source
	for _, dir := range filepath.SplitList(pathList) {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		sources = append(sources, NewDirSource(dir))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		sources = append(sources, NewDirSource(filepath.Join(dir, app)))
	}
	if filepath.Separator == '/' {
		sources = append(sources, NewDirSource(filepath.Join("/etc", app)))
	}
	return append(sources, fallback...)
}
