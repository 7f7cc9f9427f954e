// Package config loads the CLI profile file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

// ErrConfigNotFound is returned when the profile file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// Profile supplies defaults for CLI commands. Flags override every field.
type Profile struct {
	URL          string            `yaml:"url"`
	LogLevel     *int              `yaml:"log_level,omitempty"`
	LoginTimeout string            `yaml:"login_timeout,omitempty"`
	Properties   map[string]string `yaml:"properties"`
}

const ConfigFileName = "fdbsql.yaml"

// Load reads ConfigFileName from dir.
func Load(dir string) (*Profile, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a profile from path.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &p, nil
}

// Level returns the configured log level, if any.
func (p *Profile) Level() (fdbsql.LogLevel, bool, error) {
	if p.LogLevel == nil {
		return fdbsql.LogOff, false, nil
	}
	level := fdbsql.LogLevel(*p.LogLevel)
	if !level.IsValid() {
		return fdbsql.LogOff, false, fmt.Errorf("log_level must be 0, 1 or 2, got %d", *p.LogLevel)
	}
	return level, true, nil
}

// Timeout parses LoginTimeout as a Go duration. Empty means unset.
func (p *Profile) Timeout() (time.Duration, bool, error) {
	if p.LoginTimeout == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(p.LoginTimeout)
	if err != nil {
		return 0, false, fmt.Errorf("invalid login_timeout %q: %w", p.LoginTimeout, err)
	}
	return d, true, nil
}

// Overlay returns Properties as a caller overlay.
func (p *Profile) Overlay() map[string]any {
	out := make(map[string]any, len(p.Properties))
	for k, v := range p.Properties {
		out[k] = v
	}
	return out
}
