package logging

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

// ErrInvalidLevel is returned by SetLevel for levels outside OFF..DEBUG.
var ErrInvalidLevel = errors.New("invalid log level")

// Controller holds the driver-wide log level and remembers whether it was
// set explicitly. An explicit level is never replaced by a discovered
// default, and at most one discovered default is ever applied.
type Controller struct {
	mu        sync.RWMutex
	level     fdbsql.LogLevel
	explicit  bool
	defaulted bool
}

// NewController returns a controller at OFF with no explicit level.
func NewController() *Controller {
	return &Controller{level: fdbsql.LogOff}
}

// SetLevel sets the level and marks it explicit.
func (c *Controller) SetLevel(level fdbsql.LogLevel) error {
	if !level.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, int(level))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.level = level
	c.explicit = true
	return nil
}

// Level returns the current level.
func (c *Controller) Level() fdbsql.LogLevel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level
}

// Explicit reports whether SetLevel has been called.
func (c *Controller) Explicit() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.explicit
}

// ApplyDefault sets level only when no explicit level exists and no
// default has been applied before. It reports whether the level was
// applied. The explicit flag is left untouched.
func (c *Controller) ApplyDefault(level fdbsql.LogLevel) bool {
	if !level.IsValid() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.explicit || c.defaulted {
		return false
	}
	c.level = level
	c.defaulted = true
	return true
}

// Enabled reports whether a message at level would be emitted.
func (c *Controller) Enabled(level fdbsql.LogLevel) bool {
	current := c.Level()
	return current != fdbsql.LogOff && level <= current
}
