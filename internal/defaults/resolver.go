// Package defaults resolves the process-wide default connection properties
// from the OS account and discovered driver configuration resources.
package defaults

import (
	"context"
	"os"
	"os/user"
	"strconv"
	"strings"
	"sync"

	"github.com/magiconair/properties"

	"github.com/bowlofstew/sql-layer-adapter-go/internal/logging"
	"github.com/bowlofstew/sql-layer-adapter-go/internal/resource"
	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

// Resolver loads default properties once and caches the result. A failed
// load is not cached, so the next call retries.
type Resolver struct {
	resourceName string
	locator      *resource.Locator
	levels       *logging.Controller
	logger       fdbsql.Logger
	currentUser  func() string

	mu     sync.Mutex
	cached fdbsql.Properties
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCurrentUser overrides how the OS account name is determined.
func WithCurrentUser(fn func() string) Option {
	return func(r *Resolver) { r.currentUser = fn }
}

// New creates a resolver for resources called resourceName.
func New(resourceName string, locator *resource.Locator, levels *logging.Controller, logger fdbsql.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if levels == nil {
		levels = logging.NewController()
	}
	if locator == nil {
		locator = resource.NewLocator()
	}
	r := &Resolver{
		resourceName: resourceName,
		locator:      locator,
		levels:       levels,
		logger:       logger,
		currentUser:  osUserName,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the default property layer. Concurrent first callers
// block until one load completes and all receive equal copies.
func (r *Resolver) Resolve(ctx context.Context) (fdbsql.Properties, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil {
		return r.cached.Clone(), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fdbsql.WrapError(fdbsql.KindCancelled, "resolving driver defaults", err)
	}

	props, err := r.load()
	if err != nil {
		return nil, err
	}
	r.applyLogLevel(props)
	r.cached = props
	return props.Clone(), nil
}

func (r *Resolver) load() (fdbsql.Properties, error) {
	props := fdbsql.Properties{}
	if name := r.currentUser(); name != "" {
		props[fdbsql.PropUser] = name
	}

	found, err := r.locator.Discover(r.resourceName)
	if err != nil {
		return nil, fdbsql.WrapError(fdbsql.KindConfigLoad,
			"error loading driver configuration from resource "+r.resourceName, err)
	}
	if len(found) == 0 {
		r.logger.Verbose("no %s resources found; using built-in defaults", r.resourceName)
		return props, nil
	}

	// Earliest discovered wins, so apply in reverse.
	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	for i := len(found) - 1; i >= 0; i-- {
		res := found[i]
		r.logger.Verbose("loading driver configuration from %s", res.Location())

		content, err := res.Read()
		if err != nil {
			return nil, fdbsql.WrapError(fdbsql.KindConfigLoad,
				"error loading driver configuration from "+res.Location(), err)
		}
		decoded, err := loader.LoadBytes(content)
		if err != nil {
			return nil, fdbsql.WrapError(fdbsql.KindConfigLoad,
				"error decoding driver configuration from "+res.Location(), err)
		}
		for _, key := range decoded.Keys() {
			value, _ := decoded.Get(key)
			props[key] = value
		}
	}
	return props, nil
}

func (r *Resolver) applyLogLevel(props fdbsql.Properties) {
	raw, ok := props[fdbsql.PropLogLevel]
	if !ok || r.levels.Explicit() {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	level := fdbsql.LogLevel(n)
	if err != nil || !level.IsValid() {
		r.logger.Verbose("ignoring default %s=%q: not one of 0, 1, 2", fdbsql.PropLogLevel, raw)
		return
	}
	if r.levels.ApplyDefault(level) {
		r.logger.Verbose("driver log level defaulted to %s", level)
	}
}

// Invalidate drops the cached layer so the next Resolve reloads it.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
}

func osUserName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	for _, key := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
