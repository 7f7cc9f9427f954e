// Package driver holds the shared driver core: the process-scoped
// Environment, the Base every concrete driver embeds, and a Registry that
// dispatches connection strings across drivers.
package driver

import (
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bowlofstew/sql-layer-adapter-go/internal/connect"
	"github.com/bowlofstew/sql-layer-adapter-go/internal/defaults"
	"github.com/bowlofstew/sql-layer-adapter-go/internal/logging"
	"github.com/bowlofstew/sql-layer-adapter-go/internal/resource"
	"github.com/bowlofstew/sql-layer-adapter-go/internal/scheduler"
	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

// AppName names the per-user and system configuration directories.
const AppName = "fdbsql"

// Environment is the explicit process scope shared by all drivers: log
// level, default login timeout, cached default properties, the deferred-task
// scheduler and connection metrics.
type Environment struct {
	levels    *logging.Controller
	logger    fdbsql.Logger
	sources   []resource.Source
	connector *connect.Connector

	resolverOpts []defaults.Option

	mu                  sync.RWMutex
	defaultLoginTimeout time.Duration
	resolvers           map[string]*defaults.Resolver

	schedOnce sync.Once
	sched     *scheduler.Scheduler
}

type envConfig struct {
	levels       *logging.Controller
	logger       fdbsql.Logger
	sources      []resource.Source
	haveSources  bool
	registerer   prometheus.Registerer
	resolverOpts []defaults.Option
	connectOpts  []connect.Option
}

// EnvOption configures an Environment.
type EnvOption func(*envConfig)

// WithLevels shares an existing level controller.
func WithLevels(levels *logging.Controller) EnvOption {
	return func(c *envConfig) { c.levels = levels }
}

// WithLogger sets the driver logger. The default writes to stderr, gated
// by the environment's level controller.
func WithLogger(logger fdbsql.Logger) EnvOption {
	return func(c *envConfig) { c.logger = logger }
}

// WithSources replaces the resource search path. Drivers still append
// their built-in defaults after these.
func WithSources(sources ...resource.Source) EnvOption {
	return func(c *envConfig) {
		c.sources = sources
		c.haveSources = true
	}
}

// WithRegisterer registers connection metrics on reg.
func WithRegisterer(reg prometheus.Registerer) EnvOption {
	return func(c *envConfig) { c.registerer = reg }
}

// WithResolverOptions passes options to every defaults resolver.
func WithResolverOptions(opts ...defaults.Option) EnvOption {
	return func(c *envConfig) { c.resolverOpts = append(c.resolverOpts, opts...) }
}

// WithConnectOptions passes options to the connector.
func WithConnectOptions(opts ...connect.Option) EnvOption {
	return func(c *envConfig) { c.connectOpts = append(c.connectOpts, opts...) }
}

// NewEnvironment creates an Environment. Without WithSources the search
// path is $FDBSQL_CONFIG_PATH, the user configuration directory and
// /etc/fdbsql.
func NewEnvironment(opts ...EnvOption) *Environment {
	cfg := &envConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.levels == nil {
		cfg.levels = logging.NewController()
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewConsoleLogger(os.Stderr, cfg.levels)
	}
	if !cfg.haveSources {
		cfg.sources = resource.StandardSources(AppName, os.Getenv(fdbsql.ConfigPathEnv))
	}

	connectOpts := append([]connect.Option{
		connect.WithLogger(cfg.logger),
		connect.WithMetrics(connect.NewMetrics(cfg.registerer)),
	}, cfg.connectOpts...)

	return &Environment{
		levels:       cfg.levels,
		logger:       cfg.logger,
		sources:      cfg.sources,
		connector:    connect.New(connectOpts...),
		resolverOpts: cfg.resolverOpts,
		resolvers:    make(map[string]*defaults.Resolver),
	}
}

// SetLogLevel sets the driver-wide log level explicitly. Discovered
// defaults never override it afterwards.
func (e *Environment) SetLogLevel(level fdbsql.LogLevel) error {
	return e.levels.SetLevel(level)
}

// LogLevel returns the current driver-wide log level.
func (e *Environment) LogLevel() fdbsql.LogLevel { return e.levels.Level() }

// Levels returns the level controller.
func (e *Environment) Levels() *logging.Controller { return e.levels }

// Logger returns the driver logger.
func (e *Environment) Logger() fdbsql.Logger { return e.logger }

// Connector returns the shared timeout-guarded connector.
func (e *Environment) Connector() *connect.Connector { return e.connector }

// SetDefaultLoginTimeout sets the timeout used when a request carries no
// parseable loginTimeout. Zero means unbounded.
func (e *Environment) SetDefaultLoginTimeout(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaultLoginTimeout = d
}

// DefaultLoginTimeout returns the environment-wide login timeout.
func (e *Environment) DefaultLoginTimeout() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.defaultLoginTimeout
}

// Resolver returns the cached defaults resolver for resourceName, creating
// it on first use. fallback sources are searched after the environment's
// search path and only take effect on creation.
func (e *Environment) Resolver(resourceName string, fallback ...resource.Source) *defaults.Resolver {
	e.mu.RLock()
	r, ok := e.resolvers[resourceName]
	e.mu.RUnlock()
	if ok {
		return r
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if r, ok := e.resolvers[resourceName]; ok {
		return r
	}
	sources := append(append([]resource.Source(nil), e.sources...), fallback...)
	r = defaults.New(resourceName, resource.NewLocator(sources...), e.levels, e.logger, e.resolverOpts...)
	e.resolvers[resourceName] = r
	return r
}

// ScheduleOnce runs task after delay on the environment's scheduler,
// creating the scheduler on first use.
func (e *Environment) ScheduleOnce(task func(), delay time.Duration) *scheduler.Task {
	return e.Scheduler().ScheduleOnce(task, delay)
}

// Scheduler returns the lazily created scheduler.
func (e *Environment) Scheduler() *scheduler.Scheduler {
	e.schedOnce.Do(func() {
		e.sched = scheduler.New(e.logger)
	})
	return e.sched
}
