package driver

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bowlofstew/sql-layer-adapter-go/internal/catalog"
	"github.com/bowlofstew/sql-layer-adapter-go/internal/defaults"
	"github.com/bowlofstew/sql-layer-adapter-go/internal/dsn"
	"github.com/bowlofstew/sql-layer-adapter-go/internal/resource"
	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

// DefaultsProvider is implemented by drivers that ship built-in default
// configuration. Its source is searched last.
type DefaultsProvider interface {
	DefaultResources() resource.Source
}

// Base implements the driver operations shared by every concrete driver on
// top of its Capabilities.
type Base struct {
	caps    fdbsql.Capabilities
	env     *Environment
	parser  dsn.Parser
	catalog *catalog.Catalog
}

// NewBase binds caps to env. extra catalog entries describe properties
// specific to this driver.
func NewBase(caps fdbsql.Capabilities, env *Environment, extra ...catalog.Entry) *Base {
	return &Base{
		caps:    caps,
		env:     env,
		parser:  dsn.Parser{Scheme: caps.Scheme(), DefaultPort: caps.DefaultPort()},
		catalog: catalog.Default().With(extra...),
	}
}

// Name returns the driver name.
func (b *Base) Name() string { return b.caps.Name() }

// Environment returns the scope the driver was bound to.
func (b *Base) Environment() *Environment { return b.env }

// Catalog returns the driver's property catalog.
func (b *Base) Catalog() *catalog.Catalog { return b.catalog }

// AcceptsURL reports whether connStr is a well-formed string for this driver.
func (b *Base) AcceptsURL(connStr string) bool {
	return b.parser.Accepts(connStr)
}

// Parse resolves connStr against the discovered defaults and overlay.
// ok is false when the string belongs to another driver.
func (b *Base) Parse(ctx context.Context, connStr string, overlay map[string]any) (*fdbsql.ResolvedProperties, bool, error) {
	if !b.parser.Owns(connStr) {
		return nil, false, nil
	}
	base, err := b.resolver().Resolve(ctx)
	if err != nil {
		return nil, true, err
	}
	return b.parser.Parse(connStr, base, overlay)
}

// Connect resolves connStr and makes one timeout-bounded connection attempt.
// It returns (nil, nil) when the string is not for this driver or is
// malformed, so a registry can offer it to the next driver.
func (b *Base) Connect(ctx context.Context, connStr string, overlay map[string]any) (fdbsql.Conn, error) {
	logger := b.env.Logger()

	props, ok, err := b.Parse(ctx, connStr, overlay)
	switch {
	case !ok:
		return nil, nil
	case errors.Is(err, fdbsql.ErrMalformedConnectionString):
		logger.Verbose("Error in url: %v", err)
		return nil, nil
	case err != nil:
		return nil, err
	}

	logger.Verbose("Connecting with %s (%s)", b.Name(), props)
	timeout := b.LoginTimeout(props)

	conn, err := b.env.Connector().Connect(ctx, func(ctx context.Context) (fdbsql.Conn, error) {
		return b.caps.MakeConnection(ctx, props)
	}, timeout)
	if err != nil {
		logger.Verbose("Connection error: %v", err)
		return nil, err
	}
	return conn, nil
}

// LoginTimeout derives the attempt deadline from the loginTimeout property
// (seconds, fractional allowed). A missing or unparseable value falls back
// to the environment default. Zero or negative means unbounded.
func (b *Base) LoginTimeout(props *fdbsql.ResolvedProperties) time.Duration {
	raw, ok := props.Get(fdbsql.PropLoginTimeout)
	if !ok {
		return b.env.DefaultLoginTimeout()
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		b.env.Logger().Verbose("Couldn't parse %s property: %q", fdbsql.PropLoginTimeout, raw)
		return b.env.DefaultLoginTimeout()
	}
	if secs <= 0 {
		return 0
	}
	if secs >= math.MaxInt64/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(secs * float64(time.Second))
}

// PropertyInfo describes every recognized property with the value found in
// connStr and overlay. A malformed or foreign connStr is tolerated; the
// result then reflects the overlay alone.
func (b *Base) PropertyInfo(connStr string, overlay map[string]any) ([]fdbsql.PropertyInfo, error) {
	props, err := dsn.ValidateOverlay(overlay)
	if err != nil {
		return nil, err
	}
	if resolved, ok, perr := b.parser.Parse(connStr, nil, overlay); ok && perr == nil {
		props = resolved.Properties()
	}
	return b.catalog.Describe(props), nil
}

func (b *Base) resolver() *defaults.Resolver {
	var fallback []resource.Source
	if p, ok := b.caps.(DefaultsProvider); ok {
		if src := p.DefaultResources(); src != nil {
			fallback = append(fallback, src)
		}
	}
	return b.env.Resolver(b.caps.ResourceName(), fallback...)
}
