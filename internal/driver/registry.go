package driver

import (
	"context"
	"sync"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

// Driver is what a Registry dispatches to. *Base satisfies it.
type Driver interface {
	Name() string
	AcceptsURL(connStr string) bool
	Connect(ctx context.Context, connStr string, overlay map[string]any) (fdbsql.Conn, error)
}

// Registry is an ordered set of drivers.
type Registry struct {
	mu      sync.RWMutex
	drivers []Driver
}

// NewRegistry creates a registry holding drivers in order.
func NewRegistry(drivers ...Driver) *Registry {
	return &Registry{drivers: append([]Driver(nil), drivers...)}
}

// Register appends d.
func (r *Registry) Register(d Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers = append(r.drivers, d)
}

// Drivers returns the registered drivers in order.
func (r *Registry) Drivers() []Driver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Driver(nil), r.drivers...)
}

// Driver returns the first driver accepting connStr.
func (r *Registry) Driver(connStr string) (Driver, error) {
	for _, d := range r.Drivers() {
		if d.AcceptsURL(connStr) {
			return d, nil
		}
	}
	return nil, fdbsql.ErrNoSuitableDriver
}

// Connect offers connStr to each driver in turn. The first driver that
// does not decline decides the outcome.
func (r *Registry) Connect(ctx context.Context, connStr string, overlay map[string]any) (fdbsql.Conn, error) {
	for _, d := range r.Drivers() {
		conn, err := d.Connect(ctx, connStr, overlay)
		if err != nil {
			return nil, err
		}
		if conn != nil {
			return conn, nil
		}
	}
	return nil, fdbsql.ErrNoSuitableDriver
}
