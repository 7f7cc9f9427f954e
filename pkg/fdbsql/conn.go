package fdbsql

import "context"

// Conn is a live connection produced by a driver's connection factory.
// The core only needs to be able to dispose of it.
type Conn interface {
	Close(ctx context.Context) error
}

// Capabilities is the contract a concrete driver supplies to the shared
// driver core. The core depends on nothing else.
type Capabilities interface {
	// Scheme is the connection string prefix this driver owns, e.g. "jdbc:fdbsql:".
	Scheme() string

	// DefaultPort is used for every host entry that omits a port.
	DefaultPort() int

	// Name is the human-readable driver name.
	Name() string

	// ResourceName is the logical name under which driver configuration
	// resources are discovered.
	ResourceName() string

	// MakeConnection performs one blocking connection attempt. It never
	// enforces the login timeout itself.
	MakeConnection(ctx context.Context, props *ResolvedProperties) (Conn, error)
}
