package fdbsql

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Properties is one layer of connection properties. Later layers override
// earlier ones when merged.
type Properties map[string]string

// Clone returns an independent copy of p. A nil receiver yields an empty map.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	maps.Copy(out, p)
	return out
}

// Get returns the value for key and whether it was present.
func (p Properties) Get(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

// Keys returns the property names in sorted order.
func (p Properties) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

// HostSpec is one address of a (possibly multi-host) connection string.
type HostSpec struct {
	Host string
	Port int
}

// String returns host:port. IPv6 literals keep the brackets they were
// written with.
func (h HostSpec) String() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// ResolvedProperties is the fully merged property set for one connection
// request together with the derived address list and database name.
//
// Immutable once produced: accessors hand out copies.
type ResolvedProperties struct {
	props    Properties
	hosts    []HostSpec
	database string
}

// NewResolvedProperties builds a ResolvedProperties. hosts must be non-empty.
func NewResolvedProperties(props Properties, hosts []HostSpec, database string) *ResolvedProperties {
	return &ResolvedProperties{
		props:    props.Clone(),
		hosts:    slices.Clone(hosts),
		database: database,
	}
}

// Properties returns a copy of the merged property layer, including the
// reserved PGHOST/PGPORT/PGDBNAME keys.
func (r *ResolvedProperties) Properties() Properties { return r.props.Clone() }

// Get returns a single property value.
func (r *ResolvedProperties) Get(key string) (string, bool) { return r.props.Get(key) }

// Hosts returns the ordered address list.
func (r *ResolvedProperties) Hosts() []HostSpec { return slices.Clone(r.hosts) }

// Database returns the database name taken from the connection string.
func (r *ResolvedProperties) Database() string { return r.database }

// User returns the user property, or "" when unset.
func (r *ResolvedProperties) User() string { return r.props[PropUser] }

// String renders the resolved request with the password redacted.
func (r *ResolvedProperties) String() string {
	addrs := make([]string, len(r.hosts))
	for i, h := range r.hosts {
		addrs[i] = h.String()
	}
	return fmt.Sprintf("hosts=%s database=%s user=%s", strings.Join(addrs, ","), r.database, r.User())
}

// LogLevel is the driver-wide log verbosity.
type LogLevel int

const (
	LogOff   LogLevel = 0
	LogInfo  LogLevel = 1
	LogDebug LogLevel = 2
)

// String returns the level name.
func (l LogLevel) String() string {
	switch l {
	case LogOff:
		return "OFF"
	case LogInfo:
		return "INFO"
	case LogDebug:
		return "DEBUG"
	default:
		return fmt.Sprintf("Unknown(%d)", int(l))
	}
}

// IsValid reports whether l is one of OFF, INFO, DEBUG.
func (l LogLevel) IsValid() bool {
	return l >= LogOff && l <= LogDebug
}

// PropertyInfo describes one recognized property for tooling. It is
// introspection output only; nothing is validated against it.
type PropertyInfo struct {
	Name        string
	Value       string
	Present     bool
	Required    bool
	Description string
	Choices     []string
}
