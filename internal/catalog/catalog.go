// Package catalog holds the static table of recognized connection
// properties and renders it as descriptor lists for tooling.
package catalog

import (
	"slices"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

// Entry describes one recognized property.
type Entry struct {
	Name        string
	Required    bool
	Description string
	Choices     []string
}

// Catalog is an immutable, ordered set of entries.
type Catalog struct {
	entries []Entry
}

var known = []Entry{
	{Name: fdbsql.PropDatabase, Required: true,
		Description: "Database name to connect to; may be specified directly in the connection string."},
	{Name: fdbsql.PropUser, Required: true,
		Description: "Username to connect to the database as."},
	{Name: fdbsql.PropHost,
		Description: "Hostname of the server; may be specified directly in the connection string."},
	{Name: fdbsql.PropPort,
		Description: "Port number to connect to the server on; may be specified directly in the connection string."},
	{Name: fdbsql.PropPassword,
		Description: "Password to use when authenticating."},
	{Name: fdbsql.PropProtocolVersion,
		Description: "Force use of a particular protocol version when connecting; if set, disables protocol version fallback."},
	{Name: fdbsql.PropSSL,
		Description: "Control use of SSL; any nonempty value causes SSL to be required."},
	{Name: fdbsql.PropSSLFactory,
		Description: "Provide a TLS configuration factory when using SSL."},
	{Name: fdbsql.PropSSLFactoryArg,
		Description: "Argument forwarded to the TLS configuration factory."},
	{Name: fdbsql.PropLogLevel,
		Description: "Control the driver's log verbosity: 0 is OFF, 1 is INFO, 2 is DEBUG.",
		Choices:     []string{"0", "1", "2"}},
	{Name: "allowEncodingChanges",
		Description: "Allow the user to change the client_encoding variable."},
	{Name: "logUnclosedConnections",
		Description: "When connections that are not explicitly closed are collected, log where they were opened to trace the leak source."},
	{Name: "prepareThreshold",
		Description: "Default statement prepare threshold (numeric)."},
	{Name: fdbsql.PropBinaryTransfer,
		Description: "Use binary format for sending and receiving data if possible."},
	{Name: fdbsql.PropBinaryTransferEnable,
		Description: "Comma separated list of types to enable binary transfer. Either OID numbers or names."},
	{Name: fdbsql.PropBinaryTransferDisable,
		Description: "Comma separated list of types to disable binary transfer. Either OID numbers or names. Overrides values in the driver default set and values set with binaryTransferEnable."},
	{Name: "charSet",
		Description: "When connecting to a pre-7.3 server, the database encoding to assume is in use."},
	{Name: fdbsql.PropCompatible,
		Description: "Force compatibility of some features with an older version of the driver.",
		Choices:     []string{"7.1", "7.2", "7.3", "7.4", "8.0", "8.1", "8.2"}},
	{Name: fdbsql.PropLoginTimeout,
		Description: "The login timeout, in seconds; 0 means no timeout beyond the normal TCP connection timeout."},
	{Name: fdbsql.PropSocketTimeout,
		Description: "The timeout value for socket read operations, in seconds; 0 means no timeout."},
	{Name: fdbsql.PropTCPKeepAlive,
		Description: "Enable or disable TCP keep-alive probe."},
	{Name: fdbsql.PropStringType,
		Description: "The type to bind String parameters as (usually 'varchar'; 'unspecified' allows implicit casting to other types).",
		Choices:     []string{"varchar", "unspecified"}},
	{Name: "kerberosServerName",
		Description: "The Kerberos service name to use when authenticating with GSSAPI."},
	{Name: "jaasApplicationName",
		Description: "Specifies the name of the login configuration used for Kerberos authentication."},
}

// Default returns the catalog of properties every driver recognizes.
func Default() *Catalog {
	return &Catalog{entries: slices.Clone(known)}
}

// With returns a new catalog with extra entries appended after the
// existing ones. Entries whose name is already present replace the old row
// in place.
func (c *Catalog) With(extra ...Entry) *Catalog {
	entries := slices.Clone(c.entries)
	for _, e := range extra {
		if i := slices.IndexFunc(entries, func(x Entry) bool { return x.Name == e.Name }); i >= 0 {
			entries[i] = e
			continue
		}
		entries = append(entries, e)
	}
	return &Catalog{entries: entries}
}

// Lookup returns the entry for name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	i := slices.IndexFunc(c.entries, func(e Entry) bool { return e.Name == name })
	if i < 0 {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Describe returns one descriptor per recognized property, in table order,
// carrying the value found in props. Unrecognized keys in props are ignored.
func (c *Catalog) Describe(props fdbsql.Properties) []fdbsql.PropertyInfo {
	out := make([]fdbsql.PropertyInfo, len(c.entries))
	for i, e := range c.entries {
		value, present := props[e.Name]
		out[i] = fdbsql.PropertyInfo{
			Name:        e.Name,
			Value:       value,
			Present:     present,
			Required:    e.Required,
			Description: e.Description,
			Choices:     slices.Clone(e.Choices),
		}
	}
	return out
}
