// Package dsn parses driver connection strings into resolved property sets.
//
// Two forms are accepted after the driver's scheme prefix:
//
//	scheme//host1[:port1][,host2[:port2]...]/dbname[?k=v[&k=v...]]
//	schemedbname[?k=v[&k=v...]]
//
// The short form connects to localhost on the driver's nominal port.
package dsn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

// Parser recognizes and parses connection strings for one driver.
type Parser struct {
	Scheme      string
	DefaultPort int
}

// Merge folds property layers left to right; later layers override earlier
// ones. Inputs are never modified.
func Merge(layers ...fdbsql.Properties) fdbsql.Properties {
	out := fdbsql.Properties{}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

// Accepts reports whether connStr belongs to this driver and is well formed.
func (p Parser) Accepts(connStr string) bool {
	_, ok, err := p.Parse(connStr, nil, nil)
	return ok && err == nil
}

// Owns reports whether connStr carries this driver's scheme. It does not
// check that the rest of the string is well formed.
func (p Parser) Owns(connStr string) bool {
	server, _, _ := strings.Cut(connStr, "?")
	return strings.HasPrefix(server, p.Scheme)
}

// Parse resolves connStr against the base layer and the caller overlay.
//
// ok is false when connStr does not start with the scheme; no error is
// returned in that case. Precedence, lowest first: base, query parameters,
// overlay, then the reserved keys derived from the address part.
func (p Parser) Parse(connStr string, base fdbsql.Properties, overlay map[string]any) (*fdbsql.ResolvedProperties, bool, error) {
	server, args, _ := strings.Cut(connStr, "?")
	if !strings.HasPrefix(server, p.Scheme) {
		return nil, false, nil
	}
	server = strings.TrimPrefix(server, p.Scheme)

	callerProps, err := ValidateOverlay(overlay)
	if err != nil {
		return nil, true, err
	}

	hosts, database, err := p.parseAddress(server)
	if err != nil {
		return nil, true, err
	}

	merged := Merge(base, parseQuery(args), callerProps, reservedKeys(hosts, database))
	return fdbsql.NewResolvedProperties(merged, hosts, database), true, nil
}

// ValidateOverlay converts a caller overlay into a property layer. Only
// string values are allowed.
func ValidateOverlay(overlay map[string]any) (fdbsql.Properties, error) {
	out := make(fdbsql.Properties, len(overlay))
	for k, v := range overlay {
		s, ok := v.(string)
		if !ok {
			return nil, fdbsql.NewError(fdbsql.KindInvalidOverlayProperty,
				fmt.Sprintf("Properties for the driver contains a non-string value for the key %s", k))
		}
		out[k] = s
	}
	return out, nil
}

func (p Parser) parseAddress(server string) ([]fdbsql.HostSpec, string, error) {
	if !strings.HasPrefix(server, "//") {
		return []fdbsql.HostSpec{{Host: fdbsql.DefaultHost, Port: p.DefaultPort}}, server, nil
	}

	authority, database, found := strings.Cut(server[2:], "/")
	if !found {
		return nil, "", malformed("missing '/' before the database name")
	}

	entries := strings.Split(authority, ",")
	hosts := make([]fdbsql.HostSpec, 0, len(entries))
	for _, entry := range entries {
		h, err := p.parseHost(entry)
		if err != nil {
			return nil, "", err
		}
		hosts = append(hosts, h)
	}
	return hosts, database, nil
}

// parseHost splits one address entry. The port separator is the last ':'
// that follows the last ']', so bracketed IPv6 literals stay intact.
func (p Parser) parseHost(entry string) (fdbsql.HostSpec, error) {
	colon := strings.LastIndexByte(entry, ':')
	if colon == -1 || strings.LastIndexByte(entry, ']') > colon {
		if entry == "" {
			return fdbsql.HostSpec{}, malformed("empty host entry")
		}
		return fdbsql.HostSpec{Host: entry, Port: p.DefaultPort}, nil
	}

	host, portStr := entry[:colon], entry[colon+1:]
	if host == "" {
		return fdbsql.HostSpec{}, malformed("empty host entry")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 {
		return fdbsql.HostSpec{}, malformed(fmt.Sprintf("invalid port %q", portStr))
	}
	return fdbsql.HostSpec{Host: host, Port: port}, nil
}

// parseQuery splits on '&' then on the first '='. Empty tokens are skipped
// and later duplicates win.
func parseQuery(args string) fdbsql.Properties {
	out := fdbsql.Properties{}
	for _, token := range strings.Split(args, "&") {
		if token == "" {
			continue
		}
		k, v, _ := strings.Cut(token, "=")
		out[k] = v
	}
	return out
}

func reservedKeys(hosts []fdbsql.HostSpec, database string) fdbsql.Properties {
	names := make([]string, len(hosts))
	ports := make([]string, len(hosts))
	for i, h := range hosts {
		names[i] = h.Host
		ports[i] = strconv.Itoa(h.Port)
	}
	return fdbsql.Properties{
		fdbsql.PropHost:     strings.Join(names, ","),
		fdbsql.PropPort:     strings.Join(ports, ","),
		fdbsql.PropDatabase: database,
	}
}

func malformed(detail string) error {
	return fdbsql.NewError(fdbsql.KindMalformedConnectionString, "malformed connection string: "+detail)
}
