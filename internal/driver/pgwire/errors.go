package pgwire

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

func connectionError(msg string, cause error) *fdbsql.Error {
	return &fdbsql.Error{
		Kind:    fdbsql.KindConnection,
		Message: msg,
		State:   fdbsql.StateConnectionUnableToConnect,
		Cause:   cause,
	}
}

// mapConnectError turns a pgconn failure into a connection error carrying
// the server's SQLSTATE when there is one, and guidance for common causes.
func mapConnectError(err error, props *fdbsql.ResolvedProperties) *fdbsql.Error {
	state := fdbsql.StateConnectionUnableToConnect
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code != "" {
		state = pgErr.Code
	}

	hosts := props.Hosts()
	addrs := make([]string, len(hosts))
	for i, h := range hosts {
		addrs[i] = h.String()
	}
	addr := strings.Join(addrs, ",")
	database := props.Database()
	errStr := strings.ToLower(err.Error())

	var msg string
	switch {
	case state == "28P01" || strings.Contains(errStr, "password authentication failed"):
		msg = fmt.Sprintf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password property
  - Wrong username
  - Expired IAM token (authMethod)`, database)

	case state == "3D000" || strings.Contains(errStr, "does not exist"):
		msg = fmt.Sprintf(`database "%s" does not exist on %s`, database, addr)

	case state == "53300" || strings.Contains(errStr, "too many connections"):
		msg = fmt.Sprintf(`too many connections to %s

Possible causes:
  - Server connection limit reached
  - Stale connections from earlier clients`, addr)

	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		msg = fmt.Sprintf(`connection refused to %s

Possible causes:
  - The SQL Layer is not running
  - Wrong host or port (the default port is %d)
  - Firewall blocking the connection`, addr, DefaultPort)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		msg = fmt.Sprintf(`cannot resolve host in %s

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable`, addr)

	case pgconn.Timeout(err) || strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		msg = fmt.Sprintf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets
  - socketTimeout too small`, addr)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		msg = `SSL/TLS connection error

Possible causes:
  - Server does not accept TLS but the ssl property is set
  - Server requires TLS but the ssl property is not set`

	default:
		msg = "Connection attempt failed."
	}
	return &fdbsql.Error{Kind: fdbsql.KindConnection, Message: msg, State: state, Cause: err}
}
