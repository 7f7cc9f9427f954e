package pgwire

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

// defaultKeepAlive matches pgconn's own dialer.
const defaultKeepAlive = 5 * time.Minute

// ignoredProperties are recognized but have no pgconn equivalent.
var ignoredProperties = []string{
	fdbsql.PropProtocolVersion,
	fdbsql.PropSSLFactory,
	fdbsql.PropSSLFactoryArg,
}

// buildConfig translates resolved properties into a pgconn configuration.
// Every address becomes a host entry, so pgconn tries them in order.
func buildConfig(props *fdbsql.ResolvedProperties, logger fdbsql.Logger) (*pgconn.Config, error) {
	hosts := props.Hosts()
	names := make([]string, len(hosts))
	ports := make([]string, len(hosts))
	for i, h := range hosts {
		names[i] = strings.TrimSuffix(strings.TrimPrefix(h.Host, "["), "]")
		ports[i] = strconv.Itoa(h.Port)
	}

	settings := [][2]string{
		{"host", strings.Join(names, ",")},
		{"port", strings.Join(ports, ",")},
		{"dbname", props.Database()},
		{"sslmode", sslMode(props)},
	}
	if user := props.User(); user != "" {
		settings = append(settings, [2]string{"user", user})
	}
	if pw, ok := props.Get(fdbsql.PropPassword); ok {
		settings = append(settings, [2]string{"password", pw})
	}
	if app, ok := props.Get(fdbsql.PropApplicationName); ok && app != "" {
		settings = append(settings, [2]string{"application_name", app})
	}

	cfg, err := pgconn.ParseConfig(keywordValueString(settings))
	if err != nil {
		return nil, fdbsql.WrapError(fdbsql.KindConnection, "invalid connection parameters", err)
	}

	for _, key := range ignoredProperties {
		if v, ok := props.Get(key); ok {
			logger.Verbose("property %s=%q has no effect on this driver", key, v)
		}
	}

	keepAlive, err := keepAlivePeriod(props)
	if err != nil {
		return nil, err
	}
	socketTimeout, err := seconds(props, fdbsql.PropSocketTimeout)
	if err != nil {
		return nil, err
	}
	dialer := &net.Dialer{KeepAlive: keepAlive}
	cfg.DialFunc = withSocketTimeout(dialer.DialContext, socketTimeout)

	return cfg, nil
}

// sslMode follows the driver convention that any value of ssl, even an
// empty one, requires TLS.
func sslMode(props *fdbsql.ResolvedProperties) string {
	if _, ok := props.Get(PropCloudSQLInstance); ok {
		return "disable"
	}
	if _, ok := props.Get(fdbsql.PropSSL); ok {
		return "require"
	}
	return "disable"
}

func keepAlivePeriod(props *fdbsql.ResolvedProperties) (time.Duration, error) {
	raw, ok := props.Get(fdbsql.PropTCPKeepAlive)
	if !ok || raw == "" {
		return defaultKeepAlive, nil
	}
	on, err := strconv.ParseBool(raw)
	if err != nil {
		return 0, connectionError(fmt.Sprintf("invalid %s value %q", fdbsql.PropTCPKeepAlive, raw), err)
	}
	if !on {
		return -1, nil
	}
	return defaultKeepAlive, nil
}

// seconds reads an integer number of seconds. Missing, empty and zero all
// mean no timeout.
func seconds(props *fdbsql.ResolvedProperties, key string) (time.Duration, error) {
	raw, ok := props.Get(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, connectionError(fmt.Sprintf("invalid %s value %q", key, raw), err)
	}
	return time.Duration(n) * time.Second, nil
}

// keywordValueString renders libpq keyword/value pairs, quoting every value.
func keywordValueString(settings [][2]string) string {
	var b strings.Builder
	for i, kv := range settings {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(kv[0])
		b.WriteString("='")
		b.WriteString(strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(kv[1]))
		b.WriteByte('\'')
	}
	return b.String()
}

// withSocketTimeout makes every read on dialed connections fail once
// timeout passes without data. Zero leaves dial untouched.
func withSocketTimeout(dial pgconn.DialFunc, timeout time.Duration) pgconn.DialFunc {
	if timeout <= 0 {
		return dial
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dial(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		return &deadlineConn{Conn: conn, timeout: timeout}, nil
	}
}

type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}
