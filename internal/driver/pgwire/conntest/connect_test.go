//go:build conntest

package conntest

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

func TestConnect_Password(t *testing.T) {
	d := newDriver(t)
	conn := connect(t, d, plainServer.URL("loginTimeout=10"), credentials(plainServer))

	assert.NotEmpty(t, conn.ServerVersion())
	assert.Equal(t, plainServer.Database, queryString(t, conn, "SELECT current_database()"))
	assert.Equal(t, "fdbsql-go", queryString(t, conn, "SHOW application_name"))
}

func TestConnect_QueryCredentials(t *testing.T) {
	d := newDriver(t)
	url := plainServer.URL(fmt.Sprintf("user=%s&password=%s", plainServer.User, plainServer.Password))
	conn := connect(t, d, url, nil)
	assert.Equal(t, plainServer.User, queryString(t, conn, "SELECT current_user"))
}

func TestConnect_WrongPassword(t *testing.T) {
	d := newDriver(t)
	_, err := d.Connect(context.Background(), plainServer.URL(""),
		map[string]any{"user": plainServer.User, "password": "definitely-wrong"})

	require.Error(t, err)
	assert.True(t, fdbsql.IsConnectionFailed(err), "error: %v", err)
	var fe *fdbsql.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "28P01", fe.State)
	assert.Contains(t, fe.Message, "password authentication failed")
}

func TestConnect_UnknownDatabase(t *testing.T) {
	d := newDriver(t)
	url := fmt.Sprintf("jdbc:fdbsql://%s:%d/no_such_db", plainServer.Host, plainServer.Port)
	_, err := d.Connect(context.Background(), url, credentials(plainServer))

	var fe *fdbsql.Error
	require.True(t, errors.As(err, &fe), "error: %v", err)
	assert.Equal(t, "3D000", fe.State)
}

func TestConnect_FailsOverToSecondHost(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	dead := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	d := newDriver(t)
	url := fmt.Sprintf("jdbc:fdbsql://127.0.0.1:%d,%s:%d/%s",
		dead, plainServer.Host, plainServer.Port, plainServer.Database)
	conn := connect(t, d, url, credentials(plainServer))
	assert.NotEmpty(t, conn.ServerVersion())
}

func TestConnect_SSLPropertyUsesTLS(t *testing.T) {
	d := newDriver(t)
	conn := connect(t, d, tlsServer.URL("ssl=true"), credentials(tlsServer))

	_, isTLS := conn.PgConn().Conn().(*tls.Conn)
	assert.True(t, isTLS, "expected a TLS session, got %T", conn.PgConn().Conn())
	assert.Equal(t, "on", queryString(t, conn, "SELECT CASE WHEN ssl THEN 'on' ELSE 'off' END FROM pg_stat_ssl WHERE pid = pg_backend_pid()"))
}

func TestConnect_SSLAgainstPlainServer(t *testing.T) {
	d := newDriver(t)
	_, err := d.Connect(context.Background(), plainServer.URL("ssl=true"), credentials(plainServer))
	require.Error(t, err)
	assert.True(t, fdbsql.IsConnectionFailed(err), "error: %v", err)
}

func TestConnect_SocketTimeoutInterruptsLongRead(t *testing.T) {
	d := newDriver(t)
	conn := connect(t, d, plainServer.URL("socketTimeout=1"), credentials(plainServer))

	start := time.Now()
	_, err := conn.PgConn().Exec(context.Background(), "SELECT pg_sleep(5)").ReadAll()
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestConn_CancelAfter(t *testing.T) {
	d := newDriver(t)
	conn := connect(t, d, plainServer.URL(""), credentials(plainServer))

	task := conn.CancelAfter(200 * time.Millisecond)
	defer task.Stop()

	start := time.Now()
	_, err := conn.PgConn().Exec(context.Background(), "SELECT pg_sleep(10)").ReadAll()
	require.Error(t, err)

	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr), "error: %v", err)
	assert.Equal(t, "57014", pgErr.Code)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestConn_CancelAfterStopped(t *testing.T) {
	d := newDriver(t)
	conn := connect(t, d, plainServer.URL(""), credentials(plainServer))

	task := conn.CancelAfter(200 * time.Millisecond)
	assert.True(t, task.Stop())

	assert.Equal(t, "1", queryString(t, conn, "SELECT 1 FROM pg_sleep(0.5)"))
}
