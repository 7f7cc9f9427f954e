package pgwire

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bowlofstew/sql-layer-adapter-go/internal/driver"
	"github.com/bowlofstew/sql-layer-adapter-go/internal/scheduler"
)

// cancelRequestTimeout bounds a deferred cancel request.
const cancelRequestTimeout = 10 * time.Second

// Conn is an open SQL Layer connection.
type Conn struct {
	pg      *pgconn.PgConn
	env     *driver.Environment
	release func()
	once    sync.Once
}

// PgConn exposes the underlying wire connection.
func (c *Conn) PgConn() *pgconn.PgConn { return c.pg }

// ServerVersion returns the server_version parameter reported at startup.
func (c *Conn) ServerVersion() string { return c.pg.ParameterStatus("server_version") }

// Close terminates the session and releases any dialer it used.
func (c *Conn) Close(ctx context.Context) error {
	err := c.pg.Close(ctx)
	c.once.Do(func() {
		if c.release != nil {
			c.release()
		}
	})
	return err
}

// CancelAfter asks the server to cancel whatever this connection is running
// once delay elapses. Stop the returned task to withdraw the request.
func (c *Conn) CancelAfter(delay time.Duration) *scheduler.Task {
	return c.env.ScheduleOnce(func() {
		if c.pg.IsClosed() {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), cancelRequestTimeout)
		defer cancel()
		if err := c.pg.CancelRequest(ctx); err != nil {
			c.env.Logger().Verbose("cancel request failed: %v", err)
		}
	}, delay)
}
