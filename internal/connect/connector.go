package connect

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bowlofstew/sql-layer-adapter-go/internal/logging"
	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

// Factory performs one blocking connection attempt.
type Factory func(ctx context.Context) (fdbsql.Conn, error)

// Connector enforces login timeouts around connection factories.
// Safe for concurrent use by multiple goroutines.
type Connector struct {
	logger         fdbsql.Logger
	metrics        *Metrics
	disposeTimeout time.Duration
	spawn          func(func())
}

// Option configures a Connector.
type Option func(*Connector)

// WithLogger sets the logger.
func WithLogger(logger fdbsql.Logger) Option {
	return func(c *Connector) { c.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(c *Connector) { c.metrics = m }
}

// WithDisposeTimeout bounds how long closing an abandoned connection may take.
func WithDisposeTimeout(d time.Duration) Option {
	return func(c *Connector) { c.disposeTimeout = d }
}

// New creates a Connector.
func New(opts ...Option) *Connector {
	c := &Connector{
		logger:         logging.NewNullLogger(),
		disposeTimeout: fdbsql.DefaultDisposeTimeout,
		spawn:          func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(nil)
	}
	return c
}

// Connect runs factory and returns its connection.
//
// A timeout of zero or less runs factory synchronously with ctx. Otherwise
// factory runs on a new goroutine with a context that is never cancelled
// by the waiter, and Connect returns a ConnectTimeout error once timeout
// elapses or a Cancelled error once ctx is done, whichever happens first.
// Errors that are not *fdbsql.Error are wrapped as Unexpected.
func (c *Connector) Connect(ctx context.Context, factory Factory, timeout time.Duration) (fdbsql.Conn, error) {
	id := uuid.NewString()
	start := time.Now()
	defer func() { c.metrics.Duration.Observe(time.Since(start).Seconds()) }()

	if timeout <= 0 {
		c.logger.Verbose("connect attempt %s: no login timeout, connecting synchronously", id)
		conn, err := c.invoke(ctx, factory)
		return c.finish(id, conn, err)
	}

	c.logger.Verbose("connect attempt %s: login timeout %s", id, timeout)
	a := newAttempt(id)
	workerCtx := context.WithoutCancel(ctx)
	c.spawn(func() { c.run(workerCtx, a, factory) })

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-a.done:
		conn, err := a.result()
		return c.finish(id, conn, err)
	case <-timer.C:
		if conn, err, ok := a.abandon(); ok {
			return c.finish(id, conn, err)
		}
		c.metrics.Attempts.WithLabelValues(OutcomeTimeout).Inc()
		c.logger.Verbose("connect attempt %s: abandoned after %s", id, timeout)
		return nil, &fdbsql.Error{
			Kind:    fdbsql.KindConnectTimeout,
			Message: fmt.Sprintf("Connection attempt timed out after %s.", timeout),
			State:   fdbsql.StateConnectionUnableToConnect,
		}
	case <-ctx.Done():
		if conn, err, ok := a.abandon(); ok {
			return c.finish(id, conn, err)
		}
		c.metrics.Attempts.WithLabelValues(OutcomeCancelled).Inc()
		c.logger.Verbose("connect attempt %s: abandoned, caller gave up: %v", id, ctx.Err())
		return nil, fdbsql.WrapError(fdbsql.KindCancelled,
			"Interrupted while attempting to connect.", ctx.Err())
	}
}

func (c *Connector) finish(id string, conn fdbsql.Conn, err error) (fdbsql.Conn, error) {
	if err != nil {
		c.metrics.Attempts.WithLabelValues(OutcomeFailure).Inc()
		c.logger.Verbose("connect attempt %s: failed: %v", id, err)
		return nil, err
	}
	c.metrics.Attempts.WithLabelValues(OutcomeSuccess).Inc()
	c.logger.Verbose("connect attempt %s: connected", id)
	return conn, nil
}

// invoke calls factory, converting panics and foreign errors.
func (c *Connector) invoke(ctx context.Context, factory Factory) (conn fdbsql.Conn, err error) {
	defer func() {
		if r := recover(); r != nil {
			conn, err = nil, panicError(r)
		}
	}()
	conn, err = factory(ctx)
	if err != nil {
		if conn != nil {
			_ = c.closeConn(conn)
		}
		return nil, normalize(err)
	}
	if conn == nil {
		return nil, fdbsql.Unexpected(errNoResult)
	}
	return conn, nil
}

func (c *Connector) run(ctx context.Context, a *attempt, factory Factory) {
	conn, err := c.invoke(ctx, factory)
	if a.complete(conn, err) {
		return
	}
	if conn != nil {
		c.dispose(a.id, conn)
		return
	}
	c.logger.Verbose("connect attempt %s: abandoned attempt failed: %v", a.id, err)
}

func (c *Connector) dispose(id string, conn fdbsql.Conn) {
	if err := c.closeConn(conn); err != nil {
		c.logger.Verbose("connect attempt %s: closing abandoned connection: %v", id, err)
	}
	c.metrics.Disposed.Inc()
	c.logger.Verbose("connect attempt %s: late connection disposed", id)
}

func (c *Connector) closeConn(conn fdbsql.Conn) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.disposeTimeout)
	defer cancel()
	return conn.Close(ctx)
}
