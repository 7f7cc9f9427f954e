package connect

import (
	"sync"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

// attempt is the hand-off cell between the worker goroutine and the waiter.
// Exactly one of complete or abandon takes effect.
type attempt struct {
	id   string
	done chan struct{}

	mu        sync.Mutex
	conn      fdbsql.Conn
	err       error
	completed bool
	abandoned bool
}

func newAttempt(id string) *attempt {
	return &attempt{id: id, done: make(chan struct{})}
}

// complete records the outcome. It returns false when the waiter already
// gave up, in which case the caller owns conn.
func (a *attempt) complete(conn fdbsql.Conn, err error) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.abandoned {
		return false
	}
	a.conn, a.err, a.completed = conn, err, true
	close(a.done)
	return true
}

// abandon marks the attempt abandoned unless an outcome already landed, in
// which case that outcome is returned with ok set.
func (a *attempt) abandon() (conn fdbsql.Conn, err error, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.completed {
		return a.conn, a.err, true
	}
	a.abandoned = true
	return nil, nil, false
}

func (a *attempt) result() (fdbsql.Conn, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conn, a.err
}
