// Package scheduler runs deferred one-shot tasks.
package scheduler

import (
	"sync"
	"time"

	"github.com/bowlofstew/sql-layer-adapter-go/internal/logging"
	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

// Scheduler runs each task on its own goroutine once its delay elapses.
// A panicking task is logged and does not affect other tasks.
type Scheduler struct {
	logger fdbsql.Logger

	mu      sync.Mutex
	pending map[*Task]struct{}
}

// Task is a handle to a scheduled task.
type Task struct {
	s     *Scheduler
	timer *time.Timer
}

// New creates a scheduler.
func New(logger fdbsql.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Scheduler{
		logger:  logger,
		pending: make(map[*Task]struct{}),
	}
}

// ScheduleOnce runs fn after delay. A non-positive delay runs it as soon
// as possible.
func (s *Scheduler) ScheduleOnce(fn func(), delay time.Duration) *Task {
	t := &Task{s: s}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[t] = struct{}{}
	t.timer = time.AfterFunc(delay, func() {
		if !s.remove(t) {
			return
		}
		s.run(fn)
	})
	return t
}

// Pending returns the number of tasks that have neither run nor been stopped.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Scheduler) remove(t *Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[t]; !ok {
		return false
	}
	delete(s.pending, t)
	return true
}

func (s *Scheduler) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panicked: %v", r)
		}
	}()
	fn()
}

// Stop prevents the task from running. It reports whether the task was
// still pending.
func (t *Task) Stop() bool {
	if !t.s.remove(t) {
		return false
	}
	t.timer.Stop()
	return true
}
