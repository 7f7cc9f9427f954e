package scheduler

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleOnce_RunsOnce(t *testing.T) {
	s := New(nil)
	done := make(chan struct{})
	var runs atomic.Int32

	s.ScheduleOnce(func() {
		runs.Add(1)
		close(done)
	}, 10*time.Millisecond)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, 0, s.Pending())
}

func TestTask_Stop(t *testing.T) {
	s := New(nil)
	var ran atomic.Bool

	task := s.ScheduleOnce(func() { ran.Store(true) }, time.Hour)
	assert.Equal(t, 1, s.Pending())

	assert.True(t, task.Stop())
	assert.False(t, task.Stop(), "second stop reports nothing pending")
	assert.Equal(t, 0, s.Pending())
	assert.False(t, ran.Load())
}

func TestTask_StopAfterRun(t *testing.T) {
	s := New(nil)
	done := make(chan struct{})
	task := s.ScheduleOnce(func() { close(done) }, 0)
	<-done

	assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, time.Millisecond)
	assert.False(t, task.Stop())
}

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Verbose(string, ...interface{}) {}
func (l *recordingLogger) Info(string, ...interface{})    {}
func (l *recordingLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.errors...)
}

func TestScheduleOnce_PanicIsRecovered(t *testing.T) {
	logger := &recordingLogger{}
	s := New(logger)

	s.ScheduleOnce(func() { panic("boom") }, 0)
	done := make(chan struct{})
	s.ScheduleOnce(func() { close(done) }, 5*time.Millisecond)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second task did not run")
	}
	assert.Eventually(t, func() bool {
		return slices.Contains(logger.snapshot(), "scheduled task panicked: boom")
	}, time.Second, time.Millisecond)
}
