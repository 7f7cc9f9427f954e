package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

var _ fdbsql.Logger = (*ConsoleLogger)(nil)

// ConsoleLogger writes human-readable zerolog console lines. Every call
// consults the Controller, so level changes apply to the next message.
type ConsoleLogger struct {
	zlog zerolog.Logger
	ctl  *Controller
}

// NewConsoleLogger creates a ConsoleLogger writing to out (stderr when nil)
// gated by ctl. Output is colored only when out is a terminal.
func NewConsoleLogger(out io.Writer, ctl *Controller) *ConsoleLogger {
	if out == nil {
		out = os.Stderr
	}
	if ctl == nil {
		ctl = NewController()
	}
	w := zerolog.ConsoleWriter{
		Out:          zerolog.SyncWriter(out),
		NoColor:      !isTerminal(out),
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	return &ConsoleLogger{
		zlog: zerolog.New(w).Level(zerolog.DebugLevel),
		ctl:  ctl,
	}
}

// With returns a child logger carrying an extra field on every line.
func (l *ConsoleLogger) With(key, value string) *ConsoleLogger {
	return &ConsoleLogger{zlog: l.zlog.With().Str(key, value).Logger(), ctl: l.ctl}
}

// Verbose logs detailed diagnostic information at DEBUG.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.ctl.Enabled(fdbsql.LogDebug) {
		return
	}
	l.zlog.Debug().Msgf(format, args...)
}

// Info logs informational messages at INFO and above.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	if !l.ctl.Enabled(fdbsql.LogInfo) {
		return
	}
	l.zlog.Info().Msgf(format, args...)
}

// Error logs error messages unless logging is OFF.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	if !l.ctl.Enabled(fdbsql.LogInfo) {
		return
	}
	l.zlog.Error().Msgf(format, args...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
