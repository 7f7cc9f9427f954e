package fdbsql

// Logger provides a pluggable logging interface for driver operations.
// Implementations must be safe for concurrent use by multiple goroutines.
type Logger interface {
	// Verbose logs detailed diagnostic information.
	// Only logged when the driver log level is DEBUG.
	Verbose(format string, args ...interface{})

	// Info logs informational messages about normal operations.
	// Logged when the driver log level is INFO or DEBUG.
	Info(format string, args ...interface{})

	// Error logs error messages.
	// Suppressed only when the driver log level is OFF.
	Error(format string, args ...interface{})
}
