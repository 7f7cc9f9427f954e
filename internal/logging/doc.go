// Package logging provides the driver-wide log level controller and the
// concrete implementations of the fdbsql.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: zerolog console output on a writer, gated by a Controller
//   - NullLogger: Discards all messages (useful for testing)
//
// All types in this package are safe for concurrent use by multiple goroutines.
package logging
