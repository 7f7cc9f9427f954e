// Package connect runs a single connection attempt under an optional
// deadline.
//
// With no deadline the attempt runs on the caller's goroutine. With a
// deadline it runs on one dedicated goroutine while the caller waits for
// whichever comes first: the attempt's outcome, the deadline, or
// cancellation of the caller's context. An attempt that loses that race is
// abandoned: it keeps running, and if it later produces a connection that
// connection is closed instead of being handed to anyone.
package connect
