package fdbsql

import (
	"errors"
	"fmt"
	"strings"
)

// ErrKind classifies a driver error without exposing wire-level codes.
type ErrKind int

const (
	KindUnknown                   ErrKind = iota
	KindMalformedConnectionString         // recognized scheme, unparseable structure
	KindConfigLoad                        // driver configuration resources could not be read
	KindInvalidOverlayProperty            // overlay value absent or not a string
	KindConnectTimeout                    // login timeout elapsed first
	KindCancelled                         // the waiting caller was cancelled
	KindConnection                        // the connection factory failed
	KindUnexpected                        // anything else; please report
)

func (k ErrKind) String() string {
	switch k {
	case KindMalformedConnectionString:
		return "malformed_connection_string"
	case KindConfigLoad:
		return "config_load"
	case KindInvalidOverlayProperty:
		return "invalid_overlay_property"
	case KindConnectTimeout:
		return "connect_timeout"
	case KindCancelled:
		return "cancelled"
	case KindConnection:
		return "connection"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// SQLSTATE values attached to driver errors.
const (
	StateConnectionUnableToConnect = "08001"
	StateConnectionFailure         = "08006"
	StateUnexpectedError           = "XX000"
)

// Error is the single error type returned by the driver core. Connection
// factories wrap their native failures into it so the core can pass them
// through unchanged.
type Error struct {
	Kind    ErrKind
	Message string
	State   string // SQLSTATE, when known
	Cause   error  // original error, preserved for diagnostics
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.State != "" {
		msg = fmt.Sprintf("%s (SQLSTATE %s)", msg, e.State)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the kind sentinels below, so errors.Is(err, ErrConnectTimeout)
// holds for every timeout error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || !t.sentinel() {
		return false
	}
	return t.Kind == e.Kind
}

func (e *Error) sentinel() bool {
	return e.Message == "" && e.State == "" && e.Cause == nil
}

// Kind sentinels for errors.Is.
var (
	ErrMalformedConnectionString = &Error{Kind: KindMalformedConnectionString}
	ErrConfigLoad                = &Error{Kind: KindConfigLoad}
	ErrInvalidOverlayProperty    = &Error{Kind: KindInvalidOverlayProperty}
	ErrConnectTimeout            = &Error{Kind: KindConnectTimeout}
	ErrCancelled                 = &Error{Kind: KindCancelled}
	ErrConnection                = &Error{Kind: KindConnection}
	ErrUnexpected                = &Error{Kind: KindUnexpected}
)

// ErrNoSuitableDriver is returned by a registry when no driver accepts a
// connection string.
var ErrNoSuitableDriver = errors.New("no suitable driver found")

// unexpectedMessage is the generic classification for failures the driver
// cannot explain.
const unexpectedMessage = "Something unusual has occurred to cause the driver to fail. Please report this exception."

// NewError creates an *Error with no cause.
func NewError(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// WrapError creates an *Error around cause.
func WrapError(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Unexpected wraps cause with the generic "please report" classification.
func Unexpected(cause error) *Error {
	return &Error{Kind: KindUnexpected, Message: unexpectedMessage, State: StateUnexpectedError, Cause: cause}
}

// KindOf extracts the ErrKind of the first *Error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsTimeout reports whether err is a login timeout.
func IsTimeout(err error) bool { return KindOf(err) == KindConnectTimeout }

// IsCancelled reports whether the caller was interrupted while waiting.
func IsCancelled(err error) bool { return KindOf(err) == KindCancelled }

// IsConnectionFailed reports whether the connection factory itself failed.
func IsConnectionFailed(err error) bool { return KindOf(err) == KindConnection }

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, ErrNoSuitableDriver) {
		return ExitNoDriver
	}

	switch KindOf(err) {
	case KindMalformedConnectionString, KindConfigLoad, KindInvalidOverlayProperty:
		return ExitConfigError
	case KindConnection:
		return ExitConnectionError
	case KindConnectTimeout:
		return ExitTimeout
	case KindCancelled:
		return ExitCancelled
	}

	if isUsageError(err) {
		return ExitUsageError
	}
	return ExitGeneralError
}

// usagePatterns are the messages cobra produces for command line misuse.
var usagePatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
}

func isUsageError(err error) bool {
	msg := err.Error()
	for _, p := range usagePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
