package connect

import (
	"errors"
	"fmt"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

var errNoResult = errors.New("connection factory returned neither a connection nor an error")

// Recognized reports whether err is already a driver-domain error and may be
// returned to callers unchanged.
func Recognized(err error) bool {
	var fe *fdbsql.Error
	return errors.As(err, &fe)
}

// normalize passes recognized errors through and wraps everything else as
// an unexpected failure.
func normalize(err error) error {
	if err == nil || Recognized(err) {
		return err
	}
	return fdbsql.Unexpected(err)
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fdbsql.Unexpected(fmt.Errorf("connection attempt panicked: %w", err))
	}
	return fdbsql.Unexpected(fmt.Errorf("connection attempt panicked: %v", r))
}
