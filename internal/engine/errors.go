package engine

import (
	"errors"
	"fmt"
)

// TransportError reports a failed gateway or clipboard call. The
// operation is failed-but-recoverable: optimistic state stays in place
// and the next successful write self-heals.
//
// Raw error shapes from the gateway never reach engine callers; they
// are normalized into this type at the engine boundary.
type TransportError struct {
	// Op names the failed operation ("upsert", "update text", ...).
	Op string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying failure for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
