package podman

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure this package can produce. The set is
// closed: callers can switch over it exhaustively.
type ErrorKind string

const (
	// KindInvalidParameters means the request was malformed or incomplete.
	// The engine is never invoked for these.
	KindInvalidParameters ErrorKind = "InvalidParameters"

	// KindEngineNotFound means the engine binary could not be located or
	// launched.
	KindEngineNotFound ErrorKind = "EngineNotFound"

	// KindExecutionTimeout means the child process exceeded its wall-clock
	// bound and was terminated.
	KindExecutionTimeout ErrorKind = "ExecutionTimeout"

	// KindEngineOperationFailed means the engine ran and exited non-zero
	// with no more specific classification.
	KindEngineOperationFailed ErrorKind = "EngineOperationFailed"

	// KindContainerNotFound means a log or lookup operation referenced a
	// container the engine does not know.
	KindContainerNotFound ErrorKind = "ContainerNotFound"

	// KindMalformedEngineOutput means the engine's list output could not be
	// parsed into container records.
	KindMalformedEngineOutput ErrorKind = "MalformedEngineOutput"

	// KindUnknownOperation means the requested operation is not one of the
	// supported tool names.
	KindUnknownOperation ErrorKind = "UnknownOperation"
)

// Error carries an ErrorKind alongside a human-readable message. It is the
// only error type the dispatch pipeline produces.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errorf builds an *Error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from err, falling back to
// EngineOperationFailed so misclassification fails safe into the generic
// kind.
func KindOf(err error) ErrorKind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindEngineOperationFailed
}
