package tellcore

import (
	"errors"
	"fmt"
)

// Domain-specific errors for the binding layer.
// Use errors.Is() / errors.As() to check for these errors in calling code.
var (
	// ErrLoadFailed is returned when the native module cannot be located or
	// loaded. It is fatal to Library construction.
	ErrLoadFailed = errors.New("tellcore: loading telldus-core failed")

	// ErrNotSupported is returned when calling an entry point that is absent
	// from the loaded telldus-core version. Older library versions do not
	// export every function; this is a per-call condition, not a load fault.
	ErrNotSupported = errors.New("tellcore: entry point not supported by loaded telldus-core")

	// ErrClosed is returned when calling through a Library that has already
	// been closed.
	ErrClosed = errors.New("tellcore: library handle is closed")
)

// CallError is returned when a native call fails. Code is the exact result
// code returned by telldus-core; Message is the human-readable description
// obtained from tdGetErrorString, when available.
type CallError struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *CallError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tellcore: %s (%d)", e.Message, e.Code)
	}
	return fmt.Sprintf("tellcore: native call failed (%d)", e.Code)
}

// IsCode reports whether err is a CallError carrying the given native code.
func IsCode(err error, code ErrorCode) bool {
	var ce *CallError
	return errors.As(err, &ce) && ce.Code == code
}

// notSupported wraps ErrNotSupported with the missing entry point name.
func notSupported(name string) error {
	return fmt.Errorf("%s: %w", name, ErrNotSupported)
}
