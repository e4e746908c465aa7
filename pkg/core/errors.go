package core

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrMethodNotAllowed is returned for methods other than GET and HEAD.
	ErrMethodNotAllowed = errors.New("method not allowed")
	// ErrNotFound is returned when no link-layer record matches the query.
	ErrNotFound = errors.New("interface not found")
	// ErrUnsupportedPlatform is returned by enumerators on hosts without
	// an interface statistics source.
	ErrUnsupportedPlatform = errors.New("interface statistics not supported on this platform")
)

// EnumerationError reports a failure of the operating system call that
// lists network interfaces.
type EnumerationError struct {
	Op  string
	Err error
}

func (e *EnumerationError) Error() string {
	if e.Op == "" {
		return "interface enumeration failed: " + e.Err.Error()
	}
	return fmt.Sprintf("interface enumeration failed: %s: %v", e.Op, e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

// Errno returns the OS error code carried by the error, or 0.
func (e *EnumerationError) Errno() syscall.Errno {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return errno
	}
	return 0
}

// ConfigError is a directive or configuration validation failure. It is
// only produced while loading configuration.
type ConfigError struct {
	Location  string
	Directive string
	Msg       string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Directive != "" && e.Location != "":
		return fmt.Sprintf("\"%s\" directive %s in location %q", e.Directive, e.Msg, e.Location)
	case e.Directive != "":
		return fmt.Sprintf("\"%s\" directive %s", e.Directive, e.Msg)
	case e.Location != "":
		return fmt.Sprintf("location %q: %s", e.Location, e.Msg)
	}
	return e.Msg
}
