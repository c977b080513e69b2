// Package streamerr defines the error taxonomy shared by the Octopus stream
// reader packages. Every failure carries one of the sentinel kinds below so
// callers can branch with errors.Is regardless of which layer produced it.
package streamerr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds.
var (
	// ErrFormat marks a filename that does not follow the <stem>_<index>.ext convention.
	ErrFormat = errors.New("filename format error")

	// ErrMissingDirectory marks a stream directory that cannot be listed.
	ErrMissingDirectory = errors.New("missing directory")

	// ErrMissingFile marks a header file that cannot be opened.
	ErrMissingFile = errors.New("missing file")

	// ErrMalformedHeader marks a header whose lines disagree on field count.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrValueParse marks a header value that is neither boolean nor numeric.
	ErrValueParse = errors.New("value parse error")

	// ErrCorruptChunk marks a data file whose size disagrees with its header.
	ErrCorruptChunk = errors.New("corrupt chunk")
)

// Error wraps one of the sentinel kinds with the path and detail that
// triggered it.
type Error struct {
	// Kind is one of the sentinel errors above
	Kind error

	// Path is the file or directory involved, if any
	Path string

	// Detail is a short human readable description
	Detail string

	// Err is the underlying cause, if any
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error of the given kind with a formatted detail message.
func New(kind error, path string, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Detail: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around an underlying cause.
func Wrap(kind error, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}
