// Package errs defines the coded error type shared by the store managers and
// the HTTP boundary.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes. These are the values written to the "code" field of an error
// response body.
const (
	EInvalid      = "INVALID_INPUT"
	EUnauthorized = "UNAUTHORIZED"
	ENotFound     = "NOT_FOUND"
	EConflict     = "CONFLICT"
	EInternal     = "INTERNAL"
)

// Error is a business-level failure with a machine-readable code.
//
// Msg is safe to show to API clients. Op names the operation that failed and
// Err carries an underlying cause, which is never shown to clients.
type Error struct {
	Code string
	Msg  string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		fmt.Fprintf(&b, "<%s>", e.Code)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the code of the first *Error in err's chain, or EInternal if
// there is none.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return EInternal
}

// Message returns the client-facing message of the first *Error in err's
// chain, or the empty string.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}

// Invalid returns an EInvalid error with a formatted message.
func Invalid(format string, args ...any) *Error {
	return &Error{Code: EInvalid, Msg: fmt.Sprintf(format, args...)}
}

// NotFound returns an ENotFound error with a formatted message.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: ENotFound, Msg: fmt.Sprintf(format, args...)}
}

// Conflict returns an EConflict error with a formatted message.
func Conflict(format string, args ...any) *Error {
	return &Error{Code: EConflict, Msg: fmt.Sprintf(format, args...)}
}

// Unauthorized returns an EUnauthorized error with a formatted message.
func Unauthorized(format string, args ...any) *Error {
	return &Error{Code: EUnauthorized, Msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && Code(err) == code
}
