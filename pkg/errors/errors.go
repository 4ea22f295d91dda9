// Package errors defines the coded errors shared by fetchtree's packages.
//
// Every failure that crosses a package boundary is an [*Error] carrying a
// [Code]. The CLI prints it, the HTTP server maps it to a status, and export
// results report it by name.
//
// # Codes
//
// Import and export fail in four ways, each with its own code:
//
//	NOT_FOUND               a path does not resolve or cannot be opened
//	MALFORMED_DOCUMENT      bytes do not parse in a supported format
//	INVARIANT_VIOLATION     an in-memory tree breaks the node shape rules
//	DESTINATION_UNWRITABLE  an export target cannot be written
//
// The other codes belong to the tooling around the core: input validation,
// the project store, remote fetches and internal failures.
//
// # Usage
//
//	if err := parse(data); err != nil {
//	    return errors.Wrap(errors.ErrCodeMalformedDocument, err, "parse %s", path)
//	}
//
//	if errors.Is(err, errors.ErrCodeNotFound) { ... }
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Code is a machine-readable error class.
type Code string

const (
	ErrCodeNotFound              Code = "NOT_FOUND"
	ErrCodeMalformedDocument     Code = "MALFORMED_DOCUMENT"
	ErrCodeInvariantViolation    Code = "INVARIANT_VIOLATION"
	ErrCodeDestinationUnwritable Code = "DESTINATION_UNWRITABLE"

	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidName   Code = "INVALID_NAME"

	ErrCodeProjectNotFound Code = "PROJECT_NOT_FOUND"
	ErrCodeNoActiveProject Code = "NO_ACTIVE_PROJECT"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error renders "CODE: message" followed by ": cause" when there is one.
func (e *Error) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// Is makes the standard library's errors.Is match on code alone, so
// errors.Is(err, &Error{Code: ErrCodeNotFound}) works too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Cause == nil && t.Code == e.Code
}

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// find returns the outermost *Error in err's chain.
func find(err error) *Error {
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return nil
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	e := find(err)
	return e != nil && e.Code == code
}

// As is the standard library's errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// GetCode returns the outermost code in err's chain, or "".
func GetCode(err error) Code {
	if e := find(err); e != nil {
		return e.Code
	}
	return ""
}

// CodeOr is [GetCode] with a fallback for uncoded errors.
func CodeOr(err error, fallback Code) Code {
	if c := GetCode(err); c != "" {
		return c
	}
	return fallback
}

// UserMessage returns the message of a coded error without its code and
// cause, or err.Error() for anything else. A nil error gives "".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if e := find(err); e != nil {
		return e.Message
	}
	return err.Error()
}

// RateLimitedError is the cause attached to RATE_LIMITED errors when the
// server said how long to wait.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return "rate limited: retry after " + e.RetryAfter.String()
	}
	return "rate limited"
}

func (e *RateLimitedError) Code() Code { return ErrCodeRateLimited }
