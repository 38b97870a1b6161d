// Package errors defines the coded errors flowboard returns at its edges.
//
// The layout and routing core never fails; it falls back to deterministic
// defaults. Codes are attached where input enters or state leaves the
// process: project loading, sessions, stores, the CLI and the HTTP API,
// which maps each code to a status with [HTTPStatus].
//
//	err := errors.New(errors.ErrCodeInvalidStrategy, "unknown strategy %q", name)
//	err = errors.Wrap(errors.ErrCodeStore, redisErr, "save board %s", name)
//	if errors.Is(err, errors.ErrCodeStore) { ... }
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error class. API clients receive it verbatim
// in the "code" field of error responses.
type Code string

const (
	// Bad input, answered with 400.
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidProject  Code = "INVALID_PROJECT"
	ErrCodeInvalidStrategy Code = "INVALID_STRATEGY"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidAnchor   Code = "INVALID_ANCHOR"

	// Unknown board, node, edge or category.
	ErrCodeNotFound Code = "NOT_FOUND"

	// A drag call out of order (begin while dragging, move while idle).
	ErrCodeDragState Code = "DRAG_STATE"

	// The board-state backend failed.
	ErrCodeStore Code = "STORE_ERROR"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidProject:  http.StatusBadRequest,
	ErrCodeInvalidStrategy: http.StatusBadRequest,
	ErrCodeInvalidFormat:   http.StatusBadRequest,
	ErrCodeInvalidAnchor:   http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeDragState:       http.StatusConflict,
	ErrCodeStore:           http.StatusServiceUnavailable,
}

// Status returns the HTTP status for the code; unknown codes are 500.
func (c Code) Status() int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error carries a code, a message for humans and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether any coded error in err's chain has the given code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode returns the outermost code in err's chain, or "" if none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the outermost coded message without the code prefix,
// or err.Error() for uncoded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps err to the status the API answers with. Uncoded errors
// are 500.
func HTTPStatus(err error) int {
	return GetCode(err).Status()
}
