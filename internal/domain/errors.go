package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

type (
	// NotFoundError indicates a resource was not found. Cross-user access to
	// an existing resource reports the same error, so callers cannot probe
	// for existence.
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrInvalidInput }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// IOError is a content-store read/write/delete failure. The wrapped error is
// kept for logs; clients only ever see a generic message.
type IOError struct {
	Op   string // "read", "write", "delete"
	Path string // relative path within the content root
	Err  error
}

func (e *IOError) Error() string {
	return "content store " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) StatusCode() int { return http.StatusInternalServerError }

// StoreError is a metadata-store failure. Surfaced after a successful content
// write it signals that the file may now be ahead of the metadata row.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) StatusCode() int { return http.StatusInternalServerError }
