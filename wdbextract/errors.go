package wdbextract

import (
	"errors"

	wdberrors "github.com/flaneur2020/wdbextract/wdbextract/errors"
)

var (
	errNotRegular     = errors.New("not a regular file")
	errOffsetOverflow = errors.New("offset does not fit a signed 64-bit seek")
)

// NewUsageError creates a usage error
func NewUsageError(message string) error {
	return wdberrors.ErrUsage.WithMessage(message)
}

// NewNotFoundError creates a not found error for a database or container path
func NewNotFoundError(path string, cause error) error {
	return wdberrors.ErrNotFound.
		WithDetail("path", path).
		WithCause(cause)
}

// NewTruncationError creates an error for a movie whose container ran out of data
func NewTruncationError(movie string, want, got uint64) error {
	return wdberrors.ErrTruncated.
		WithDetail("movie", movie).
		WithDetail("length", want).
		WithDetail("written", got)
}

// NewParseError creates an error for a malformed field of a database record
func NewParseError(field string, record int, cause error) error {
	return wdberrors.ErrParse.
		WithDetail("field", field).
		WithDetail("record", record).
		WithCause(cause)
}

// NewIOError creates an I/O error for an operation on path
func NewIOError(op, path string, cause error) error {
	return wdberrors.ErrIO.
		WithDetail("op", op).
		WithDetail("path", path).
		WithCause(cause)
}
