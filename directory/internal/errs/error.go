package errs

import (
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// notFound is a NotFound with its own message.
type notFound string

func (e notFound) Error() string        { return string(e) }
func (e notFound) Is(target error) bool { return target == ErrNotFound }

var (
	ErrBookNotFound    error = notFound("Book not found in backend")
	ErrBookUnavailable error = notFound("Book is not available for borrowing")
	ErrUserNotFound    error = notFound("User not found")
)

const (
	OpFetchBook      = "fetch book"
	OpRegisterBorrow = "register borrow"
)

// UpstreamError records which catalog call of a borrow failed.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }
