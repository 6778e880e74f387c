package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// StoreError marks a failure of the durable store itself: connectivity,
// pool exhaustion, a malformed response. It is always propagated.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err as a StoreError for the given operation.
func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// IsStoreError reports whether any error in the chain is a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// EncodingError marks a serialization failure on a write path. Unlike read-side
// decode failures (which are tolerated and treated as an absent record), failing
// to serialize a value we are about to persist is a defect.
type EncodingError struct {
	Op  string
	Err error
}

func (e *EncodingError) Error() string { return fmt.Sprintf("encoding: %s: %v", e.Op, e.Err) }
func (e *EncodingError) Unwrap() error { return e.Err }

func NewEncodingError(op string, err error) error {
	return &EncodingError{Op: op, Err: err}
}

func IsEncodingError(err error) bool {
	var ee *EncodingError
	return errors.As(err, &ee)
}
