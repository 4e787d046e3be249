package service

import (
	"errors"
	"fmt"
)

// ErrValidation is the base of every input error; handlers map it to 400.
var ErrValidation = errors.New("validation failed")

var (
	ErrMissingCredentials = fmt.Errorf("%w: missing username or password", ErrValidation)
	ErrEmptyTask          = fmt.Errorf("%w: task is required", ErrValidation)
	ErrInvalidIndex       = fmt.Errorf("%w: invalid index", ErrValidation)
)

var (
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials covers both an unknown user and a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// StoreError wraps a persistence or hashing failure that is not the caller's fault.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
