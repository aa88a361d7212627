// Package common holds the error categories shared by the stores and the
// layers that call them. Callers match either the category or the specific
// reason with errors.Is.
package common

import "errors"

var (
	// ErrValidation: bad input, nothing was mutated.
	ErrValidation = errors.New("validation error")
	// ErrAuth: login refused.
	ErrAuth = errors.New("authentication error")
	// ErrStorage: the credential registry medium is unreadable or unwritable.
	ErrStorage = errors.New("storage error")
	// ErrPersistence: a submission or upload write failed.
	ErrPersistence = errors.New("persistence error")
)

type reasonError struct {
	category error
	reason   error
}

func (e *reasonError) Error() string { return e.reason.Error() }

func (e *reasonError) Is(target error) bool { return target == e.category }

func (e *reasonError) Unwrap() error { return e.reason }

// Reason returns a sentinel that reports msg and also matches category.
func Reason(category error, msg string) error {
	return &reasonError{category: category, reason: errors.New(msg)}
}
