// Package apperr defines the error kinds shared by the services.
// Components return errors wrapping one of the sentinel kinds; only the
// HTTP handlers translate them into status codes.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks caller input that violates a precondition.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a lookup by identifier that matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrIO marks a parsing or file I/O failure.
	ErrIO = errors.New("io error")

	// ErrUpstream marks a vector index or generator failure. Never retried.
	ErrUpstream = errors.New("upstream error")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func IOf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrIO)...)
}

func Upstreamf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrUpstream)...)
}
