package services

import (
	"errors"
	"strings"
)

var (
	ErrInvalid         = errors.New("invalid request")
	ErrConflict        = errors.New("name already in use")
	ErrUnauthorized    = errors.New("sender has not joined")
	ErrNotFound        = errors.New("participant not found")
	ErrMissingIdentity = errors.New("missing user identity")
)

// ValidationError carries every rule a request violated. It matches ErrInvalid.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Details, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func invalid(details ...string) error {
	return &ValidationError{Details: details}
}
