package store

import (
	"errors"
	"fmt"
	"strings"
)

// Store errors returned by Collection implementations.
var (
	// ErrNotFound indicates no entity matched the identifier.
	ErrNotFound = errors.New("store: entity not found")

	// ErrInvalidID indicates the identifier does not match the store format.
	ErrInvalidID = errors.New("store: invalid id")

	// ErrNotReady indicates the store connection has not been established.
	ErrNotReady = errors.New("store: not ready")
)

// ValidationError reports required fields missing from a create payload.
type ValidationError struct {
	Collection string
	Missing    []string
}

func (e *ValidationError) Error() string {
	paths := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		paths[i] = fmt.Sprintf("%s: Path `%s` is required.", m, m)
	}
	return fmt.Sprintf("%s validation failed: %s", e.Collection, strings.Join(paths, ", "))
}
