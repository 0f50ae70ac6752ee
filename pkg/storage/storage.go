// Package storage provides blob storage for uploaded files.
// Keys are slash-separated paths relative to the storage root.
package storage

import (
	"context"
	"io"

	"github.com/JaimeStill/resource-lab/pkg/lifecycle"
)

// System defines the blob storage operations used by upload intake and file serving.
type System interface {
	// Store streams r to key, replacing any existing content, and reports the bytes written.
	// The content becomes visible only once fully written.
	Store(ctx context.Context, key string, r io.Reader) (int64, error)

	// Move renames from to to, replacing any existing content at to.
	Move(ctx context.Context, from, to string) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Validate reports whether key exists.
	Validate(ctx context.Context, key string) (bool, error)

	// EnsureDir creates the directory at key if absent.
	EnsureDir(ctx context.Context, key string) error

	// Path resolves key to its location on disk.
	Path(key string) (string, error)

	// Start registers lifecycle hooks with the coordinator.
	Start(lc *lifecycle.Coordinator) error
}
