package storage

import (
	"context"
	"io"
)

// BlobStorage is the byte store behind a managed repository. Paths are
// repository relative and always use forward slashes.
type BlobStorage interface {
	// Store saves content at the given path
	Store(ctx context.Context, path string, content io.Reader, contentType string) error

	// Retrieve gets content from the given path
	Retrieve(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes content at the given path
	Delete(ctx context.Context, path string) error

	// DeleteTree removes a directory and everything below it
	DeleteTree(ctx context.Context, prefix string) error

	// Exists checks if content exists at the given path
	Exists(ctx context.Context, path string) (bool, error)

	// GetSize returns the size of content at the given path
	GetSize(ctx context.Context, path string) (int64, error)

	// List returns paths of files below the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// ListDirs returns the names of the directories directly below prefix
	ListDirs(ctx context.Context, prefix string) ([]string, error)
}
