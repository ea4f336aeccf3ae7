package repository

import "errors"

var (
	// ErrRepositoryNotFound is returned when no content or descriptor is
	// known for a repository id.
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrUnsupportedLayout is returned when no content implementation exists
	// for a layout name.
	ErrUnsupportedLayout = errors.New("unsupported repository layout")

	// ErrContentDetached is returned by content handlers that are no longer
	// bound to a repository.
	ErrContentDetached = errors.New("repository content is not bound to a repository")

	// ErrReadOnlyRepository is returned when setting the content of a
	// repository descriptor that does not allow it.
	ErrReadOnlyRepository = errors.New("repository descriptor is read-only")

	// ErrInvalidPath is returned when a path cannot be mapped to an artifact
	ErrInvalidPath = errors.New("invalid artifact path")
)
