package repository

import (
	"context"
	"io"

	"github.com/RhmnKpc/archiva/pkg/types"
)

// ManagedRepositoryContent performs layout specific storage operations for
// one managed repository.
type ManagedRepositoryContent interface {
	// ID returns the id of the bound repository, or "" when detached
	ID() string
	Layout() string

	Repository() ManagedRepository
	SetRepository(repo ManagedRepository)

	ToPath(ref types.ArtifactReference) string
	ToArtifactReference(path string) (types.ArtifactReference, error)

	HasContent(ctx context.Context, ref types.ArtifactReference) (bool, error)
	Store(ctx context.Context, path string, content io.Reader) error
	Retrieve(ctx context.Context, path string) (io.ReadCloser, error)
	List(ctx context.Context) ([]string, error)

	// Versions returns the versions stored for a project, highest first
	Versions(ctx context.Context, groupID, artifactID string) ([]string, error)
	DeleteVersion(ctx context.Context, groupID, artifactID, version string) error
}

// RemoteRepositoryContent maps artifacts onto a remote repository
type RemoteRepositoryContent interface {
	ID() string
	Layout() string

	Repository() RemoteRepository
	SetRepository(repo RemoteRepository)

	ToPath(ref types.ArtifactReference) string
	ToArtifactReference(path string) (types.ArtifactReference, error)
	ToURL(ref types.ArtifactReference) (string, error)
}

// ContentProvider creates unbound content handlers for a layout name. It
// fails with ErrUnsupportedLayout for unknown layouts.
type ContentProvider interface {
	NewManagedContent(layout string) (ManagedRepositoryContent, error)
	NewRemoteContent(layout string) (RemoteRepositoryContent, error)
}
