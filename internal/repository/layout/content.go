package layout

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/RhmnKpc/archiva/internal/repository"
	"github.com/RhmnKpc/archiva/internal/storage"
	"github.com/RhmnKpc/archiva/pkg/types"
	"github.com/RhmnKpc/archiva/pkg/utils"
)

// ManagedContent stores the artifacts of a managed repository in the blob
// storage opened for the repository location
type ManagedContent struct {
	translator pathTranslator
	storage    *storage.StorageFactory

	mu   sync.RWMutex
	repo repository.ManagedRepository
}

func (c *ManagedContent) ID() string {
	if repo := c.Repository(); repo != nil {
		return repo.ID()
	}
	return ""
}

func (c *ManagedContent) Layout() string { return c.translator.name() }

func (c *ManagedContent) Repository() repository.ManagedRepository {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.repo
}

func (c *ManagedContent) SetRepository(repo repository.ManagedRepository) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repo = repo
}

func (c *ManagedContent) ToPath(ref types.ArtifactReference) string {
	return c.translator.toPath(ref)
}

func (c *ManagedContent) ToArtifactReference(p string) (types.ArtifactReference, error) {
	return c.translator.toArtifactReference(p)
}

func (c *ManagedContent) blobs() (storage.BlobStorage, error) {
	repo := c.Repository()
	if repo == nil {
		return nil, repository.ErrContentDetached
	}
	blobs, err := c.storage.Open(repo.Location())
	if err != nil {
		return nil, fmt.Errorf("failed to open storage of %s: %w", repo.ID(), err)
	}
	return blobs, nil
}

// HasContent reports whether the file of ref is present
func (c *ManagedContent) HasContent(ctx context.Context, ref types.ArtifactReference) (bool, error) {
	blobs, err := c.blobs()
	if err != nil {
		return false, err
	}
	return blobs.Exists(ctx, c.ToPath(ref))
}

// Store writes a file at a repository path
func (c *ManagedContent) Store(ctx context.Context, p string, content io.Reader) error {
	blobs, err := c.blobs()
	if err != nil {
		return err
	}
	if err := blobs.Store(ctx, p, content, utils.MimeType(p)); err != nil {
		return fmt.Errorf("failed to store %s: %w", p, err)
	}
	log.Info().Str("repository", c.ID()).Str("path", p).Msg("artifact stored")
	return nil
}

// Retrieve opens the file at a repository path
func (c *ManagedContent) Retrieve(ctx context.Context, p string) (io.ReadCloser, error) {
	blobs, err := c.blobs()
	if err != nil {
		return nil, err
	}
	return blobs.Retrieve(ctx, p)
}

// List returns every file path of the repository
func (c *ManagedContent) List(ctx context.Context) ([]string, error) {
	blobs, err := c.blobs()
	if err != nil {
		return nil, err
	}
	return blobs.List(ctx, "")
}

// Versions returns the versions of a project, highest first
func (c *ManagedContent) Versions(ctx context.Context, groupID, artifactID string) ([]string, error) {
	blobs, err := c.blobs()
	if err != nil {
		return nil, err
	}
	return c.translator.versions(ctx, blobs, groupID, artifactID)
}

// DeleteVersion removes every file of one project version
func (c *ManagedContent) DeleteVersion(ctx context.Context, groupID, artifactID, version string) error {
	blobs, err := c.blobs()
	if err != nil {
		return err
	}
	if err := c.translator.deleteVersion(ctx, blobs, groupID, artifactID, version); err != nil {
		return fmt.Errorf("failed to delete %s: %w", types.Coordinate(groupID, artifactID, version), err)
	}
	log.Info().
		Str("repository", c.ID()).
		Str("coordinate", types.Coordinate(groupID, artifactID, version)).
		Msg("version deleted")
	return nil
}

// RemoteContent maps artifacts onto the URL space of a remote repository
type RemoteContent struct {
	translator pathTranslator

	mu   sync.RWMutex
	repo repository.RemoteRepository
}

func (c *RemoteContent) ID() string {
	if repo := c.Repository(); repo != nil {
		return repo.ID()
	}
	return ""
}

func (c *RemoteContent) Layout() string { return c.translator.name() }

func (c *RemoteContent) Repository() repository.RemoteRepository {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.repo
}

func (c *RemoteContent) SetRepository(repo repository.RemoteRepository) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repo = repo
}

func (c *RemoteContent) ToPath(ref types.ArtifactReference) string {
	return c.translator.toPath(ref)
}

func (c *RemoteContent) ToArtifactReference(p string) (types.ArtifactReference, error) {
	return c.translator.toArtifactReference(p)
}

// ToURL returns the absolute URL of ref in the remote repository
func (c *RemoteContent) ToURL(ref types.ArtifactReference) (string, error) {
	repo := c.Repository()
	if repo == nil {
		return "", repository.ErrContentDetached
	}
	u, err := url.JoinPath(repo.URL(), c.ToPath(ref))
	if err != nil {
		return "", fmt.Errorf("invalid url for repository %s: %w", repo.ID(), err)
	}
	return u, nil
}
