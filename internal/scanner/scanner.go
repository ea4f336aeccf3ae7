package scanner

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RhmnKpc/archiva/internal/database"
	"github.com/RhmnKpc/archiva/internal/index"
	"github.com/RhmnKpc/archiva/internal/repository"
	"github.com/RhmnKpc/archiva/pkg/types"
)

const metadataFile = "maven-metadata.xml"

// Repositories resolves managed repositories and their bound content
type Repositories interface {
	ManagedRepositories() []*repository.Managed
	ManagedContent(id string) (repository.ManagedRepositoryContent, error)
}

// Indexes opens the index of a repository
type Indexes interface {
	Open(repoID string) (*index.RepositoryIndex, error)
}

// Invalidator drops cached search results of a repository
type Invalidator interface {
	Invalidate(ctx context.Context, repoID string) error
}

// Stats summarizes one repository scan
type Stats struct {
	Repository string        `json:"repository"`
	Files      int           `json:"files"`
	Artifacts  int           `json:"artifacts"`
	Processed  int           `json:"processed"`
	Models     int           `json:"models"`
	Metadata   int           `json:"metadata"`
	Skipped    int           `json:"skipped"`
	Errors     int           `json:"errors"`
	Duration   time.Duration `json:"duration"`
}

// Scanner walks managed repositories, records their artifacts and feeds
// new or changed ones into the repository index
type Scanner struct {
	repos       Repositories
	artifacts   *database.ArtifactDAO
	models      *database.ProjectModelDAO
	indexes     Indexes
	invalidator Invalidator
}

// NewScanner creates a scanner. invalidator may be nil.
func NewScanner(repos Repositories, artifacts *database.ArtifactDAO, models *database.ProjectModelDAO, indexes Indexes, invalidator Invalidator) *Scanner {
	return &Scanner{
		repos:       repos,
		artifacts:   artifacts,
		models:      models,
		indexes:     indexes,
		invalidator: invalidator,
	}
}

// ScanAll scans every managed repository flagged for scanning
func (s *Scanner) ScanAll(ctx context.Context) ([]*Stats, error) {
	var all []*Stats
	for _, repo := range s.repos.ManagedRepositories() {
		if !repo.Scanned() {
			continue
		}
		stats, err := s.Scan(ctx, repo.ID())
		if err != nil {
			return all, err
		}
		all = append(all, stats)
	}
	return all, nil
}

// Scan processes every file of a managed repository. Failures of single
// files are logged and counted; only repository level failures abort.
func (s *Scanner) Scan(ctx context.Context, repoID string) (*Stats, error) {
	startTime := time.Now()
	stats := &Stats{Repository: repoID}

	content, err := s.repos.ManagedContent(repoID)
	if err != nil {
		return nil, err
	}
	idx, err := s.indexes.Open(repoID)
	if err != nil {
		return nil, fmt.Errorf("failed to open index of %s: %w", repoID, err)
	}
	paths, err := content.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", repoID, err)
	}

	log.Info().Str("repository", repoID).Int("files", len(paths)).Msg("repository scan started")

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Files++

		if err := s.scanFile(ctx, content, idx, p, stats); err != nil {
			stats.Errors++
			log.Warn().Err(err).Str("repository", repoID).Str("path", p).Msg("failed to scan file")
		}
	}

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, repoID); err != nil {
			log.Warn().Err(err).Str("repository", repoID).Msg("failed to invalidate search cache")
		}
	}

	stats.Duration = time.Since(startTime)
	log.Info().
		Str("repository", repoID).
		Int("artifacts", stats.Artifacts).
		Int("processed", stats.Processed).
		Int("models", stats.Models).
		Int("errors", stats.Errors).
		Dur("duration", stats.Duration).
		Msg("repository scan completed")
	return stats, nil
}

func (s *Scanner) scanFile(ctx context.Context, content repository.ManagedRepositoryContent, idx *index.RepositoryIndex, p string, stats *Stats) error {
	if path.Base(p) == metadataFile {
		return s.scanMetadata(ctx, content, idx, p, stats)
	}

	ref, err := content.ToArtifactReference(p)
	if err != nil {
		stats.Skipped++
		log.Debug().Str("path", p).Msg("skipping non-artifact file")
		return nil
	}
	stats.Artifacts++

	spooled, err := spool(ctx, content, p)
	if err != nil {
		return err
	}
	defer spooled.Close()

	row := database.NewArtifact(content.ID(), p, ref)
	row.Size = spooled.size
	row.SHA1 = spooled.sha1
	row.MD5 = spooled.md5
	row, err = s.artifacts.Save(ctx, row)
	if err != nil {
		return err
	}
	if !database.IsUnprocessed(row) {
		return nil
	}

	record := &index.ArtifactRecord{
		Artifact:  ref,
		Name:      path.Base(p),
		Packaging: ref.Type,
		SHA1:      spooled.sha1,
		MD5:       spooled.md5,
	}
	if archiveExtensions[ref.Extension()] {
		l, err := listArchive(spooled.file, spooled.size)
		if err != nil {
			// indexed without content listing
			log.Warn().Err(err).Str("path", p).Msg("unreadable archive")
		} else {
			record.Classes = strings.Join(l.Classes, "\n")
			record.Packages = strings.Join(l.Packages, "\n")
			record.Files = strings.Join(l.Files, "\n")
		}
	}
	if err := idx.IndexArtifact(ctx, record); err != nil {
		return err
	}

	if ref.Type == "pom" {
		if err := s.scanModel(ctx, idx, spooled.Reader(), stats); err != nil {
			return err
		}
	}

	if err := s.artifacts.MarkProcessed(ctx, row.ID, time.Now()); err != nil {
		return err
	}
	stats.Processed++
	return nil
}

func (s *Scanner) scanModel(ctx context.Context, idx *index.RepositoryIndex, r io.Reader, stats *Stats) error {
	model, err := types.ParsePOM(r)
	if err != nil {
		return err
	}
	if _, err := s.models.Save(ctx, database.NewProjectModel(model)); err != nil {
		return err
	}
	if err := idx.IndexModel(ctx, model); err != nil {
		return err
	}
	stats.Models++
	return nil
}

func (s *Scanner) scanMetadata(ctx context.Context, content repository.ManagedRepositoryContent, idx *index.RepositoryIndex, p string, stats *Stats) error {
	rc, err := content.Retrieve(ctx, p)
	if err != nil {
		return err
	}
	defer rc.Close()

	metadata, err := types.ParseMetadata(rc)
	if err != nil {
		return err
	}
	if err := idx.IndexMetadata(ctx, metadata); err != nil {
		return err
	}
	stats.Metadata++
	return nil
}
