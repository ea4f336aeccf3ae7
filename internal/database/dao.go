package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/RhmnKpc/archiva/pkg/types"
)

// ErrObjectNotFound is returned when a requested row does not exist
var ErrObjectNotFound = errors.New("object not found")

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, fmt.Sprintf(format, args...))
	}
	return err
}

// ProjectModelDAO stores parsed project models
type ProjectModelDAO struct {
	db *gorm.DB
}

// NewProjectModelDAO creates a DAO on db
func NewProjectModelDAO(db *gorm.DB) *ProjectModelDAO {
	return &ProjectModelDAO{db: db}
}

// Create returns a new, unsaved project model for a coordinate
func (d *ProjectModelDAO) Create(groupID, artifactID, version string) *ProjectModel {
	return &ProjectModel{GroupID: groupID, ArtifactID: artifactID, Version: version}
}

// Get returns the project model of a coordinate
func (d *ProjectModelDAO) Get(ctx context.Context, groupID, artifactID, version string) (*ProjectModel, error) {
	var model ProjectModel
	err := d.db.WithContext(ctx).
		Where("group_id = ? AND artifact_id = ? AND version = ?", groupID, artifactID, version).
		First(&model).Error
	if err != nil {
		return nil, notFound(fmt.Errorf("failed to get project model: %w", err), "project model %s", types.Coordinate(groupID, artifactID, version))
	}
	return &model, nil
}

// Query returns the project models selected by c
func (d *ProjectModelDAO) Query(ctx context.Context, c Constraint) ([]ProjectModel, error) {
	var models []ProjectModel
	if err := c.Apply(d.db.WithContext(ctx).Model(&ProjectModel{})).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query project models: %w", err)
	}
	return models, nil
}

// Save inserts the model or replaces the stored model of the same coordinate
func (d *ProjectModelDAO) Save(ctx context.Context, model *ProjectModel) (*ProjectModel, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ProjectModel
		err := tx.Where("group_id = ? AND artifact_id = ? AND version = ?", model.GroupID, model.ArtifactID, model.Version).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(model).Error
		case err != nil:
			return err
		}
		model.ID = existing.ID
		model.CreatedAt = existing.CreatedAt
		return tx.Save(model).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save project model: %w", err)
	}

	log.Debug().Str("coordinate", types.Coordinate(model.GroupID, model.ArtifactID, model.Version)).Msg("project model saved")
	return model, nil
}

// Delete removes a project model
func (d *ProjectModelDAO) Delete(ctx context.Context, model *ProjectModel) error {
	result := d.db.WithContext(ctx).
		Where("group_id = ? AND artifact_id = ? AND version = ?", model.GroupID, model.ArtifactID, model.Version).
		Delete(&ProjectModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete project model: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: project model %s", ErrObjectNotFound, types.Coordinate(model.GroupID, model.ArtifactID, model.Version))
	}
	return nil
}

// ArtifactDAO stores the artifacts found by repository scans
type ArtifactDAO struct {
	db *gorm.DB
}

// NewArtifactDAO creates a DAO on db
func NewArtifactDAO(db *gorm.DB) *ArtifactDAO {
	return &ArtifactDAO{db: db}
}

// Get returns the artifact stored at path in a repository
func (d *ArtifactDAO) Get(ctx context.Context, repoID, path string) (*Artifact, error) {
	var artifact Artifact
	err := d.db.WithContext(ctx).Where("repository = ? AND path = ?", repoID, path).First(&artifact).Error
	if err != nil {
		return nil, notFound(fmt.Errorf("failed to get artifact: %w", err), "artifact %s/%s", repoID, path)
	}
	return &artifact, nil
}

// Save inserts the artifact or updates the row of the same repository path.
// An update keeps the processed state only while the checksum is unchanged.
func (d *ArtifactDAO) Save(ctx context.Context, artifact *Artifact) (*Artifact, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Artifact
		err := tx.Where("repository = ? AND path = ?", artifact.Repository, artifact.Path).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(artifact).Error
		case err != nil:
			return err
		}
		artifact.ID = existing.ID
		artifact.CreatedAt = existing.CreatedAt
		if existing.SHA1 == artifact.SHA1 && existing.Processed {
			artifact.Processed = true
			artifact.ProcessedAt = existing.ProcessedAt
		} else {
			artifact.Processed = false
			artifact.ProcessedAt = nil
		}
		return tx.Save(artifact).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save artifact: %w", err)
	}
	return artifact, nil
}

// Query returns the artifacts selected by c
func (d *ArtifactDAO) Query(ctx context.Context, c Constraint) ([]Artifact, error) {
	var artifacts []Artifact
	if err := c.Apply(d.db.WithContext(ctx).Model(&Artifact{})).Find(&artifacts).Error; err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	return artifacts, nil
}

// MarkProcessed flags an artifact as processed at the given time
func (d *ArtifactDAO) MarkProcessed(ctx context.Context, id uuid.UUID, when time.Time) error {
	result := d.db.WithContext(ctx).Model(&Artifact{}).Where("id = ?", id).
		Updates(map[string]interface{}{"processed": true, "processed_at": when})
	if result.Error != nil {
		return fmt.Errorf("failed to mark artifact processed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: artifact %s", ErrObjectNotFound, id)
	}
	return nil
}

// DeleteRepository removes every artifact row of a repository
func (d *ArtifactDAO) DeleteRepository(ctx context.Context, repoID string) (int64, error) {
	result := d.db.WithContext(ctx).Where("repository = ?", repoID).Delete(&Artifact{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete artifacts of %s: %w", repoID, result.Error)
	}
	return result.RowsAffected, nil
}
