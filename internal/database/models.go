package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RhmnKpc/archiva/pkg/types"
)

// ProjectModel is the stored form of a parsed POM
type ProjectModel struct {
	ID            uuid.UUID          `json:"id" gorm:"primaryKey"`
	GroupID       string             `json:"groupId" gorm:"not null;uniqueIndex:idx_project_coordinate"`
	ArtifactID    string             `json:"artifactId" gorm:"not null;uniqueIndex:idx_project_coordinate"`
	Version       string             `json:"version" gorm:"not null;uniqueIndex:idx_project_coordinate"`
	Packaging     string             `json:"packaging"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	URL           string             `json:"url"`
	Parent        *types.Parent      `json:"parent,omitempty" gorm:"serializer:json"`
	Dependencies  []types.Dependency `json:"dependencies" gorm:"serializer:json"`
	BuildPlugins  []types.Plugin     `json:"buildPlugins" gorm:"serializer:json"`
	ReportPlugins []types.Plugin     `json:"reportPlugins" gorm:"serializer:json"`
	Licenses      []types.License    `json:"licenses" gorm:"serializer:json"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// BeforeCreate generates a UUID for the project model ID
func (p *ProjectModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewProjectModel converts a parsed POM into its stored form
func NewProjectModel(m *types.ProjectModel) *ProjectModel {
	return &ProjectModel{
		GroupID:       m.GroupID,
		ArtifactID:    m.ArtifactID,
		Version:       m.Version,
		Packaging:     m.Packaging,
		Name:          m.Name,
		Description:   m.Description,
		URL:           m.URL,
		Parent:        m.Parent,
		Dependencies:  m.Dependencies,
		BuildPlugins:  m.BuildPlugins,
		ReportPlugins: m.ReportPlugins,
		Licenses:      m.Licenses,
	}
}

// Model converts the stored form back into a project model
func (p *ProjectModel) Model() *types.ProjectModel {
	return &types.ProjectModel{
		GroupID:       p.GroupID,
		ArtifactID:    p.ArtifactID,
		Version:       p.Version,
		Packaging:     p.Packaging,
		Name:          p.Name,
		Description:   p.Description,
		URL:           p.URL,
		Parent:        p.Parent,
		Dependencies:  p.Dependencies,
		BuildPlugins:  p.BuildPlugins,
		ReportPlugins: p.ReportPlugins,
		Licenses:      p.Licenses,
	}
}

// Artifact is an artifact file discovered in a managed repository
type Artifact struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey"`
	Repository  string     `json:"repository" gorm:"not null;uniqueIndex:idx_artifact_path"`
	Path        string     `json:"path" gorm:"not null;uniqueIndex:idx_artifact_path"`
	GroupID     string     `json:"groupId" gorm:"not null;index:idx_artifact_coordinate"`
	ArtifactID  string     `json:"artifactId" gorm:"not null;index:idx_artifact_coordinate"`
	Version     string     `json:"version" gorm:"not null;index:idx_artifact_coordinate"`
	Classifier  string     `json:"classifier,omitempty"`
	Type        string     `json:"type"`
	Size        int64      `json:"size"`
	SHA1        string     `json:"sha1" gorm:"index"`
	MD5         string     `json:"md5"`
	Processed   bool       `json:"processed" gorm:"index"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// BeforeCreate generates a UUID for the artifact ID
func (a *Artifact) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// NewArtifact creates an unprocessed artifact row for a file of repoID
func NewArtifact(repoID, path string, ref types.ArtifactReference) *Artifact {
	return &Artifact{
		Repository: repoID,
		Path:       path,
		GroupID:    ref.GroupID,
		ArtifactID: ref.ArtifactID,
		Version:    ref.Version,
		Classifier: ref.Classifier,
		Type:       ref.Type,
	}
}

// Reference returns the artifact reference of the row
func (a *Artifact) Reference() types.ArtifactReference {
	return types.ArtifactReference{
		GroupID:    a.GroupID,
		ArtifactID: a.ArtifactID,
		Version:    a.Version,
		Classifier: a.Classifier,
		Type:       a.Type,
	}
}

// Models lists every model to migrate
func Models() []interface{} {
	return []interface{}{&ProjectModel{}, &Artifact{}}
}
