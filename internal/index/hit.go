package index

import (
	"strings"

	"github.com/RhmnKpc/archiva/pkg/types"
)

// HitKind tells which record a Hit carries
type HitKind int

const (
	HitArtifact HitKind = iota + 1
	HitModel
	HitMetadata
)

func (k HitKind) String() string {
	switch k {
	case HitArtifact:
		return "artifact"
	case HitModel:
		return "model"
	case HitMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// ArtifactRecord is the flat index record of one artifact file. Classes,
// packages and files hold one entry per line.
type ArtifactRecord struct {
	Artifact  types.ArtifactReference `json:"artifact"`
	Name      string                  `json:"name,omitempty"`
	Classes   string                  `json:"classes,omitempty"`
	Packages  string                  `json:"packages,omitempty"`
	Files     string                  `json:"files,omitempty"`
	Packaging string                  `json:"packaging,omitempty"`
	SHA1      string                  `json:"sha1,omitempty"`
	MD5       string                  `json:"md5,omitempty"`
}

// Field returns the raw value of one of the artifact fields
func (r *ArtifactRecord) Field(field string) string {
	switch field {
	case FieldClasses:
		return r.Classes
	case FieldPackages:
		return r.Packages
	case FieldFiles:
		return r.Files
	case FieldPackaging:
		return r.Packaging
	case FieldSHA1:
		return r.SHA1
	case FieldMD5:
		return r.MD5
	}
	return ""
}

// Lines splits a newline separated field into its non-empty lines
func Lines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Hit is one match returned by a Searcher. Exactly one of the record
// pointers is set, according to Kind.
type Hit struct {
	Kind     HitKind
	Artifact *ArtifactRecord
	Model    *types.ProjectModel
	Metadata *types.RepositoryMetadata
}

// ArtifactHit wraps an artifact record
func ArtifactHit(r *ArtifactRecord) Hit {
	return Hit{Kind: HitArtifact, Artifact: r}
}

// ModelHit wraps a project model
func ModelHit(m *types.ProjectModel) Hit {
	return Hit{Kind: HitModel, Model: m}
}

// MetadataHit wraps repository metadata
func MetadataHit(m *types.RepositoryMetadata) Hit {
	return Hit{Kind: HitMetadata, Metadata: m}
}
