package database

import "gorm.io/gorm"

// Constraint narrows a query
type Constraint interface {
	Apply(db *gorm.DB) *gorm.DB
}

// ConstraintFunc adapts a function to Constraint
type ConstraintFunc func(db *gorm.DB) *gorm.DB

// Apply calls f
func (f ConstraintFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// ProjectsByGroup selects the project models of a group, ordered by
// artifactId and version
func ProjectsByGroup(groupID string) Constraint {
	return ConstraintFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where("group_id = ?", groupID).Order("artifact_id, version")
	})
}

// ProjectsByCoordinate selects every version of one project
func ProjectsByCoordinate(groupID, artifactID string) Constraint {
	return ConstraintFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where("group_id = ? AND artifact_id = ?", groupID, artifactID).Order("version")
	})
}

// UnprocessedArtifacts selects artifacts not yet processed. An empty repoID
// selects them across every repository.
func UnprocessedArtifacts(repoID string) Constraint {
	return ConstraintFunc(func(db *gorm.DB) *gorm.DB {
		db = db.Where("processed = ?", false)
		if repoID != "" {
			db = db.Where("repository = ?", repoID)
		}
		return db.Order("path")
	})
}

// ArtifactsByRepository selects every artifact of a repository
func ArtifactsByRepository(repoID string) Constraint {
	return ConstraintFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where("repository = ?", repoID).Order("path")
	})
}

// IsUnprocessed is the in-memory form of UnprocessedArtifacts
func IsUnprocessed(a *Artifact) bool {
	return a != nil && !a.Processed
}
