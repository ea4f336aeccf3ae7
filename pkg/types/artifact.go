package types

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPackaging is the packaging Maven assumes when a POM declares none
const DefaultPackaging = "jar"

// ArtifactReference identifies a single artifact file in a repository
type ArtifactReference struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
	Classifier string `json:"classifier,omitempty"`
	Type       string `json:"type"`
}

// NewArtifactReference creates a reference for the main artifact of a coordinate
func NewArtifactReference(groupID, artifactID, version, artifactType string) ArtifactReference {
	if artifactType == "" {
		artifactType = DefaultPackaging
	}
	return ArtifactReference{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Version:    version,
		Type:       artifactType,
	}
}

// Coordinate returns the groupId:artifactId:version triple
func (a ArtifactReference) Coordinate() string {
	return Coordinate(a.GroupID, a.ArtifactID, a.Version)
}

// SameCoordinate reports whether both references share groupId, artifactId and version
func (a ArtifactReference) SameCoordinate(groupID, artifactID, version string) bool {
	return a.GroupID == groupID && a.ArtifactID == artifactID && a.Version == version
}

// Extension returns the file extension used to store artifacts of this type
func (a ArtifactReference) Extension() string {
	return ExtensionForType(a.Type)
}

// IsSnapshot reports whether the version is a SNAPSHOT version
func (a ArtifactReference) IsSnapshot() bool {
	return IsSnapshotVersion(a.Version)
}

func (a ArtifactReference) String() string {
	s := a.Coordinate()
	if a.Classifier != "" {
		s += ":" + a.Classifier
	}
	if a.Type != "" {
		s += ":" + a.Type
	}
	return s
}

// Coordinate joins the parts of a GAV with colons
func Coordinate(groupID, artifactID, version string) string {
	return fmt.Sprintf("%s:%s:%s", groupID, artifactID, version)
}

// SnapshotQualifier is the version suffix of an unreleased version
const SnapshotQualifier = "SNAPSHOT"

var timestampedSnapshot = regexp.MustCompile(`^(.*)-([0-9]{8}\.[0-9]{6})-([0-9]+)$`)

// IsSnapshotVersion reports whether version denotes a snapshot, either
// as -SNAPSHOT or as a deployed timestamped snapshot
func IsSnapshotVersion(version string) bool {
	if version == SnapshotQualifier || strings.HasSuffix(version, "-"+SnapshotQualifier) {
		return true
	}
	return timestampedSnapshot.MatchString(version)
}

// IsTimestampedSnapshot reports whether version looks like 1.0-20240101.120000-1
func IsTimestampedSnapshot(version string) bool {
	return timestampedSnapshot.MatchString(version)
}

// BaseVersion returns the directory version of a version: timestamped
// snapshots map back to their -SNAPSHOT form, everything else is unchanged
func BaseVersion(version string) string {
	if m := timestampedSnapshot.FindStringSubmatch(version); m != nil {
		return m[1] + "-" + SnapshotQualifier
	}
	return version
}

// BaseVersion returns the version of the directory the artifact lives in
func (a ArtifactReference) BaseVersion() string {
	return BaseVersion(a.Version)
}

var typeExtensions = map[string]string{
	"maven-plugin":     "jar",
	"ejb":              "jar",
	"ejb-client":       "jar",
	"test-jar":         "jar",
	"java-source":      "jar",
	"javadoc":          "jar",
	"bundle":           "jar",
	"distribution-tgz": "tar.gz",
	"distribution-zip": "zip",
}

// ExtensionForType maps a Maven artifact type to the extension it is stored with
func ExtensionForType(artifactType string) string {
	if artifactType == "" {
		return DefaultPackaging
	}
	if ext, ok := typeExtensions[artifactType]; ok {
		return ext
	}
	return artifactType
}
