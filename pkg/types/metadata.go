package types

import (
	"encoding/xml"
	"fmt"
	"io"
)

// RepositoryMetadata is the content of a maven-metadata.xml file
type RepositoryMetadata struct {
	GroupID     string   `json:"groupId" xml:"groupId"`
	ArtifactID  string   `json:"artifactId,omitempty" xml:"artifactId"`
	Version     string   `json:"version,omitempty" xml:"version"`
	Latest      string   `json:"latest,omitempty" xml:"versioning>latest"`
	Release     string   `json:"release,omitempty" xml:"versioning>release"`
	Versions    []string `json:"versions,omitempty" xml:"versioning>versions>version"`
	LastUpdated string   `json:"lastUpdated,omitempty" xml:"versioning>lastUpdated"`
}

// ParseMetadata reads repository metadata from maven-metadata.xml content
func ParseMetadata(r io.Reader) (*RepositoryMetadata, error) {
	var metadata RepositoryMetadata
	decoder := xml.NewDecoder(r)
	decoder.Strict = false
	decoder.Entity = xml.HTMLEntity
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to parse repository metadata: %w", err)
	}
	if metadata.GroupID == "" {
		return nil, fmt.Errorf("repository metadata has no groupId")
	}
	return &metadata, nil
}
