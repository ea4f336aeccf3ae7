package types

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ProjectModel is the subset of a POM the index and database care about
type ProjectModel struct {
	GroupID       string       `json:"groupId" xml:"groupId"`
	ArtifactID    string       `json:"artifactId" xml:"artifactId"`
	Version       string       `json:"version" xml:"version"`
	Packaging     string       `json:"packaging,omitempty" xml:"packaging"`
	Name          string       `json:"name,omitempty" xml:"name"`
	Description   string       `json:"description,omitempty" xml:"description"`
	URL           string       `json:"url,omitempty" xml:"url"`
	Parent        *Parent      `json:"parent,omitempty" xml:"parent"`
	Dependencies  []Dependency `json:"dependencies,omitempty" xml:"dependencies>dependency"`
	BuildPlugins  []Plugin     `json:"buildPlugins,omitempty" xml:"build>plugins>plugin"`
	ReportPlugins []Plugin     `json:"reportPlugins,omitempty" xml:"reporting>plugins>plugin"`
	Licenses      []License    `json:"licenses,omitempty" xml:"licenses>license"`
}

// Parent is a POM parent reference
type Parent struct {
	GroupID    string `json:"groupId" xml:"groupId"`
	ArtifactID string `json:"artifactId" xml:"artifactId"`
	Version    string `json:"version" xml:"version"`
}

// Dependency is a declared project dependency
type Dependency struct {
	GroupID    string `json:"groupId" xml:"groupId"`
	ArtifactID string `json:"artifactId" xml:"artifactId"`
	Version    string `json:"version,omitempty" xml:"version"`
	Scope      string `json:"scope,omitempty" xml:"scope"`
	Type       string `json:"type,omitempty" xml:"type"`
	Optional   bool   `json:"optional,omitempty" xml:"optional"`
}

// Plugin is a build or reporting plugin declaration
type Plugin struct {
	GroupID    string `json:"groupId" xml:"groupId"`
	ArtifactID string `json:"artifactId" xml:"artifactId"`
	Version    string `json:"version,omitempty" xml:"version"`
}

// License is a declared project license
type License struct {
	Name string `json:"name,omitempty" xml:"name"`
	URL  string `json:"url,omitempty" xml:"url"`
}

// EffectivePackaging returns the declared packaging or jar
func (m *ProjectModel) EffectivePackaging() string {
	if m.Packaging == "" {
		return DefaultPackaging
	}
	return m.Packaging
}

// Reference returns the artifact reference of the model's main artifact
func (m *ProjectModel) Reference() ArtifactReference {
	return NewArtifactReference(m.GroupID, m.ArtifactID, m.Version, m.EffectivePackaging())
}

// DependencyIDs returns each dependency as a groupId:artifactId:version string
func (m *ProjectModel) DependencyIDs() []string {
	ids := make([]string, 0, len(m.Dependencies))
	for _, d := range m.Dependencies {
		ids = append(ids, Coordinate(d.GroupID, d.ArtifactID, d.Version))
	}
	return ids
}

// BuildPluginIDs returns each build plugin as a groupId:artifactId:version string
func (m *ProjectModel) BuildPluginIDs() []string {
	return pluginIDs(m.BuildPlugins)
}

// ReportPluginIDs returns each report plugin as a groupId:artifactId:version string
func (m *ProjectModel) ReportPluginIDs() []string {
	return pluginIDs(m.ReportPlugins)
}

// LicenseURLs returns the URL of every declared license that has one
func (m *ProjectModel) LicenseURLs() []string {
	urls := make([]string, 0, len(m.Licenses))
	for _, l := range m.Licenses {
		if l.URL != "" {
			urls = append(urls, l.URL)
		}
	}
	return urls
}

func pluginIDs(plugins []Plugin) []string {
	ids := make([]string, 0, len(plugins))
	for _, p := range plugins {
		groupID := p.GroupID
		// Maven's implicit plugin group
		if groupID == "" {
			groupID = "org.apache.maven.plugins"
		}
		ids = append(ids, Coordinate(groupID, p.ArtifactID, p.Version))
	}
	return ids
}

// ParsePOM reads a project model from POM XML. groupId and version are
// inherited from the parent when the POM omits them.
func ParsePOM(r io.Reader) (*ProjectModel, error) {
	var model ProjectModel
	decoder := xml.NewDecoder(r)
	decoder.Strict = false
	decoder.Entity = xml.HTMLEntity
	if err := decoder.Decode(&model); err != nil {
		return nil, fmt.Errorf("failed to parse POM: %w", err)
	}

	if model.Parent != nil {
		if model.GroupID == "" {
			model.GroupID = model.Parent.GroupID
		}
		if model.Version == "" {
			model.Version = model.Parent.Version
		}
	}

	model.GroupID = strings.TrimSpace(model.GroupID)
	model.ArtifactID = strings.TrimSpace(model.ArtifactID)
	model.Version = strings.TrimSpace(model.Version)
	model.Packaging = strings.TrimSpace(model.Packaging)

	if model.GroupID == "" || model.ArtifactID == "" || model.Version == "" {
		return nil, fmt.Errorf("incomplete POM coordinate %s", Coordinate(model.GroupID, model.ArtifactID, model.Version))
	}

	return &model, nil
}
