package index

import (
	"encoding/json"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/RhmnKpc/archiva/pkg/types"
)

const (
	// IndexSuffix is appended to the repository id to name its index directory
	IndexSuffix = ".bleve"

	// LowercaseKeywordAnalyzer indexes a whole value as one lowercased term
	LowercaseKeywordAnalyzer = "lowercase_keyword"

	fieldDocType = "doctype"
	fieldSource  = "source"
)

// Document types stored in the doctype field
const (
	DocTypeArtifact = "artifact"
	DocTypeModel    = "model"
	DocTypeMetadata = "metadata"
)

// CreateIndexMapping creates the bleve mapping shared by artifact, model and
// metadata documents
func CreateIndexMapping() (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()
	err := indexMapping.AddCustomAnalyzer(LowercaseKeywordAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add custom analyzer: %w", err)
	}

	docMapping := bleve.NewDocumentMapping()

	docType := bleve.NewTextFieldMapping()
	docType.Analyzer = keyword.Name
	docType.IncludeInAll = false
	docMapping.AddFieldMappingsAt(fieldDocType, docType)

	for _, field := range Fields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = LowercaseKeywordAnalyzer
		fm.IncludeInAll = false
		if field == FieldName {
			fm.Analyzer = standard.Name
		}
		docMapping.AddFieldMappingsAt(field, fm)
	}

	// full record, stored for hit reconstruction only
	source := bleve.NewTextFieldMapping()
	source.Index = false
	source.Store = true
	source.IncludeInAll = false
	source.DocValues = false
	docMapping.AddFieldMappingsAt(fieldSource, source)

	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name
	return indexMapping, nil
}

// storedRecord is the JSON kept in the source field
type storedRecord struct {
	DocType  string                    `json:"doctype"`
	Artifact *ArtifactRecord           `json:"artifact,omitempty"`
	Model    *types.ProjectModel       `json:"model,omitempty"`
	Metadata *types.RepositoryMetadata `json:"metadata,omitempty"`
}

func (r storedRecord) hit() (Hit, error) {
	switch {
	case r.DocType == DocTypeArtifact && r.Artifact != nil:
		return ArtifactHit(r.Artifact), nil
	case r.DocType == DocTypeModel && r.Model != nil:
		return ModelHit(r.Model), nil
	case r.DocType == DocTypeMetadata && r.Metadata != nil:
		return MetadataHit(r.Metadata), nil
	}
	return Hit{}, fmt.Errorf("%w: stored %q record has no payload", ErrMalformedHit, r.DocType)
}

func withSource(doc map[string]interface{}, record storedRecord) (map[string]interface{}, error) {
	source, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s record: %w", record.DocType, err)
	}
	doc[fieldDocType] = record.DocType
	doc[fieldSource] = string(source)
	return doc, nil
}

func artifactDocID(ref types.ArtifactReference) string {
	return DocTypeArtifact + ":" + ref.String()
}

func modelDocID(groupID, artifactID, version string) string {
	return DocTypeModel + ":" + types.Coordinate(groupID, artifactID, version)
}

func metadataDocID(m *types.RepositoryMetadata) string {
	return DocTypeMetadata + ":" + types.Coordinate(m.GroupID, m.ArtifactID, m.Version)
}

func artifactDocument(r *ArtifactRecord) (map[string]interface{}, error) {
	doc := map[string]interface{}{
		FieldGroupID:    r.Artifact.GroupID,
		FieldArtifactID: r.Artifact.ArtifactID,
		FieldVersion:    r.Artifact.Version,
	}
	setString(doc, FieldName, r.Name)
	setString(doc, FieldPackaging, r.Packaging)
	setString(doc, FieldSHA1, r.SHA1)
	setString(doc, FieldMD5, r.MD5)
	setList(doc, FieldClasses, Lines(r.Classes))
	setList(doc, FieldPackages, Lines(r.Packages))
	setList(doc, FieldFiles, Lines(r.Files))
	return withSource(doc, storedRecord{DocType: DocTypeArtifact, Artifact: r})
}

func modelDocument(m *types.ProjectModel) (map[string]interface{}, error) {
	doc := map[string]interface{}{
		FieldGroupID:    m.GroupID,
		FieldArtifactID: m.ArtifactID,
		FieldVersion:    m.Version,
		FieldPackaging:  m.EffectivePackaging(),
	}
	setString(doc, FieldName, m.Name)
	setList(doc, FieldDependencies, m.DependencyIDs())
	setList(doc, FieldBuildPlugins, m.BuildPluginIDs())
	setList(doc, FieldReportPlugins, m.ReportPluginIDs())
	setList(doc, FieldLicenseURLs, m.LicenseURLs())
	return withSource(doc, storedRecord{DocType: DocTypeModel, Model: m})
}

func metadataDocument(m *types.RepositoryMetadata) (map[string]interface{}, error) {
	doc := map[string]interface{}{
		FieldGroupID: m.GroupID,
	}
	setString(doc, FieldArtifactID, m.ArtifactID)
	setString(doc, FieldVersion, m.Version)
	return withSource(doc, storedRecord{DocType: DocTypeMetadata, Metadata: m})
}

func setString(doc map[string]interface{}, field, value string) {
	if value != "" {
		doc[field] = value
	}
}

func setList(doc map[string]interface{}, field string, values []string) {
	if len(values) > 0 {
		doc[field] = values
	}
}
