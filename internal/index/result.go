package index

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/RhmnKpc/archiva/pkg/types"
)

// FieldValue is a matched field value, either a scalar or a list
type FieldValue struct {
	Scalar string
	List   []string
	isList bool
}

// ScalarValue creates a single valued FieldValue
func ScalarValue(s string) FieldValue {
	return FieldValue{Scalar: s}
}

// ListValue creates a list valued FieldValue
func ListValue(values []string) FieldValue {
	return FieldValue{List: values, isList: true}
}

// IsList reports whether the value is a list
func (v FieldValue) IsList() bool { return v.isList }

// Values returns the list, or the scalar as a one element list when set
func (v FieldValue) Values() []string {
	if v.isList {
		return v.List
	}
	if v.Scalar == "" {
		return nil
	}
	return []string{v.Scalar}
}

// Text returns the scalar, or the list joined by newlines
func (v FieldValue) Text() string {
	if v.isList {
		return strings.Join(v.List, "\n")
	}
	return v.Scalar
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.isList {
		list := v.List
		if list == nil {
			list = []string{}
		}
		return json.Marshal(list)
	}
	return json.Marshal(v.Scalar)
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = ListValue(list)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("field value must be a string or a list of strings: %w", err)
	}
	*v = ScalarValue(s)
	return nil
}

// SearchResult is the merged match information of one artifact coordinate
type SearchResult struct {
	Artifact types.ArtifactReference `json:"artifact"`
	Fields   map[string]FieldValue   `json:"fields"`
}

// FieldNames returns the matched field names in sorted order
func (r SearchResult) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// accumulator collects the results of one search call. Taking a result
// removes it, putting it back appends, so the order reflects merge order.
type accumulator struct {
	results []SearchResult
}

// take removes and returns the result for the coordinate of ref, or a new
// empty result for ref
func (a *accumulator) take(ref types.ArtifactReference) SearchResult {
	for i, r := range a.results {
		if r.Artifact.SameCoordinate(ref.GroupID, ref.ArtifactID, ref.Version) {
			a.results = append(a.results[:i], a.results[i+1:]...)
			return r
		}
	}
	return SearchResult{Artifact: ref, Fields: make(map[string]FieldValue)}
}

func (a *accumulator) put(r SearchResult) {
	a.results = append(a.results, r)
}

func (a *accumulator) list() []SearchResult {
	if a.results == nil {
		return []SearchResult{}
	}
	return a.results
}

// mergeArtifact adds the artifact fields of a record. Fields already present
// for the coordinate are kept.
func (a *accumulator) mergeArtifact(record *ArtifactRecord) {
	result := a.take(record.Artifact)
	for _, field := range ArtifactFields {
		if existing, ok := result.Fields[field]; ok && existing.Text() != "" {
			continue
		}
		result.Fields[field] = ScalarValue(record.Field(field))
	}
	a.put(result)
}

// mergeModel adds the values of one model field for the model's coordinate
func (a *accumulator) mergeModel(model *types.ProjectModel, field string) {
	result := a.take(model.Reference())

	var values []string
	switch field {
	case FieldLicenseURLs:
		values = model.LicenseURLs()
	case FieldDependencies:
		values = model.DependencyIDs()
	case FieldBuildPlugins:
		values = model.BuildPluginIDs()
	case FieldReportPlugins:
		values = model.ReportPluginIDs()
	case FieldPackaging:
		result.Fields[FieldPackaging] = ScalarValue(model.EffectivePackaging())
	}
	if len(values) > 0 {
		result.Fields[field] = ListValue(values)
	}
	a.put(result)
}

// mergeMatch folds one field of a candidate result into the accumulator,
// keeping only the parts of the value that match keyword
func (a *accumulator) mergeMatch(candidate SearchResult, field, keyword string) {
	result := a.take(candidate.Artifact)
	value := candidate.Fields[field]
	lowerKeyword := strings.ToLower(keyword)

	switch {
	case isLineField(field):
		var matches []string
		for _, line := range Lines(value.Text()) {
			if strings.Contains(strings.ToLower(line), lowerKeyword) {
				matches = append(matches, line)
			}
		}
		if len(matches) > 0 {
			result.Fields[field] = ListValue(matches)
		}
	case isScalarField(field):
		if value.Scalar != "" {
			lower := strings.ToLower(value.Scalar)
			if lower == lowerKeyword || strings.Contains(lower, lowerKeyword) {
				result.Fields[field] = ScalarValue(value.Scalar)
			}
		}
	case isCanonicalField(field):
		var matches []string
		for _, v := range value.Values() {
			if strings.EqualFold(v, keyword) {
				matches = append(matches, v)
			}
		}
		if len(matches) > 0 {
			result.Fields[field] = ListValue(matches)
		}
	}
	a.put(result)
}
