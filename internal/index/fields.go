package index

// Index field names
const (
	FieldClasses       = "classes"
	FieldPackages      = "packages"
	FieldFiles         = "files"
	FieldPackaging     = "packaging"
	FieldSHA1          = "sha1"
	FieldMD5           = "md5"
	FieldDependencies  = "dependencies"
	FieldBuildPlugins  = "buildPlugins"
	FieldReportPlugins = "reportPlugins"
	FieldLicenseURLs   = "licenseUrls"
	FieldGroupID       = "groupId"
	FieldArtifactID    = "artifactId"
	FieldVersion       = "version"
	FieldName          = "name"
)

// Fields are the searchable fields a general search runs one query for,
// in query order
var Fields = []string{
	FieldGroupID,
	FieldArtifactID,
	FieldVersion,
	FieldName,
	FieldPackaging,
	FieldSHA1,
	FieldMD5,
	FieldClasses,
	FieldPackages,
	FieldFiles,
	FieldLicenseURLs,
	FieldDependencies,
	FieldBuildPlugins,
	FieldReportPlugins,
}

// ArtifactFields are copied from an artifact record into its search result
var ArtifactFields = []string{
	FieldClasses,
	FieldPackages,
	FieldFiles,
	FieldPackaging,
	FieldSHA1,
	FieldMD5,
}

// ModelFields are contributed by a project model hit, one merge per field
var ModelFields = []string{
	FieldPackaging,
	FieldLicenseURLs,
	FieldDependencies,
	FieldBuildPlugins,
	FieldReportPlugins,
}

// isLineField reports fields holding newline separated text
func isLineField(field string) bool {
	return field == FieldClasses || field == FieldPackages || field == FieldFiles
}

// isScalarField reports single valued fields matched by substring
func isScalarField(field string) bool {
	return field == FieldSHA1 || field == FieldMD5 || field == FieldPackaging
}

// isCanonicalField reports list fields of coordinates or URLs that only
// match on equality
func isCanonicalField(field string) bool {
	switch field {
	case FieldDependencies, FieldBuildPlugins, FieldReportPlugins, FieldLicenseURLs:
		return true
	}
	return false
}
