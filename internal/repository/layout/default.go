package layout

import (
	"context"
	"path"
	"regexp"
	"strings"

	"github.com/RhmnKpc/archiva/internal/storage"
	"github.com/RhmnKpc/archiva/pkg/types"
	"github.com/RhmnKpc/archiva/pkg/utils"
)

// defaultLayout is the Maven 2 layout:
// group/path/artifactId/baseVersion/artifactId-version[-classifier].ext
type defaultLayout struct{}

func (defaultLayout) name() string { return Default }

func (defaultLayout) projectDir(groupID, artifactID string) string {
	return strings.ReplaceAll(groupID, ".", "/") + "/" + artifactID
}

func (l defaultLayout) toPath(ref types.ArtifactReference) string {
	return l.projectDir(ref.GroupID, ref.ArtifactID) + "/" + ref.BaseVersion() + "/" + fileName(ref)
}

func (defaultLayout) toArtifactReference(p string) (types.ArtifactReference, error) {
	clean := strings.Trim(path.Clean("/"+p), "/")
	if !isArtifactPath(clean) {
		return types.ArtifactReference{}, invalidPath(p, "not an artifact")
	}
	parts := strings.Split(clean, "/")
	if len(parts) < 4 {
		return types.ArtifactReference{}, invalidPath(p, "expected group/artifact/version/file")
	}

	n := len(parts)
	file, baseVersion, artifactID := parts[n-1], parts[n-2], parts[n-3]
	groupID := strings.Join(parts[:n-3], ".")

	prefix := artifactID + "-"
	if !strings.HasPrefix(file, prefix) {
		return types.ArtifactReference{}, invalidPath(p, "file name does not start with artifact id")
	}
	stem, ext := splitExtension(strings.TrimPrefix(file, prefix))
	if ext == "" {
		return types.ArtifactReference{}, invalidPath(p, "missing extension")
	}

	version, classifier, ok := splitVersion(stem, baseVersion)
	if !ok {
		return types.ArtifactReference{}, invalidPath(p, "file version does not match directory "+baseVersion)
	}

	return newReference(groupID, artifactID, version, classifier, ext), nil
}

var timestampBuild = regexp.MustCompile(`^([0-9]{8}\.[0-9]{6}-[0-9]+)(?:-(.+))?$`)

// splitVersion separates version and classifier in the part of a file name
// following the artifact id
func splitVersion(stem, baseVersion string) (version, classifier string, ok bool) {
	release := strings.TrimSuffix(baseVersion, types.SnapshotQualifier)
	if release != baseVersion && release != "" && strings.HasPrefix(stem, release) {
		if m := timestampBuild.FindStringSubmatch(strings.TrimPrefix(stem, release)); m != nil {
			return release + m[1], m[2], true
		}
	}
	if stem == baseVersion {
		return baseVersion, "", true
	}
	if strings.HasPrefix(stem, baseVersion+"-") {
		return baseVersion, strings.TrimPrefix(stem, baseVersion+"-"), true
	}
	return "", "", false
}

func (l defaultLayout) versions(ctx context.Context, blobs storage.BlobStorage, groupID, artifactID string) ([]string, error) {
	dirs, err := blobs.ListDirs(ctx, l.projectDir(groupID, artifactID))
	if err != nil {
		return nil, err
	}
	return utils.SortVersions(dirs), nil
}

func (l defaultLayout) deleteVersion(ctx context.Context, blobs storage.BlobStorage, groupID, artifactID, version string) error {
	return blobs.DeleteTree(ctx, l.projectDir(groupID, artifactID)+"/"+types.BaseVersion(version))
}
