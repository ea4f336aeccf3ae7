package layout

import (
	"context"
	"errors"
	"path"
	"strings"
	"unicode"

	"github.com/RhmnKpc/archiva/internal/repository"
	"github.com/RhmnKpc/archiva/internal/storage"
	"github.com/RhmnKpc/archiva/pkg/types"
	"github.com/RhmnKpc/archiva/pkg/utils"
)

// legacyLayout is the Maven 1 layout:
// groupId/<type>s/artifactId-version[-classifier].ext
type legacyLayout struct{}

var legacyTypeDirs = map[string]string{
	"ejb-client":       "ejbs",
	"distribution-tgz": "distributions",
	"distribution-zip": "distributions",
	"java-source":      "java-sources",
	"javadoc":          "javadoc.jars",
}

func (legacyLayout) name() string { return Legacy }

func typeDir(artifactType string) string {
	if dir, ok := legacyTypeDirs[artifactType]; ok {
		return dir
	}
	return artifactType + "s"
}

func (legacyLayout) toPath(ref types.ArtifactReference) string {
	return ref.GroupID + "/" + typeDir(ref.Type) + "/" + fileName(ref)
}

func (legacyLayout) toArtifactReference(p string) (types.ArtifactReference, error) {
	clean := strings.Trim(path.Clean("/"+p), "/")
	if !isArtifactPath(clean) {
		return types.ArtifactReference{}, invalidPath(p, "not an artifact")
	}
	parts := strings.Split(clean, "/")
	if len(parts) != 3 {
		return types.ArtifactReference{}, invalidPath(p, "expected group/type/file")
	}
	groupID, dir, file := parts[0], parts[1], parts[2]
	if !strings.HasSuffix(dir, "s") {
		return types.ArtifactReference{}, invalidPath(p, "type directory must end in s")
	}

	stem, ext := splitExtension(file)
	if ext == "" {
		return types.ArtifactReference{}, invalidPath(p, "missing extension")
	}
	artifactID, version, ok := splitLegacyName(stem)
	if !ok {
		return types.ArtifactReference{}, invalidPath(p, "cannot find version in file name")
	}

	classifier := ""
	switch dir {
	case "java-sources":
		version, classifier = cutClassifier(version, "sources")
	case "javadoc.jars":
		version, classifier = cutClassifier(version, "javadoc")
	case "ejbs":
		version, classifier = cutClassifier(version, "client")
	}

	ref := newReference(groupID, artifactID, version, classifier, ext)
	if dir == "distributions" && ref.Type == "zip" {
		ref.Type = "distribution-zip"
	}
	if typeDir(ref.Type) != dir {
		// plain types are named after their directory
		ref.Type = strings.TrimSuffix(dir, "s")
	}
	return ref, nil
}

// splitLegacyName splits artifactId-version at the first dash followed by a
// digit
func splitLegacyName(stem string) (artifactID, version string, ok bool) {
	for i := 0; i < len(stem)-1; i++ {
		if stem[i] == '-' && unicode.IsDigit(rune(stem[i+1])) {
			return stem[:i], stem[i+1:], i > 0
		}
	}
	return "", "", false
}

func cutClassifier(version, classifier string) (string, string) {
	if v, ok := strings.CutSuffix(version, "-"+classifier); ok {
		return v, classifier
	}
	return version, ""
}

// projectFiles returns the references of all artifacts of a project
func (l legacyLayout) projectFiles(ctx context.Context, blobs storage.BlobStorage, groupID, artifactID string) (map[string]types.ArtifactReference, error) {
	files, err := blobs.List(ctx, groupID)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]types.ArtifactReference)
	for _, f := range files {
		ref, err := l.toArtifactReference(f)
		if err != nil {
			if errors.Is(err, repository.ErrInvalidPath) {
				continue
			}
			return nil, err
		}
		if ref.GroupID == groupID && ref.ArtifactID == artifactID {
			refs[f] = ref
		}
	}
	return refs, nil
}

func (l legacyLayout) versions(ctx context.Context, blobs storage.BlobStorage, groupID, artifactID string) ([]string, error) {
	refs, err := l.projectFiles(ctx, blobs, groupID, artifactID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var versions []string
	for _, ref := range refs {
		if v := ref.BaseVersion(); !seen[v] {
			seen[v] = true
			versions = append(versions, v)
		}
	}
	return utils.SortVersions(versions), nil
}

func (l legacyLayout) deleteVersion(ctx context.Context, blobs storage.BlobStorage, groupID, artifactID, version string) error {
	refs, err := l.projectFiles(ctx, blobs, groupID, artifactID)
	if err != nil {
		return err
	}
	base := types.BaseVersion(version)
	for p, ref := range refs {
		if ref.BaseVersion() != base {
			continue
		}
		if err := blobs.Delete(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
