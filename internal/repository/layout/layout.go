package layout

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/RhmnKpc/archiva/internal/repository"
	"github.com/RhmnKpc/archiva/internal/storage"
	"github.com/RhmnKpc/archiva/pkg/types"
)

// Layout names understood by the provider
const (
	Default = "default"
	Legacy  = "legacy"
)

const metadataFile = "maven-metadata.xml"

// pathTranslator converts between artifact references and repository paths
// for one layout
type pathTranslator interface {
	name() string
	toPath(ref types.ArtifactReference) string
	toArtifactReference(p string) (types.ArtifactReference, error)
	versions(ctx context.Context, blobs storage.BlobStorage, groupID, artifactID string) ([]string, error)
	deleteVersion(ctx context.Context, blobs storage.BlobStorage, groupID, artifactID, version string) error
}

// Provider creates content handlers for the supported layouts
type Provider struct {
	storage *storage.StorageFactory
}

// NewProvider creates a provider whose managed content opens storage
// through sf
func NewProvider(sf *storage.StorageFactory) *Provider {
	return &Provider{storage: sf}
}

func translatorFor(layout string) (pathTranslator, error) {
	switch layout {
	case Default:
		return defaultLayout{}, nil
	case Legacy:
		return legacyLayout{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", repository.ErrUnsupportedLayout, layout)
	}
}

// NewManagedContent returns an unbound managed content handler
func (p *Provider) NewManagedContent(layout string) (repository.ManagedRepositoryContent, error) {
	t, err := translatorFor(layout)
	if err != nil {
		return nil, err
	}
	return &ManagedContent{translator: t, storage: p.storage}, nil
}

// NewRemoteContent returns an unbound remote content handler
func (p *Provider) NewRemoteContent(layout string) (repository.RemoteRepositoryContent, error) {
	t, err := translatorFor(layout)
	if err != nil {
		return nil, err
	}
	return &RemoteContent{translator: t}, nil
}

// isArtifactPath rejects metadata, checksum and signature files
func isArtifactPath(p string) bool {
	base := path.Base(p)
	if strings.HasPrefix(base, "maven-metadata") {
		return false
	}
	for _, ext := range []string{".sha1", ".sha256", ".sha512", ".md5", ".asc"} {
		if strings.HasSuffix(base, ext) {
			return false
		}
	}
	return true
}

// splitExtension splits a file name into its stem and extension
func splitExtension(name string) (string, string) {
	for _, ext := range []string{".tar.gz", ".tar.bz2"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext), ext[1:]
		}
	}
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// typeFor derives the artifact type from the stored extension and classifier
func typeFor(ext, classifier string) string {
	if ext == "jar" {
		switch classifier {
		case "sources":
			return "java-source"
		case "javadoc":
			return "javadoc"
		case "tests":
			return "test-jar"
		case "client":
			return "ejb-client"
		}
	}
	switch ext {
	case "tar.gz":
		return "distribution-tgz"
	}
	return ext
}

// classifierFor returns the classifier implied by a type, if any
func classifierFor(artifactType string) string {
	switch artifactType {
	case "java-source":
		return "sources"
	case "javadoc":
		return "javadoc"
	case "test-jar":
		return "tests"
	case "ejb-client":
		return "client"
	}
	return ""
}

// newReference builds a reference from parsed path parts. A classifier
// implied by the derived type is not repeated on the reference.
func newReference(groupID, artifactID, version, classifier, ext string) types.ArtifactReference {
	artifactType := typeFor(ext, classifier)
	if classifierFor(artifactType) == classifier {
		classifier = ""
	}
	return types.ArtifactReference{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Version:    version,
		Classifier: classifier,
		Type:       artifactType,
	}
}

func invalidPath(p, reason string) error {
	return fmt.Errorf("%w: %s: %s", repository.ErrInvalidPath, p, reason)
}

func fileName(ref types.ArtifactReference) string {
	var b strings.Builder
	b.WriteString(ref.ArtifactID)
	b.WriteString("-")
	b.WriteString(ref.Version)
	classifier := ref.Classifier
	if classifier == "" {
		classifier = classifierFor(ref.Type)
	}
	if classifier != "" {
		b.WriteString("-")
		b.WriteString(classifier)
	}
	b.WriteString(".")
	b.WriteString(ref.Extension())
	return b.String()
}
