package layout

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RhmnKpc/archiva/internal/repository"
	"github.com/RhmnKpc/archiva/internal/storage"
	"github.com/RhmnKpc/archiva/pkg/config"
	"github.com/RhmnKpc/archiva/pkg/types"
)

func TestDefaultLayout_ToPath(t *testing.T) {
	tests := []struct {
		name string
		ref  types.ArtifactReference
		want string
	}{
		{
			name: "jar",
			ref:  types.NewArtifactReference("org.apache.commons", "commons-lang3", "3.12.0", "jar"),
			want: "org/apache/commons/commons-lang3/3.12.0/commons-lang3-3.12.0.jar",
		},
		{
			name: "pom",
			ref:  types.NewArtifactReference("com.example", "app", "1.0", "pom"),
			want: "com/example/app/1.0/app-1.0.pom",
		},
		{
			name: "sources",
			ref:  types.NewArtifactReference("com.example", "app", "1.0", "java-source"),
			want: "com/example/app/1.0/app-1.0-sources.jar",
		},
		{
			name: "explicit classifier",
			ref:  types.ArtifactReference{GroupID: "com.example", ArtifactID: "app", Version: "1.0", Classifier: "linux", Type: "zip"},
			want: "com/example/app/1.0/app-1.0-linux.zip",
		},
		{
			name: "timestamped snapshot",
			ref:  types.NewArtifactReference("com.example", "app", "1.0-20240101.120000-3", "jar"),
			want: "com/example/app/1.0-SNAPSHOT/app-1.0-20240101.120000-3.jar",
		},
		{
			name: "maven plugin",
			ref:  types.NewArtifactReference("org.apache.maven.plugins", "maven-jar-plugin", "3.3.0", "maven-plugin"),
			want: "org/apache/maven/plugins/maven-jar-plugin/3.3.0/maven-jar-plugin-3.3.0.jar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, defaultLayout{}.toPath(tt.ref))
		})
	}
}

func TestDefaultLayout_ToArtifactReference(t *testing.T) {
	tests := []struct {
		path string
		want types.ArtifactReference
	}{
		{
			path: "org/apache/commons/commons-lang3/3.12.0/commons-lang3-3.12.0.jar",
			want: types.ArtifactReference{GroupID: "org.apache.commons", ArtifactID: "commons-lang3", Version: "3.12.0", Type: "jar"},
		},
		{
			path: "/com/example/app/1.0-SNAPSHOT/app-1.0-SNAPSHOT.pom",
			want: types.ArtifactReference{GroupID: "com.example", ArtifactID: "app", Version: "1.0-SNAPSHOT", Type: "pom"},
		},
		{
			path: "com/example/app/1.0-SNAPSHOT/app-1.0-20240101.120000-3-javadoc.jar",
			want: types.ArtifactReference{GroupID: "com.example", ArtifactID: "app", Version: "1.0-20240101.120000-3", Type: "javadoc"},
		},
		{
			path: "com/example/app/2.1/app-2.1-bin.tar.gz",
			want: types.ArtifactReference{GroupID: "com.example", ArtifactID: "app", Version: "2.1", Classifier: "bin", Type: "distribution-tgz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := defaultLayout{}.toArtifactReference(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultLayout_InvalidPaths(t *testing.T) {
	paths := []string{
		"app-1.0.jar",
		"com/example/app/maven-metadata.xml",
		"com/example/app/1.0/app-1.0.jar.sha1",
		"com/example/app/1.0/other-1.0.jar",
		"com/example/app/1.0/app-2.0.jar",
		"com/example/app/1.0/app-1.0",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			_, err := defaultLayout{}.toArtifactReference(p)
			assert.ErrorIs(t, err, repository.ErrInvalidPath)
		})
	}
}

func TestLayouts_RoundTrip(t *testing.T) {
	refs := []types.ArtifactReference{
		types.NewArtifactReference("org.example", "lib", "1.0", "jar"),
		types.NewArtifactReference("org.example", "lib", "1.0", "pom"),
		types.NewArtifactReference("org.example", "lib", "2.0-SNAPSHOT", "war"),
		types.NewArtifactReference("org.example", "lib", "1.0", "java-source"),
		types.NewArtifactReference("org.example", "lib", "1.0", "javadoc"),
		types.NewArtifactReference("org.example", "lib", "1.0", "ejb-client"),
		types.NewArtifactReference("org.example", "lib", "1.0", "distribution-tgz"),
		types.NewArtifactReference("org.example", "lib", "1.0", "distribution-zip"),
	}

	for _, translator := range []pathTranslator{defaultLayout{}, legacyLayout{}} {
		for _, ref := range refs {
			t.Run(translator.name()+"/"+ref.String(), func(t *testing.T) {
				if translator.name() == Default && ref.Type == "distribution-zip" {
					t.Skip("zip files map back to the zip type in the default layout")
				}
				got, err := translator.toArtifactReference(translator.toPath(ref))
				require.NoError(t, err)
				assert.Equal(t, ref, got)
			})
		}
	}
}

func TestLegacyLayout(t *testing.T) {
	l := legacyLayout{}

	ref := types.NewArtifactReference("commons-lang", "commons-lang", "2.1", "jar")
	assert.Equal(t, "commons-lang/jars/commons-lang-2.1.jar", l.toPath(ref))

	got, err := l.toArtifactReference("org.apache.maven/maven-plugins/maven-foo-plugin-1.0.jar")
	require.NoError(t, err)
	assert.Equal(t, types.ArtifactReference{GroupID: "org.apache.maven", ArtifactID: "maven-foo-plugin", Version: "1.0", Type: "maven-plugin"}, got)

	for _, p := range []string{"commons-lang/commons-lang-2.1.jar", "g/jar/a-1.0.jar", "g/jars/noversion.jar", "g/jars/-1.0.jar"} {
		_, err := l.toArtifactReference(p)
		assert.ErrorIs(t, err, repository.ErrInvalidPath, p)
	}
}

func TestProvider_UnsupportedLayout(t *testing.T) {
	p := NewProvider(storage.NewStorageFactory(&config.StorageConfig{Type: "local"}))

	_, err := p.NewManagedContent("p2")
	assert.ErrorIs(t, err, repository.ErrUnsupportedLayout)
	_, err = p.NewRemoteContent("")
	assert.ErrorIs(t, err, repository.ErrUnsupportedLayout)

	content, err := p.NewManagedContent(Legacy)
	require.NoError(t, err)
	assert.Equal(t, Legacy, content.Layout())
	assert.Empty(t, content.ID())
}

func newBoundContent(t *testing.T, layout string) (*ManagedContent, *repository.Managed) {
	t.Helper()
	p := NewProvider(storage.NewStorageFactory(&config.StorageConfig{Type: "local"}))
	c, err := p.NewManagedContent(layout)
	require.NoError(t, err)
	repo := repository.NewManaged(config.ManagedRepositoryConfig{ID: "internal", Layout: layout, Location: t.TempDir()})
	c.SetRepository(repo)
	return c.(*ManagedContent), repo
}

func store(t *testing.T, c *ManagedContent, ref types.ArtifactReference) {
	t.Helper()
	require.NoError(t, c.Store(context.Background(), c.ToPath(ref), strings.NewReader(ref.String())))
}

func TestManagedContent_StoreAndRetrieve(t *testing.T) {
	ctx := context.Background()
	c, _ := newBoundContent(t, Default)
	ref := types.NewArtifactReference("com.example", "app", "1.0", "jar")

	has, err := c.HasContent(ctx, ref)
	require.NoError(t, err)
	assert.False(t, has)

	store(t, c, ref)

	has, err = c.HasContent(ctx, ref)
	require.NoError(t, err)
	assert.True(t, has)

	rc, err := c.Retrieve(ctx, "com/example/app/1.0/app-1.0.jar")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, ref.String(), string(data))

	files, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"com/example/app/1.0/app-1.0.jar"}, files)

	_, err = c.Retrieve(ctx, "com/example/app/2.0/app-2.0.jar")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestManagedContent_VersionsAndDelete(t *testing.T) {
	for _, layout := range []string{Default, Legacy} {
		t.Run(layout, func(t *testing.T) {
			ctx := context.Background()
			c, _ := newBoundContent(t, layout)
			for _, v := range []string{"1.0", "1.10", "1.2", "2.0-SNAPSHOT"} {
				store(t, c, types.NewArtifactReference("com.example", "app", v, "jar"))
				store(t, c, types.NewArtifactReference("com.example", "app", v, "pom"))
			}
			store(t, c, types.NewArtifactReference("com.example", "other", "9.0", "jar"))

			versions, err := c.Versions(ctx, "com.example", "app")
			require.NoError(t, err)
			assert.Equal(t, []string{"2.0-SNAPSHOT", "1.10", "1.2", "1.0"}, versions)

			require.NoError(t, c.DeleteVersion(ctx, "com.example", "app", "1.2"))

			versions, err = c.Versions(ctx, "com.example", "app")
			require.NoError(t, err)
			assert.Equal(t, []string{"2.0-SNAPSHOT", "1.10", "1.0"}, versions)

			has, err := c.HasContent(ctx, types.NewArtifactReference("com.example", "other", "9.0", "jar"))
			require.NoError(t, err)
			assert.True(t, has)
		})
	}
}

func TestManagedContent_Detached(t *testing.T) {
	ctx := context.Background()
	c, _ := newBoundContent(t, Default)
	c.SetRepository(nil)

	_, err := c.List(ctx)
	assert.ErrorIs(t, err, repository.ErrContentDetached)
	err = c.Store(ctx, "a/b/1/b-1.jar", strings.NewReader("x"))
	assert.ErrorIs(t, err, repository.ErrContentDetached)
	_, err = c.Versions(ctx, "a", "b")
	assert.ErrorIs(t, err, repository.ErrContentDetached)
}

func TestRemoteContent_ToURL(t *testing.T) {
	p := NewProvider(nil)
	c, err := p.NewRemoteContent(Default)
	require.NoError(t, err)

	ref := types.NewArtifactReference("junit", "junit", "4.13.2", "jar")
	_, err = c.ToURL(ref)
	assert.ErrorIs(t, err, repository.ErrContentDetached)

	c.SetRepository(repository.NewRemote(config.RemoteRepositoryConfig{ID: "central", URL: "https://repo1.maven.org/maven2/"}))
	u, err := c.ToURL(ref)
	require.NoError(t, err)
	assert.Equal(t, "https://repo1.maven.org/maven2/junit/junit/4.13.2/junit-4.13.2.jar", u)
	assert.Equal(t, "central", c.ID())
}
