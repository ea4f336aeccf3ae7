package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RhmnKpc/archiva/pkg/types"
)

func newTestIndex(t *testing.T) *RepositoryIndex {
	t.Helper()
	idx, err := NewMemIndex("internal", 0)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func populate(t *testing.T, idx *RepositoryIndex) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, idx.IndexArtifact(ctx, &ArtifactRecord{
		Artifact:  types.NewArtifactReference("com.example", "foo", "1.0", "jar"),
		Name:      "foo-1.0.jar",
		Classes:   "com.example.Foo\ncom.example.internal.Helper",
		Packages:  "com.example\ncom.example.internal",
		Files:     "META-INF/MANIFEST.MF\ncom/example/Foo.class",
		Packaging: "jar",
		SHA1:      "ABCDEF0123",
		MD5:       "99aa",
	}))
	require.NoError(t, idx.IndexModel(ctx, &types.ProjectModel{
		GroupID:      "org.example",
		ArtifactID:   "webapp",
		Version:      "2.0",
		Packaging:    "war",
		Name:         "Example Web Application",
		Dependencies: []types.Dependency{{GroupID: "junit", ArtifactID: "junit", Version: "4.13.2"}},
		Licenses:     []types.License{{URL: "https://www.apache.org/licenses/LICENSE-2.0"}},
	}))
	require.NoError(t, idx.IndexModel(ctx, &types.ProjectModel{
		GroupID:    "org.example",
		ArtifactID: "core",
		Version:    "2.0",
	}))
	require.NoError(t, idx.IndexMetadata(ctx, &types.RepositoryMetadata{
		GroupID:    "org.example",
		ArtifactID: "core",
		Versions:   []string{"1.0", "2.0"},
	}))
}

func hitIDs(hits []Hit) []string {
	var ids []string
	for _, h := range hits {
		switch h.Kind {
		case HitArtifact:
			ids = append(ids, "artifact:"+h.Artifact.Artifact.Coordinate())
		case HitModel:
			ids = append(ids, "model:"+h.Model.Reference().Coordinate())
		case HitMetadata:
			ids = append(ids, "metadata:"+h.Metadata.GroupID+":"+h.Metadata.ArtifactID)
		}
	}
	return ids
}

func TestRepositoryIndex_Search(t *testing.T) {
	idx := newTestIndex(t)
	populate(t, idx)

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{
			name:  "class substring ignores case",
			query: SinglePhraseQuery{Field: FieldClasses, Value: "example.FOO"},
			want:  []string{"artifact:com.example:foo:1.0"},
		},
		{
			name:  "checksum substring",
			query: SinglePhraseQuery{Field: FieldSHA1, Value: "cdef01"},
			want:  []string{"artifact:com.example:foo:1.0"},
		},
		{
			name:  "regexp characters are literal",
			query: SinglePhraseQuery{Field: FieldPackages, Value: "com.example.*"},
			want:  nil,
		},
		{
			name:  "dependency needs the full coordinate",
			query: SinglePhraseQuery{Field: FieldDependencies, Value: "JUnit:junit:4.13.2"},
			want:  []string{"model:org.example:webapp:2.0"},
		},
		{
			name:  "partial dependency does not match",
			query: SinglePhraseQuery{Field: FieldDependencies, Value: "junit"},
			want:  nil,
		},
		{
			name:  "name phrase",
			query: SinglePhraseQuery{Field: FieldName, Value: "web application"},
			want:  []string{"model:org.example:webapp:2.0"},
		},
		{
			name:  "default packaging is indexed",
			query: SinglePhraseQuery{Field: FieldPackaging, Value: "jar"},
			want:  []string{"artifact:com.example:foo:1.0", "model:org.example:core:2.0"},
		},
		{
			name: "and",
			query: NewCompoundQuery().
				And(SinglePhraseQuery{Field: FieldGroupID, Value: "org.example"}).
				And(SinglePhraseQuery{Field: FieldPackaging, Value: "war"}),
			want: []string{"model:org.example:webapp:2.0"},
		},
		{
			name: "not",
			query: NewCompoundQuery().
				And(SinglePhraseQuery{Field: FieldGroupID, Value: "org.example"}).
				Not(SinglePhraseQuery{Field: FieldArtifactID, Value: "core"}),
			want: []string{"model:org.example:webapp:2.0"},
		},
		{
			name:  "not alone",
			query: NewCompoundQuery().Not(SinglePhraseQuery{Field: FieldGroupID, Value: "org.example"}),
			want:  []string{"artifact:com.example:foo:1.0"},
		},
		{
			name: "or",
			query: NewCompoundQuery().
				Or(SinglePhraseQuery{Field: FieldMD5, Value: "99aa"}).
				Or(SinglePhraseQuery{Field: FieldPackaging, Value: "war"}),
			want: []string{"artifact:com.example:foo:1.0", "model:org.example:webapp:2.0"},
		},
		{
			name:  "empty compound",
			query: NewCompoundQuery(),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := idx.Search(context.Background(), tt.query)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, hits)
				return
			}
			assert.ElementsMatch(t, tt.want, hitIDs(hits))
		})
	}
}

func TestRepositoryIndex_MetadataHits(t *testing.T) {
	idx := newTestIndex(t)
	populate(t, idx)

	hits, err := idx.Search(context.Background(), SinglePhraseQuery{Field: FieldArtifactID, Value: "core"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"model:org.example:core:2.0", "metadata:org.example:core"}, hitIDs(hits))

	for _, h := range hits {
		if h.Kind == HitMetadata {
			assert.Equal(t, []string{"1.0", "2.0"}, h.Metadata.Versions)
		}
	}
}

func TestRepositoryIndex_StoredRecordRoundTrip(t *testing.T) {
	idx := newTestIndex(t)
	record := &ArtifactRecord{
		Artifact: types.ArtifactReference{GroupID: "g", ArtifactID: "a", Version: "1.0", Classifier: "sources", Type: "java-source"},
		Classes:  "com.x.A",
		SHA1:     "ff",
	}
	require.NoError(t, idx.IndexArtifact(context.Background(), record))

	hits, err := idx.Search(context.Background(), SinglePhraseQuery{Field: FieldSHA1, Value: "ff"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, HitArtifact, hits[0].Kind)
	assert.Equal(t, record, hits[0].Artifact)
}

func TestRepositoryIndex_Delete(t *testing.T) {
	idx := newTestIndex(t)
	populate(t, idx)

	require.NoError(t, idx.DeleteArtifact(types.NewArtifactReference("com.example", "foo", "1.0", "jar")))
	require.NoError(t, idx.DeleteModel("org.example", "webapp", "2.0"))

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	hits, err := idx.Search(context.Background(), SinglePhraseQuery{Field: FieldClasses, Value: "foo"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRepositoryIndex_ReindexReplaces(t *testing.T) {
	idx := newTestIndex(t)
	ref := types.NewArtifactReference("g", "a", "1.0", "jar")
	require.NoError(t, idx.IndexArtifact(context.Background(), &ArtifactRecord{Artifact: ref, SHA1: "old"}))
	require.NoError(t, idx.IndexArtifact(context.Background(), &ArtifactRecord{Artifact: ref, SHA1: "new"}))

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	hits, err := idx.Search(context.Background(), SinglePhraseQuery{Field: FieldSHA1, Value: "old"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRepositoryIndex_MaxHits(t *testing.T) {
	idx, err := NewMemIndex("internal", 2)
	require.NoError(t, err)
	defer idx.Close()

	for _, v := range []string{"1.0", "1.1", "1.2"} {
		require.NoError(t, idx.IndexArtifact(context.Background(), &ArtifactRecord{
			Artifact: types.NewArtifactReference("g", "a", v, "jar"),
			MD5:      "abc",
		}))
	}

	hits, err := idx.Search(context.Background(), SinglePhraseQuery{Field: FieldMD5, Value: "abc"})
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestRepositoryIndex_Closed(t *testing.T) {
	idx, err := NewMemIndex("internal", 0)
	require.NoError(t, err)
	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	_, err = idx.Search(context.Background(), SinglePhraseQuery{Field: FieldMD5, Value: "abc"})
	assert.Error(t, err)
	assert.Error(t, idx.IndexArtifact(context.Background(), &ArtifactRecord{}))
}

func TestRepositoryIndex_UnsupportedQuery(t *testing.T) {
	idx := newTestIndex(t)
	_, err := idx.Search(context.Background(), nil)
	assert.Error(t, err)
}

func TestSearchLayerOnIndex(t *testing.T) {
	idx := newTestIndex(t)
	populate(t, idx)
	layer := NewSearchLayer(idx, 0)

	results, err := layer.SearchGeneral(context.Background(), "abcdef")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "com.example:foo:1.0", results[0].Artifact.Coordinate())
	assert.Equal(t, map[string]FieldValue{FieldSHA1: ScalarValue("ABCDEF0123")}, results[0].Fields)

	results, err = layer.SearchGeneral(context.Background(), "junit:junit:4.13.2")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ListValue([]string{"junit:junit:4.13.2"}), results[0].Fields[FieldDependencies])

	results, err = layer.SearchGeneral(context.Background(), "Helper")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ListValue([]string{"com.example.internal.Helper"}), results[0].Fields[FieldClasses])
}
