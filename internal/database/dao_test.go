package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RhmnKpc/archiva/pkg/types"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

func sampleModel() *types.ProjectModel {
	return &types.ProjectModel{
		GroupID:    "org.example",
		ArtifactID: "app",
		Version:    "1.0",
		Packaging:  "war",
		Name:       "Example",
		Parent:     &types.Parent{GroupID: "org.example", ArtifactID: "parent", Version: "3"},
		Dependencies: []types.Dependency{
			{GroupID: "junit", ArtifactID: "junit", Version: "4.13.2", Scope: "test"},
		},
		BuildPlugins: []types.Plugin{{ArtifactID: "maven-war-plugin", Version: "3.4.0"}},
		Licenses:     []types.License{{Name: "Apache-2.0", URL: "https://www.apache.org/licenses/LICENSE-2.0"}},
	}
}

func TestProjectModelDAO_SaveAndGet(t *testing.T) {
	dao := NewProjectModelDAO(setupTestDB(t))
	ctx := context.Background()

	saved, err := dao.Save(ctx, NewProjectModel(sampleModel()))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)

	got, err := dao.Get(ctx, "org.example", "app", "1.0")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, sampleModel(), got.Model())
}

func TestProjectModelDAO_SaveReplacesCoordinate(t *testing.T) {
	dao := NewProjectModelDAO(setupTestDB(t))
	ctx := context.Background()

	first, err := dao.Save(ctx, NewProjectModel(sampleModel()))
	require.NoError(t, err)

	updated := sampleModel()
	updated.Name = "Renamed"
	updated.Dependencies = nil
	second, err := dao.Save(ctx, NewProjectModel(updated))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	models, err := dao.Query(ctx, ProjectsByGroup("org.example"))
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "Renamed", models[0].Name)
	assert.Empty(t, models[0].Dependencies)
}

func TestProjectModelDAO_GetNotFound(t *testing.T) {
	dao := NewProjectModelDAO(setupTestDB(t))

	_, err := dao.Get(context.Background(), "org.example", "missing", "1.0")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestProjectModelDAO_QueryAndDelete(t *testing.T) {
	dao := NewProjectModelDAO(setupTestDB(t))
	ctx := context.Background()

	for _, c := range []struct{ g, a, v string }{
		{"org.example", "core", "2.0"},
		{"org.example", "app", "1.0"},
		{"org.example", "app", "1.1"},
		{"com.other", "lib", "1.0"},
	} {
		_, err := dao.Save(ctx, dao.Create(c.g, c.a, c.v))
		require.NoError(t, err)
	}

	models, err := dao.Query(ctx, ProjectsByGroup("org.example"))
	require.NoError(t, err)
	var coordinates []string
	for _, m := range models {
		coordinates = append(coordinates, types.Coordinate(m.GroupID, m.ArtifactID, m.Version))
	}
	assert.Equal(t, []string{"org.example:app:1.0", "org.example:app:1.1", "org.example:core:2.0"}, coordinates)

	versions, err := dao.Query(ctx, ProjectsByCoordinate("org.example", "app"))
	require.NoError(t, err)
	assert.Len(t, versions, 2)

	require.NoError(t, dao.Delete(ctx, dao.Create("org.example", "app", "1.0")))
	assert.ErrorIs(t, dao.Delete(ctx, dao.Create("org.example", "app", "1.0")), ErrObjectNotFound)

	models, err = dao.Query(ctx, ProjectsByGroup("org.example"))
	require.NoError(t, err)
	assert.Len(t, models, 2)

	models, err = dao.Query(ctx, ProjectsByGroup("net.none"))
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestArtifactDAO_SaveKeepsProcessedWhileUnchanged(t *testing.T) {
	dao := NewArtifactDAO(setupTestDB(t))
	ctx := context.Background()
	ref := types.NewArtifactReference("org.example", "app", "1.0", "jar")

	artifact := NewArtifact("internal", "org/example/app/1.0/app-1.0.jar", ref)
	artifact.SHA1 = "aaa"
	saved, err := dao.Save(ctx, artifact)
	require.NoError(t, err)
	assert.True(t, IsUnprocessed(saved))

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, dao.MarkProcessed(ctx, saved.ID, now))

	rescanned := NewArtifact("internal", "org/example/app/1.0/app-1.0.jar", ref)
	rescanned.SHA1 = "aaa"
	again, err := dao.Save(ctx, rescanned)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)
	assert.False(t, IsUnprocessed(again))

	changed := NewArtifact("internal", "org/example/app/1.0/app-1.0.jar", ref)
	changed.SHA1 = "bbb"
	again, err = dao.Save(ctx, changed)
	require.NoError(t, err)
	assert.True(t, IsUnprocessed(again))

	stored, err := dao.Get(ctx, "internal", "org/example/app/1.0/app-1.0.jar")
	require.NoError(t, err)
	assert.False(t, stored.Processed)
	assert.Nil(t, stored.ProcessedAt)
	assert.Equal(t, ref, stored.Reference())
}

func TestArtifactDAO_UnprocessedConstraint(t *testing.T) {
	dao := NewArtifactDAO(setupTestDB(t))
	ctx := context.Background()

	paths := []string{"a/a/1/a-1.jar", "b/b/1/b-1.jar", "c/c/1/c-1.jar"}
	var ids []uuid.UUID
	for _, p := range paths {
		saved, err := dao.Save(ctx, NewArtifact("internal", p, types.NewArtifactReference("g", "a", "1", "jar")))
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}
	_, err := dao.Save(ctx, NewArtifact("snapshots", "d/d/1/d-1.jar", types.NewArtifactReference("g", "d", "1", "jar")))
	require.NoError(t, err)

	require.NoError(t, dao.MarkProcessed(ctx, ids[1], time.Now()))

	pending, err := dao.Query(ctx, UnprocessedArtifacts("internal"))
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, paths[0], pending[0].Path)
	assert.Equal(t, paths[2], pending[1].Path)
	for i := range pending {
		assert.True(t, IsUnprocessed(&pending[i]))
	}

	all, err := dao.Query(ctx, UnprocessedArtifacts(""))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	removed, err := dao.DeleteRepository(ctx, "internal")
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	remaining, err := dao.Query(ctx, ArtifactsByRepository("snapshots"))
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestArtifactDAO_NotFound(t *testing.T) {
	dao := NewArtifactDAO(setupTestDB(t))

	_, err := dao.Get(context.Background(), "internal", "missing.jar")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.ErrorIs(t, dao.MarkProcessed(context.Background(), uuid.New(), time.Now()), ErrObjectNotFound)
	assert.False(t, IsUnprocessed(nil))
}
