package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/RhmnKpc/archiva/internal/common"
	"github.com/RhmnKpc/archiva/internal/database"
	"github.com/RhmnKpc/archiva/internal/index"
	"github.com/RhmnKpc/archiva/internal/repository"
	"github.com/RhmnKpc/archiva/internal/repository/layout"
	"github.com/RhmnKpc/archiva/internal/scanner"
	"github.com/RhmnKpc/archiva/internal/search"
	"github.com/RhmnKpc/archiva/internal/storage"
	"github.com/RhmnKpc/archiva/pkg/config"
)

// application holds the wired services shared by every command
type application struct {
	config   *config.Manager
	registry *repository.Registry
	indexes  *index.Manager
	db       *common.Database
	cache    *common.Cache
	search   *search.Service
	scanner  *scanner.Scanner
}

func newApplication(configPath string, flags *pflag.FlagSet) (*application, error) {
	manager, err := config.LoadManager(configPath, flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := manager.Current()
	common.SetupLogging(cfg.Logging)

	app := &application{config: manager}

	storageFactory := storage.NewStorageFactory(&cfg.Storage)
	factory := repository.NewContentFactory(layout.NewProvider(storageFactory))
	app.registry = repository.NewRegistry(factory, cfg)

	app.indexes, err = index.NewManager(cfg.Index)
	if err != nil {
		return nil, err
	}

	app.db, err = common.NewDatabase(&cfg.Database)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := app.db.Migrate(database.Models()...); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	var resultCache search.ResultCache
	if cfg.Redis.Enabled {
		app.cache, err = common.NewCache(&cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		resultCache = app.cache
	}

	app.search = search.NewService(app.indexes, app.registry, resultCache, cfg.Index)
	app.scanner = scanner.NewScanner(
		app.registry,
		database.NewArtifactDAO(app.db.DB),
		database.NewProjectModelDAO(app.db.DB),
		app.indexes,
		app.search,
	)

	// cached content is dropped before the registry rebuilds its descriptors
	manager.AddChangeListener(factory)
	manager.AddChangeListener(app.registry)
	manager.AddChangeListener(app.search)

	log.Info().
		Int("managed_repositories", len(cfg.ManagedRepositories)).
		Int("remote_repositories", len(cfg.RemoteRepositories)).
		Bool("result_cache", resultCache != nil).
		Msg("application initialized")
	return app, nil
}

// Close releases indexes and connections
func (a *application) Close() {
	if a.indexes != nil {
		a.indexes.Close()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close cache")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}
}
