package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RhmnKpc/archiva/internal/common"
	"github.com/RhmnKpc/archiva/internal/index"
	"github.com/RhmnKpc/archiva/internal/repository"
	"github.com/RhmnKpc/archiva/pkg/config"
	"github.com/RhmnKpc/archiva/pkg/utils"
)

// KeyPrefix starts every cached search result key
const KeyPrefix = "search:"

// Indexes resolves the searcher of a repository's index
type Indexes interface {
	Searcher(repoID string) (index.Searcher, error)
}

// Repositories looks up managed repository descriptors
type Repositories interface {
	ManagedRepository(id string) (*repository.Managed, error)
}

// ResultCache stores general search results. common.Cache implements it.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

// Service runs searches against the index of a managed repository
type Service struct {
	indexes     Indexes
	repos       Repositories
	cache       ResultCache
	ttl         time.Duration
	parallelism int
}

// NewService creates a search service. cache may be nil, which disables
// result caching.
func NewService(indexes Indexes, repos Repositories, cache ResultCache, cfg config.IndexConfig) *Service {
	return &Service{
		indexes:     indexes,
		repos:       repos,
		cache:       cache,
		ttl:         cfg.CacheTTL,
		parallelism: cfg.Parallelism,
	}
}

func (s *Service) layer(repoID string) (*index.SearchLayer, error) {
	if _, err := s.repos.ManagedRepository(repoID); err != nil {
		return nil, err
	}
	searcher, err := s.indexes.Searcher(repoID)
	if err != nil {
		return nil, fmt.Errorf("failed to open index of %s: %w", repoID, err)
	}
	return index.NewSearchLayer(searcher, s.parallelism), nil
}

// General runs a keyword search over every indexed field of a repository
func (s *Service) General(ctx context.Context, repoID, keyword string) ([]index.SearchResult, error) {
	layer, err := s.layer(repoID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(keyword) == "" {
		return []index.SearchResult{}, nil
	}

	key := resultKey(repoID, keyword)
	if results, ok := s.cached(ctx, key); ok {
		return results, nil
	}

	results, err := layer.SearchGeneral(ctx, keyword)
	if err != nil {
		log.Error().Err(err).Str("repository", repoID).Str("keyword", keyword).Msg("general search failed")
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, results, s.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to cache search results")
		}
	}
	return results, nil
}

func (s *Service) cached(ctx context.Context, key string) ([]index.SearchResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	var results []index.SearchResult
	if err := s.cache.Get(ctx, key, &results); err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			log.Warn().Err(err).Str("key", key).Msg("search cache unavailable")
		}
		return nil, false
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	log.Debug().Str("key", key).Msg("search cache hit")
	return results, true
}

// Advanced runs a structured query against a repository's index
func (s *Service) Advanced(ctx context.Context, repoID string, q index.Query) ([]index.SearchResult, error) {
	layer, err := s.layer(repoID)
	if err != nil {
		return nil, err
	}
	results, err := layer.SearchAdvanced(ctx, q)
	if err != nil {
		log.Error().Err(err).Str("repository", repoID).Str("query", q.String()).Msg("advanced search failed")
		return nil, err
	}
	return results, nil
}

// Invalidate drops the cached results of a repository
func (s *Service) Invalidate(ctx context.Context, repoID string) error {
	return s.invalidate(ctx, repositoryPrefix(repoID))
}

func (s *Service) invalidate(ctx context.Context, prefix string) error {
	if s.cache == nil {
		return nil
	}
	removed, err := s.cache.DeleteByPrefix(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to invalidate search cache: %w", err)
	}
	log.Debug().Str("prefix", prefix).Int("removed", removed).Msg("search cache invalidated")
	return nil
}

// BeforeConfigurationChange implements config.ChangeListener
func (s *Service) BeforeConfigurationChange(property string, value any) {}

// AfterConfigurationChange drops every cached result when the managed
// repositories change
func (s *Service) AfterConfigurationChange(property string, value any) {
	if !config.IsManagedRepositories(property) {
		return
	}
	if err := s.invalidate(context.Background(), KeyPrefix); err != nil {
		log.Warn().Err(err).Msg("failed to clear search cache after configuration change")
	}
}

func repositoryPrefix(repoID string) string {
	return KeyPrefix + repoID + ":"
}

func resultKey(repoID, keyword string) string {
	return repositoryPrefix(repoID) + utils.ComputeSHA1([]byte(strings.ToLower(keyword)))
}
