package index

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/RhmnKpc/archiva/pkg/config"
)

// DefaultOpenIndexes is the number of repository indexes kept open
const DefaultOpenIndexes = 16

// Manager keeps recently used repository indexes open. Evicted indexes are
// closed.
type Manager struct {
	dir     string
	maxHits int

	mu    sync.Mutex
	cache *lru.Cache[string, *RepositoryIndex]
}

// NewManager creates a manager for indexes below cfg.Dir
func NewManager(cfg config.IndexConfig) (*Manager, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("index directory is not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	size := cfg.OpenIndexes
	if size < 1 {
		size = DefaultOpenIndexes
	}
	cache, err := lru.NewWithEvict[string, *RepositoryIndex](size, func(repoID string, idx *RepositoryIndex) {
		if err := idx.Close(); err != nil {
			log.Warn().Err(err).Str("repository", repoID).Msg("failed to close evicted index")
			return
		}
		log.Debug().Str("repository", repoID).Msg("closed evicted index")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index cache: %w", err)
	}

	return &Manager{dir: cfg.Dir, maxHits: cfg.MaxHits, cache: cache}, nil
}

// Path returns the directory of a repository's index
func (m *Manager) Path(repoID string) string {
	return filepath.Join(m.dir, repoID+IndexSuffix)
}

// Open returns the index of a repository, opening or creating it on first use
func (m *Manager) Open(repoID string) (*RepositoryIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if idx, ok := m.cache.Get(repoID); ok {
		return idx, nil
	}
	idx, err := OpenIndex(m.Path(repoID), repoID, m.maxHits)
	if err != nil {
		return nil, err
	}
	m.cache.Add(repoID, idx)
	return idx, nil
}

// Searcher returns the index of a repository as a Searcher
func (m *Manager) Searcher(repoID string) (Searcher, error) {
	idx, err := m.Open(repoID)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Drop closes a repository index and deletes it from disk
func (m *Manager) Drop(repoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.Remove(repoID)
	if err := os.RemoveAll(m.Path(repoID)); err != nil {
		return fmt.Errorf("failed to remove index of %s: %w", repoID, err)
	}
	log.Info().Str("repository", repoID).Msg("index dropped")
	return nil
}

// Len returns the number of open indexes
func (m *Manager) Len() int {
	return m.cache.Len()
}

// Close closes every open index
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Purge()
}
