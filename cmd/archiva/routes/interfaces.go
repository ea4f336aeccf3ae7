package routes

import (
	"context"

	"github.com/RhmnKpc/archiva/internal/index"
	"github.com/RhmnKpc/archiva/internal/repository"
	"github.com/RhmnKpc/archiva/internal/scanner"
)

// SearchServiceInterface defines the contract for search services
type SearchServiceInterface interface {
	General(ctx context.Context, repoID, keyword string) ([]index.SearchResult, error)
	Advanced(ctx context.Context, repoID string, q index.Query) ([]index.SearchResult, error)
}

// RepositoryServiceInterface defines the contract for repository lookup
type RepositoryServiceInterface interface {
	ManagedRepositories() []*repository.Managed
	RemoteRepositories() []*repository.Remote
	ManagedContent(id string) (repository.ManagedRepositoryContent, error)
}

// ConfigReloader re-reads the configuration source
type ConfigReloader interface {
	Reload() ([]string, error)
}

// ScannerInterface defines the contract for repository scans
type ScannerInterface interface {
	Scan(ctx context.Context, repoID string) (*scanner.Stats, error)
}
