package repository

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/RhmnKpc/archiva/pkg/config"
)

// Registry holds the repository descriptors of the current configuration
// and hands out content handlers bound to them
type Registry struct {
	factory *ContentFactory

	mu      sync.RWMutex
	managed map[string]*Managed
	remote  map[string]*Remote
}

// NewRegistry creates descriptors for every repository in cfg
func NewRegistry(factory *ContentFactory, cfg *config.Config) *Registry {
	r := &Registry{
		factory: factory,
		managed: make(map[string]*Managed),
		remote:  make(map[string]*Remote),
	}
	if cfg != nil {
		r.loadManaged(cfg.ManagedRepositories)
		r.loadRemote(cfg.RemoteRepositories)
	}
	return r
}

func (r *Registry) loadManaged(repos []config.ManagedRepositoryConfig) {
	managed := make(map[string]*Managed, len(repos))
	for _, c := range repos {
		managed[c.ID] = NewManaged(c)
	}
	r.mu.Lock()
	r.managed = managed
	r.mu.Unlock()
	log.Info().Int("count", len(managed)).Msg("managed repositories loaded")
}

func (r *Registry) loadRemote(repos []config.RemoteRepositoryConfig) {
	remote := make(map[string]*Remote, len(repos))
	for _, c := range repos {
		remote[c.ID] = NewRemote(c)
	}
	r.mu.Lock()
	r.remote = remote
	r.mu.Unlock()
	log.Info().Int("count", len(remote)).Msg("remote repositories loaded")
}

// ManagedRepository returns the current descriptor for a managed repository
func (r *Registry) ManagedRepository(id string) (*Managed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	repo, ok := r.managed[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRepositoryNotFound, id)
	}
	return repo, nil
}

// RemoteRepository returns the current descriptor for a remote repository
func (r *Registry) RemoteRepository(id string) (*Remote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	repo, ok := r.remote[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRepositoryNotFound, id)
	}
	return repo, nil
}

// ManagedRepositories returns all managed descriptors ordered by id
func (r *Registry) ManagedRepositories() []*Managed {
	r.mu.RLock()
	repos := make([]*Managed, 0, len(r.managed))
	for _, repo := range r.managed {
		repos = append(repos, repo)
	}
	r.mu.RUnlock()
	sort.Slice(repos, func(i, j int) bool { return repos[i].ID() < repos[j].ID() })
	return repos
}

// RemoteRepositories returns all remote descriptors ordered by id
func (r *Registry) RemoteRepositories() []*Remote {
	r.mu.RLock()
	repos := make([]*Remote, 0, len(r.remote))
	for _, repo := range r.remote {
		repos = append(repos, repo)
	}
	r.mu.RUnlock()
	sort.Slice(repos, func(i, j int) bool { return repos[i].ID() < repos[j].ID() })
	return repos
}

// ManagedContent returns the content handler of a managed repository,
// binding one if the cached handler serves an older descriptor
func (r *Registry) ManagedContent(id string) (ManagedRepositoryContent, error) {
	repo, err := r.ManagedRepository(id)
	if err != nil {
		return nil, err
	}
	content, err := r.factory.BindManagedContentWith(repo, repo.SetContent)
	if err != nil {
		return nil, err
	}
	return content, nil
}

// RemoteContent returns the content handler of a remote repository
func (r *Registry) RemoteContent(id string) (RemoteRepositoryContent, error) {
	repo, err := r.RemoteRepository(id)
	if err != nil {
		return nil, err
	}
	content, err := r.factory.BindRemoteContentWith(repo, repo.SetContent)
	if err != nil {
		return nil, err
	}
	return content, nil
}

func (r *Registry) BeforeConfigurationChange(property string, value any) {}

// AfterConfigurationChange rebuilds the descriptors of a changed repository
// section
func (r *Registry) AfterConfigurationChange(property string, value any) {
	switch v := value.(type) {
	case []config.ManagedRepositoryConfig:
		if config.IsManagedRepositories(property) {
			r.loadManaged(v)
		}
	case []config.RemoteRepositoryConfig:
		if config.IsRemoteRepositories(property) {
			r.loadRemote(v)
		}
	}
}
