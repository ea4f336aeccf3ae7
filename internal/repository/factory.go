package repository

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/RhmnKpc/archiva/pkg/config"
)

type boundContent[R Repository] interface {
	Repository() R
	SetRepository(repo R)
}

// contentCache maps repository ids to the content handler bound to the
// current descriptor of that id. Binds for one id are serialized, lookups
// never block.
type contentCache[R Repository, C boundContent[R]] struct {
	kind    string
	entries sync.Map // id -> C
	locks   sync.Map // id -> *sync.Mutex
}

func (c *contentCache[R, C]) get(id string) (C, bool) {
	v, ok := c.entries.Load(id)
	if !ok {
		var zero C
		return zero, false
	}
	return v.(C), true
}

func (c *contentCache[R, C]) lock(id string) func() {
	v, _ := c.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// bind returns the handler for repo. attach, when set, runs while the id is
// still locked so no rebind can detach the handler before it is attached.
func (c *contentCache[R, C]) bind(repo R, create func(layout string) (C, error), attach func(C) error) (C, error) {
	var zero C
	if any(repo) == nil {
		return zero, fmt.Errorf("cannot bind %s content to a nil repository", c.kind)
	}
	id := repo.ID()
	if id == "" {
		return zero, fmt.Errorf("cannot bind %s content to a repository without id", c.kind)
	}

	unlock := c.lock(id)
	defer unlock()

	if current, ok := c.get(id); ok && sameDescriptor(current.Repository(), repo) {
		return current, runAttach(attach, current)
	}

	content, err := create(repo.Layout())
	if err != nil {
		return zero, fmt.Errorf("failed to create %s content for %s: %w", c.kind, id, err)
	}
	content.SetRepository(repo)

	if previous, loaded := c.entries.Swap(id, content); loaded {
		detach[R](previous.(C))
		log.Debug().Str("repository", id).Str("kind", c.kind).Msg("replaced bound repository content")
	} else {
		log.Debug().Str("repository", id).Str("kind", c.kind).Str("layout", repo.Layout()).Msg("bound repository content")
	}
	return content, runAttach(attach, content)
}

func runAttach[C any](attach func(C) error, content C) error {
	if attach == nil {
		return nil
	}
	return attach(content)
}

func (c *contentCache[R, C]) clear() {
	c.entries.Clear()
}

func (c *contentCache[R, C]) len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func sameDescriptor[R Repository](current, repo R) bool {
	if any(current) == nil {
		return false
	}
	return current.Generation() == repo.Generation()
}

// detach releases a handler that was replaced in the cache: the descriptor
// it served loses its content back-reference and the handler forgets the
// descriptor.
func detach[R Repository, C boundContent[R]](previous C) {
	if repo := previous.Repository(); any(repo) != nil {
		if ref, ok := repo.ContentRef(); ok {
			ref.ClearContent()
		}
	}
	var zero R
	previous.SetRepository(zero)
}

// ContentFactory caches one content handler per repository id. A cached
// handler is reused for as long as it is bound to the same descriptor
// instance; any other descriptor for the id triggers a rebind.
type ContentFactory struct {
	provider ContentProvider
	managed  contentCache[ManagedRepository, ManagedRepositoryContent]
	remote   contentCache[RemoteRepository, RemoteRepositoryContent]
}

// NewContentFactory creates an empty binding cache backed by provider
func NewContentFactory(provider ContentProvider) *ContentFactory {
	f := &ContentFactory{provider: provider}
	f.managed.kind = "managed"
	f.remote.kind = "remote"
	return f
}

// GetManagedContent returns the cached handler for a managed repository id
func (f *ContentFactory) GetManagedContent(id string) (ManagedRepositoryContent, error) {
	content, ok := f.managed.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: no managed content for %s", ErrRepositoryNotFound, id)
	}
	return content, nil
}

// GetRemoteContent returns the cached handler for a remote repository id
func (f *ContentFactory) GetRemoteContent(id string) (RemoteRepositoryContent, error) {
	content, ok := f.remote.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: no remote content for %s", ErrRepositoryNotFound, id)
	}
	return content, nil
}

// BindManagedContent returns a handler bound to repo, reusing the cached one
// when it already serves this exact descriptor
func (f *ContentFactory) BindManagedContent(repo ManagedRepository) (ManagedRepositoryContent, error) {
	return f.managed.bind(repo, f.provider.NewManagedContent, nil)
}

// BindManagedContentWith binds like BindManagedContent and calls attach with
// the bound handler before any other bind for the id can proceed
func (f *ContentFactory) BindManagedContentWith(repo ManagedRepository, attach func(ManagedRepositoryContent) error) (ManagedRepositoryContent, error) {
	return f.managed.bind(repo, f.provider.NewManagedContent, attach)
}

// BindRemoteContent returns a handler bound to repo, reusing the cached one
// when it already serves this exact descriptor
func (f *ContentFactory) BindRemoteContent(repo RemoteRepository) (RemoteRepositoryContent, error) {
	return f.remote.bind(repo, f.provider.NewRemoteContent, nil)
}

// BindRemoteContentWith binds like BindRemoteContent and calls attach with
// the bound handler before any other bind for the id can proceed
func (f *ContentFactory) BindRemoteContentWith(repo RemoteRepository, attach func(RemoteRepositoryContent) error) (RemoteRepositoryContent, error) {
	return f.remote.bind(repo, f.provider.NewRemoteContent, attach)
}

// Len returns the number of cached managed and remote handlers
func (f *ContentFactory) Len() (managed, remote int) {
	return f.managed.len(), f.remote.len()
}

func (f *ContentFactory) BeforeConfigurationChange(property string, value any) {}

// AfterConfigurationChange empties both caches when either repository
// section changed
func (f *ContentFactory) AfterConfigurationChange(property string, value any) {
	if !config.IsManagedRepositories(property) && !config.IsRemoteRepositories(property) {
		return
	}
	f.managed.clear()
	f.remote.clear()
	log.Info().Str("property", property).Msg("repository content cache cleared")
}
