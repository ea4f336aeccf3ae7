package repository

import (
	"sync"
	"sync/atomic"

	"github.com/RhmnKpc/archiva/pkg/config"
)

var generations atomic.Uint64

// NextGeneration returns a configuration generation token that has never
// been handed out before.
func NextGeneration() uint64 {
	return generations.Add(1)
}

// ContentRef is implemented by descriptors whose content back-reference may
// be cleared.
type ContentRef interface {
	ClearContent()
}

// Repository is a configuration derived repository descriptor. Every
// descriptor instance has its own generation, so two descriptors for the same
// id built from different configuration snapshots never compare equal.
type Repository interface {
	ID() string
	Name() string
	Layout() string
	Generation() uint64

	// ContentRef exposes the content back-reference of editable descriptors.
	// The second result is false for read-only descriptors.
	ContentRef() (ContentRef, bool)
}

// ManagedRepository is a repository hosted in local storage
type ManagedRepository interface {
	Repository
	Location() string
	Releases() bool
	Snapshots() bool
}

// RemoteRepository is a repository reachable over the network
type RemoteRepository interface {
	Repository
	URL() string
}

// Managed is the descriptor of a managed repository
type Managed struct {
	cfg        config.ManagedRepositoryConfig
	generation uint64
	editable   bool

	mu      sync.RWMutex
	content ManagedRepositoryContent
}

// NewManaged creates an editable managed repository descriptor
func NewManaged(cfg config.ManagedRepositoryConfig) *Managed {
	return &Managed{cfg: cfg, generation: NextGeneration(), editable: true}
}

// NewReadOnlyManaged creates a managed repository descriptor whose content
// back-reference cannot be changed
func NewReadOnlyManaged(cfg config.ManagedRepositoryConfig) *Managed {
	return &Managed{cfg: cfg, generation: NextGeneration()}
}

func (r *Managed) ID() string {
	if r == nil {
		return ""
	}
	return r.cfg.ID
}
func (r *Managed) Name() string       { return r.cfg.Name }
func (r *Managed) Layout() string     { return r.cfg.Layout }
func (r *Managed) Location() string   { return r.cfg.Location }
func (r *Managed) Releases() bool     { return r.cfg.Releases }
func (r *Managed) Snapshots() bool    { return r.cfg.Snapshots }
func (r *Managed) Scanned() bool      { return r.cfg.Scanned }
func (r *Managed) Generation() uint64 { return r.generation }

// Config returns the configuration the descriptor was built from
func (r *Managed) Config() config.ManagedRepositoryConfig { return r.cfg }

// Content returns the content handler currently attached to the descriptor
func (r *Managed) Content() ManagedRepositoryContent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.content
}

// SetContent attaches a content handler to an editable descriptor
func (r *Managed) SetContent(content ManagedRepositoryContent) error {
	if !r.editable {
		return ErrReadOnlyRepository
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = content
	return nil
}

// ClearContent drops the content back-reference
func (r *Managed) ClearContent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = nil
}

func (r *Managed) ContentRef() (ContentRef, bool) {
	if !r.editable {
		return nil, false
	}
	return r, true
}

// Remote is the descriptor of a remote repository
type Remote struct {
	cfg        config.RemoteRepositoryConfig
	generation uint64
	editable   bool

	mu      sync.RWMutex
	content RemoteRepositoryContent
}

// NewRemote creates an editable remote repository descriptor
func NewRemote(cfg config.RemoteRepositoryConfig) *Remote {
	return &Remote{cfg: cfg, generation: NextGeneration(), editable: true}
}

// NewReadOnlyRemote creates a remote repository descriptor whose content
// back-reference cannot be changed
func NewReadOnlyRemote(cfg config.RemoteRepositoryConfig) *Remote {
	return &Remote{cfg: cfg, generation: NextGeneration()}
}

func (r *Remote) ID() string {
	if r == nil {
		return ""
	}
	return r.cfg.ID
}
func (r *Remote) Name() string       { return r.cfg.Name }
func (r *Remote) Layout() string     { return r.cfg.Layout }
func (r *Remote) URL() string        { return r.cfg.URL }
func (r *Remote) Generation() uint64 { return r.generation }

// Config returns the configuration the descriptor was built from
func (r *Remote) Config() config.RemoteRepositoryConfig { return r.cfg }

// Content returns the content handler currently attached to the descriptor
func (r *Remote) Content() RemoteRepositoryContent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.content
}

// SetContent attaches a content handler to an editable descriptor
func (r *Remote) SetContent(content RemoteRepositoryContent) error {
	if !r.editable {
		return ErrReadOnlyRepository
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = content
	return nil
}

// ClearContent drops the content back-reference
func (r *Remote) ClearContent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = nil
}

func (r *Remote) ContentRef() (ContentRef, bool) {
	if !r.editable {
		return nil, false
	}
	return r, true
}
