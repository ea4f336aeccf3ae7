package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/RhmnKpc/archiva/pkg/config"
)

// ErrNotFound is returned when a path has no content
var ErrNotFound = errors.New("content not found")

// StorageFactory opens blob storage for repository locations. Storage
// instances are shared per location.
type StorageFactory struct {
	config *config.StorageConfig
	mu     sync.Mutex
	opened map[string]BlobStorage
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(config *config.StorageConfig) *StorageFactory {
	return &StorageFactory{
		config: config,
		opened: make(map[string]BlobStorage),
	}
}

// Open returns the storage rooted at location, creating it on first use
func (sf *StorageFactory) Open(location string) (BlobStorage, error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	if s, ok := sf.opened[location]; ok {
		return s, nil
	}

	var (
		s   BlobStorage
		err error
	)
	switch sf.config.Type {
	case "", "local":
		s, err = NewLocalStorage(location)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", sf.config.Type)
	}
	if err != nil {
		return nil, err
	}

	sf.opened[location] = s
	return s, nil
}
