package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"userpoold/lib/clients"

	"github.com/sirupsen/logrus"
)

// Factory opens and caches DataStores by id, guaranteeing at most one
// instance per id per process so every handler touching the same pool
// shares the same serialization point.
type Factory struct {
	mu      sync.Mutex
	cache   map[string]DataStore
	backend Backend
	logger  *logrus.Logger
}

// Backend abstracts where a Factory's documents live.
type Backend interface {
	open(ctx context.Context, id string, defaults map[string]interface{}, logger *logrus.Logger) (DataStore, error)
	remove(ctx context.Context, id string) error
}

// NewFactory builds a Factory over backend.
func NewFactory(backend Backend, logger *logrus.Logger) *Factory {
	return &Factory{cache: map[string]DataStore{}, backend: backend, logger: logger}
}

// Create opens the DataStore for id, creating it from defaults if absent,
// and caches the result.
func (f *Factory) Create(ctx context.Context, id string, defaults map[string]interface{}) (DataStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ds, ok := f.cache[id]; ok {
		return ds, nil
	}
	ds, err := f.backend.open(ctx, id, defaults, f.logger)
	if err != nil {
		return nil, err
	}
	f.cache[id] = ds
	return ds, nil
}

// Get returns the cached or newly opened (and then cached) DataStore for
// id, or nil if no document exists for it yet.
func (f *Factory) Get(ctx context.Context, id string) (DataStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ds, ok := f.cache[id]; ok {
		return ds, nil
	}
	ds, err := f.backend.open(ctx, id, nil, f.logger)
	if err != nil || ds == nil {
		return nil, err
	}
	f.cache[id] = ds
	return ds, nil
}

// Delete removes the backing file/object for id and evicts it from cache.
func (f *Factory) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cache, id)
	return f.backend.remove(ctx, id)
}

// FileBackend opens DataStores as files under Dir, named <id>.json.
type FileBackend struct {
	Dir string
}

func (b FileBackend) open(_ context.Context, id string, defaults map[string]interface{}, logger *logrus.Logger) (DataStore, error) {
	ds, err := newFileDataStore(b.pathFor(id), defaults, logger)
	if err != nil || ds == nil {
		// Return an explicit nil interface: handing back the typed nil
		// *FileDataStore directly would wrap it in a non-nil DataStore.
		return nil, err
	}
	return ds, nil
}

func (b FileBackend) remove(_ context.Context, id string) error {
	return removeIfExists(b.pathFor(id))
}

func (b FileBackend) pathFor(id string) string {
	return filepath.Join(b.Dir, fmt.Sprintf("%s.json", id))
}

// S3Backend opens DataStores as objects in an S3 bucket, named <prefix><id>.json.
type S3Backend struct {
	Objects clients.ObjectStore
	Prefix  string
}

func (b S3Backend) open(ctx context.Context, id string, defaults map[string]interface{}, logger *logrus.Logger) (DataStore, error) {
	ds, err := newS3DataStore(ctx, b.Objects, b.keyFor(id), defaults, logger)
	if err != nil || ds == nil {
		// Return an explicit nil interface: handing back the typed nil
		// *S3DataStore directly would wrap it in a non-nil DataStore.
		return nil, err
	}
	return ds, nil
}

func (b S3Backend) remove(ctx context.Context, id string) error {
	return b.Objects.DeleteObject(ctx, b.keyFor(id))
}

func (b S3Backend) keyFor(id string) string {
	return fmt.Sprintf("%s%s.json", b.Prefix, id)
}
