package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// FileDataStore persists one JSON document to one file on disk. All reads
// and writes go through mu so concurrent handlers never observe or produce
// a partially written document.
type FileDataStore struct {
	mu     sync.Mutex
	path   string
	root   map[string]interface{}
	logger *logrus.Logger
}

// newFileDataStore loads path if it exists, or initializes it from
// defaults and writes it immediately. When defaults is nil, a missing
// path is reported by returning a nil store rather than creating one, so
// Factory.Get can distinguish "not found" from "empty document".
func newFileDataStore(path string, defaults map[string]interface{}, logger *logrus.Logger) (*FileDataStore, error) {
	ds := &FileDataStore{path: path, logger: logger}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if defaults == nil {
			return nil, nil
		}
		ds.root = cloneMap(defaults)
		if err := ds.persist(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("reading data store %s: %w", path, err)
	default:
		root := map[string]interface{}{}
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("parsing data store %s: %w", path, err)
		}
		for k, v := range defaults {
			if _, ok := root[k]; !ok {
				root[k] = v
			}
		}
		ds.root = root
	}
	return ds, nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *FileDataStore) Get(_ context.Context, key Key, deflt interface{}) (interface{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v, ok := navigate(d.root, key); ok {
		return v, nil
	}
	return deflt, nil
}

func (d *FileDataStore) Set(_ context.Context, key Key, value interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	// Round-trip value through JSON so the in-memory tree only ever holds
	// plain map/slice/scalar values, matching what a reload would produce.
	normalized, err := normalize(value)
	if err != nil {
		return err
	}
	setPath(d.root, key, normalized)
	return d.persist()
}

func (d *FileDataStore) Delete(_ context.Context, key Key) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	deletePath(d.root, key)
	return d.persist()
}

func (d *FileDataStore) GetRoot(_ context.Context) (map[string]interface{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneMap(d.root), nil
}

func normalize(value interface{}) (interface{}, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// persist writes the full document to a sibling temp file and renames it
// into place, so a crash mid-write never leaves a truncated document.
func (d *FileDataStore) persist() error {
	data, err := json.MarshalIndent(d.root, "", "  ")
	if err != nil {
		return err
	}
	tmp := d.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, d.path); err != nil {
		return err
	}
	if d.logger != nil {
		d.logger.WithField("path", d.path).Debug("persisted data store")
	}
	return nil
}
