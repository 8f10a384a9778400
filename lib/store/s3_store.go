package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"userpoold/lib/clients"

	"github.com/sirupsen/logrus"
)

// S3DataStore persists one JSON document to a single S3 object, for
// deployments that want pool state in object storage rather than on the
// local filesystem. It offers the same per-document serialization
// guarantee as FileDataStore via mu.
type S3DataStore struct {
	mu     sync.Mutex
	key    string
	root   map[string]interface{}
	objs   clients.ObjectStore
	logger *logrus.Logger
}

// newS3DataStore loads key if its object exists, or initializes it from
// defaults and writes it immediately. When defaults is nil, a missing
// object is reported by returning a nil store rather than creating one, so
// Factory.Get can distinguish "not found" from "empty document".
func newS3DataStore(ctx context.Context, objs clients.ObjectStore, key string, defaults map[string]interface{}, logger *logrus.Logger) (*S3DataStore, error) {
	ds := &S3DataStore{key: key, objs: objs, logger: logger}

	data, err := objs.GetObject(ctx, key)
	switch {
	case errors.Is(err, clients.ErrNotFound):
		if defaults == nil {
			return nil, nil
		}
		ds.root = cloneMap(defaults)
		if err := ds.persist(ctx); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		root := map[string]interface{}{}
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, err
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

func (d *S3DataStore) Get(_ context.Context, key Key, deflt interface{}) (interface{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v, ok := navigate(d.root, key); ok {
		return v, nil
	}
	return deflt, nil
}

func (d *S3DataStore) Set(ctx context.Context, key Key, value interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	normalized, err := normalize(value)
	if err != nil {
		return err
	}
	setPath(d.root, key, normalized)
	return d.persist(ctx)
}

func (d *S3DataStore) Delete(ctx context.Context, key Key) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	deletePath(d.root, key)
	return d.persist(ctx)
}

func (d *S3DataStore) GetRoot(_ context.Context) (map[string]interface{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneMap(d.root), nil
}

func (d *S3DataStore) persist(ctx context.Context) error {
	data, err := json.Marshal(d.root)
	if err != nil {
		return err
	}
	if err := d.objs.PutObject(ctx, d.key, data); err != nil {
		return err
	}
	if d.logger != nil {
		d.logger.WithField("key", d.key).Debug("persisted data store to s3")
	}
	return nil
}
