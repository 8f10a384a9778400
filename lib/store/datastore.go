// Package store implements the key-addressed JSON document persistence
// facade: one DataStore per user pool (plus one shared store for app
// clients and one for the pool registry), each backed by a single file or object and serialized through
// its own mutex.
package store

import (
	"context"
	"encoding/json"
)

// Key addresses a value inside a document: either a single top-level field
// or an ordered path into nested objects.
type Key []string

// K builds a Key from its path segments.
func K(segments ...string) Key { return Key(segments) }

// DataStore is a single JSON document persisted to one file or object.
// Implementations must serialize their own reads and writes; callers never
// take out a lock themselves.
type DataStore interface {
	// Get returns the value at key as a generic JSON value (map, slice or
	// scalar), or deflt if absent. It does not convert the value to deflt's
	// type; GetTyped decodes into a concrete type.
	Get(ctx context.Context, key Key, deflt interface{}) (interface{}, error)
	// Set writes value at key and persists the whole document.
	Set(ctx context.Context, key Key, value interface{}) error
	// Delete removes the value at key and persists the whole document.
	Delete(ctx context.Context, key Key) error
	// GetRoot returns the full document as a generic map.
	GetRoot(ctx context.Context) (map[string]interface{}, error)
}

func navigate(root map[string]interface{}, key Key) (interface{}, bool) {
	var cur interface{} = root
	for _, seg := range key {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func setPath(root map[string]interface{}, key Key, value interface{}) {
	if len(key) == 0 {
		return
	}
	cur := root
	for _, seg := range key[:len(key)-1] {
		next, ok := cur[seg].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			cur[seg] = next
		}
		cur = next
	}
	cur[key[len(key)-1]] = value
}

func deletePath(root map[string]interface{}, key Key) {
	if len(key) == 0 {
		return
	}
	cur := root
	for _, seg := range key[:len(key)-1] {
		next, ok := cur[seg].(map[string]interface{})
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, key[len(key)-1])
}

// decodeInto round-trips raw (a generic JSON value) through out's
// concrete type via JSON, the simplest portable way to recover a typed
// value from a map[string]interface{} tree.
func decodeInto(raw interface{}, out interface{}) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
