package store

import "context"

// GetTyped fetches key from ds and decodes it into a T, returning
// (zero value, false, nil) when the key is absent.
func GetTyped[T any](ctx context.Context, ds DataStore, key Key) (T, bool, error) {
	var zero T
	raw, err := ds.Get(ctx, key, nil)
	if err != nil {
		return zero, false, err
	}
	if raw == nil {
		return zero, false, nil
	}
	var out T
	if err := decodeInto(raw, &out); err != nil {
		return zero, false, err
	}
	return out, true, nil
}

// SetTyped persists value (any JSON-marshalable type) at key.
func SetTyped[T any](ctx context.Context, ds DataStore, key Key, value T) error {
	return ds.Set(ctx, key, value)
}
