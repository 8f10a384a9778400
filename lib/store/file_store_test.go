package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FileDataStore_SetThenGet(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	ds, err := newFileDataStore(filepath.Join(dir, "pool.json"), map[string]interface{}{
		"Users": map[string]interface{}{},
	}, nil)
	require.NoError(t, err)

	require.NoError(t, ds.Set(ctx, K("Users", "alice"), map[string]interface{}{"Username": "alice"}))

	v, err := ds.Get(ctx, K("Users", "alice"), nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", v.(map[string]interface{})["Username"])
}

func Test_FileDataStore_GetMissingReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	ds, err := newFileDataStore(filepath.Join(dir, "pool.json"), map[string]interface{}{}, nil)
	require.NoError(t, err)

	v, err := ds.Get(ctx, K("Users", "bob"), "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)
}

func Test_FileDataStore_Delete(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	ds, err := newFileDataStore(filepath.Join(dir, "pool.json"), map[string]interface{}{}, nil)
	require.NoError(t, err)

	require.NoError(t, ds.Set(ctx, K("Users", "alice"), map[string]interface{}{"Username": "alice"}))
	require.NoError(t, ds.Delete(ctx, K("Users", "alice")))

	v, err := ds.Get(ctx, K("Users", "alice"), nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

// Test_FileDataStore_Roundtrip covers invariant 5: a document reloaded by a
// fresh instance against the same file yields byte-equal leaves.
func Test_FileDataStore_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.json")
	ctx := context.Background()

	ds1, err := newFileDataStore(path, map[string]interface{}{}, nil)
	require.NoError(t, err)
	require.NoError(t, ds1.Set(ctx, K("Users", "alice"), map[string]interface{}{"Username": "alice", "Enabled": true}))

	ds2, err := newFileDataStore(path, map[string]interface{}{}, nil)
	require.NoError(t, err)

	v1, err := ds1.Get(ctx, K("Users", "alice"), nil)
	require.NoError(t, err)
	v2, err := ds2.Get(ctx, K("Users", "alice"), nil)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func Test_GetTyped_SetTyped(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	ds, err := newFileDataStore(filepath.Join(dir, "pool.json"), map[string]interface{}{}, nil)
	require.NoError(t, err)

	type thing struct {
		Name string `json:"Name"`
	}
	require.NoError(t, SetTyped(ctx, ds, K("Thing"), thing{Name: "widget"}))

	got, ok, err := GetTyped[thing](ctx, ds, K("Thing"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "widget", got.Name)

	_, ok, err = GetTyped[thing](ctx, ds, K("Missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func Test_Factory_CachesByID(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	f := NewFactory(FileBackend{Dir: dir}, nil)

	ds1, err := f.Create(ctx, "poolA", map[string]interface{}{})
	require.NoError(t, err)
	ds2, err := f.Create(ctx, "poolA", map[string]interface{}{})
	require.NoError(t, err)
	assert.Same(t, ds1, ds2)
}

func Test_Factory_DeleteRemovesFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	f := NewFactory(FileBackend{Dir: dir}, nil)

	_, err := f.Create(ctx, "poolA", map[string]interface{}{})
	require.NoError(t, err)
	require.NoError(t, f.Delete(ctx, "poolA"))

	ds, err := f.Get(ctx, "poolA")
	require.NoError(t, err)
	assert.Nil(t, ds)
}
