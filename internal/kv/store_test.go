package kv_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LittleLemon/internal/kv"
)

func TestMemStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := kv.NewMemStore()

	_, ok, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "cart", "[]"))
	v, ok, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := kv.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "favorites", "[1,3]"))
	require.NoError(t, s.Set(ctx, "darkMode", "true"))

	reopened, err := kv.NewFileStore(path)
	require.NoError(t, err)

	v, ok, err := reopened.Get(ctx, "favorites")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1,3]", v)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	s, err := kv.NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	_, ok, err := s.Get(context.Background(), "cart")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestFileStore_CreatesParentDir(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "nested", "state.json")

	s, err := kv.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Set(ctx, "darkMode", "true"))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFileStore_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := kv.NewFileStore(path)
	assert.Error(t, err)
}

func TestWithPrefix_IsolatesNamespaces(t *testing.T) {
	ctx := context.Background()
	base := kv.NewMemStore()

	a := kv.WithPrefix(base, "session/a/")
	b := kv.WithPrefix(base, "session/b/")

	require.NoError(t, a.Set(ctx, "cart", "A"))
	require.NoError(t, b.Set(ctx, "cart", "B"))

	v, _, _ := a.Get(ctx, "cart")
	assert.Equal(t, "A", v)
	v, _, _ = b.Get(ctx, "cart")
	assert.Equal(t, "B", v)

	raw, ok, err := base.Get(ctx, "session/a/cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A", raw)
}
