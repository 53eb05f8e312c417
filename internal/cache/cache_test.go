package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Hour))

	data, hit, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, data)

	assert.NoError(t, c.Delete(ctx, "key"))
}

func TestFileCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	_, hit, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 0))
	data, hit, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("value"), data)

	require.NoError(t, c.Delete(ctx, "key"))
	_, hit, err = c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, hit)

	// Deleting twice is fine.
	assert.NoError(t, c.Delete(ctx, "key"))
}

func TestFileCache_Expired(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	_, hit, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, hit)
	_, statErr := os.Stat(c.path("key"))
	assert.True(t, os.IsNotExist(statErr), "expired entry should be removed")
}

func TestFileCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	path := c.path("key")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, hit, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestFileCache_Sharding(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	require.NoError(t, err)

	hash := Hash([]byte("key"))
	assert.Equal(t, filepath.Join(dir, hash[:2], hash[2:]+".json"), c.path("key"))
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	assert.Equal(t, h1, Hash([]byte("hello")))
	assert.NotEqual(t, h1, Hash([]byte("world")))
	assert.Len(t, h1, 64)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, "")
	require.NoError(t, err)
	assert.IsType(t, &NullCache{}, c)

	dir := filepath.Join(t.TempDir(), "solver")
	c, err = Open(ctx, dir)
	require.NoError(t, err)
	assert.IsType(t, &FileCache{}, c)
	assert.DirExists(t, dir)
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "redis://localhost:6379/notadb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis url")
}
