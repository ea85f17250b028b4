package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedis(rdb, "ksadmin:")
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	r, _ := newTestRedis(t)
	return map[string]Store{
		"memory": NewMemory(),
		"file":   NewFile(filepath.Join(t.TempDir(), "session")),
		"redis":  r,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "session")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "session", `{"subjectId":"a1"}`))
			v, err := s.Get(ctx, "session")
			require.NoError(t, err)
			assert.Equal(t, `{"subjectId":"a1"}`, v)

			require.NoError(t, s.Set(ctx, "session", "second"))
			v, err = s.Get(ctx, "session")
			require.NoError(t, err)
			assert.Equal(t, "second", v)

			require.NoError(t, s.Delete(ctx, "session", "never-written"))
			_, err = s.Get(ctx, "session")
			assert.ErrorIs(t, err, ErrNotFound)

			// Deleting again is a no-op.
			require.NoError(t, s.Delete(ctx, "session"))
		})
	}
}

func TestFileStorePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")
	s := NewFile(dir)
	require.NoError(t, s.Set(context.Background(), "session", "x"))

	info, err := os.Stat(filepath.Join(dir, "session"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	s := NewFile(t.TempDir())
	for _, key := range []string{"", "../escape", "a/b", ".."} {
		assert.Error(t, s.Set(context.Background(), key, "x"), "key %q", key)
	}
}

func TestFileStoreCanceledContext(t *testing.T) {
	s := NewFile(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Get(ctx, "session")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisStorePrefix(t *testing.T) {
	s, mr := newTestRedis(t)
	require.NoError(t, s.Set(context.Background(), "session", "v"))
	assert.True(t, mr.Exists("ksadmin:session"))
	assert.False(t, mr.Exists("session"))
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	s := NewRedis(rdb, "ksadmin:")
	defer s.Close() //nolint:errcheck
	mr.Close()

	_, err = s.Get(context.Background(), "session")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
