package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// exerciseStore проверяет контракт KeyValueStore на любой реализации
func exerciseStore(t *testing.T, store KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok, "absent key must report ok=false")

	require.NoError(t, store.Set(ctx, "token", "abc"))
	require.NoError(t, store.Set(ctx, "user", "alice"))

	v, ok, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	// Перезапись
	require.NoError(t, store.Set(ctx, "token", "def"))
	v, _, err = store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "def", v)

	// Пустая строка - это значение, а не отсутствие ключа
	require.NoError(t, store.Set(ctx, "email", ""))
	v, ok, err = store.Get(ctx, "email")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)

	require.NoError(t, store.Delete(ctx, "token", "email", "missing"))
	_, ok, err = store.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err = store.Get(ctx, "user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", v)

	require.NoError(t, store.Delete(ctx))

	batch := map[string]string{"batch.a": "1", "batch.b": "", "batch.c": "3"}
	require.NoError(t, store.SetMany(ctx, batch))
	for k, want := range batch {
		v, ok, err := store.Get(ctx, k)
		require.NoError(t, err)
		assert.True(t, ok, k)
		assert.Equal(t, want, v, k)
	}
	require.NoError(t, store.SetMany(ctx, nil))
	require.NoError(t, store.Delete(ctx, "batch.a", "batch.b", "batch.c"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	exerciseStore(t, store)
	assert.Equal(t, 1, store.Len())
	require.NoError(t, store.Close())
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	store, err := NewSQLiteStore(ctx, path, zap.NewNop())
	require.NoError(t, err)
	exerciseStore(t, store)
	assert.Equal(t, path, store.Path())
	require.NoError(t, store.Close())

	// Значения переживают переоткрытие, миграции идемпотентны
	reopened, err := NewSQLiteStore(ctx, path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", v)
}

func TestOpen_SelectsDriver(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, Config{Driver: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = Open(ctx, Config{Driver: "SQLite", Path: filepath.Join(t.TempDir(), "s.db")}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	_, err = Open(ctx, Config{Driver: "etcd"}, nil)
	assert.Error(t, err)
}

func TestGetMigrationVersion(t *testing.T) {
	assert.Equal(t, 1, getMigrationVersion("001_create_kv.sql"))
	assert.Equal(t, 12, getMigrationVersion("012_more.sql"))
	assert.Equal(t, 0, getMigrationVersion("create_kv.sql"))
}
