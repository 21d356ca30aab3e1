package kv

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGormBackend(t *testing.T) *Gorm {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	backend := NewGorm(db)
	require.NoError(t, backend.Migrate(context.Background()))
	return backend
}

func newRedisBackend(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "test:"), srv
}

func backends(t *testing.T) map[string]Backend {
	redisBackend, _ := newRedisBackend(t)
	return map[string]Backend{
		"memory": NewMemory(),
		"gorm":   newGormBackend(t),
		"redis":  redisBackend,
	}
}

func TestBackendContract(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := backend.Load(ctx, "products")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, backend.Save(ctx, "products", []byte(`[{"id":"prod-1"}]`)))
			got, err := backend.Load(ctx, "products")
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"prod-1"}]`, string(got))

			require.NoError(t, backend.Save(ctx, "products", []byte(`[]`)))
			got, err = backend.Load(ctx, "products")
			require.NoError(t, err)
			assert.JSONEq(t, `[]`, string(got))

			require.NoError(t, backend.Delete(ctx, "products"))
			_, err = backend.Load(ctx, "products")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBackendBatch(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, backend.Save(ctx, "receipts", []byte(`{"a":1}`)))

			err := backend.Batch(ctx, []Op{
				{Key: "sales", Value: []byte(`[1]`)},
				{Key: "lastOrderNumber", Value: []byte(`7`)},
				{Key: "receipts", Delete: true},
			})
			require.NoError(t, err)

			sales, err := backend.Load(ctx, "sales")
			require.NoError(t, err)
			assert.JSONEq(t, `[1]`, string(sales))

			counter, err := backend.Load(ctx, "lastOrderNumber")
			require.NoError(t, err)
			assert.Equal(t, "7", string(counter))

			_, err = backend.Load(ctx, "receipts")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.NoError(t, backend.Batch(ctx, nil))
		})
	}
}

func TestRedisUsesPrefix(t *testing.T) {
	backend, srv := newRedisBackend(t)
	require.NoError(t, backend.Save(context.Background(), "sales", []byte(`[]`)))

	value, err := srv.Get("test:sales")
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
	assert.False(t, srv.Exists("sales"))
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	value := []byte(`"a"`)
	require.NoError(t, m.Save(context.Background(), "k", value))
	value[1] = 'b'

	got, err := m.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, `"a"`, string(got))
	assert.ElementsMatch(t, []string{"k"}, m.Keys())
}

func TestDocumentScansNumericValues(t *testing.T) {
	var d Document
	require.NoError(t, d.Scan(int64(7)))
	assert.Equal(t, "7", string(d))

	require.NoError(t, d.Scan(float64(2.5)))
	assert.Equal(t, "2.5", string(d))

	require.NoError(t, d.Scan([]byte(`"7"`)))
	assert.Equal(t, `"7"`, string(d))
}
