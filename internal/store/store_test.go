package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/snackbar/internal/audit/domain"
	ingredientdomain "github.com/smallbiznis/snackbar/internal/ingredient/domain"
	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
	productdomain "github.com/smallbiznis/snackbar/internal/product/domain"
	"github.com/smallbiznis/snackbar/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type failingBackend struct {
	*kv.Memory
	failBatch bool
}

func (f *failingBackend) Batch(ctx context.Context, ops []kv.Op) error {
	if f.failBatch {
		return errors.New("quota exceeded")
	}
	return f.Memory.Batch(ctx, ops)
}

func bread() *ingredientdomain.Ingredient {
	return &ingredientdomain.Ingredient{
		ID:    "ing-1",
		Name:  "Pão de Hambúrguer",
		Unit:  ingredientdomain.UnitPiece,
		Stock: decimal.NewFromInt(100),
		Price: decimal.RequireFromString("1.50"),
		State: lifecycledomain.State{Status: lifecycledomain.StatusActive},
	}
}

func openStore(t *testing.T, backend kv.Backend) *Store {
	t.Helper()
	s, err := Open(context.Background(), backend, zap.NewNop(), nil)
	require.NoError(t, err)
	return s
}

func TestUpdatePersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	s := openStore(t, backend)

	err := s.Update(ctx, func(tx *Tx) error {
		if err := tx.Ingredients().Upsert(bread()); err != nil {
			return err
		}
		n, err := tx.NextOrderNumber()
		require.Equal(t, int64(1), n)
		return err
	})
	require.NoError(t, err)

	reopened := openStore(t, backend)
	require.NoError(t, reopened.View(ctx, func(tx *Tx) error {
		got, err := tx.Ingredients().Get("ing-1")
		require.NoError(t, err)
		assert.Equal(t, "Pão de Hambúrguer", got.Name)
		assert.True(t, got.Stock.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, int64(1), tx.LastOrderNumber())
		return nil
	}))
}

func openSQLiteBackend(t *testing.T, path string) *kv.Gorm {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	backend := kv.NewGorm(db)
	require.NoError(t, backend.Migrate(context.Background()))
	return backend
}

func TestOrderCounterSurvivesSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snackbar.db")

	s := openStore(t, openSQLiteBackend(t, path))
	for i := 0; i < 2; i++ {
		require.NoError(t, s.Update(ctx, func(tx *Tx) error {
			_, err := tx.NextOrderNumber()
			return err
		}))
	}

	reopened := openStore(t, openSQLiteBackend(t, path))
	var next int64
	require.NoError(t, reopened.Update(ctx, func(tx *Tx) error {
		assert.Equal(t, int64(2), tx.LastOrderNumber())
		n, err := tx.NextOrderNumber()
		next = n
		return err
	}))
	assert.Equal(t, int64(3), next)
}

func TestUpdateWritesOnlyTouchedCollections(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	s := openStore(t, backend)

	require.NoError(t, s.Update(ctx, func(tx *Tx) error {
		return tx.Ingredients().Upsert(bread())
	}))
	assert.ElementsMatch(t, []string{KeyIngredients}, backend.Keys())
}

func TestFailedCallbackLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, kv.NewMemory())
	require.NoError(t, s.Update(ctx, func(tx *Tx) error {
		return tx.Ingredients().Upsert(bread())
	}))

	boom := errors.New("boom")
	err := s.Update(ctx, func(tx *Tx) error {
		ing, err := tx.Ingredients().Get("ing-1")
		require.NoError(t, err)
		ing.Stock = decimal.Zero
		require.NoError(t, tx.Ingredients().Upsert(ing))
		_, _ = tx.NextOrderNumber()
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		ing, err := tx.Ingredients().Get("ing-1")
		require.NoError(t, err)
		assert.True(t, ing.Stock.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, int64(0), tx.LastOrderNumber())
		return nil
	}))
}

func TestBackendFailureReturnsStorageError(t *testing.T) {
	ctx := context.Background()
	backend := &failingBackend{Memory: kv.NewMemory()}
	s := openStore(t, backend)
	backend.failBatch = true

	err := s.Update(ctx, func(tx *Tx) error {
		if err := tx.Ingredients().Upsert(bread()); err != nil {
			return err
		}
		return tx.AppendLog(auditdomain.LogEntry{ID: "log-1"})
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)

	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "commit", storageErr.Op)

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		assert.False(t, tx.Ingredients().Has("ing-1"))
		assert.Empty(t, tx.Logs())
		return nil
	}))
}

func TestViewIsReadOnly(t *testing.T) {
	s := openStore(t, kv.NewMemory())
	err := s.View(context.Background(), func(tx *Tx) error {
		return tx.Products().Upsert(&productdomain.Product{ID: "prod-1"})
	})
	assert.ErrorIs(t, err, ErrReadOnly)

	err = s.View(context.Background(), func(tx *Tx) error {
		_, err := tx.NextOrderNumber()
		return err
	})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestGetReturnsClones(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, kv.NewMemory())
	require.NoError(t, s.Update(ctx, func(tx *Tx) error {
		return tx.Products().Upsert(&productdomain.Product{
			ID:     "prod-1",
			Name:   "X-Burger Clássico",
			Recipe: []productdomain.RecipeItem{{IngredientID: "ing-1", Quantity: decimal.NewFromInt(1)}},
		})
	}))

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		p, err := tx.Products().Get("prod-1")
		require.NoError(t, err)
		p.Name = "changed"
		p.Recipe[0].IngredientID = "ing-9"

		again, err := tx.Products().Get("prod-1")
		require.NoError(t, err)
		assert.Equal(t, "X-Burger Clássico", again.Name)
		assert.Equal(t, "ing-1", again.Recipe[0].IngredientID)
		return nil
	}))
}

func TestRemoveAndNotFound(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, kv.NewMemory())
	require.NoError(t, s.Update(ctx, func(tx *Tx) error {
		return tx.Ingredients().Upsert(bread())
	}))

	require.NoError(t, s.Update(ctx, func(tx *Tx) error {
		return tx.Ingredients().Remove("ing-1")
	}))

	err := s.View(ctx, func(tx *Tx) error {
		_, err := tx.Ingredients().Get("ing-1")
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Update(ctx, func(tx *Tx) error {
		return tx.Ingredients().Remove("ing-1")
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, kv.NewMemory())
	now := time.Now().UTC()

	for _, id := range []string{"log-a", "log-b"} {
		id := id
		require.NoError(t, s.Update(ctx, func(tx *Tx) error {
			return tx.AppendLog(auditdomain.LogEntry{ID: id, Timestamp: now})
		}))
	}

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		logs := tx.Logs()
		require.Len(t, logs, 2)
		assert.Equal(t, "log-b", logs[0].ID)
		assert.Equal(t, "log-a", logs[1].ID)
		return nil
	}))
}

func TestOpenRejectsCorruptCollection(t *testing.T) {
	backend := kv.NewMemory()
	require.NoError(t, backend.Save(context.Background(), KeySales, []byte(`{not json`)))

	_, err := Open(context.Background(), backend, zap.NewNop(), nil)
	assert.ErrorIs(t, err, ErrStorage)
}
