package seed

import (
	"context"
	"testing"

	"github.com/smallbiznis/snackbar/internal/store"
	"github.com/smallbiznis/snackbar/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsureCatalogSeedsOnce(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, kv.NewMemory(), zap.NewNop(), nil)
	require.NoError(t, err)

	res, err := EnsureCatalog(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, Result{Products: 6, Ingredients: 5}, res)

	res, err = EnsureCatalog(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	require.NoError(t, s.View(ctx, func(tx *store.Tx) error {
		burger, err := tx.Products().Get("prod-1")
		require.NoError(t, err)
		assert.Len(t, burger.Recipe, 3)
		for _, line := range burger.Recipe {
			assert.True(t, tx.Ingredients().Has(line.IngredientID), line.IngredientID)
		}
		return nil
	}))
}
