// Package testkit builds a seeded in-memory POS for service tests.
package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/snackbar/internal/clock"
	"github.com/smallbiznis/snackbar/internal/config"
	"github.com/smallbiznis/snackbar/internal/idgen"
	ingredientdomain "github.com/smallbiznis/snackbar/internal/ingredient/domain"
	"github.com/smallbiznis/snackbar/internal/observability/metrics"
	"github.com/smallbiznis/snackbar/internal/seed"
	"github.com/smallbiznis/snackbar/internal/stock"
	"github.com/smallbiznis/snackbar/internal/store"
	"github.com/smallbiznis/snackbar/pkg/kv"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Now is the fixed start time of every Env clock.
var Now = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

type Env struct {
	Backend  *kv.Memory
	Store    *store.Store
	Clock    *clock.FakeClock
	IDs      *idgen.Generator
	Ledger   *stock.Ledger
	POS      *config.POSConfigHolder
	Config   config.Config
	Registry *prometheus.Registry
	Metrics  *metrics.POSMetrics
	Log      *zap.Logger
}

// New returns an Env whose store holds the demo catalog.
func New(t testing.TB) *Env {
	t.Helper()
	ctx := context.Background()

	log := zap.NewNop()
	registry := prometheus.NewRegistry()
	m := metrics.New(registry, metrics.Config{ServiceName: "snackbar", Environment: "test"})

	backend := kv.NewMemory()
	s, err := store.Open(ctx, backend, log, m)
	require.NoError(t, err)
	_, err = seed.EnsureCatalog(ctx, s)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return &Env{
		Backend:  backend,
		Store:    s,
		Clock:    clock.NewFakeClock(Now),
		IDs:      idgen.New(node),
		Ledger:   stock.NewLedger(stock.Params{Log: log, Metrics: m}),
		POS:      config.NewStaticPOSConfigHolder(config.DefaultPOSConfig()),
		Config:   config.Config{AppName: "snackbar", Timezone: "UTC", MaxReceiptBytes: 1 << 20},
		Registry: registry,
		Metrics:  m,
		Log:      log,
	}
}

// Ingredient reads an ingredient straight from the store.
func (e *Env) Ingredient(t testing.TB, id string) *ingredientdomain.Ingredient {
	t.Helper()
	var out *ingredientdomain.Ingredient
	require.NoError(t, e.Store.View(context.Background(), func(tx *store.Tx) error {
		ing, err := tx.Ingredients().Get(id)
		out = ing
		return err
	}))
	return out
}

// Stock is the current stock of ingredient id.
func (e *Env) Stock(t testing.TB, id string) decimal.Decimal {
	return e.Ingredient(t, id).Stock
}

// Stocks snapshots the stock of every ingredient.
func (e *Env) Stocks(t testing.TB) map[string]decimal.Decimal {
	t.Helper()
	out := map[string]decimal.Decimal{}
	require.NoError(t, e.Store.View(context.Background(), func(tx *store.Tx) error {
		for _, ing := range tx.Ingredients().List(nil) {
			out[ing.ID] = ing.Stock
		}
		return nil
	}))
	return out
}

func Dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func DecPtr(v string) *decimal.Decimal {
	d := Dec(v)
	return &d
}
