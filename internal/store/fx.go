package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/snackbar/internal/config"
	"github.com/smallbiznis/snackbar/internal/observability/metrics"
	"github.com/smallbiznis/snackbar/pkg/db"
	"github.com/smallbiznis/snackbar/pkg/kv"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("store",
	fx.Provide(NewBackend, NewStore),
)

// NewBackend selects the key-value medium from STORE_BACKEND.
func NewBackend(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (kv.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warn("using in-memory store, data is lost on exit")
		return kv.NewMemory(), nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return client.Close() },
		})
		return kv.NewRedis(client, cfg.StoreKeyPrefix), nil
	default:
		conn, err := db.Open(db.FromAppConfig(cfg), log)
		if err != nil {
			return nil, err
		}
		db.Close(lc, conn)

		backend := kv.NewGorm(conn)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := backend.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate kv_entries: %w", err)
		}
		return backend, nil
	}
}

func NewStore(backend kv.Backend, log *zap.Logger, m *metrics.POSMetrics) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Open(ctx, backend, log, m)
}
