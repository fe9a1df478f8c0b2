package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/angelmondragon/caraccessories-storefront/pkg/config"
	"github.com/angelmondragon/caraccessories-storefront/pkg/db"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/migrate"
	"github.com/angelmondragon/caraccessories-storefront/pkg/redis"
)

// OpenBackend builds the backend selected by cfg.Storage.Driver. SQL drivers
// run the embedded migrations first when auto-migrate is on.
func OpenBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		return NewMemoryBackend(), nil

	case config.StorageDriverFile, "":
		return NewFileBackend(cfg.Storage.Dir, cfg.Storage.KeyPrefix)

	case config.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, cfg.Storage.KeyPrefix, logg)
		if err != nil {
			return nil, fmt.Errorf("redis storage: %w", err)
		}
		return NewRedisBackend(client)

	case config.StorageDriverSQLite, config.StorageDriverPostgres:
		if cfg.Storage.Driver == config.StorageDriverSQLite && cfg.Storage.Dir != "" {
			if err := os.MkdirAll(cfg.Storage.Dir, 0o700); err != nil {
				return nil, fmt.Errorf("mkdir %q: %w", cfg.Storage.Dir, err)
			}
		}
		client, err := db.New(ctx, cfg.Storage.Driver, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("%s storage: %w", cfg.Storage.Driver, err)
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("%s storage migrations: %w", cfg.Storage.Driver, err)
		}
		return NewSQLBackend(client, cfg.Storage.KeyPrefix)

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
