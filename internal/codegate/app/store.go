package app

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/codegate/internal/codegate/store"
	"github.com/aussiebroadwan/codegate/internal/codegate/store/drivers/postgres"
	"github.com/aussiebroadwan/codegate/internal/codegate/store/drivers/redis"
	"github.com/aussiebroadwan/codegate/internal/codegate/store/drivers/sqlite"
)

// OpenStore connects the configured driver and applies its migrations.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)

	switch cfg.Store {
	case "sqlite":
		st, err = sqlite.NewStore(cfg.DatabaseFile)
	case "redis":
		st, err = redis.NewStore(ctx, redis.Config{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisPrefix,
		})
	case "postgres":
		st, err = postgres.NewStore(ctx, cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}

	if err := st.ApplyMigrations(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to apply %s migrations: %w", cfg.Store, err)
	}

	return st, nil
}
