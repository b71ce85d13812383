package storage

import (
	"context"
	"fmt"

	"kos-backend-trusted/internal/config"
	"kos-backend-trusted/internal/logger"
	"kos-backend-trusted/internal/repository"
	"kos-backend-trusted/internal/repository/memory"
	"kos-backend-trusted/internal/repository/postgres"
)

// Open returns the store selected by cfg.Storage.Driver. The PostgreSQL store
// is pinged and its schema applied before it is returned.
func Open(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logger.Info("Using in-memory store")
		return memory.NewStore(), nil
	case config.StoragePostgres:
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
		store, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		logger.Info("Database connection established")
		return store, nil
	default:
		return nil, fmt.Errorf("storage driver %q not supported", cfg.Storage.Driver)
	}
}
