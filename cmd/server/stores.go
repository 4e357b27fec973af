package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AnshRaj112/nutrameter-backend/internal/config"
	"github.com/AnshRaj112/nutrameter-backend/internal/database"
	"github.com/AnshRaj112/nutrameter-backend/internal/store"
)

// openDurable connects the configured durable store. It returns a nil store
// for the memory driver. An unreachable database is not an error here: the
// gateway serves from the fallback store until it comes back.
func openDurable(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.StoreTimeout, log)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo: %w", err)
		}
		dbName := database.MongoDatabaseName(cfg.MongoURI, cfg.MongoDatabase)
		log.Info("using MongoDB store", zap.String("database", dbName))
		closeFn := func() {
			if err := database.DisconnectMongo(client); err != nil {
				log.Warn("mongo disconnect failed", zap.Error(err))
			}
		}
		return store.NewMongo(client.Database(dbName)), closeFn, nil

	case config.StorePostgres:
		db, err := database.ConnectPostgres(ctx, cfg.PostgresURI, cfg.StoreTimeout, log)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		log.Info("using PostgreSQL store")
		closeFn := func() {
			if err := database.DisconnectPostgres(db); err != nil {
				log.Warn("postgres disconnect failed", zap.Error(err))
			}
		}
		return store.NewPostgres(db), closeFn, nil

	default:
		return nil, func() {}, nil
	}
}

func migrate(ctx context.Context, s store.Store, timeout time.Duration) error {
	m, ok := s.(store.Migrator)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return m.Migrate(ctx)
}
