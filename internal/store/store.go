// Package store opens the game store named by a DATABASE_URL.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"pitchside/internal/config"
	"pitchside/internal/db"
	"pitchside/internal/game"
	"pitchside/internal/store/memstore"
	"pitchside/internal/store/pgstore"
	"pitchside/internal/store/sqlitestore"
)

// Open returns the store and a function that releases it.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (game.Store, func(), error) {
	kind, target, err := config.ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, nil, err
	}
	switch kind {
	case config.StorePostgres:
		pool, err := db.Connect(ctx, target)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.New(pool, logger), pool.Close, nil
	case config.StoreSQLite:
		st, err := sqlitestore.Open(ctx, target, logger)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	case config.StoreMemory:
		return memstore.New(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store %q", kind)
	}
}

// Migrate applies the schema for databaseURL. The memory store has none.
func Migrate(ctx context.Context, databaseURL string) error {
	kind, target, err := config.ParseDatabaseURL(databaseURL)
	if err != nil {
		return err
	}
	switch kind {
	case config.StorePostgres:
		sqlDB, err := db.OpenPostgres(ctx, target)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		return db.Migrate(ctx, sqlDB, db.Postgres)
	case config.StoreSQLite:
		sqlDB, err := db.OpenSQLite(ctx, target)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		return db.Migrate(ctx, sqlDB, db.SQLite)
	default:
		return nil
	}
}
