// Package sqlitestore runs the game store on a single SQLite file.
package sqlitestore

import (
	"context"
	"database/sql"
	"log/slog"

	"pitchside/internal/db"
	"pitchside/internal/game"
	"pitchside/internal/store/sqlstore"
)

type Store struct {
	db  *sql.DB
	log *slog.Logger
}

func New(sqlDB *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: sqlDB, log: logger}
}

// Open opens path and applies the embedded schema.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	sqlDB, err := db.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, sqlDB, db.SQLite); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return New(sqlDB, logger), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// InTx runs fn in one SQLite transaction. The connection pool holds a single
// connection, so transactions never interleave.
func (s *Store) InTx(ctx context.Context, fn func(game.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(sqlstore.New(sqlstore.SQL(tx), db.SQLite)); err != nil {
		return err
	}
	return tx.Commit()
}
