package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"
)

func TestRebindPositional(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		args      []any
		wantQuery string
		wantArgs  []any
	}{
		{"plain", "SELECT 1", nil, "SELECT 1", nil},
		{"in order", "a = $1 AND b = $2", []any{1, 2}, "a = ? AND b = ?", []any{1, 2}},
		{"reordered", "a = $2 AND b = $1", []any{1, 2}, "a = ? AND b = ?", []any{2, 1}},
		{"repeated", "VALUES ($1, (SELECT MAX(x) FROM t WHERE g = $2), $2)", []any{"id", "g"},
			"VALUES (?, (SELECT MAX(x) FROM t WHERE g = ?), ?)", []any{"id", "g", "g"}},
		{"two digits", "$10 $1", []any{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, "? ?", []any{10, 1}},
		{"lone dollar", "price $ = $1", []any{5}, "price $ = ?", []any{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, args := SQLite.Rebind(tt.query, tt.args)
			if q != tt.wantQuery {
				t.Fatalf("query = %q, want %q", q, tt.wantQuery)
			}
			if len(args) == 0 && len(tt.wantArgs) == 0 {
				return
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestRebindPostgresIsIdentity(t *testing.T) {
	q, args := Postgres.Rebind("a = $2 AND b = $1", []any{1, 2})
	if q != "a = $2 AND b = $1" || !reflect.DeepEqual(args, []any{1, 2}) {
		t.Fatalf("postgres rebind changed the query: %q %v", q, args)
	}
}

func TestExtractUp(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a(id INT);\n-- +migrate Down\nDROP TABLE a;\n"
	if got := extractUp(content); got != "\nCREATE TABLE a(id INT);\n" {
		t.Fatalf("unexpected up section %q", got)
	}
	if got := extractUp("CREATE TABLE b(id INT);"); got != "CREATE TABLE b(id INT);" {
		t.Fatalf("unmarked file should be used whole, got %q", got)
	}
}

func TestApplyMigrationsRecordsOnce(t *testing.T) {
	sqlDB := openMemory(t)
	ctx := context.Background()
	migrations := fstest.MapFS{
		"001_create.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);")},
		"002_more.sql":   &fstest.MapFile{Data: []byte("-- +migrate Up\nCREATE TABLE more(id TEXT PRIMARY KEY);")},
		"README.md":      &fstest.MapFile{Data: []byte("not a migration")},
	}
	for i := 0; i < 2; i++ {
		if err := ApplyMigrations(ctx, sqlDB, SQLite, migrations, ""); err != nil {
			t.Fatalf("apply migrations (run %d): %v", i+1, err)
		}
	}
	if n := count(t, sqlDB, "SELECT COUNT(*) FROM schema_migrations"); n != 2 {
		t.Fatalf("expected 2 migration rows, got %d", n)
	}
}

func TestApplyMigrationsDoesNotRecordFailure(t *testing.T) {
	sqlDB := openMemory(t)
	ctx := context.Background()
	bad := fstest.MapFS{
		"001_bad.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREAT TABLE things(id INT);")},
	}
	if err := ApplyMigrations(ctx, sqlDB, SQLite, bad, ""); err == nil {
		t.Fatalf("expected bad migration to fail")
	}
	if n := count(t, sqlDB, "SELECT COUNT(*) FROM schema_migrations"); n != 0 {
		t.Fatalf("failed migration was recorded")
	}
	good := fstest.MapFS{
		"001_bad.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREATE TABLE things(id INT);")},
	}
	if err := ApplyMigrations(ctx, sqlDB, SQLite, good, ""); err != nil {
		t.Fatalf("fixed migration: %v", err)
	}
	if n := count(t, sqlDB, "SELECT COUNT(*) FROM schema_migrations"); n != 1 {
		t.Fatalf("expected the fixed migration to be recorded, got %d rows", n)
	}
}

func TestEmbeddedSQLiteSchema(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := Migrate(ctx, sqlDB, SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"games", "clubs", "seasons", "turns", "ledger_entries", "snapshots", "final_standings", "disclosures"} {
		if n := count(t, sqlDB, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = '"+table+"'"); n != 1 {
			t.Fatalf("table %s missing", table)
		}
	}
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite(context.Background(), "  "); err == nil {
		t.Fatalf("expected an error for an empty path")
	}
}

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func count(t *testing.T, sqlDB *sql.DB, query string) int64 {
	t.Helper()
	var n int64
	if err := sqlDB.QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return n
}
