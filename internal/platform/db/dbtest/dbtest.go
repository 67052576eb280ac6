// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/clinic/clinic/internal/platform/db"
)

// Open returns an in-memory SQLite database with the full schema applied.
// It is closed when the test finishes.
func Open(t testing.TB) *db.DB {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, "sqlite:///:memory:", 1, 1)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	migrator, err := db.NewDefaultMigrator(database)
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}
	if _, err := migrator.Up(ctx); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return database
}

// Count returns the number of rows in table.
func Count(t testing.TB, database *db.DB, table string) int {
	t.Helper()
	var n int
	if err := database.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
