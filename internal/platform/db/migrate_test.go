package db

import (
	"context"
	"testing"
	"testing/fstest"
	"time"
)

func mapFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func openMemory(t *testing.T) *DB {
	t.Helper()
	database, err := Open(context.Background(), "sqlite:///:memory:", 1, 1)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestLoadMigrations(t *testing.T) {
	migrator := NewMigrator(nil, mapFS(map[string]string{
		"001_core.sql":          "CREATE TABLE users (id INTEGER PRIMARY KEY);",
		"002_appointments.sql":  "CREATE TABLE appointments (id INTEGER PRIMARY KEY);",
		"003_prescriptions.sql": "CREATE TABLE prescriptions (id INTEGER PRIMARY KEY);",
	}))
	migrations, err := migrator.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}

	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}

	if migrations[0].Version != 1 {
		t.Errorf("expected version 1, got %d", migrations[0].Version)
	}
	if migrations[0].Name != "001_core.sql" {
		t.Errorf("expected name 001_core.sql, got %s", migrations[0].Name)
	}
	if migrations[0].SQL != "CREATE TABLE users (id INTEGER PRIMARY KEY);" {
		t.Errorf("unexpected SQL content: %s", migrations[0].SQL)
	}
	if migrations[2].Version != 3 {
		t.Errorf("expected version 3, got %d", migrations[2].Version)
	}
}

func TestLoadMigrations_SortOrder(t *testing.T) {
	migrator := NewMigrator(nil, mapFS(map[string]string{
		"010_tables.sql": "SELECT 10;",
		"002_second.sql": "SELECT 2;",
		"001_first.sql":  "SELECT 1;",
		"005_middle.sql": "SELECT 5;",
	}))
	migrations, err := migrator.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}

	expectedVersions := []int{1, 2, 5, 10}
	if len(migrations) != len(expectedVersions) {
		t.Fatalf("expected %d migrations, got %d", len(expectedVersions), len(migrations))
	}
	for i, expected := range expectedVersions {
		if migrations[i].Version != expected {
			t.Errorf("migration[%d]: expected version %d, got %d", i, expected, migrations[i].Version)
		}
	}
}

func TestLoadMigrations_InvalidFilename(t *testing.T) {
	migrator := NewMigrator(nil, mapFS(map[string]string{
		"001_valid.sql":      "SELECT 1;",
		"readme.sql":         "-- this has no version prefix",
		"notes.txt":          "not a sql file",
		"abc_invalid.sql":    "-- non-numeric prefix",
		"002_also_valid.sql": "SELECT 2;",
	}))
	migrations, err := migrator.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}

	if len(migrations) != 2 {
		t.Fatalf("expected 2 valid migrations, got %d", len(migrations))
	}
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	migrator := NewMigrator(nil, mapFS(map[string]string{
		"001_a.sql": "SELECT 1;",
		"001_b.sql": "SELECT 1;",
	}))
	if _, err := migrator.LoadMigrations(); err == nil {
		t.Error("expected error for duplicate versions")
	}
}

func TestEmbeddedMigrations_BothDialects(t *testing.T) {
	for _, d := range []Dialect{Postgres, SQLite} {
		files, err := Migrations(d)
		if err != nil {
			t.Fatalf("Migrations(%s) error: %v", d, err)
		}
		migrations, err := NewMigrator(nil, files).LoadMigrations()
		if err != nil {
			t.Fatalf("LoadMigrations(%s) error: %v", d, err)
		}
		if len(migrations) == 0 || migrations[0].Name != "001_core.sql" {
			t.Errorf("%s: expected 001_core.sql first, got %+v", d, migrations)
		}
	}
}

func TestMigrator_UpAndStatus(t *testing.T) {
	database := openMemory(t)
	ctx := context.Background()

	migrator, err := NewDefaultMigrator(database)
	if err != nil {
		t.Fatalf("NewDefaultMigrator() error: %v", err)
	}

	count, err := migrator.Up(ctx)
	if err != nil {
		t.Fatalf("Up() error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 applied migration, got %d", count)
	}

	// A second run is a no-op.
	count, err = migrator.Up(ctx)
	if err != nil {
		t.Fatalf("second Up() error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 applied migrations on rerun, got %d", count)
	}

	statuses, err := migrator.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if len(statuses) != 1 || !statuses[0].Applied || statuses[0].AppliedAt == nil {
		t.Errorf("expected 001 applied with timestamp, got %+v", statuses)
	}

	for _, table := range []string{"users", "appointments", "prescriptions", "messages"} {
		var n int
		if err := database.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			t.Errorf("table %s not created: %v", table, err)
		}
	}
}

func TestMigrator_StatusPending(t *testing.T) {
	database := openMemory(t)
	migrator := NewMigrator(database, mapFS(map[string]string{
		"001_a.sql": "CREATE TABLE a (id INTEGER PRIMARY KEY);",
		"002_b.sql": "CREATE TABLE b (id INTEGER PRIMARY KEY);",
	}))

	if _, err := migrator.UpTo(context.Background(), 1); err != nil {
		t.Fatalf("UpTo() error: %v", err)
	}
	statuses, err := migrator.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if !statuses[0].Applied {
		t.Error("expected migration 001 to be applied")
	}
	if statuses[1].Applied || statuses[1].AppliedAt != nil {
		t.Error("expected migration 002 to be pending")
	}
}

func TestMigrator_FailedMigrationRollsBack(t *testing.T) {
	database := openMemory(t)
	migrator := NewMigrator(database, mapFS(map[string]string{
		"001_ok.sql":     "CREATE TABLE ok (id INTEGER PRIMARY KEY);",
		"002_broken.sql": "CREATE TABLE broken (id INTEGER PRIMARY KEY); THIS IS NOT SQL;",
	}))

	count, err := migrator.Up(context.Background())
	if err == nil {
		t.Fatal("expected error from broken migration")
	}
	if count != 1 {
		t.Errorf("expected 1 migration applied before failure, got %d", count)
	}

	applied, err := migrator.AppliedVersions(context.Background())
	if err != nil {
		t.Fatalf("AppliedVersions() error: %v", err)
	}
	if applied[2] {
		t.Error("broken migration must not be recorded")
	}
}

func TestUpdatedAtTrigger_SQLite(t *testing.T) {
	database := openMemory(t)
	ctx := context.Background()
	migrator, _ := NewDefaultMigrator(database)
	if _, err := migrator.Up(ctx); err != nil {
		t.Fatalf("Up() error: %v", err)
	}

	created := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if _, err := database.ExecContext(ctx, `
		INSERT INTO users (username, hashed_password, email, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		"alice", "hash", "alice@example.com", "Alice", "A", created, created); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := database.ExecContext(ctx, `UPDATE users SET first_name = $1 WHERE username = $2`, "Alicia", "alice"); err != nil {
		t.Fatalf("update: %v", err)
	}

	var createdAt, updatedAt time.Time
	if err := database.QueryRowContext(ctx, `SELECT created_at, updated_at FROM users WHERE username = $1`, "alice").
		Scan(&createdAt, &updatedAt); err != nil {
		t.Fatalf("select: %v", err)
	}
	if !createdAt.Equal(created) {
		t.Errorf("created_at changed: %s", createdAt)
	}
	if !updatedAt.After(created) {
		t.Errorf("expected updated_at to be refreshed, got %s", updatedAt)
	}
}
