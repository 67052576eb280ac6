package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect identifies the SQL engine behind a DB handle.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DB is the process-wide connection pool handle. It is opened once at
// startup, passed to repositories explicitly, and closed at shutdown.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Target is a parsed DATABASE_URL.
type Target struct {
	Dialect    Dialect
	DriverName string
	DSN        string
}

// ParseURL resolves a DATABASE_URL into a driver and DSN. Postgres URLs are
// passed to pgx unchanged. SQLite accepts sqlite://path as well as the
// sqlite:///relative and sqlite:////absolute forms.
func ParseURL(databaseURL string) (Target, error) {
	u := strings.TrimSpace(databaseURL)
	switch {
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return Target{Dialect: Postgres, DriverName: "pgx", DSN: u}, nil
	case strings.HasPrefix(u, "sqlite://"):
		path := strings.TrimPrefix(u, "sqlite://")
		path = strings.TrimPrefix(path, "/")
		if path == "" {
			return Target{}, fmt.Errorf("sqlite url %q has no database path", databaseURL)
		}
		return Target{Dialect: SQLite, DriverName: "sqlite3", DSN: sqliteDSN(path)}, nil
	default:
		return Target{}, fmt.Errorf("unsupported database url scheme: %q", schemeOf(u))
	}
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

func schemeOf(u string) string {
	if i := strings.Index(u, "://"); i > 0 {
		return u[:i]
	}
	return u
}

// Open connects to the database named by databaseURL and verifies the
// connection with a ping.
func Open(ctx context.Context, databaseURL string, maxConns, minConns int32) (*DB, error) {
	target, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(target.DriverName, target.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", target.Dialect, err)
	}

	switch target.Dialect {
	case SQLite:
		// SQLite allows one writer; a single connection also keeps an
		// in-memory database alive for the life of the pool.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	default:
		sqlDB.SetMaxOpenConns(int(maxConns))
		sqlDB.SetMaxIdleConns(int(minConns))
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{DB: sqlDB, Dialect: target.Dialect}, nil
}
