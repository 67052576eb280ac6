package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	DBConnKey contextKey = "db_conn"
	DBTxKey   contextKey = "db_tx"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// requestConn is the per-request connection slot. The connection is taken
// from the pool on first use, so requests that never reach storage never
// wait for one.
type requestConn struct {
	db   *DB
	mu   sync.Mutex
	conn *sql.Conn
}

func (r *requestConn) acquire(ctx context.Context) (*sql.Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		conn, err := r.db.Conn(ctx)
		if err != nil {
			return nil, err
		}
		r.conn = conn
	}
	return r.conn, nil
}

func (r *requestConn) current() *sql.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn
}

func (r *requestConn) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		_ = r.conn.Close()
		r.conn = nil
	}
}

// ConnMiddleware scopes one pool connection to the request and releases it
// when the handler returns, whatever the outcome. WithTx takes the
// connection on first use; repositories pick it up through ConnFromContext.
func ConnMiddleware(database *DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			slot := &requestConn{db: database}
			defer slot.release()

			ctx := context.WithValue(c.Request().Context(), DBConnKey, slot)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// ConnFromContext returns the request connection once it has been taken
// from the pool, or nil.
func ConnFromContext(ctx context.Context) *sql.Conn {
	if slot, ok := ctx.Value(DBConnKey).(*requestConn); ok {
		return slot.current()
	}
	return nil
}

// TxFromContext retrieves the transaction started by WithTx, if any.
func TxFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(DBTxKey).(*sql.Tx)
	return tx
}

// Pick returns the narrowest handle available for ctx: the active
// transaction, then the request connection if one was taken, then the pool.
func Pick(ctx context.Context, database *DB) Querier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := ConnFromContext(ctx); c != nil {
		return c
	}
	return database
}

// Transactor runs a unit of work in a transaction. *DB implements it.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// WithTx implements Transactor.
func (d *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTx(ctx, d, fn)
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back when fn returns an error, panics, or ctx is
// cancelled. Nested calls reuse the outer transaction.
func WithTx(ctx context.Context, database *DB, fn func(ctx context.Context) error) (err error) {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	var tx *sql.Tx
	if slot, ok := ctx.Value(DBConnKey).(*requestConn); ok {
		var conn *sql.Conn
		if conn, err = slot.acquire(ctx); err != nil {
			return Translate(fmt.Errorf("acquire connection: %w", err))
		}
		tx, err = conn.BeginTx(ctx, nil)
	} else {
		tx, err = database.BeginTx(ctx, nil)
	}
	if err != nil {
		return Translate(fmt.Errorf("begin transaction: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(context.WithValue(ctx, DBTxKey, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return Translate(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}
