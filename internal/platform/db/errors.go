package db

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/clinic/clinic/internal/platform/apperror"
)

// Violation describes a constraint rejection reported by either driver.
type Violation struct {
	Kind   apperror.ConflictKind
	Table  string
	Column string
}

// Classify inspects a driver error and reports which constraint rejected the
// statement, if any.
func Classify(err error) (Violation, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPG(pgErr)
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return classifySQLite(liteErr)
	}
	return Violation{}, false
}

func classifyPG(e *pgconn.PgError) (Violation, bool) {
	v := Violation{Table: e.TableName, Column: e.ColumnName}
	switch e.Code {
	case "23505":
		v.Kind = apperror.UniqueViolation
		if v.Column == "" {
			v.Column = columnFromConstraint(e.ConstraintName, e.TableName, "_key")
		}
	case "23503":
		v.Kind = apperror.ForeignKeyViolation
		if v.Column == "" {
			v.Column = columnFromConstraint(e.ConstraintName, e.TableName, "_fkey")
		}
	case "23514":
		v.Kind = apperror.CheckViolation
		if v.Column == "" {
			v.Column = columnFromConstraint(e.ConstraintName, e.TableName, "_check")
		}
	default:
		return Violation{}, false
	}
	return v, true
}

// columnFromConstraint recovers the column from Postgres default constraint
// names such as users_username_key.
func columnFromConstraint(name, table, suffix string) string {
	if !strings.HasSuffix(name, suffix) {
		return ""
	}
	name = strings.TrimSuffix(name, suffix)
	if table != "" {
		name = strings.TrimPrefix(name, table+"_")
	}
	return name
}

func classifySQLite(e sqlite3.Error) (Violation, bool) {
	if e.Code != sqlite3.ErrConstraint {
		return Violation{}, false
	}
	var v Violation
	switch e.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		v.Kind = apperror.UniqueViolation
		v.Table, v.Column = sqliteTarget(e.Error())
	case sqlite3.ErrConstraintForeignKey:
		v.Kind = apperror.ForeignKeyViolation
	case sqlite3.ErrConstraintCheck:
		v.Kind = apperror.CheckViolation
		// SQLite reports the constraint name: <table>_<column>_check.
		_, name := sqliteTarget(e.Error())
		v.Column = name
		if i := strings.Index(name, "_"); i > 0 && strings.HasSuffix(name, "_check") {
			v.Table = name[:i]
			v.Column = columnFromConstraint(name, v.Table, "_check")
		}
	default:
		return Violation{}, false
	}
	return v, true
}

// sqliteTarget parses messages like "UNIQUE constraint failed: users.email".
func sqliteTarget(msg string) (table, column string) {
	i := strings.LastIndex(msg, ": ")
	if i < 0 {
		return "", ""
	}
	target := msg[i+2:]
	if j := strings.Index(target, ","); j >= 0 {
		target = target[:j]
	}
	target = strings.TrimSpace(target)
	if dot := strings.Index(target, "."); dot >= 0 {
		return target[:dot], target[dot+1:]
	}
	return "", target
}

// IsUnavailable reports whether err means the store could not be reached.
func IsUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	// database/sql does not export its closed-pool error.
	if strings.Contains(err.Error(), "sql: database is closed") {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08") ||
			pgErr.Code == "53300" || pgErr.Code == "57P01" || pgErr.Code == "57P03"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrCantOpen, sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrIoErr:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Translate converts driver errors into apperror values with messages that
// are safe to return to clients. Other errors pass through unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if v, ok := Classify(err); ok {
		return apperror.Conflict(v.Kind, v.detail(), err)
	}
	if IsUnavailable(err) {
		return apperror.Unavailable(err)
	}
	return err
}

func (v Violation) detail() string {
	switch v.Kind {
	case apperror.UniqueViolation:
		if v.Column != "" {
			return fmt.Sprintf("%s already exists", v.Column)
		}
		return "record already exists"
	case apperror.ForeignKeyViolation:
		return "referenced user does not exist"
	case apperror.CheckViolation:
		if v.Column != "" {
			return fmt.Sprintf("invalid value for %s", v.Column)
		}
		return "value violates a check constraint"
	default:
		return "constraint violation"
	}
}
