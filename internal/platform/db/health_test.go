package db

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestNewPoolStats(t *testing.T) {
	stats := NewPoolStats(Postgres, sql.DBStats{
		MaxOpenConnections: 20,
		OpenConnections:    10,
		InUse:              5,
		Idle:               5,
		WaitCount:          100,
		WaitDuration:       1500 * time.Millisecond,
	})

	if stats.Dialect != "postgres" {
		t.Errorf("expected dialect postgres, got %s", stats.Dialect)
	}
	if stats.OpenConns != 10 {
		t.Errorf("expected OpenConns 10, got %d", stats.OpenConns)
	}
	if stats.InUseConns != 5 || stats.IdleConns != 5 {
		t.Errorf("expected 5 in use and 5 idle, got %d/%d", stats.InUseConns, stats.IdleConns)
	}
	if stats.MaxOpenConns != 20 {
		t.Errorf("expected MaxOpenConns 20, got %d", stats.MaxOpenConns)
	}
	if stats.WaitDuration != "1.5s" {
		t.Errorf("expected WaitDuration '1.5s', got %q", stats.WaitDuration)
	}
	if !stats.Healthy {
		t.Error("expected Healthy to be true")
	}
}

func TestNewPoolStats_UnhealthyState(t *testing.T) {
	stats := NewPoolStats(SQLite, sql.DBStats{MaxOpenConnections: 1})
	if stats.Healthy {
		t.Error("expected Healthy to be false when no connection is open")
	}
}

func TestHealthHandler(t *testing.T) {
	database := openMemory(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := HealthHandler(database)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Status string    `json:"status"`
		Pool   PoolStats `json:"pool"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Status != "healthy" {
		t.Errorf("expected healthy, got %s", body.Status)
	}
	if body.Pool.Dialect != "sqlite" {
		t.Errorf("expected sqlite dialect, got %s", body.Pool.Dialect)
	}
}

func TestHealthHandler_ClosedDatabase(t *testing.T) {
	database := openMemory(t)
	database.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := HealthHandler(database)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}
