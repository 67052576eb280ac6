package db

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	Dialect      string `json:"dialect"`
	OpenConns    int    `json:"open_conns"`
	InUseConns   int    `json:"in_use_conns"`
	IdleConns    int    `json:"idle_conns"`
	MaxOpenConns int    `json:"max_open_conns"`
	WaitCount    int64  `json:"wait_count"`
	WaitDuration string `json:"wait_duration"`
	Healthy      bool   `json:"healthy"`
}

// NewPoolStats converts database/sql statistics into PoolStats.
func NewPoolStats(d Dialect, stat sql.DBStats) *PoolStats {
	return &PoolStats{
		Dialect:      string(d),
		OpenConns:    stat.OpenConnections,
		InUseConns:   stat.InUse,
		IdleConns:    stat.Idle,
		MaxOpenConns: stat.MaxOpenConnections,
		WaitCount:    stat.WaitCount,
		WaitDuration: stat.WaitDuration.String(),
		Healthy:      stat.OpenConnections > 0,
	}
}

// GetPoolStats returns connection pool statistics.
func GetPoolStats(database *DB) *PoolStats {
	return NewPoolStats(database.Dialect, database.Stats())
}

// HealthHandler returns a handler for the database health check endpoint.
func HealthHandler(database *DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		err := database.PingContext(ctx)
		stats := GetPoolStats(database)

		if err != nil {
			stats.Healthy = false
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unhealthy",
				"pool":   stats,
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"pool":   stats,
		})
	}
}
