package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats is the connection pool snapshot reported by /health/db.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
}

func statsOf(pool *pgxpool.Pool) PoolStats {
	stat := pool.Stat()
	return PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
}

// HealthReport is the /health/db response body.
type HealthReport struct {
	Status string    `json:"status"`
	Pool   PoolStats `json:"pool"`
}

func newHealthReport(pingErr error, stats PoolStats) (int, HealthReport) {
	if pingErr != nil {
		return http.StatusServiceUnavailable, HealthReport{Status: "unhealthy", Pool: stats}
	}
	return http.StatusOK, HealthReport{Status: "healthy", Pool: stats}
}

// HealthHandler pings the database and reports pool statistics. The ping
// error itself is not echoed back because it can contain the DSN host.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		status, report := newHealthReport(pool.Ping(ctx), statsOf(pool))
		return c.JSON(status, report)
	}
}
