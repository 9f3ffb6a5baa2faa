package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness and database reachability.
type HealthHandler struct {
	DB      *sql.DB
	Started time.Time
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{DB: db, Started: time.Now()}
}

// Health handles GET /health.  uptime is in seconds.
func (h *HealthHandler) Health(c echo.Context) error {
	uptime := time.Since(h.Started).Seconds()
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"status": "error",
			"uptime": uptime,
			"db":     false,
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "uptime": uptime, "db": true})
}
