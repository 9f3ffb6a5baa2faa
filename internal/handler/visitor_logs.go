package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/export"
	"github.com/iliyamo/hostel-management/internal/repository"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// VisitorLogHandler exposes the login audit trail.
type VisitorLogHandler struct {
	Repo *repository.VisitorLogRepo
	Log  *zap.Logger
}

func NewVisitorLogHandler(repo *repository.VisitorLogRepo, log *zap.Logger) *VisitorLogHandler {
	return &VisitorLogHandler{Repo: repo, Log: log}
}

// List handles GET /visitor-logs.
func (h *VisitorLogHandler) List(c echo.Context) error {
	logs, err := h.Repo.List(c.Request().Context())
	if err != nil {
		return serverError(c, h.Log, "message", "Database error fetching logs.", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"logs": logs})
}

// Export handles GET /visitor-logs/export and returns an xlsx attachment.
func (h *VisitorLogHandler) Export(c echo.Context) error {
	logs, err := h.Repo.List(c.Request().Context())
	if err != nil {
		return serverError(c, h.Log, "message", "Database error fetching logs.", err)
	}
	data, err := export.VisitorLogsXLSX(logs)
	if err != nil {
		return serverError(c, h.Log, "message", "Failed to build export.", err)
	}
	name := fmt.Sprintf("visitor-logs-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, xlsxMIME, data)
}
