package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/repository"
)

// ComplaintHandler serves the complaint lifecycle.  Error bodies use the
// "error" key.
type ComplaintHandler struct {
	Repo *repository.ComplaintRepo
	Log  *zap.Logger
}

func NewComplaintHandler(repo *repository.ComplaintRepo, log *zap.Logger) *ComplaintHandler {
	return &ComplaintHandler{Repo: repo, Log: log}
}

type complaintReq struct {
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Username    string `json:"username"`
}

type complaintStatusReq struct {
	Status string `json:"status" validate:"required"`
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Create handles POST /complaints.
func (h *ComplaintHandler) Create(c echo.Context) error {
	var req complaintReq
	if err := bindValid(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject and description required"})
	}
	id, err := h.Repo.Create(c.Request().Context(), &model.Complaint{
		Subject:     req.Subject,
		Description: req.Description,
		Category:    optional(req.Category),
		Location:    optional(req.Location),
		Username:    optional(req.Username),
	})
	if err != nil {
		return serverError(c, h.Log, "error", "Could not save complaint", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "id": id, "message": "Complaint filed successfully"})
}

// List handles GET /complaints.
func (h *ComplaintHandler) List(c echo.Context) error {
	list, err := h.Repo.List(c.Request().Context())
	if err != nil {
		return serverError(c, h.Log, "error", "Could not fetch complaints", err)
	}
	return c.JSON(http.StatusOK, list)
}

// UpdateStatus handles PATCH /complaints/:id.
func (h *ComplaintHandler) UpdateStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid complaint id"})
	}
	var req complaintStatusReq
	if err := bindValid(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
	}
	n, err := h.Repo.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return serverError(c, h.Log, "error", "Could not update complaint", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "affectedRows": n})
}

// Delete handles DELETE /complaints/:id.  Only resolved complaints can be
// removed.
func (h *ComplaintHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid complaint id"})
	}
	n, err := h.Repo.DeleteResolved(c.Request().Context(), id)
	if err != nil {
		return serverError(c, h.Log, "error", "Could not delete complaint", err)
	}
	if n == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Complaint not found or not resolved"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "message": "Complaint deleted successfully"})
}
