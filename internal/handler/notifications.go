package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/repository"
)

// NotificationHandler serves student-to-admin notifications such as room
// change requests.
type NotificationHandler struct {
	Repo *repository.NotificationRepo
	Log  *zap.Logger
}

func NewNotificationHandler(repo *repository.NotificationRepo, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{Repo: repo, Log: log}
}

type notificationReq struct {
	Username    string `json:"username" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Message     string `json:"message"`
	DesiredRoom string `json:"desired_room"`
}

// Create handles POST /notifications.
func (h *NotificationHandler) Create(c echo.Context) error {
	var req notificationReq
	if err := bindValid(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "username and subject required"})
	}
	id, err := h.Repo.Create(c.Request().Context(), &model.Notification{
		Username:    req.Username,
		Subject:     req.Subject,
		Message:     optional(req.Message),
		DesiredRoom: optional(req.DesiredRoom),
	})
	if err != nil {
		return serverError(c, h.Log, "message", "DB error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "message": "Notification created"})
}

// List handles GET /notifications; ?unread=1 limits it to unread ones.
func (h *NotificationHandler) List(c echo.Context) error {
	list, err := h.Repo.List(c.Request().Context(), c.QueryParam("unread") == "1")
	if err != nil {
		return serverError(c, h.Log, "message", "DB error", err)
	}
	return c.JSON(http.StatusOK, list)
}

// MarkRead handles PATCH /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid notification id"})
	}
	n, err := h.Repo.MarkRead(c.Request().Context(), id)
	if err != nil {
		return serverError(c, h.Log, "message", "DB error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Marked read", "affectedRows": n})
}
