package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/repository"
	"github.com/iliyamo/hostel-management/internal/service"
)

// PaymentHandler serves payment status and the request/review workflow.
type PaymentHandler struct {
	Payments *service.PaymentService
	Repo     *repository.PaymentRepo
	Log      *zap.Logger
}

func NewPaymentHandler(svc *service.PaymentService, repo *repository.PaymentRepo, log *zap.Logger) *PaymentHandler {
	if svc == nil || repo == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{Payments: svc, Repo: repo, Log: log}
}

type paymentStatusReq struct {
	Username string `json:"username"`
	Status   string `json:"status"`
}

type paymentRequestReq struct {
	Username  string          `json:"username"`
	Amount    decimal.Decimal `json:"amount"`
	CardLast4 string          `json:"card_last4"`
}

// SetStatus handles POST /payment-status.
func (h *PaymentHandler) SetStatus(c echo.Context) error {
	var req paymentStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing username or status"})
	}
	if err := h.Payments.SetStatus(c.Request().Context(), req.Username, req.Status); err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Msg})
		}
		return serverError(c, h.Log, "error", "DB error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Payment status updated"})
}

// GetStatus handles GET /payment-status/:username.
func (h *PaymentHandler) GetStatus(c echo.Context) error {
	status, err := h.Payments.Status(c.Request().Context(), c.Param("username"))
	if err != nil {
		return serverError(c, h.Log, "error", "DB error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}

// CreateRequest handles POST /payment-request.
func (h *PaymentHandler) CreateRequest(c echo.Context) error {
	var req paymentRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "username and amount required"})
	}
	username, ok := actingAs(c, req.Username)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "You can only submit payments for your own account"})
	}
	id, err := h.Payments.CreateRequest(c.Request().Context(), username, req.Amount, req.CardLast4)
	var ve *service.ValidationError
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, echo.Map{"id": id, "message": "Payment request submitted"})
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": ve.Msg})
	case errors.Is(err, service.ErrPaymentCompleted):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Payment already completed for this user"})
	default:
		return serverError(c, h.Log, "message", "DB error", err)
	}
}

// ListRequests handles GET /payment-requests?status=.
func (h *PaymentHandler) ListRequests(c echo.Context) error {
	status := c.QueryParam("status")
	switch status {
	case "", model.RequestPending, model.RequestApproved, model.RequestRejected:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "status must be Pending, Approved or Rejected"})
	}
	list, err := h.Repo.ListRequests(c.Request().Context(), status)
	if err != nil {
		return serverError(c, h.Log, "message", "DB error", err)
	}
	return c.JSON(http.StatusOK, list)
}

// Approve handles PATCH /payment-requests/:id/approve.
func (h *PaymentHandler) Approve(c echo.Context) error {
	return h.review(c, h.Payments.Approve, "Payment request approved and user marked Paid")
}

// Reject handles PATCH /payment-requests/:id/reject.
func (h *PaymentHandler) Reject(c echo.Context) error {
	return h.review(c, h.Payments.Reject, "Payment request rejected")
}

func (h *PaymentHandler) review(c echo.Context, fn func(ctx context.Context, id uint64) (string, error), okMsg string) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request id"})
	}
	username, err := fn(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Request not found"})
		}
		return serverError(c, h.Log, "message", "DB error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": okMsg, "username": username})
}

// DuesCount handles GET /dues-count.
func (h *PaymentHandler) DuesCount(c echo.Context) error {
	n, err := h.Repo.DuesCount(c.Request().Context())
	if err != nil {
		return serverError(c, h.Log, "message", "DB error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"dueCount": n})
}
