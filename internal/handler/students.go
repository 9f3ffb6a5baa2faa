package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/repository"
	"github.com/iliyamo/hostel-management/internal/service"
)

// StudentHandler serves account listings, academic details and student
// removal.
type StudentHandler struct {
	Accounts    *repository.AccountRepo
	DetailRepo  *repository.StudentDetailRepo
	Assignments *service.AssignmentService
	Log         *zap.Logger
}

func NewStudentHandler(accounts *repository.AccountRepo, details *repository.StudentDetailRepo, svc *service.AssignmentService, log *zap.Logger) *StudentHandler {
	return &StudentHandler{Accounts: accounts, DetailRepo: details, Assignments: svc, Log: log}
}

type detailsReq struct {
	Username    string `json:"username" validate:"required"`
	Email       string `json:"email" validate:"required"`
	Contact     string `json:"contact" validate:"required"`
	Course      string `json:"course"`
	Year        string `json:"year"`
	Semester    string `json:"semester"`
	PrevCollege string `json:"prevCollege"`
	PrevResult  string `json:"prevResult"`
}

// Users handles GET /users.
func (h *StudentHandler) Users(c echo.Context) error {
	users, err := h.Accounts.ListRegistered(c.Request().Context())
	if err != nil {
		return serverError(c, h.Log, "message", "DB error", err)
	}
	return c.JSON(http.StatusOK, users)
}

// User handles GET /register/:username.
func (h *StudentHandler) User(c echo.Context) error {
	p, err := h.Accounts.GetProfile(c.Request().Context(), c.Param("username"))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	}
	if err != nil {
		return serverError(c, h.Log, "message", "DB error", err)
	}
	return c.JSON(http.StatusOK, p)
}

// RegistrationDates handles GET /user-details.
func (h *StudentHandler) RegistrationDates(c echo.Context) error {
	m, err := h.Accounts.RegistrationDates(c.Request().Context())
	if err != nil {
		return serverError(c, h.Log, "message", "Database error fetching user details.", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": m})
}

// SaveDetails handles POST /details.
func (h *StudentHandler) SaveDetails(c echo.Context) error {
	var req detailsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	username, ok := actingAs(c, req.Username)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "You can only update your own details"})
	}
	req.Username = username
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing student data", "fields": missingFields(err)})
	}
	err := h.DetailRepo.Save(c.Request().Context(), &model.StudentDetail{
		Username:    req.Username,
		Email:       req.Email,
		Contact:     req.Contact,
		Course:      optional(req.Course),
		Year:        optional(req.Year),
		Semester:    optional(req.Semester),
		PrevCollege: optional(req.PrevCollege),
		PrevResult:  optional(req.PrevResult),
	})
	if err != nil {
		return serverError(c, h.Log, "message", "Database error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Academic details saved successfully"})
}

// Details handles GET /details/:username.
func (h *StudentHandler) Details(c echo.Context) error {
	d, err := h.DetailRepo.Get(c.Request().Context(), c.Param("username"))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "No academic details found"})
	}
	if err != nil {
		return serverError(c, h.Log, "message", "DB error", err)
	}
	return c.JSON(http.StatusOK, d)
}

// ListDetails handles GET /student-details.
func (h *StudentHandler) ListDetails(c echo.Context) error {
	list, err := h.DetailRepo.List(c.Request().Context())
	if err != nil {
		return serverError(c, h.Log, "message", "DB error", err)
	}
	return c.JSON(http.StatusOK, list)
}

// Delete handles DELETE /students/:username.
func (h *StudentHandler) Delete(c echo.Context) error {
	username := c.Param("username")
	err := h.Assignments.DeleteStudent(c.Request().Context(), username)
	var ve *service.ValidationError
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "Student " + username + " deleted successfully (room freed)"})
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": ve.Msg})
	case errors.Is(err, service.ErrStudentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Student not found"})
	default:
		return serverError(c, h.Log, "message", "Error deleting student", err)
	}
}
