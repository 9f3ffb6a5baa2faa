package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/repository"
	"github.com/iliyamo/hostel-management/internal/service"
)

// RoomHandler serves bed assignment and the read-only room queries.
type RoomHandler struct {
	Accounts      *repository.AccountRepo
	Rooms         *repository.RoomRepo
	AssignmentSvc *service.AssignmentService
	Log           *zap.Logger
}

func NewRoomHandler(accounts *repository.AccountRepo, rooms *repository.RoomRepo, svc *service.AssignmentService, log *zap.Logger) *RoomHandler {
	if accounts == nil || rooms == nil || svc == nil {
		panic("nil dependency passed to NewRoomHandler")
	}
	return &RoomHandler{Accounts: accounts, Rooms: rooms, AssignmentSvc: svc, Log: log}
}

type assignReq struct {
	Username string `json:"username" validate:"required"`
	RoomNo   string `json:"room_no" validate:"required"`
}

// AssignRoom handles POST /assign-room.
func (h *RoomHandler) AssignRoom(c echo.Context) error {
	var req assignReq
	if err := bindValid(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing student and room data"})
	}
	res, err := h.AssignmentSvc.Assign(c.Request().Context(), req.Username, req.RoomNo)
	var (
		gc *service.GenderConflictError
		ve *service.ValidationError
	)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{
			"message": res.Message(),
			"room_no": res.RoomNo,
			"bed_no":  res.BedNo,
			"gender":  res.Gender,
		})
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": ve.Msg})
	case errors.Is(err, service.ErrStudentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Student not found"})
	case errors.As(err, &gc):
		return c.JSON(http.StatusForbidden, echo.Map{"message": gc.Error()})
	case errors.Is(err, service.ErrAlreadyAssigned):
		return c.JSON(http.StatusConflict, echo.Map{"message": "Student already has a bed. Remove the current assignment first."})
	case errors.Is(err, service.ErrNoFreeBeds):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "No free beds in this room"})
	default:
		return serverError(c, h.Log, "message", "DB error during assignment", err)
	}
}

// RemoveAssignment handles DELETE /remove-assignment/:username.
func (h *RoomHandler) RemoveAssignment(c echo.Context) error {
	username := c.Param("username")
	n, err := h.AssignmentSvc.Unassign(c.Request().Context(), username)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": ve.Msg})
		}
		return serverError(c, h.Log, "message", "DB error while removing assignment", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Assignment removed for " + username,
		"affectedRows": n,
	})
}

// UnassignedUsers handles GET /unassigned-users.
func (h *RoomHandler) UnassignedUsers(c echo.Context) error {
	users, err := h.Accounts.ListUnassigned(c.Request().Context())
	if err != nil {
		return serverError(c, h.Log, "message", "DB error", err)
	}
	return c.JSON(http.StatusOK, users)
}

// AvailableRooms handles GET /available-rooms.
func (h *RoomHandler) AvailableRooms(c echo.Context) error {
	rooms, err := h.Rooms.AvailableRooms(c.Request().Context())
	if err != nil {
		return serverError(c, h.Log, "message", "DB error", err)
	}
	return c.JSON(http.StatusOK, rooms)
}

type freeBed struct {
	BedNo int `json:"bed_no"`
}

// AvailableBeds handles GET /available-beds/:room_no.
func (h *RoomHandler) AvailableBeds(c echo.Context) error {
	beds, err := h.Rooms.FreeBeds(c.Request().Context(), c.Param("room_no"))
	if err != nil {
		return serverError(c, h.Log, "message", "DB error", err)
	}
	out := make([]freeBed, 0, len(beds))
	for _, b := range beds {
		out = append(out, freeBed{BedNo: b})
	}
	return c.JSON(http.StatusOK, out)
}

// Assignments handles GET /assignments and GET /assignments/:room_no.
func (h *RoomHandler) Assignments(c echo.Context) error {
	list, err := h.Rooms.Assignments(c.Request().Context(), c.Param("room_no"))
	if err != nil {
		return serverError(c, h.Log, "message", "DB error", err)
	}
	return c.JSON(http.StatusOK, list)
}

// MyRoom handles GET /my-room/:username.  A student without a bed gets 200
// with a message rather than 404 so the frontend can render it directly.
func (h *RoomHandler) MyRoom(c echo.Context) error {
	a, err := h.Rooms.AssignmentFor(c.Request().Context(), c.Param("username"))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusOK, echo.Map{"message": "No room assigned yet"})
	}
	if err != nil {
		return serverError(c, h.Log, "message", "DB error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"room_no": a.RoomNo, "bed_no": a.BedNo})
}

// RoomGenders handles GET /all-rooms-gender-status.
func (h *RoomHandler) RoomGenders(c echo.Context) error {
	m, err := h.Rooms.RoomGenders(c.Request().Context())
	if err != nil {
		return serverError(c, h.Log, "message", "DB error", err)
	}
	return c.JSON(http.StatusOK, m)
}

// Occupancy handles GET /rooms-occupancy.
func (h *RoomHandler) Occupancy(c echo.Context) error {
	o, err := h.Rooms.Occupancy(c.Request().Context())
	if err != nil {
		return serverError(c, h.Log, "error", "DB error", err)
	}
	return c.JSON(http.StatusOK, o)
}
