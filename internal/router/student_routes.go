package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-management/internal/middleware"
	"github.com/iliyamo/hostel-management/internal/utils"
)

// RegisterStudent registers the endpoints the student pages call.  Room,
// complaint and dues views are public.  Routes that read or write one
// student's records require a STUDENT or ADMIN token, and a student may
// only address their own username.
func RegisterStudent(e *echo.Echo, h Handlers, jwtSecret string) {
	signedIn := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleStudent, utils.RoleAdmin),
	}
	self := append(signedIn[:len(signedIn):len(signedIn)], middleware.SelfOrAdmin("username"))

	e.GET("/register/:username", h.Students.User, self...)
	e.POST("/details", h.Students.SaveDetails, signedIn...)
	e.GET("/details/:username", h.Students.Details, self...)
	e.GET("/my-room/:username", h.Rooms.MyRoom, self...)
	e.GET("/payment-status/:username", h.Payments.GetStatus, self...)
	e.POST("/payment-request", h.Payments.CreateRequest, signedIn...)

	e.GET("/available-rooms", h.Rooms.AvailableRooms)
	e.GET("/available-beds/:room_no", h.Rooms.AvailableBeds)
	e.GET("/unassigned-users", h.Rooms.UnassignedUsers)
	e.GET("/assignments", h.Rooms.Assignments)
	e.GET("/assignments/:room_no", h.Rooms.Assignments)
	e.GET("/all-rooms-gender-status", h.Rooms.RoomGenders)
	e.GET("/rooms-occupancy", h.Rooms.Occupancy)
	e.GET("/user-details", h.Students.RegistrationDates)
	e.GET("/dues-count", h.Payments.DuesCount)

	e.POST("/complaints", h.Complaints.Create)
	e.GET("/complaints", h.Complaints.List)
	e.POST("/notifications", h.Notifications.Create)
}
