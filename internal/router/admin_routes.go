package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-management/internal/middleware"
	"github.com/iliyamo/hostel-management/internal/utils"
)

// RegisterAdmin registers administration endpoints.  All of them require
// a valid JWT with the ADMIN role.  The paths share the root with public
// routes, so the middleware is attached per route instead of to a group.
func RegisterAdmin(e *echo.Echo, h Handlers, jwtSecret string) {
	admin := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleAdmin),
	}

	e.POST("/assign-room", h.Rooms.AssignRoom, admin...)
	e.DELETE("/remove-assignment/:username", h.Rooms.RemoveAssignment, admin...)

	e.GET("/users", h.Students.Users, admin...)
	e.GET("/student-details", h.Students.ListDetails, admin...)
	e.DELETE("/students/:username", h.Students.Delete, admin...)

	e.POST("/payment-status", h.Payments.SetStatus, admin...)
	e.GET("/payment-requests", h.Payments.ListRequests, admin...)
	e.PATCH("/payment-requests/:id/approve", h.Payments.Approve, admin...)
	e.PATCH("/payment-requests/:id/reject", h.Payments.Reject, admin...)

	e.PATCH("/complaints/:id", h.Complaints.UpdateStatus, admin...)
	e.DELETE("/complaints/:id", h.Complaints.Delete, admin...)

	e.GET("/notifications", h.Notifications.List, admin...)
	e.PATCH("/notifications/:id/read", h.Notifications.MarkRead, admin...)

	e.GET("/visitor-logs", h.VisitorLogs.List, admin...)
	e.GET("/visitor-logs/export", h.VisitorLogs.Export, admin...)
}
