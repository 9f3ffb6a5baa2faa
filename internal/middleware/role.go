package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-management/internal/utils"
)

// RequireRole rejects requests whose token role is not one of roles.  It
// must run after JWTAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// CanActAs reports whether the authenticated caller may read or write
// username's records.  Admins may act for anyone; students only for
// themselves.
func CanActAs(c echo.Context, username string) bool {
	if role, _ := c.Get(CtxRole).(string); role == utils.RoleAdmin {
		return true
	}
	sub, _ := c.Get(CtxUsername).(string)
	return sub != "" && sub == username
}

// SelfOrAdmin rejects requests whose path parameter param names another
// student.  It must run after JWTAuth.
func SelfOrAdmin(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CanActAs(c, c.Param(param)) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
