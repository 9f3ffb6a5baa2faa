package middleware // middleware holds the Echo middleware shared by the hostel routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-management/internal/utils"
)

// Context keys set by JWTAuth.
const (
	CtxUsername = "username"
	CtxRole     = "role"
)

// JWTAuth validates a Bearer access token and stores its subject and role
// in the request context under CtxUsername and CtxRole.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(CtxUsername, claims.Subject)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}

// Username returns the authenticated username, or "anon" when the request
// carried no valid token.
func Username(c echo.Context) string {
	if s, ok := c.Get(CtxUsername).(string); ok && s != "" {
		return s
	}
	return "anon"
}
