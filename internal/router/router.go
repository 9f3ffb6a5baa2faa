package router // package router registers the HTTP routes of the hostel API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/config"
	"github.com/iliyamo/hostel-management/internal/handler"
	"github.com/iliyamo/hostel-management/internal/middleware"
)

// Handlers bundles every handler the router wires.
type Handlers struct {
	Auth          *handler.AuthHandler
	Rooms         *handler.RoomHandler
	Payments      *handler.PaymentHandler
	Complaints    *handler.ComplaintHandler
	Notifications *handler.NotificationHandler
	Students      *handler.StudentHandler
	VisitorLogs   *handler.VisitorLogHandler
	Health        *handler.HealthHandler
}

// RegisterRoutes registers the health check.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/health", h.Health.Health)
}

// RegisterAuth registers the account endpoints.  They are unauthenticated
// and sit behind the Redis token bucket.
func RegisterAuth(e *echo.Echo, h Handlers, rl config.RateLimitConfig, rdb *redis.Client, log *zap.Logger) {
	limit := middleware.RateLimit(rl, rdb, log)
	e.POST("/send-otp", h.Auth.SendOTP, limit)
	e.POST("/register", h.Auth.Register, limit)
	e.POST("/login", h.Auth.Login, limit)
	e.POST("/admin/login", h.Auth.AdminLogin, limit)
}

// Register wires every route group.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rl config.RateLimitConfig, rdb *redis.Client, log *zap.Logger) {
	RegisterRoutes(e, h)
	RegisterAuth(e, h, rl, rdb, log)
	RegisterStudent(e, h, cfg.JWTSecret)
	RegisterAdmin(e, h, cfg.JWTSecret)
}
