package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/config"
	"github.com/iliyamo/hostel-management/internal/service"
	"github.com/iliyamo/hostel-management/internal/utils"
)

// AuthHandler serves the OTP registration flow and the two logins.
type AuthHandler struct {
	Cfg          config.Config
	Registration *service.RegistrationService
	Log          *zap.Logger
}

func NewAuthHandler(cfg config.Config, reg *service.RegistrationService, log *zap.Logger) *AuthHandler {
	if reg == nil {
		panic("nil registration service passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Registration: reg, Log: log}
}

type sendOTPReq struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Gender   string `json:"gender"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
	OTP      string `json:"otp"`
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResp struct {
	Message  string            `json:"message"`
	Username string            `json:"username"`
	Email    string            `json:"email"`
	Gender   string            `json:"gender"`
	Access   utils.AccessToken `json:"access"`
	Token    string            `json:"token"`
}

// SendOTP handles POST /send-otp.
func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req sendOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	err := h.Registration.RequestOTP(c.Request().Context(), req.Email, req.Username)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent successfully"})
	case errors.Is(err, service.ErrInvalidEmail):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Please enter a valid email address format."})
	case errors.Is(err, service.ErrUsernameTaken):
		return c.JSON(http.StatusConflict, echo.Map{"message": "This username is already taken. Please choose another."})
	case errors.Is(err, service.ErrEmailRegistered):
		return c.JSON(http.StatusConflict, echo.Map{"message": "This email is already registered. Please login instead."})
	case errors.Is(err, service.ErrMailDispatch):
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to send OTP email."})
	default:
		return serverError(c, h.Log, "message", "Database error. Please try again.", err)
	}
}

// Register handles POST /register: verify the OTP and complete the account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	err := h.Registration.CompleteRegistration(c.Request().Context(), service.RegisterInput{
		Email:    req.Email,
		OTP:      req.OTP,
		Username: req.Username,
		Password: req.Password,
		Gender:   req.Gender,
		Contact:  req.Contact,
	})
	var ve *service.ValidationError
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "User registered successfully & Email Verified!"})
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": ve.Msg})
	case errors.Is(err, service.ErrOTPInvalid):
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid or Expired OTP. Please resend."})
	case errors.Is(err, service.ErrOTPUnknown):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid OTP/Email combination."})
	case errors.Is(err, service.ErrUsernameTaken):
		return c.JSON(http.StatusConflict, echo.Map{"message": "This Username is already taken. Please choose another."})
	default:
		return serverError(c, h.Log, "message", "Database error during registration.", err)
	}
}

// Login handles POST /login.  The response carries the profile the
// frontend stores plus a STUDENT access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}

	p, err := h.Registration.Login(c.Request().Context(), req.Username, req.Password, c.RealIP())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid username or password"})
		}
		return serverError(c, h.Log, "message", "Database error", err)
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, p.Username, utils.RoleStudent, h.Cfg.AccessTTLMin)
	if err != nil {
		return serverError(c, h.Log, "message", "issue access failed", err)
	}
	return c.JSON(http.StatusOK, loginResp{
		Message:  "Login successful",
		Username: p.Username,
		Email:    p.Email,
		Gender:   p.Gender,
		Access:   access,
		Token:    access.Token,
	})
}

// AdminLogin handles POST /admin/login against the configured admin
// credentials.  It answers 503 when none are configured.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	if h.Cfg.AdminUsername == "" || h.Cfg.AdminPasswordHash == "" {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "admin login is not configured"})
	}
	var req loginReq
	if err := bindValid(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}
	if strings.TrimSpace(req.Username) != h.Cfg.AdminUsername ||
		!utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password) {
		h.Log.Warn("admin login failed", zap.String("username", req.Username), zap.String("ip", c.RealIP()))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, h.Cfg.AdminUsername, utils.RoleAdmin, h.Cfg.AccessTTLMin)
	if err != nil {
		return serverError(c, h.Log, "error", "issue access failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"role":   utils.RoleAdmin,
		"access": access,
		"token":  access.Token,
	})
}
