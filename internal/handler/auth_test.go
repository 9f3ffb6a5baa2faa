package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/config"
	"github.com/iliyamo/hostel-management/internal/mailer"
	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/queue"
	"github.com/iliyamo/hostel-management/internal/repository"
	"github.com/iliyamo/hostel-management/internal/service"
	"github.com/iliyamo/hostel-management/internal/utils"
)

const testSecret = "handler-test-secret"

func newAuth(t *testing.T, cfg config.Config) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newDB(t)
	reg := service.NewRegistrationService(db, repository.NewAccountRepo(db), repository.NewVisitorLogRepo(db),
		mailer.LogSender{Log: zap.NewNop()}, queue.NopPublisher{}, zap.NewNop(),
		service.RegistrationOptions{MailFrom: "hostel@x.com", OTPTTL: 5 * time.Minute, BcryptCost: 4})
	cfg.JWTSecret = testSecret
	cfg.AccessTTLMin = 15
	return NewAuthHandler(cfg, reg, zap.NewNop()), mock
}

func TestSendOTP_RejectsMalformedEmail(t *testing.T) {
	h, mock := newAuth(t, config.Config{})
	e := newEcho()
	e.POST("/send-otp", h.SendOTP)

	rec := serve(e, http.MethodPost, "/send-otp", `{"email":"not-an-email","username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter a valid email address format.", decode(t, rec)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_MissingFields(t *testing.T) {
	h, _ := newAuth(t, config.Config{})
	e := newEcho()
	e.POST("/register", h.Register)

	rec := serve(e, http.MethodPost, "/register", `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_WrongPasswordIs401(t *testing.T) {
	h, mock := newAuth(t, config.Config{})
	hash, err := utils.HashPassword("s3cret", 4)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM register WHERE username = ?`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "password", "gender", "contact", "otp", "otp_expires_at", "registered_at"}).
			AddRow(1, "a@x.com", "alice", hash, "Female", "555", nil, nil, time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO visitor_logs`)).
		WithArgs("alice", sqlmock.AnyArg(), model.LoginFailure).
		WillReturnResult(sqlmock.NewResult(1, 1))

	e := newEcho()
	e.POST("/login", h.Login)
	rec := serve(e, http.MethodPost, "/login", `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid username or password", decode(t, rec)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_MalformedBodyIs400(t *testing.T) {
	h, mock := newAuth(t, config.Config{})
	e := newEcho()
	e.POST("/login", h.Login)

	rec := serve(e, http.MethodPost, "/login", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decode(t, rec)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_SuccessReturnsStudentToken(t *testing.T) {
	h, mock := newAuth(t, config.Config{})
	hash, err := utils.HashPassword("s3cret", 4)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM register WHERE username = ?`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "password", "gender", "contact", "otp", "otp_expires_at", "registered_at"}).
			AddRow(1, "a@x.com", "alice", hash, "Female", "555", nil, nil, time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO visitor_logs`)).
		WithArgs("alice", sqlmock.AnyArg(), model.LoginSuccess).
		WillReturnResult(sqlmock.NewResult(1, 1))

	e := newEcho()
	e.POST("/login", h.Login)
	rec := serve(e, http.MethodPost, "/login", `{"username":"alice","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, "Female", body["gender"])

	claims, err := utils.ParseAccessToken(testSecret, body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, utils.RoleStudent, claims.Role)
}

func TestAdminLogin(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		h, _ := newAuth(t, config.Config{})
		e := newEcho()
		e.POST("/admin/login", h.AdminLogin)
		rec := serve(e, http.MethodPost, "/admin/login", `{"username":"root","password":"pw"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	hash, err := utils.HashPassword("adminpw", 4)
	require.NoError(t, err)
	h, _ := newAuth(t, config.Config{AdminUsername: "warden", AdminPasswordHash: hash})
	e := newEcho()
	e.POST("/admin/login", h.AdminLogin)

	t.Run("missing fields", func(t *testing.T) {
		rec := serve(e, http.MethodPost, "/admin/login", `{"username":"warden"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("bad password", func(t *testing.T) {
		rec := serve(e, http.MethodPost, "/admin/login", `{"username":"warden","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("ok", func(t *testing.T) {
		rec := serve(e, http.MethodPost, "/admin/login", `{"username":"warden","password":"adminpw"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, utils.RoleAdmin, body["role"])
		claims, err := utils.ParseAccessToken(testSecret, body["token"].(string))
		require.NoError(t, err)
		assert.Equal(t, "warden", claims.Subject)
	})
}
