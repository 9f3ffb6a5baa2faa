package handler

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/queue"
	"github.com/iliyamo/hostel-management/internal/repository"
	"github.com/iliyamo/hostel-management/internal/service"
	"github.com/iliyamo/hostel-management/internal/utils"
)

func newPayments(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newDB(t)
	repo := repository.NewPaymentRepo(db)
	h := NewPaymentHandler(service.NewPaymentService(db, repo, queue.NopPublisher{}, zap.NewNop()), repo, zap.NewNop())

	e := newEcho()
	e.POST("/payment-status", h.SetStatus)
	e.GET("/payment-status/:username", h.GetStatus)
	e.POST("/payment-request", h.CreateRequest, signedIn("alice", utils.RoleStudent))
	e.POST("/admin/payment-request", h.CreateRequest, signedIn("warden", utils.RoleAdmin))
	e.GET("/payment-requests", h.ListRequests)
	e.PATCH("/payment-requests/:id/approve", h.Approve)
	e.PATCH("/payment-requests/:id/reject", h.Reject)
	return e, mock
}

func TestGetStatus_DefaultsToPending(t *testing.T) {
	e, mock := newPayments(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM payment_status WHERE username = ?`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	rec := serve(e, http.MethodGet, "/payment-status/alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.PaymentPending, decode(t, rec)["status"])
}

func TestSetStatus_RejectsUnknownStatus(t *testing.T) {
	e, mock := newPayments(t)
	rec := serve(e, http.MethodPost, "/payment-status", `{"username":"alice","status":"Refunded"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRequest(t *testing.T) {
	e, mock := newPayments(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM payment_status WHERE username = ? FOR UPDATE`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.PaymentPending))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payment_requests (username, amount, card_last4)`)).
		WithArgs("alice", sqlmock.AnyArg(), "4242").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	rec := serve(e, http.MethodPost, "/payment-request", `{"username":"alice","amount":"1500.00","card_last4":"4242"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 7, decode(t, rec)["id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRequest_AlreadyPaid(t *testing.T) {
	e, mock := newPayments(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM payment_status WHERE username = ? FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.PaymentPaid))
	mock.ExpectRollback()

	rec := serve(e, http.MethodPost, "/payment-request", `{"username":"alice","amount":1500}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Payment already completed for this user", decode(t, rec)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRequest_OnlyForOwnAccount(t *testing.T) {
	e, mock := newPayments(t)
	rec := serve(e, http.MethodPost, "/payment-request", `{"username":"bob","amount":"100.00"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRequest_DefaultsToTokenSubject(t *testing.T) {
	e, mock := newPayments(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM payment_status WHERE username = ? FOR UPDATE`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payment_requests`)).
		WithArgs("alice", "100.00", nil).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	rec := serve(e, http.MethodPost, "/payment-request", `{"amount":"100"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRequest_AdminMayFileForStudent(t *testing.T) {
	e, mock := newPayments(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM payment_status WHERE username = ? FOR UPDATE`)).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payment_requests`)).
		WithArgs("bob", "50.00", nil).
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	rec := serve(e, http.MethodPost, "/admin/payment-request", `{"username":"bob","amount":50}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRequests_InvalidFilter(t *testing.T) {
	e, _ := newPayments(t)
	rec := serve(e, http.MethodGet, "/payment-requests?status=Lost", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApprove(t *testing.T) {
	e, mock := newPayments(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT username FROM payment_requests WHERE id = ? FOR UPDATE`)).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("alice"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE payment_requests SET status = ? WHERE id = ?`)).
		WithArgs(model.RequestApproved, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`REPLACE INTO payment_status (username, status) VALUES (?, ?)`)).
		WithArgs("alice", model.PaymentPaid).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := serve(e, http.MethodPatch, "/payment-requests/9/approve", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode(t, rec)["username"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReject_UnknownRequestIs404(t *testing.T) {
	e, mock := newPayments(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT username FROM payment_requests WHERE id = ? FOR UPDATE`)).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"username"}))
	mock.ExpectRollback()

	rec := serve(e, http.MethodPatch, "/payment-requests/404/reject", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Request not found", decode(t, rec)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApprove_BadID(t *testing.T) {
	e, _ := newPayments(t)
	rec := serve(e, http.MethodPatch, "/payment-requests/abc/approve", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
