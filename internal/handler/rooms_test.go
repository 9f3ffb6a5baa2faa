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

	"github.com/iliyamo/hostel-management/internal/queue"
	"github.com/iliyamo/hostel-management/internal/repository"
	"github.com/iliyamo/hostel-management/internal/service"
)

func newRooms(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newDB(t)
	accounts := repository.NewAccountRepo(db)
	rooms := repository.NewRoomRepo(db)
	svc := service.NewAssignmentService(db, accounts, rooms, repository.NewPaymentRepo(db),
		repository.NewStudentDetailRepo(db), queue.NopPublisher{}, zap.NewNop())
	h := NewRoomHandler(accounts, rooms, svc, zap.NewNop())

	e := newEcho()
	e.POST("/assign-room", h.AssignRoom)
	e.DELETE("/remove-assignment/:username", h.RemoveAssignment)
	e.GET("/available-beds/:room_no", h.AvailableBeds)
	e.GET("/my-room/:username", h.MyRoom)
	e.GET("/rooms-occupancy", h.Occupancy)
	return e, mock
}

func TestAssignRoom_MissingData(t *testing.T) {
	e, mock := newRooms(t)
	rec := serve(e, http.MethodPost, "/assign-room", `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing student and room data", decode(t, rec)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignRoom_GenderConflictIs403(t *testing.T) {
	e, mock := newRooms(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT gender FROM register WHERE username = ? FOR UPDATE`)).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"gender"}).AddRow("Male"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM rooms WHERE room_no = ? ORDER BY bed_no FOR UPDATE`)).
		WithArgs("101").
		WillReturnRows(sqlmock.NewRows([]string{"room_no", "bed_no", "username"}).
			AddRow("101", 1, "alice").AddRow("101", 2, nil))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT r.gender FROM rooms rm`)).
		WithArgs("101").
		WillReturnRows(sqlmock.NewRows([]string{"gender"}).AddRow("Female"))
	mock.ExpectRollback()

	rec := serve(e, http.MethodPost, "/assign-room", `{"username":"bob","room_no":"101"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Cannot assign bob. Room 101 is already occupied by a Female student.", decode(t, rec)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignRoom_Success(t *testing.T) {
	e, mock := newRooms(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT gender FROM register WHERE username = ? FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"gender"}).AddRow("Female"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM rooms WHERE room_no = ? ORDER BY bed_no FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"room_no", "bed_no", "username"}).
			AddRow("101", 1, "carol").AddRow("101", 2, nil))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT r.gender FROM rooms rm`)).
		WillReturnRows(sqlmock.NewRows([]string{"gender"}).AddRow("Female"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT room_no, bed_no FROM rooms WHERE username = ?`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"room_no", "bed_no"}))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE rooms SET username = ? WHERE room_no = ? AND bed_no = ? AND username IS NULL`)).
		WithArgs("alice", "101", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := serve(e, http.MethodPost, "/assign-room", `{"username":"alice","room_no":"101"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "alice (Female) assigned to Room 101, Bed 2", body["message"])
	assert.EqualValues(t, 2, body["bed_no"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveAssignment_ReportsAffectedRows(t *testing.T) {
	e, mock := newRooms(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE rooms SET username = NULL WHERE username = ?`)).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := serve(e, http.MethodDelete, "/remove-assignment/ghost", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode(t, rec)["affectedRows"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailableBeds(t *testing.T) {
	e, mock := newRooms(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT bed_no FROM rooms WHERE room_no = ? AND username IS NULL`)).
		WithArgs("102").
		WillReturnRows(sqlmock.NewRows([]string{"bed_no"}).AddRow(2).AddRow(4))

	rec := serve(e, http.MethodGet, "/available-beds/102", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"bed_no":2},{"bed_no":4}]`, rec.Body.String())
}

func TestMyRoom_NoneAssigned(t *testing.T) {
	e, mock := newRooms(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT room_no, bed_no FROM rooms WHERE username = ?`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"room_no", "bed_no"}))

	rec := serve(e, http.MethodGet, "/my-room/alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No room assigned yet", decode(t, rec)["message"])
}

func TestOccupancy_DBErrorUsesErrorKey(t *testing.T) {
	e, mock := newRooms(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*)`)).WillReturnError(assert.AnError)

	rec := serve(e, http.MethodGet, "/rooms-occupancy", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "DB error", decode(t, rec)["error"])
}
