package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hostel-management/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1452}))
	assert.False(t, IsDuplicateKey(sql.ErrNoRows))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@x.com", NormalizeEmail("  Alice@X.com "))
}

func TestRoomGenders_FirstOccupantWins(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT rm.room_no, r.gender FROM rooms rm JOIN register r`)).
		WillReturnRows(sqlmock.NewRows([]string{"room_no", "gender"}).
			AddRow("101", "Female").
			AddRow("101", "Female").
			AddRow("102", "Male").
			AddRow("103", nil))

	m, err := NewRoomRepo(db).RoomGenders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"101": "Female", "102": "Male"}, m)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignments_FilterByRoom(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE rm.username IS NOT NULL AND rm.room_no = ? ORDER BY rm.room_no, rm.bed_no`)).
		WithArgs("101").
		WillReturnRows(sqlmock.NewRows([]string{"username", "room_no", "bed_no"}).AddRow("alice", "101", 1))

	list, err := NewRoomRepo(db).Assignments(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, []model.Assignment{{Username: "alice", RoomNo: "101", BedNo: 1}}, list)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOccupancy(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*), COALESCE(SUM(CASE WHEN username IS NOT NULL THEN 1 ELSE 0 END), 0) FROM rooms`)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "occupied"}).AddRow(12, 5))

	o, err := NewRoomRepo(db).Occupancy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Occupancy{Occupied: 5, Total: 12}, o)
}

func TestClaimBedTx_TakenBedIsConflict(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE rooms SET username = ? WHERE room_no = ? AND bed_no = ? AND username IS NULL`)).
		WithArgs("alice", "101", 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = NewRoomRepo(db).ClaimBedTx(context.Background(), tx, "101", 2, "alice")
	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteRegistrationTx_DuplicateUsername(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE register SET username = ?`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice'"})
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = NewAccountRepo(db).CompleteRegistrationTx(context.Background(), tx, Registration{
		Email:        "a@x.com",
		Username:     "alice",
		PasswordHash: "hash",
		Gender:       model.GenderFemale,
		RegisteredAt: time.Now(),
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, tx.Rollback())
}

func TestRegistrationDates_NullStaysNil(t *testing.T) {
	db, mock := newMock(t)
	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT username, registered_at FROM register`)).
		WillReturnRows(sqlmock.NewRows([]string{"username", "registered_at"}).
			AddRow("alice", at).
			AddRow("bob", nil))

	m, err := NewAccountRepo(db).RegistrationDates(context.Background())
	require.NoError(t, err)
	require.Contains(t, m, "bob")
	assert.Nil(t, m["bob"])
	require.NotNil(t, m["alice"])
	assert.True(t, at.Equal(*m["alice"]))
}

func TestDuesCount(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`LEFT JOIN payment_status p ON p.username = r.username`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := NewPaymentRepo(db).DuesCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
