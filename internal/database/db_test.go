package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsDSN(t *testing.T) {
	dsn := Options{User: "root", Pass: "pw", Host: "db", Port: "3306", Name: "hms"}.DSN()

	assert.True(t, strings.HasPrefix(dsn, "root:pw@tcp(db:3306)/hms?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
	assert.NotContains(t, dsn, "tls=")

	withTLS := Options{User: "root", Host: "db", Port: "3306", Name: "hms", TLS: "true"}.DSN()
	assert.Contains(t, withTLS, "tls=true")
}

func TestEnsureSchema_CreatesEveryTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, tbl := range schema {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + tbl.name).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_StopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS register").
		WillReturnError(errors.New("access denied"))

	err = EnsureSchema(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register")
	assert.NoError(t, mock.ExpectationsWereMet())
}
