// Package repository defines the SQL data access for the hostel tables and
// the sentinel errors shared across them.  Handlers and services use these
// values to distinguish "nothing there" and "constraint hit" from generic
// storage failures.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by key yields no rows.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique key.
var ErrDuplicate = errors.New("duplicate key")

// ErrConflict is returned when an update matched no rows because the row
// changed state underneath the caller (e.g. a bed claimed concurrently).
var ErrConflict = errors.New("conflict")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// IsDuplicateKey reports whether err is a MySQL duplicate-key violation.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
