package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/hostel-management/internal/model"
)

const accountColumns = `id, email, username, password, gender, contact, otp, otp_expires_at, registered_at`

// AccountRepo provides access to the register table.
type AccountRepo struct{ db *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

func scanAccount(row interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.Gender, &a.Contact,
		&a.OTP, &a.OTPExpiresAt, &a.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// NormalizeEmail lower-cases and trims an address the way it is stored.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// UsernameTaken reports whether any row already owns username.
func (r *AccountRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM register WHERE username = ? LIMIT 1`, username).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// EmailRegistered reports whether email belongs to a fully registered row.
func (r *AccountRepo) EmailRegistered(ctx context.Context, email string) (bool, error) {
	var username string
	err := r.db.QueryRowContext(ctx,
		`SELECT username FROM register WHERE email = ? AND username IS NOT NULL LIMIT 1`,
		NormalizeEmail(email)).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// UpsertOTP creates the pending row for email or overwrites its code.  A row
// that finished registration in the meantime keeps its cleared otp columns.
func (r *AccountRepo) UpsertOTP(ctx context.Context, email, otp string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO register (email, otp, otp_expires_at) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE
		   otp = IF(username IS NULL, VALUES(otp), otp),
		   otp_expires_at = IF(username IS NULL, VALUES(otp_expires_at), otp_expires_at)`,
		NormalizeEmail(email), otp, expiresAt.UTC())
	return err
}

// GetByEmailForUpdateTx loads and row-locks the account for email.
func (r *AccountRepo) GetByEmailForUpdateTx(ctx context.Context, tx *sql.Tx, email string) (*model.Account, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM register WHERE email = ? FOR UPDATE`, NormalizeEmail(email))
	return scanAccount(row)
}

// UsernameTakenByOtherTx reports whether username belongs to a row other than email's.
func (r *AccountRepo) UsernameTakenByOtherTx(ctx context.Context, tx *sql.Tx, username, email string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM register WHERE username = ? AND email <> ? LIMIT 1`,
		username, NormalizeEmail(email)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Registration is the data written when an OTP challenge is completed.
type Registration struct {
	Email        string
	Username     string
	PasswordHash string
	Gender       model.Gender
	Contact      string
	RegisteredAt time.Time
}

// CompleteRegistrationTx fills in the account and clears the OTP in one update.
func (r *AccountRepo) CompleteRegistrationTx(ctx context.Context, tx *sql.Tx, reg Registration) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE register
		 SET username = ?, password = ?, gender = ?, contact = ?,
		     otp = NULL, otp_expires_at = NULL, registered_at = ?
		 WHERE email = ?`,
		reg.Username, reg.PasswordHash, string(reg.Gender), reg.Contact,
		reg.RegisteredAt.UTC(), NormalizeEmail(reg.Email))
	if err != nil {
		if IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByUsername loads a registered account.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM register WHERE username = ? LIMIT 1`, username)
	return scanAccount(row)
}

// GenderForUpdateTx returns the student's gender and locks their row so that
// concurrent assignments of the same student serialise.
func (r *AccountRepo) GenderForUpdateTx(ctx context.Context, tx *sql.Tx, username string) (string, error) {
	var g sql.NullString
	err := tx.QueryRowContext(ctx,
		`SELECT gender FROM register WHERE username = ? FOR UPDATE`, username).Scan(&g)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return g.String, nil
}

func scanProfiles(rows *sql.Rows) ([]model.Profile, error) {
	defer rows.Close()
	out := []model.Profile{}
	for rows.Next() {
		var (
			p               model.Profile
			gender, contact sql.NullString
		)
		if err := rows.Scan(&p.Username, &gender, &p.Email, &contact); err != nil {
			return nil, err
		}
		p.Gender, p.Contact = gender.String, contact.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListRegistered returns every fully registered account.
func (r *AccountRepo) ListRegistered(ctx context.Context) ([]model.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT username, gender, email, contact FROM register WHERE username IS NOT NULL ORDER BY username`)
	if err != nil {
		return nil, err
	}
	return scanProfiles(rows)
}

// ListUnassigned returns registered accounts that hold no bed.
func (r *AccountRepo) ListUnassigned(ctx context.Context) ([]model.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.username, r.gender, r.email, r.contact
		 FROM register r
		 WHERE r.username IS NOT NULL
		   AND NOT EXISTS (SELECT 1 FROM rooms rm WHERE rm.username = r.username)
		 ORDER BY r.username`)
	if err != nil {
		return nil, err
	}
	return scanProfiles(rows)
}

// GetProfile returns the public fields of one registered account.
func (r *AccountRepo) GetProfile(ctx context.Context, username string) (*model.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT username, gender, email, contact FROM register WHERE username = ? LIMIT 1`, username)
	if err != nil {
		return nil, err
	}
	ps, err := scanProfiles(rows)
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, ErrNotFound
	}
	return &ps[0], nil
}

// RegistrationDates maps username to registered_at (nil when unknown).
func (r *AccountRepo) RegistrationDates(ctx context.Context) (map[string]*time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT username, registered_at FROM register WHERE username IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]*time.Time{}
	for rows.Next() {
		var (
			u  string
			at sql.NullTime
		)
		if err := rows.Scan(&u, &at); err != nil {
			return nil, err
		}
		if at.Valid {
			t := at.Time.UTC()
			out[u] = &t
		} else {
			out[u] = nil
		}
	}
	return out, rows.Err()
}

// DeleteByUsernameTx removes the account row.
func (r *AccountRepo) DeleteByUsernameTx(ctx context.Context, tx *sql.Tx, username string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM register WHERE username = ?`, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
