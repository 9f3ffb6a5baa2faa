package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hostel-management/internal/model"
)

// PaymentRepo covers payment_status (one row per user) and the
// payment_requests log reviewed by the administration.
type PaymentRepo struct{ db *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Status returns the user's payment status.  ok is false when no row exists.
func (r *PaymentRepo) Status(ctx context.Context, username string) (status string, ok bool, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT status FROM payment_status WHERE username = ?`, username).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return status, true, nil
}

// StatusForUpdateTx is Status with a row lock held until the transaction ends.
func (r *PaymentRepo) StatusForUpdateTx(ctx context.Context, tx *sql.Tx, username string) (string, bool, error) {
	var status string
	err := tx.QueryRowContext(ctx,
		`SELECT status FROM payment_status WHERE username = ? FOR UPDATE`, username).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return status, true, nil
}

// SetStatus upserts the user's payment status.
func (r *PaymentRepo) SetStatus(ctx context.Context, username, status string) error {
	_, err := r.db.ExecContext(ctx,
		`REPLACE INTO payment_status (username, status) VALUES (?, ?)`, username, status)
	return err
}

// SetStatusTx is SetStatus inside a caller-owned transaction.
func (r *PaymentRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, username, status string) error {
	_, err := tx.ExecContext(ctx,
		`REPLACE INTO payment_status (username, status) VALUES (?, ?)`, username, status)
	return err
}

// DeleteStatusTx removes the user's payment status row.
func (r *PaymentRepo) DeleteStatusTx(ctx context.Context, tx *sql.Tx, username string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM payment_status WHERE username = ?`, username)
	return err
}

// CreateRequestTx appends a Pending payment request and returns its id.
func (r *PaymentRepo) CreateRequestTx(ctx context.Context, tx *sql.Tx, username string, amount decimal.Decimal, cardLast4 *string) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payment_requests (username, amount, card_last4) VALUES (?, ?, ?)`,
		username, amount.StringFixed(2), cardLast4)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListRequests returns payment requests newest first, optionally filtered by status.
func (r *PaymentRepo) ListRequests(ctx context.Context, status string) ([]model.PaymentRequest, error) {
	q := `SELECT id, username, amount, card_last4, status, created_at FROM payment_requests`
	var args []any
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.PaymentRequest{}
	for rows.Next() {
		var (
			pr     model.PaymentRequest
			amount string
			card   sql.NullString
		)
		if err := rows.Scan(&pr.ID, &pr.Username, &amount, &card, &pr.Status, &pr.CreatedAt); err != nil {
			return nil, err
		}
		if pr.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		if card.Valid {
			c := card.String
			pr.CardLast4 = &c
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

// RequestUsernameForUpdateTx returns the owner of request id and locks the row.
func (r *PaymentRepo) RequestUsernameForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (string, error) {
	var username string
	err := tx.QueryRowContext(ctx,
		`SELECT username FROM payment_requests WHERE id = ? FOR UPDATE`, id).Scan(&username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return username, nil
}

// SetRequestStatusTx changes a request's status.
func (r *PaymentRepo) SetRequestStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	_, err := tx.ExecContext(ctx, `UPDATE payment_requests SET status = ? WHERE id = ?`, status, id)
	return err
}

// DuesCount counts registered users not marked Paid, including users with no
// payment_status row at all.
func (r *PaymentRepo) DuesCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM register r
		 LEFT JOIN payment_status p ON p.username = r.username
		 WHERE r.username IS NOT NULL AND (p.status IS NULL OR p.status <> 'Paid')`).Scan(&n)
	return n, err
}
