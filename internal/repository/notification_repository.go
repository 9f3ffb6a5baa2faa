package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hostel-management/internal/model"
)

type NotificationRepo struct{ db *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (username, subject, message, desired_room) VALUES (?, ?, ?, ?)`,
		n.Username, n.Subject, n.Message, n.DesiredRoom)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns notifications newest first; unreadOnly hides read ones.
func (r *NotificationRepo) List(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	q := `SELECT id, username, subject, message, desired_room, is_read, created_at FROM notifications`
	if unreadOnly {
		q += ` WHERE is_read = 0`
	}
	q += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Notification{}
	for rows.Next() {
		var (
			n                 model.Notification
			username, subject sql.NullString
			message, desired  sql.NullString
		)
		if err := rows.Scan(&n.ID, &username, &subject, &message, &desired, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Username, n.Subject = username.String, subject.String
		n.Message, n.DesiredRoom = nullable(message), nullable(desired)
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as read and returns the affected row count.
func (r *NotificationRepo) MarkRead(ctx context.Context, id uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
