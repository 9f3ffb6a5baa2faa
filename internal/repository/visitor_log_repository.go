package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hostel-management/internal/model"
)

// VisitorLogRepo appends and reads login attempts.  Rows are never updated.
type VisitorLogRepo struct{ db *sql.DB }

func NewVisitorLogRepo(db *sql.DB) *VisitorLogRepo { return &VisitorLogRepo{db: db} }

// Append records one attempt; login_time defaults to the database clock.
func (r *VisitorLogRepo) Append(ctx context.Context, username, ip, status string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO visitor_logs (username, ip_address, status) VALUES (?, ?, ?)`,
		username, ip, status)
	return err
}

// List returns all attempts newest first.
func (r *VisitorLogRepo) List(ctx context.Context) ([]model.VisitorLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT username, login_time, ip_address, status FROM visitor_logs ORDER BY login_time DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.VisitorLog{}
	for rows.Next() {
		var (
			v  model.VisitorLog
			ip sql.NullString
		)
		if err := rows.Scan(&v.Username, &v.LoginTime, &ip, &v.Status); err != nil {
			return nil, err
		}
		v.IPAddress = ip.String
		out = append(out, v)
	}
	return out, rows.Err()
}
