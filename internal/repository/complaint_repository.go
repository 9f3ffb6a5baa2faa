package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hostel-management/internal/model"
)

type ComplaintRepo struct{ db *sql.DB }

func NewComplaintRepo(db *sql.DB) *ComplaintRepo { return &ComplaintRepo{db: db} }

// Create inserts a complaint with the default "New" status.
func (r *ComplaintRepo) Create(ctx context.Context, c *model.Complaint) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO complaints (subject, description, category, location, username) VALUES (?, ?, ?, ?, ?)`,
		c.Subject, c.Description, c.Category, c.Location, c.Username)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns all complaints newest first.
func (r *ComplaintRepo) List(ctx context.Context) ([]model.Complaint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, subject, description, category, location, username, status, created_at
		 FROM complaints ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Complaint{}
	for rows.Next() {
		var (
			c                  model.Complaint
			cat, loc, username sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Subject, &c.Description, &cat, &loc, &username, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Category, c.Location, c.Username = nullable(cat), nullable(loc), nullable(username)
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateStatus sets a complaint's status and returns the affected row count.
func (r *ComplaintRepo) UpdateStatus(ctx context.Context, id uint64, status string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE complaints SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteResolved removes a complaint only when it is Resolved.  Zero
// affected rows means it is missing or still open.
func (r *ComplaintRepo) DeleteResolved(ctx context.Context, id uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM complaints WHERE id = ? AND status = ?`, id, model.ComplaintResolved)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
