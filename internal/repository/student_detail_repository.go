package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hostel-management/internal/model"
)

type StudentDetailRepo struct{ db *sql.DB }

func NewStudentDetailRepo(db *sql.DB) *StudentDetailRepo { return &StudentDetailRepo{db: db} }

const studentDetailColumns = `username, email, contact, course, year, semester, prev_college, prev_result`

// Save inserts or replaces the student's academic record.
func (r *StudentDetailRepo) Save(ctx context.Context, d *model.StudentDetail) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO student_details (`+studentDetailColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE
		   email = VALUES(email), contact = VALUES(contact), course = VALUES(course),
		   year = VALUES(year), semester = VALUES(semester),
		   prev_college = VALUES(prev_college), prev_result = VALUES(prev_result)`,
		d.Username, d.Email, d.Contact, d.Course, d.Year, d.Semester, d.PrevCollege, d.PrevResult)
	return err
}

func scanDetail(row interface{ Scan(...any) error }) (*model.StudentDetail, error) {
	var (
		d                                       model.StudentDetail
		course, year, semester, college, result sql.NullString
	)
	if err := row.Scan(&d.Username, &d.Email, &d.Contact, &course, &year, &semester, &college, &result); err != nil {
		return nil, err
	}
	d.Course, d.Year, d.Semester = nullable(course), nullable(year), nullable(semester)
	d.PrevCollege, d.PrevResult = nullable(college), nullable(result)
	return &d, nil
}

// Get returns one student's record or ErrNotFound.
func (r *StudentDetailRepo) Get(ctx context.Context, username string) (*model.StudentDetail, error) {
	d, err := scanDetail(r.db.QueryRowContext(ctx,
		`SELECT `+studentDetailColumns+` FROM student_details WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

// List returns every academic record.
func (r *StudentDetailRepo) List(ctx context.Context) ([]model.StudentDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+studentDetailColumns+` FROM student_details ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.StudentDetail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// DeleteTx removes the student's record inside a caller-owned transaction.
func (r *StudentDetailRepo) DeleteTx(ctx context.Context, tx *sql.Tx, username string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM student_details WHERE username = ?`, username)
	return err
}
