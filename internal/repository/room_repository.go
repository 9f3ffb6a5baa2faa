package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hostel-management/internal/model"
)

// RoomRepo works on the rooms table, one row per (room_no, bed_no) slot.
// Slots are never created or deleted here; only rooms.username changes.
type RoomRepo struct{ db *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// LockRoomTx returns every bed of roomNo ordered by bed_no and holds row
// locks on them until the transaction ends.  Concurrent assignments to the
// same room therefore see each other's writes before checking gender.
func (r *RoomRepo) LockRoomTx(ctx context.Context, tx *sql.Tx, roomNo string) ([]model.Bed, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT room_no, bed_no, username FROM rooms WHERE room_no = ? ORDER BY bed_no FOR UPDATE`, roomNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var beds []model.Bed
	for rows.Next() {
		var (
			b model.Bed
			u sql.NullString
		)
		if err := rows.Scan(&b.RoomNo, &b.BedNo, &u); err != nil {
			return nil, err
		}
		if u.Valid {
			s := u.String
			b.Username = &s
		}
		beds = append(beds, b)
	}
	return beds, rows.Err()
}

// OccupantGenderTx returns the gender of one current occupant of roomNo.
// Any occupant will do: all occupants of a room share a gender.
func (r *RoomRepo) OccupantGenderTx(ctx context.Context, tx *sql.Tx, roomNo string) (string, bool, error) {
	var g sql.NullString
	err := tx.QueryRowContext(ctx,
		`SELECT r.gender
		 FROM rooms rm
		 JOIN register r ON r.username = rm.username
		 WHERE rm.room_no = ? AND rm.username IS NOT NULL
		 LIMIT 1`, roomNo).Scan(&g)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return g.String, true, nil
}

// AssignmentForTx returns the bed currently held by username, if any.
func (r *RoomRepo) AssignmentForTx(ctx context.Context, tx *sql.Tx, username string) (*model.Assignment, error) {
	a := model.Assignment{Username: username}
	err := tx.QueryRowContext(ctx,
		`SELECT room_no, bed_no FROM rooms WHERE username = ? ORDER BY room_no, bed_no LIMIT 1`,
		username).Scan(&a.RoomNo, &a.BedNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ClaimBedTx sets the bed's occupant.  It only succeeds on a free bed.
func (r *RoomRepo) ClaimBedTx(ctx context.Context, tx *sql.Tx, roomNo string, bedNo int, username string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE rooms SET username = ? WHERE room_no = ? AND bed_no = ? AND username IS NULL`,
		username, roomNo, bedNo)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// Unassign clears username from every bed it holds and returns how many
// rows changed.  Zero is not an error.
func (r *RoomRepo) Unassign(ctx context.Context, username string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE rooms SET username = NULL WHERE username = ?`, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UnassignTx is Unassign inside a caller-owned transaction.
func (r *RoomRepo) UnassignTx(ctx context.Context, tx *sql.Tx, username string) (int64, error) {
	res, err := tx.ExecContext(ctx, `UPDATE rooms SET username = NULL WHERE username = ?`, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// AvailableRooms lists rooms with at least one free bed and the free count.
func (r *RoomRepo) AvailableRooms(ctx context.Context) ([]model.RoomAvailability, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT room_no, SUM(CASE WHEN username IS NULL THEN 1 ELSE 0 END) AS available_beds
		 FROM rooms
		 GROUP BY room_no
		 HAVING available_beds > 0
		 ORDER BY room_no`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.RoomAvailability{}
	for rows.Next() {
		var ra model.RoomAvailability
		if err := rows.Scan(&ra.RoomNo, &ra.AvailableBeds); err != nil {
			return nil, err
		}
		out = append(out, ra)
	}
	return out, rows.Err()
}

// FreeBeds lists the free bed numbers of one room.
func (r *RoomRepo) FreeBeds(ctx context.Context, roomNo string) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT bed_no FROM rooms WHERE room_no = ? AND username IS NULL ORDER BY bed_no`, roomNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []int{}
	for rows.Next() {
		var b int
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Assignments lists occupied beds joined to registered accounts.  An empty
// roomNo lists every room.
func (r *RoomRepo) Assignments(ctx context.Context, roomNo string) ([]model.Assignment, error) {
	q := `SELECT r.username, rm.room_no, rm.bed_no
	      FROM rooms rm
	      JOIN register r ON r.username = rm.username
	      WHERE rm.username IS NOT NULL`
	var args []any
	if roomNo != "" {
		q += ` AND rm.room_no = ?`
		args = append(args, roomNo)
	}
	q += ` ORDER BY rm.room_no, rm.bed_no`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Assignment{}
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.Username, &a.RoomNo, &a.BedNo); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AssignmentFor returns the bed held by username or ErrNotFound.
func (r *RoomRepo) AssignmentFor(ctx context.Context, username string) (*model.Assignment, error) {
	a := model.Assignment{Username: username}
	err := r.db.QueryRowContext(ctx,
		`SELECT room_no, bed_no FROM rooms WHERE username = ? ORDER BY room_no, bed_no LIMIT 1`,
		username).Scan(&a.RoomNo, &a.BedNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// RoomGenders maps each occupied room to the gender of its first occupant
// by bed order.
func (r *RoomRepo) RoomGenders(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT rm.room_no, r.gender
		 FROM rooms rm
		 JOIN register r ON r.username = rm.username
		 WHERE rm.username IS NOT NULL
		 ORDER BY rm.room_no, rm.bed_no`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var (
			room string
			g    sql.NullString
		)
		if err := rows.Scan(&room, &g); err != nil {
			return nil, err
		}
		if _, seen := out[room]; !seen && room != "" && g.String != "" {
			out[room] = g.String
		}
	}
	return out, rows.Err()
}

// Occupancy counts occupied and total beds.
func (r *RoomRepo) Occupancy(ctx context.Context) (model.Occupancy, error) {
	var o model.Occupancy
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN username IS NOT NULL THEN 1 ELSE 0 END), 0) FROM rooms`).
		Scan(&o.Total, &o.Occupied)
	return o, err
}
