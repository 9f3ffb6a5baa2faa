package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/queue"
	"github.com/iliyamo/hostel-management/internal/repository"
)

// AssignmentService binds students to beds while keeping every room
// single-gender and every student in at most one bed.
type AssignmentService struct {
	db       *sql.DB
	accounts *repository.AccountRepo
	rooms    *repository.RoomRepo
	payments *repository.PaymentRepo
	details  *repository.StudentDetailRepo
	events   queue.Publisher
	log      *zap.Logger

	now func() time.Time
}

func NewAssignmentService(db *sql.DB, accounts *repository.AccountRepo, rooms *repository.RoomRepo,
	payments *repository.PaymentRepo, details *repository.StudentDetailRepo,
	events queue.Publisher, log *zap.Logger) *AssignmentService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &AssignmentService{
		db:       db,
		accounts: accounts,
		rooms:    rooms,
		payments: payments,
		details:  details,
		events:   events,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AssignResult describes a successful assignment.
type AssignResult struct {
	model.Assignment
	Gender string `json:"gender"`
}

// Message is the human-readable confirmation returned to the admin.
func (r AssignResult) Message() string {
	return fmt.Sprintf("%s (%s) assigned to Room %s, Bed %d", r.Username, r.Gender, r.RoomNo, r.BedNo)
}

// Assign puts username into the lowest-numbered free bed of roomNo.
//
// The student's row and all bed rows of the room are locked before the
// gender check, so two assignments racing for the same room run one after
// the other and the second sees the first one's occupant.
func (s *AssignmentService) Assign(ctx context.Context, username, roomNo string) (*AssignResult, error) {
	username, roomNo = strings.TrimSpace(username), strings.TrimSpace(roomNo)
	if username == "" || roomNo == "" {
		return nil, invalid("Missing student and room data")
	}

	var res AssignResult
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		gender, err := s.accounts.GenderForUpdateTx(ctx, tx, username)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStudentNotFound
		}
		if err != nil {
			return fmt.Errorf("load student gender: %w", err)
		}

		beds, err := s.rooms.LockRoomTx(ctx, tx, roomNo)
		if err != nil {
			return fmt.Errorf("lock room: %w", err)
		}

		occupant, occupied, err := s.rooms.OccupantGenderTx(ctx, tx, roomNo)
		if err != nil {
			return fmt.Errorf("check room gender: %w", err)
		}
		if occupied && occupant != gender {
			return &GenderConflictError{Username: username, RoomNo: roomNo, OccupantGender: occupant}
		}

		held, err := s.rooms.AssignmentForTx(ctx, tx, username)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("check current bed: %w", err)
		}
		if held != nil {
			return ErrAlreadyAssigned
		}

		free := -1
		for _, b := range beds {
			if !b.Occupied() {
				free = b.BedNo
				break
			}
		}
		if free < 0 {
			return ErrNoFreeBeds
		}
		if err := s.rooms.ClaimBedTx(ctx, tx, roomNo, free, username); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrNoFreeBeds
			}
			return fmt.Errorf("claim bed: %w", err)
		}
		res = AssignResult{
			Assignment: model.Assignment{Username: username, RoomNo: roomNo, BedNo: free},
			Gender:     gender,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bed assigned", zap.String("username", username), zap.String("room_no", roomNo), zap.Int("bed_no", res.BedNo))
	publish(ctx, s.events, s.log, queue.Event{
		Type:       queue.EventRoomAssigned,
		Username:   username,
		RoomNo:     roomNo,
		BedNo:      res.BedNo,
		Gender:     res.Gender,
		OccurredAt: s.now(),
	})
	return &res, nil
}

// Unassign frees every bed held by username.  Unassigning a student with
// no bed succeeds and reports zero freed beds.
func (s *AssignmentService) Unassign(ctx context.Context, username string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, invalid("username is required")
	}
	n, err := s.rooms.Unassign(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("unassign: %w", err)
	}
	if n > 0 {
		s.log.Info("bed freed", zap.String("username", username), zap.Int64("beds", n))
		publish(ctx, s.events, s.log, queue.Event{
			Type:       queue.EventRoomUnassigned,
			Username:   username,
			OccurredAt: s.now(),
		})
	}
	return n, nil
}

// DeleteStudent removes a registered student along with their bed,
// academic details and payment status.  The account row is locked first,
// matching the lock order of Assign.
func (s *AssignmentService) DeleteStudent(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return invalid("username is required")
	}
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.accounts.GenderForUpdateTx(ctx, tx, username); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("lock student: %w", err)
		}
		if _, err := s.rooms.UnassignTx(ctx, tx, username); err != nil {
			return fmt.Errorf("free room: %w", err)
		}
		if err := s.details.DeleteTx(ctx, tx, username); err != nil {
			return fmt.Errorf("delete details: %w", err)
		}
		if err := s.payments.DeleteStatusTx(ctx, tx, username); err != nil {
			return fmt.Errorf("delete payment status: %w", err)
		}
		if _, err := s.accounts.DeleteByUsernameTx(ctx, tx, username); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("student deleted", zap.String("username", username))
	publish(ctx, s.events, s.log, queue.Event{
		Type:       queue.EventStudentDeleted,
		Username:   username,
		OccurredAt: s.now(),
	})
	return nil
}
