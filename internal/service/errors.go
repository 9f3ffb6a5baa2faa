// Package service holds the multi-step hostel workflows: OTP registration,
// bed assignment and payment review.  Each workflow runs its reads and
// writes inside one transaction and reports failures as the typed errors
// below so that handlers can map them to HTTP statuses.
package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrMailDispatch       = errors.New("failed to send otp email")
	ErrOTPInvalid         = errors.New("invalid or expired otp")
	ErrOTPUnknown         = errors.New("no otp issued for email")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrStudentNotFound    = errors.New("student not found")
	ErrNoFreeBeds         = errors.New("no free beds in room")
	ErrAlreadyAssigned    = errors.New("student already holds a bed")
	ErrPaymentCompleted   = errors.New("payment already completed")
	ErrRequestNotFound    = errors.New("payment request not found")
)

// ValidationError reports missing or malformed input.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// GenderConflictError is returned when a room's occupants are of a
// different gender than the student being assigned.
type GenderConflictError struct {
	Username       string
	RoomNo         string
	OccupantGender string
}

func (e *GenderConflictError) Error() string {
	return fmt.Sprintf("Cannot assign %s. Room %s is already occupied by a %s student.",
		e.Username, e.RoomNo, e.OccupantGender)
}
