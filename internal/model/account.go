package model

import (
	"database/sql"
	"strings"
	"time"
)

// Gender is the value stored in register.gender.  Room occupancy is
// segregated on it.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// ParseGender normalises user input ("male", "FEMALE", ...) to a Gender.
func ParseGender(s string) (Gender, bool) {
	switch {
	case strings.EqualFold(s, string(GenderMale)):
		return GenderMale, true
	case strings.EqualFold(s, string(GenderFemale)):
		return GenderFemale, true
	}
	return "", false
}

// AccountState is the registration lifecycle of a register row.
type AccountState int

const (
	// StateUnknown means no row exists for the email.
	StateUnknown AccountState = iota
	// StateOTPPending means a code was issued but registration is not complete.
	StateOTPPending
	// StateRegistered means username is set.
	StateRegistered
)

func (s AccountState) String() string {
	switch s {
	case StateOTPPending:
		return "OTP_PENDING"
	case StateRegistered:
		return "REGISTERED"
	default:
		return "UNKNOWN"
	}
}

// Account mirrors one row of the register table.  Nullable columns use
// sql.Null* so that a pending row (email + otp only) scans cleanly.
type Account struct {
	ID           uint64
	Email        string
	Username     sql.NullString
	PasswordHash sql.NullString
	Gender       sql.NullString
	Contact      sql.NullString
	OTP          sql.NullString
	OTPExpiresAt sql.NullTime
	RegisteredAt sql.NullTime
}

// State derives the lifecycle state from the row's columns.
func (a *Account) State() AccountState {
	if a == nil {
		return StateUnknown
	}
	if a.Username.Valid && a.Username.String != "" {
		return StateRegistered
	}
	return StateOTPPending
}

// OTPValid reports whether code matches the stored one and has not expired at now.
func (a *Account) OTPValid(code string, now time.Time) bool {
	if a == nil || !a.OTP.Valid || !a.OTPExpiresAt.Valid {
		return false
	}
	return a.OTP.String == code && now.Before(a.OTPExpiresAt.Time)
}

// Profile is the public projection of a registered account.
type Profile struct {
	Username string `json:"username"`
	Gender   string `json:"gender"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
}
