package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/mailer"
	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/queue"
	"github.com/iliyamo/hostel-management/internal/repository"
	"github.com/iliyamo/hostel-management/internal/utils"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an address: something@host.tld.
func ValidEmail(s string) bool { return emailPattern.MatchString(s) }

// RegistrationService drives an account from UNKNOWN through OTP_PENDING
// to REGISTERED and authenticates registered students.
type RegistrationService struct {
	db       *sql.DB
	accounts *repository.AccountRepo
	visits   *repository.VisitorLogRepo
	mail     mailer.Sender
	events   queue.Publisher
	log      *zap.Logger

	mailFrom   string
	otpTTL     time.Duration
	bcryptCost int

	now    func() time.Time
	newOTP func() (string, error)
}

// RegistrationOptions carries the tunables of the registration flow.
type RegistrationOptions struct {
	MailFrom   string
	OTPTTL     time.Duration
	BcryptCost int
}

func NewRegistrationService(db *sql.DB, accounts *repository.AccountRepo, visits *repository.VisitorLogRepo,
	mail mailer.Sender, events queue.Publisher, log *zap.Logger, opts RegistrationOptions) *RegistrationService {
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = 5 * time.Minute
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &RegistrationService{
		db:         db,
		accounts:   accounts,
		visits:     visits,
		mail:       mail,
		events:     events,
		log:        log,
		mailFrom:   opts.MailFrom,
		otpTTL:     opts.OTPTTL,
		bcryptCost: opts.BcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
		newOTP:     utils.NewOTP,
	}
}

// RequestOTP issues a fresh code for email and mails it.  A non-empty
// username is checked for availability up front so the user can pick
// another before waiting for the mail.
//
// The code is stored before the mail is sent and the mail goes out with no
// transaction open.  A failed dispatch is not retried; the caller requests
// a new code.
func (s *RegistrationService) RequestOTP(ctx context.Context, email, username string) error {
	email = repository.NormalizeEmail(email)
	username = strings.TrimSpace(username)
	if !ValidEmail(email) {
		return ErrInvalidEmail
	}
	if username != "" {
		taken, err := s.accounts.UsernameTaken(ctx, username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return ErrUsernameTaken
		}
	}
	registered, err := s.accounts.EmailRegistered(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if registered {
		return ErrEmailRegistered
	}

	code, err := s.newOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.accounts.UpsertOTP(ctx, email, code, s.now().Add(s.otpTTL)); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.mail.Send(ctx, mailer.OTPMessage(s.mailFrom, email, code, s.otpTTL)); err != nil {
		s.log.Error("otp mail dispatch failed", zap.String("email", email), zap.Error(err))
		return ErrMailDispatch
	}
	s.log.Info("otp issued", zap.String("email", email))
	return nil
}

// RegisterInput is the form submitted to complete registration.
type RegisterInput struct {
	Email    string
	OTP      string
	Username string
	Password string
	Gender   string
	Contact  string
}

// CompleteRegistration verifies the emailed code and turns the pending row
// into a registered account.  The row is locked for the duration so two
// verifications for the same email cannot both succeed.
func (s *RegistrationService) CompleteRegistration(ctx context.Context, in RegisterInput) error {
	in.Email = repository.NormalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.OTP = strings.TrimSpace(in.OTP)
	if in.Email == "" || in.OTP == "" {
		return ErrOTPUnknown
	}
	if in.Username == "" || in.Password == "" {
		return invalid("username and password are required")
	}
	gender, ok := model.ParseGender(in.Gender)
	if !ok {
		return invalid("gender must be Male or Female")
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return invalid("password is too long")
		}
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		acc, err := s.accounts.GetByEmailForUpdateTx(ctx, tx, in.Email)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOTPUnknown
		}
		if err != nil {
			return fmt.Errorf("load account: %w", err)
		}
		if acc.State() != model.StateOTPPending || !acc.OTPValid(in.OTP, now) {
			return ErrOTPInvalid
		}
		taken, err := s.accounts.UsernameTakenByOtherTx(ctx, tx, in.Username, in.Email)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return ErrUsernameTaken
		}
		err = s.accounts.CompleteRegistrationTx(ctx, tx, repository.Registration{
			Email:        in.Email,
			Username:     in.Username,
			PasswordHash: hash,
			Gender:       gender,
			Contact:      strings.TrimSpace(in.Contact),
			RegisteredAt: now,
		})
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return ErrUsernameTaken
		case errors.Is(err, repository.ErrNotFound):
			return ErrOTPUnknown
		case err != nil:
			return fmt.Errorf("complete registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("student registered", zap.String("username", in.Username))
	publish(ctx, s.events, s.log, queue.Event{
		Type:       queue.EventStudentRegistered,
		Username:   in.Username,
		Gender:     string(gender),
		OccurredAt: now,
	})
	return nil
}

// Login checks the credentials and records the attempt in the visitor log.
// Every attempt is logged, including attempts whose lookup failed.
func (s *RegistrationService) Login(ctx context.Context, username, password, ip string) (*model.Profile, error) {
	username = strings.TrimSpace(username)

	acc, err := s.accounts.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.recordVisit(ctx, username, ip, model.LoginFailure)
		return nil, fmt.Errorf("load account: %w", err)
	}
	if acc == nil || password == "" || !utils.VerifyPassword(acc.PasswordHash.String, password) {
		s.recordVisit(ctx, username, ip, model.LoginFailure)
		return nil, ErrInvalidCredentials
	}

	s.recordVisit(ctx, username, ip, model.LoginSuccess)
	return &model.Profile{
		Username: acc.Username.String,
		Gender:   acc.Gender.String,
		Email:    acc.Email,
		Contact:  acc.Contact.String,
	}, nil
}

func (s *RegistrationService) recordVisit(ctx context.Context, username, ip, status string) {
	if err := s.visits.Append(ctx, username, ip, status); err != nil {
		s.log.Error("visitor log append failed", zap.String("username", username), zap.String("status", status), zap.Error(err))
	}
}
