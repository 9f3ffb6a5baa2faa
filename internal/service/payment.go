package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/queue"
	"github.com/iliyamo/hostel-management/internal/repository"
)

// PaymentService implements the request/review workflow.  A request's
// status and the user's payment_status are always changed together.
type PaymentService struct {
	db       *sql.DB
	payments *repository.PaymentRepo
	events   queue.Publisher
	log      *zap.Logger

	now func() time.Time
}

func NewPaymentService(db *sql.DB, payments *repository.PaymentRepo, events queue.Publisher, log *zap.Logger) *PaymentService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &PaymentService{
		db:       db,
		payments: payments,
		events:   events,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest records a Pending request.  Users already marked Paid are
// refused so that a completed payment is not submitted twice.
func (s *PaymentService) CreateRequest(ctx context.Context, username string, amount decimal.Decimal, cardLast4 string) (uint64, error) {
	username, cardLast4 = strings.TrimSpace(username), strings.TrimSpace(cardLast4)
	if username == "" || amount.IsZero() {
		return 0, invalid("username and amount required")
	}
	if amount.IsNegative() {
		return 0, invalid("amount must be positive")
	}
	if !amount.Truncate(2).Equal(amount) {
		return 0, invalid("amount must have at most 2 decimal places")
	}
	var card *string
	if cardLast4 != "" {
		if !isLast4(cardLast4) {
			return 0, invalid("card_last4 must be 4 digits")
		}
		card = &cardLast4
	}

	var id uint64
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		status, _, err := s.payments.StatusForUpdateTx(ctx, tx, username)
		if err != nil {
			return fmt.Errorf("load payment status: %w", err)
		}
		if status == model.PaymentPaid {
			return ErrPaymentCompleted
		}
		id, err = s.payments.CreateRequestTx(ctx, tx, username, amount, card)
		if err != nil {
			return fmt.Errorf("create payment request: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	publish(ctx, s.events, s.log, queue.Event{
		Type:       queue.EventPaymentRequested,
		Username:   username,
		RequestID:  id,
		Amount:     amount.StringFixed(2),
		OccurredAt: s.now(),
	})
	return id, nil
}

func isLast4(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Approve marks request id Approved and its user Paid.
func (s *PaymentService) Approve(ctx context.Context, id uint64) (string, error) {
	return s.review(ctx, id, model.RequestApproved, model.PaymentPaid, queue.EventPaymentApproved)
}

// Reject marks request id Rejected and resets its user to Pending whatever
// their previous status was.
func (s *PaymentService) Reject(ctx context.Context, id uint64) (string, error) {
	return s.review(ctx, id, model.RequestRejected, model.PaymentPending, queue.EventPaymentRejected)
}

func (s *PaymentService) review(ctx context.Context, id uint64, requestStatus, paymentStatus, eventType string) (string, error) {
	var username string
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		username, err = s.payments.RequestUsernameForUpdateTx(ctx, tx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return fmt.Errorf("load payment request: %w", err)
		}
		if err := s.payments.SetRequestStatusTx(ctx, tx, id, requestStatus); err != nil {
			return fmt.Errorf("update payment request: %w", err)
		}
		if err := s.payments.SetStatusTx(ctx, tx, username, paymentStatus); err != nil {
			return fmt.Errorf("update payment status: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	s.log.Info("payment request reviewed",
		zap.Uint64("request_id", id), zap.String("username", username), zap.String("status", requestStatus))
	publish(ctx, s.events, s.log, queue.Event{
		Type:       eventType,
		Username:   username,
		RequestID:  id,
		OccurredAt: s.now(),
	})
	return username, nil
}

// SetStatus overwrites the user's payment status directly.
func (s *PaymentService) SetStatus(ctx context.Context, username, status string) error {
	username = strings.TrimSpace(username)
	if username == "" || status == "" {
		return invalid("Missing username or status")
	}
	if status != model.PaymentPending && status != model.PaymentPaid {
		return invalid("status must be Pending or Paid")
	}
	if err := s.payments.SetStatus(ctx, username, status); err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	return nil
}

// Status returns the user's payment status, Pending when none is recorded.
func (s *PaymentService) Status(ctx context.Context, username string) (string, error) {
	status, ok, err := s.payments.Status(ctx, username)
	if err != nil {
		return "", fmt.Errorf("load payment status: %w", err)
	}
	if !ok {
		return model.PaymentPending, nil
	}
	return status, nil
}
