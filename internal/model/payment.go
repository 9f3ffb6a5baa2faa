package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentState values for payment_status.status.
const (
	PaymentPending = "Pending"
	PaymentPaid    = "Paid"
)

// Request states for payment_requests.status.
const (
	RequestPending  = "Pending"
	RequestApproved = "Approved"
	RequestRejected = "Rejected"
)

// PaymentStatus mirrors payment_status: one row per username.
type PaymentStatus struct {
	Username  string    `json:"username"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentRequest is one user-submitted payment attempt awaiting review.
type PaymentRequest struct {
	ID        uint64          `json:"id"`
	Username  string          `json:"username"`
	Amount    decimal.Decimal `json:"amount"`
	CardLast4 *string         `json:"card_last4"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
