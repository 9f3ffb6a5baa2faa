// Package queue defines hostel domain events and moves them over RabbitMQ.
package queue

import "time"

// Event types published after a workflow commits.
const (
	EventStudentRegistered = "student.registered"
	EventRoomAssigned      = "room.assigned"
	EventRoomUnassigned    = "room.unassigned"
	EventStudentDeleted    = "student.deleted"
	EventPaymentRequested  = "payment.requested"
	EventPaymentApproved   = "payment.approved"
	EventPaymentRejected   = "payment.rejected"
)

// Event carries enough context for downstream consumers to log or notify
// without querying the primary database.  Fields irrelevant to a given
// type are left empty.
type Event struct {
	Type       string    `json:"type"`
	Username   string    `json:"username"`
	RoomNo     string    `json:"room_no,omitempty"`
	BedNo      int       `json:"bed_no,omitempty"`
	Gender     string    `json:"gender,omitempty"`
	RequestID  uint64    `json:"request_id,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
