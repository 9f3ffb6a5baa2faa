package model

import "time"

// Notification is a message from a student to the administration, e.g. a
// room change request naming the desired room.
type Notification struct {
	ID          uint64    `json:"id"`
	Username    string    `json:"username"`
	Subject     string    `json:"subject"`
	Message     *string   `json:"message"`
	DesiredRoom *string   `json:"desired_room"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
