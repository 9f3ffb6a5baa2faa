package model

import "time"

const (
	ComplaintNew      = "New"
	ComplaintResolved = "Resolved"
)

type Complaint struct {
	ID          uint64    `json:"id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Category    *string   `json:"category"`
	Location    *string   `json:"location"`
	Username    *string   `json:"username"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
