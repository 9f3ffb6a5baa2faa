package model

import "time"

const (
	LoginSuccess = "Success"
	LoginFailure = "Failure"
)

// VisitorLog records a single login attempt.
type VisitorLog struct {
	Username  string    `json:"username"`
	LoginTime time.Time `json:"login_time"`
	IPAddress string    `json:"ip_address"`
	Status    string    `json:"status"`
}
