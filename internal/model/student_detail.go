package model

// StudentDetail holds the academic record a student submits after registering.
type StudentDetail struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Contact     string  `json:"contact"`
	Course      *string `json:"course"`
	Year        *string `json:"year"`
	Semester    *string `json:"semester"`
	PrevCollege *string `json:"prev_college"`
	PrevResult  *string `json:"prev_result"`
}
