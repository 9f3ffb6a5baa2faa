package model

// Bed is one fixed-capacity slot, a row of the rooms table.
type Bed struct {
	RoomNo   string  `json:"room_no"`
	BedNo    int     `json:"bed_no"`
	Username *string `json:"username"`
}

// Occupied reports whether a student holds the bed.
func (b Bed) Occupied() bool { return b.Username != nil && *b.Username != "" }

// Assignment binds a student to a bed.
type Assignment struct {
	Username string `json:"username"`
	RoomNo   string `json:"room_no"`
	BedNo    int    `json:"bed_no"`
}

// RoomAvailability is a room that still has at least one free bed.
type RoomAvailability struct {
	RoomNo        string `json:"room_no"`
	AvailableBeds int    `json:"available_beds"`
}

// Occupancy is the bed-level fill summary across the hostel.
type Occupancy struct {
	Occupied int `json:"occupied"`
	Total    int `json:"total"`
}
