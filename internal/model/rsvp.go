package model

import "time"

const (
	StatusAttending    = "attending"
	StatusNotAttending = "not_attending"
	StatusMaybe        = "maybe"
)

type RSVP struct {
	ID             int64     `json:"id"`
	EventID        int64     `json:"event_id"`
	GuestName      string    `json:"guest_name"`
	GuestEmail     string    `json:"guest_email"`
	GuestPhone     string    `json:"guest_phone"`
	Status         string    `json:"attendance_status"`
	NumberOfGuests int       `json:"number_of_guests"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// RSVPStats aggregates responses for an event's dashboard. Only attending
// and not_attending responses count; "maybe" is excluded, matching the
// dashboard's definition of a valid response. Guest counts sum party sizes.
type RSVPStats struct {
	TotalResponses     int `json:"total_responses"`
	AttendingGuests    int `json:"attending_guests"`
	NotAttendingGuests int `json:"not_attending_guests"`
	TotalGuests        int `json:"total_guests"`
}
