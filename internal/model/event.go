package model

import "time"

type Event struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	HostEmail   string    `json:"host_email"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventType   string    `json:"event_type"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventRef is the minimal event view the login flow needs to pick a
// redirect target.
type EventRef struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
}
