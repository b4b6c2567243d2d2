package model

import "time"

// HostSession binds a browser to a verified host email for its lifetime.
type HostSession struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	HostEmail string    `json:"host_email"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
