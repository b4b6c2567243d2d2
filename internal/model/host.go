package model

import "time"

// Host is an event organizer, identified purely by email. The access token
// is issued once at event creation and stored only as a bcrypt hash.
type Host struct {
	ID              int64      `json:"id"`
	Email           string     `json:"email"`
	AccessTokenHash string     `json:"-"`
	TokenUsed       bool       `json:"token_used"`
	TokenUsedAt     *time.Time `json:"token_used_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// HostStatus reports whether a host record exists and whether its one-time
// access token has already been consumed. Pure read; callers must not leak
// the distinction between a missing host and a bad token to the client.
type HostStatus struct {
	Exists    bool
	TokenUsed bool
}
