package models

import "time"

// Session is a server-side record behind a session cookie. Only the SHA-256
// hash of the cookie token is stored.
type Session struct {
	ID             string
	UserID         string
	TokenHash      string
	CreatedAt      time.Time
	ExpiresAt      time.Time
	LastActivityAt time.Time
	UserAgent      *string
	IPAddress      *string
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
