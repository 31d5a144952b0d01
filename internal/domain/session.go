package domain

import (
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned when a session token is unknown or was invalidated.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a session's lifetime has elapsed.
	ErrSessionExpired = errors.New("session expired")
	// ErrUnauthenticated is returned when a request carries no valid session.
	ErrUnauthenticated = errors.New("not authenticated")
)

// Session binds a request context to exactly one identity for a bounded
// lifetime. The token is opaque; all authorization decisions go through a
// server-side lookup.
type Session struct {
	Token      string
	UserID     int64
	CreatedAt  int64 // Unix timestamp of session creation
	ExpiresAt  int64 // Unix timestamp after which the session is rejected
	LastUsedAt int64 // Unix timestamp of first/latest use, 0 until first use
}

// ExpiredAt reports whether the session lifetime has elapsed at the given time.
func (s *Session) ExpiredAt(now time.Time) bool {
	return now.Unix() >= s.ExpiresAt
}
