package session

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Session represents one authenticated browser session.
type Session struct {
	ID         string
	UserID     int64
	IPAddress  string
	UserAgent  string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// IsExpired checks if the session has expired.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsIdle checks if the session has been idle past the timeout.
func (s *Session) IsIdle(now time.Time, idleTimeout time.Duration) bool {
	return now.Sub(s.LastSeenAt) > idleTimeout
}

// Repository defines the interface for session persistence.
type Repository interface {
	// Create creates a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Touch updates the session's last-seen time.
	Touch(ctx context.Context, sessionID string, lastSeen time.Time) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// DeleteExpired removes every session past its expiry.
	DeleteExpired(ctx context.Context, now time.Time) error
}
