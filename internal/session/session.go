// Package session holds the login session state: who is logged in, with
// what role, and whether they asked to be remembered. Sessions live in a
// key-value store outside the relational database; the presence of a stored
// session means "logged in", its absence means "logged out".
package session

import (
	"context"
	"errors"
	"time"

	"salesku/internal/models"
)

// ErrNotFound is returned when a session ID does not resolve, either because
// it never existed, was cleared by logout, or expired.
var ErrNotFound = errors.New("session not found")

// Session is the durable login record created on successful login and
// destroyed on logout.
type Session struct {
	Username   string      `json:"username"`
	Role       models.Role `json:"role"`
	RememberMe bool        `json:"remember_me"`
}

// Store persists sessions keyed by an opaque session ID.
type Store interface {
	Save(ctx context.Context, id string, sess Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
