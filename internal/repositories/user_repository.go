package repositories

import (
	"context"
	"errors"

	"salesku/internal/models"
)

// ErrUserNotFound is returned when a username or ID does not resolve.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateUsername is returned by Create when the username is already
// taken. The check is enforced by a unique index, not by a prior read, so
// concurrent creations cannot both slip through.
var ErrDuplicateUsername = errors.New("username already exists")

// UserRepository defines the interface for credential store access.
// There is no delete or update-in-place: corrections go through Upsert under
// the same ID.
type UserRepository interface {
	// Create inserts a new user, failing with ErrDuplicateUsername when the
	// username is taken.
	Create(ctx context.Context, user *models.User) error
	// Upsert inserts or replaces a user by primary key. It does not guard
	// username uniqueness; callers use it only for rows they already own.
	Upsert(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	// ListSalesUsers returns sales-role users sorted by display name.
	ListSalesUsers(ctx context.Context) ([]models.User, error)
	// ListAll returns every user sorted by creation time, newest first.
	ListAll(ctx context.Context) ([]models.User, error)
}
