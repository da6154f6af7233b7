package services

import (
	"context"
	"errors"
	"fmt"

	"salesku/internal/models"
	"salesku/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooShort is returned when an account password is under the
// minimum length.
var ErrPasswordTooShort = errors.New("password must be at least 6 characters")

// ErrTargetRequired is returned when a sales account is created without a
// monthly revenue target.
var ErrTargetRequired = errors.New("target omset is required for sales accounts")

// UserService handles business logic for account management. Accounts are
// created by admins and never updated or deleted afterwards.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// CreateUserInput is the data needed to create an account.
type CreateUserInput struct {
	Name        string
	Username    string
	Password    string
	Role        models.Role
	TargetOmset *int64
}

// CreateUser hashes the password and stores the account. A taken username
// surfaces as repositories.ErrDuplicateUsername from the store's unique
// index; there is no separate existence check to race against.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if len(input.Password) < 6 {
		return nil, ErrPasswordTooShort
	}
	if input.Role == models.RoleSales && (input.TargetOmset == nil || *input.TargetOmset <= 0) {
		return nil, ErrTargetRequired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     input.Name,
		Username: input.Username,
		Password: string(hashed),
		Role:     input.Role,
	}
	// The target only means anything for sales accounts.
	if input.Role == models.RoleSales {
		user.TargetOmset = input.TargetOmset
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves an account by exact username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.FindByUsername(ctx, username)
}

// ListAll returns every account, newest first.
func (s *UserService) ListAll(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListAll(ctx)
}

// ListSalesUsers returns sales accounts sorted by display name.
func (s *UserService) ListSalesUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListSalesUsers(ctx)
}
