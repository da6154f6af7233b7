package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"salesku/internal/models"
	"salesku/internal/repositories"
	"salesku/internal/session"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login: unknown username
// and wrong password are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrSessionExpired is returned when a token is structurally valid but its
// session no longer exists in the store (logged out, revoked, or expired).
var ErrSessionExpired = errors.New("session expired")

// AuthService handles login, logout, and per-request authentication.
type AuthService struct {
	userRepo    repositories.UserRepository
	sessions    session.Store
	jwtSecret   []byte
	tokenTTL    time.Duration
	rememberTTL time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, sessions session.Store, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessions:    sessions,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    24 * time.Hour,
		rememberTTL: 30 * 24 * time.Hour,
	}
}

// LoginResult carries everything a successful login produces.
type LoginResult struct {
	Token     string
	SessionID string
	Session   session.Session
	User      *models.User
}

// Login authenticates the credentials, persists a session, and issues a
// signed token that references it.
func (s *AuthService) Login(ctx context.Context, username, password string, rememberMe bool) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sessionID := uuid.New().String()
	sess := session.Session{
		Username:   user.Username,
		Role:       user.Role,
		RememberMe: rememberMe,
	}
	ttl := s.tokenTTL
	if rememberMe {
		ttl = s.rememberTTL
	}
	if err := s.sessions.Save(ctx, sessionID, sess, ttl); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":      sessionID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{
		Token:     tokenString,
		SessionID: sessionID,
		Session:   sess,
		User:      user,
	}, nil
}

// Logout destroys the session. The token itself cannot be recalled, but
// without its session every subsequent request is rejected.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// Authenticate validates the token and then re-checks the session store.
// The store is consulted on every call, so a session revoked after the
// token was issued fails here even while the token signature is still good.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (string, *session.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", nil, fmt.Errorf("invalid token")
	}
	sessionID, _ := claims["sid"].(string)
	if sessionID == "" {
		return "", nil, fmt.Errorf("invalid token: missing session id")
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return "", nil, ErrSessionExpired
		}
		return "", nil, fmt.Errorf("failed to load session: %w", err)
	}
	return sessionID, sess, nil
}

// Bootstrap seeds the two default accounts when their usernames are absent.
// Running it again is a no-op, so it is safe on every startup.
func (s *AuthService) Bootstrap(ctx context.Context) error {
	defaults := []struct {
		name     string
		username string
		password string
		role     models.Role
	}{
		{"Administrator", "admin", "admin123", models.RoleAdmin},
		{"Sales", "sales", "sales123", models.RoleSales},
	}

	for _, d := range defaults {
		if _, err := s.userRepo.FindByUsername(ctx, d.username); err == nil {
			continue
		} else if !errors.Is(err, repositories.ErrUserNotFound) {
			return fmt.Errorf("failed to check default account %s: %w", d.username, err)
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash default password: %w", err)
		}
		user := &models.User{
			Name:     d.name,
			Username: d.username,
			Password: string(hashed),
			Role:     d.role,
		}
		if err := s.userRepo.Upsert(ctx, user); err != nil {
			return fmt.Errorf("failed to seed default account %s: %w", d.username, err)
		}
		log.Printf("Seeded default account: %s (%s)", d.username, d.role)
	}
	return nil
}
