package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hajimeclub/portal/internal/entities"
)

// UserStore is the external user record store the service depends on.
// Lookups return (nil, nil) when no matching user exists; any non-nil error
// is a store failure and propagates untouched.
type UserStore interface {
	GetByID(id uint) (*entities.User, error)
	GetByEmail(email string) (*entities.User, error)
	Create(user *entities.User) error
	ChangePassword(id uint, passwordHash string) error
}

// IssuedSession is the session handed back after a successful registration
// or login, ready to be written as a cookie.
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
}

// RegisterInput is the validated registration payload. Role is deliberately
// absent: it is never client-supplied.
type RegisterInput struct {
	Name          string
	Email         string
	Password      string
	Phone         string
	AcceptedTerms bool
}

// Service orchestrates registration, login, logout and password changes
// using the hasher, the session manager and the user store.
type Service struct {
	users    UserStore
	hasher   *Hasher
	sessions *Manager

	// decoyHash is verified against when a login names an unknown email, so
	// both failure paths pay one KDF derivation and stay timing-similar.
	decoyHash string
}

// NewService creates the authentication service. It pre-computes the decoy
// credential used for timing equalization.
func NewService(users UserStore, hasher *Hasher, sessions *Manager) (*Service, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate decoy password: %w", err)
	}
	decoy, err := hasher.Hash(hex.EncodeToString(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to hash decoy password: %w", err)
	}

	return &Service{
		users:     users,
		hasher:    hasher,
		sessions:  sessions,
		decoyHash: decoy,
	}, nil
}

// Register creates a new student account and logs it in. Fails with
// ErrDuplicateEmail when the email is already registered (compared
// case-insensitively) and ErrTermsNotAccepted when the terms box was not
// ticked.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entities.User, *IssuedSession, error) {
	if !in.AcceptedTerms {
		return nil, nil, ErrTermsNotAccepted
	}

	// Stored lowercase so the unique index enforces case-insensitive
	// uniqueness even under concurrent registrations.
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrDuplicateEmail
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Name:          in.Name,
		Email:         email,
		PasswordHash:  passwordHash,
		Role:          entities.UserRoleStudent,
		Verified:      false,
		AcceptedTerms: true,
		Phone:         in.Phone,
		JoinedAt:      time.Now(),
	}
	if err := s.users.Create(user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Login validates credentials and issues a session. Unknown email and wrong
// password both fail with ErrInvalidCredentials; the unknown-email path runs
// a decoy verification so the two are not distinguishable by timing.
func (s *Service) Login(ctx context.Context, email, password string) (*entities.User, *IssuedSession, error) {
	user, err := s.users.GetByEmail(strings.TrimSpace(email))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		_, _ = s.hasher.Verify(password, s.decoyHash)
		return nil, nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		// Malformed stored hash is an integrity bug, never "wrong password".
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Logout revokes the session token. Idempotent: logging out twice or with an
// unknown token succeeds.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// ChangePassword verifies the caller's current password and replaces it. The
// session that authorized the change stays valid; other sessions for the
// same user are left untouched as well.
func (s *Service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return ErrUnauthenticated
	}

	ok, err := s.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCurrentPassword
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.users.ChangePassword(userID, newHash); err != nil {
		return fmt.Errorf("failed to persist new password: %w", err)
	}
	return nil
}

func (s *Service) issue(ctx context.Context, userID uint) (*IssuedSession, error) {
	token, expiry, err := s.sessions.Issue(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}
	return &IssuedSession{Token: token, ExpiresAt: expiry}, nil
}
