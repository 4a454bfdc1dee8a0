package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/isdelr/student-records/internal/auth"
	"github.com/isdelr/student-records/internal/models"
	"github.com/isdelr/student-records/internal/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
	Authenticate(token string) (string, error)
}

// UserRepository is the user directory as seen by UserService.
type UserRepository interface {
	View(fn func(storage.UserSnapshot) error) error
	Update(fn func(*storage.UserSnapshot) (bool, error)) error
}

// TokenIssuer issues and verifies identity tokens.
type TokenIssuer interface {
	GenerateJWT(username string) (string, error)
	ValidateJWT(token string) (*auth.Claims, error)
}

// PasswordHasher is a one-way password hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// BcryptHasher hashes passwords with bcrypt at the given cost.
type BcryptHasher struct {
	Cost int
}

// Hash returns the bcrypt hash of password.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash.
func (h BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// UserService registers users and exchanges credentials for identity tokens.
type UserService struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	events EventRecorder

	decoyOnce sync.Once
	decoy     string
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, events EventRecorder) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		events: events,
	}
}

// Register adds a user, failing with ErrUsernameTaken on an exact match.
func (s *UserService) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	// Hash outside the directory lock; bcrypt is slow.
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.users.Update(func(snap *storage.UserSnapshot) (bool, error) {
		if _, exists := snap.Find(username); exists {
			return false, ErrUsernameTaken
		}
		snap.Users = append(snap.Users, models.User{Username: username, PasswordHash: hashed})
		return true, nil
	})
	if err != nil {
		return err
	}

	recordEvent(ctx, s.events, EventUserRegister, "info", fmt.Sprintf("User '%s' registered.", username), username, nil)
	return nil
}

// Login verifies credentials and returns an identity token. Unknown users and
// wrong passwords are indistinguishable.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	var hashes []string
	err := s.users.View(func(snap storage.UserSnapshot) error {
		for _, u := range snap.Users {
			if u.Username == username {
				hashes = append(hashes, u.PasswordHash)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if len(hashes) == 0 {
		// Burn a comparable amount of time so lookups don't reveal which usernames exist.
		s.hasher.Verify(s.decoyHash(), password)
	}

	for _, h := range hashes {
		if s.hasher.Verify(h, password) {
			token, err := s.tokens.GenerateJWT(username)
			if err != nil {
				return "", fmt.Errorf("failed to generate token: %w", err)
			}
			recordEvent(ctx, s.events, EventUserLogin, "info", fmt.Sprintf("User '%s' logged in.", username), username, nil)
			return token, nil
		}
	}

	recordEvent(ctx, s.events, EventUserLoginFail, "warn", fmt.Sprintf("Failed login for '%s'.", username), username, nil)
	return "", ErrInvalidCredentials
}

// Authenticate verifies token and returns the identity it carries.
func (s *UserService) Authenticate(token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	claims, err := s.tokens.ValidateJWT(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return claims.Username(), nil
}

func (s *UserService) decoyHash() string {
	s.decoyOnce.Do(func() {
		h, err := s.hasher.Hash("decoy-password")
		if err != nil {
			log.Error().Err(err).Msg("Failed to compute decoy password hash")
			return
		}
		s.decoy = h
	})
	return s.decoy
}

// recordEvent writes to the audit log, logging rather than returning failures.
func recordEvent(ctx context.Context, events EventRecorder, eventType, level, message, actor string, studentID *string) {
	if events == nil {
		return
	}
	if err := events.CreateEvent(ctx, eventType, level, message, actor, studentID); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}
}
