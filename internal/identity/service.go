package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUsernameTaken occurs when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials covers both unknown usernames and bad passwords so
	// login responses do not leak which one failed.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrMasterKeyMismatch occurs when admin registration carries a wrong or
	// missing master key.
	ErrMasterKeyMismatch = errors.New("invalid master secret key for admin registration")
)

// Service manages the user lifecycle. Passwords are stored only as bcrypt
// hashes and never compared in plaintext.
type Service struct {
	repo      Repository
	masterKey string
}

// NewService creates a new identity service. masterKey gates admin role
// elevation at registration time.
func NewService(repo Repository, masterKey string) *Service {
	return &Service{repo: repo, masterKey: masterKey}
}

// RegisterInput captures data required to create a user.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Role      string
	MasterKey string
}

// Register creates a new user. The admin role is granted only when the
// supplied master key matches the configured one; any other role value
// defaults to USER.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return User{}, errors.New("username and password are required")
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return User{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	role := RoleUser
	if strings.EqualFold(input.Role, RoleAdmin) {
		if input.MasterKey == "" || input.MasterKey != s.masterKey {
			return User{}, ErrMasterKeyMismatch
		}
		role = RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	return s.repo.Create(ctx, User{
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
}

// Authenticate verifies credentials against the stored hash.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	user, err := s.repo.FindByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}
