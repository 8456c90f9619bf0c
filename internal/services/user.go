package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/messagely/apiserver/internal/logging"
	"github.com/messagely/apiserver/internal/store"
	"github.com/messagely/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	List(ctx context.Context) ([]types.UserSummary, error)
	UpdateLastLogin(ctx context.Context, username string) error
}

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// RegisterParams carries the required registration fields.
type RegisterParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// UserService encapsulates user use-cases: registration, authentication,
// and profile lookups.
type UserService struct {
	repo   UserRepository
	hasher PasswordHasher
	log    logging.Logger
}

func NewUserService(repo UserRepository, hasher PasswordHasher, log logging.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, log: log}
}

// Register creates a new user. Every field is required; the password is
// hashed before it reaches the repository. A taken username is reported
// as ErrConflict.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (types.User, error) {
	params.Username = strings.TrimSpace(params.Username)
	params.FirstName = strings.TrimSpace(params.FirstName)
	params.LastName = strings.TrimSpace(params.LastName)
	params.Phone = strings.TrimSpace(params.Phone)

	if params.Username == "" || params.Password == "" ||
		params.FirstName == "" || params.LastName == "" || params.Phone == "" {
		return types.User{}, fmt.Errorf("%w: username, password, first_name, last_name, and phone are required", ErrValidation)
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     params.Username,
		PasswordHash: hash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Phone:        params.Phone,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, fmt.Errorf("%w: %s", ErrConflict, params.Username)
		}
		return types.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info(ctx, "user registered", "username", user.Username)
	return user, nil
}

// Authenticate checks a username/password pair. It returns nil when the
// credentials verify, ErrNotFound for an unknown username, and
// ErrAuthentication for a wrong password. It does not touch last_login_at;
// that is UpdateLoginTimestamp's job.
func (s *UserService) Authenticate(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, username)
		}
		return fmt.Errorf("get user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Warn(ctx, "authentication failed", "username", username)
		return ErrAuthentication
	}
	return nil
}

// UpdateLoginTimestamp unconditionally stamps last_login_at for an existing
// user. The caller is responsible for having authenticated first.
func (s *UserService) UpdateLoginTimestamp(ctx context.Context, username string) error {
	if err := s.repo.UpdateLastLogin(ctx, username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, username)
		}
		return fmt.Errorf("update login timestamp: %w", err)
	}
	return nil
}

// Get returns the full profile including timestamps.
func (s *UserService) Get(ctx context.Context, username string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, fmt.Errorf("%w: user %s", ErrNotFound, username)
		}
		return types.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// List returns the public profile of every user.
func (s *UserService) List(ctx context.Context) ([]types.UserSummary, error) {
	return s.repo.List(ctx)
}
