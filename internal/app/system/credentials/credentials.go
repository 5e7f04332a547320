// Package credentials registers users and checks their passwords.
//
// Passwords are stored as bcrypt hashes. Authentication failures never say
// whether the username or the password was wrong.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	userstore "github.com/dalemusser/assignportal/internal/app/store/users"
	"github.com/dalemusser/assignportal/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost used when none is configured.
const DefaultCost = 12

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var (
	ErrConflict           = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingFields      = errors.New("username and password are required")
	ErrInvalidRole        = errors.New(`role must be "user" or "admin"`)
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

// NormalizeUsername is the form usernames are stored and looked up in.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// UserStore is the persistence the service needs. *userstore.Store satisfies it.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	RoleOf(ctx context.Context, username string) (string, bool, error)
}

// Service is the credential store: registration, authentication and role lookup.
type Service struct {
	users     UserStore
	cost      int
	dummyHash []byte
}

// New creates a Service. A cost outside bcrypt's bounds falls back to DefaultCost.
func New(users UserStore, cost int) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	// Compared against when the username is unknown so both failure paths cost the same.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("assignportal-dummy-password"), cost)
	return &Service{users: users, cost: cost, dummyHash: dummy}
}

// Register creates a user with a hashed password. role defaults to "user".
func (s *Service) Register(ctx context.Context, username, password, role string) error {
	username = NormalizeUsername(username)
	if username == "" || password == "" {
		return ErrMissingFields
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		return ErrInvalidRole
	}

	exists, err := s.users.Exists(ctx, username)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if exists {
		return ErrConflict
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.users.Create(ctx, models.User{Username: username, PasswordHash: hash, Role: role})
	if errors.Is(err, userstore.ErrDuplicateUsername) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Authenticate checks username/password and returns the stored role.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, error) {
	username = NormalizeUsername(username)
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, mongo.ErrNoDocuments) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	return u.Role, nil
}

// RoleOf returns the role of username; found is false for unknown users.
func (s *Service) RoleOf(ctx context.Context, username string) (role string, found bool, err error) {
	return s.users.RoleOf(ctx, NormalizeUsername(username))
}

// HashPassword hashes a password using bcrypt with the given cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
