package identity

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Common errors for user store operations.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserDisabled  = errors.New("user account is disabled")
	ErrDuplicateUser = errors.New("user already exists")
)

// User represents an API user. Every user owns exactly one folder tree,
// identified by OwnerID.
type User struct {
	// Username is the login name. Must be unique.
	Username string `yaml:"username" mapstructure:"username"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `yaml:"password_hash" mapstructure:"password_hash"`

	// OwnerID scopes all folder and file records of this user.
	OwnerID int64 `yaml:"owner_id" mapstructure:"owner_id"`

	// DisplayName is an optional human-readable name.
	DisplayName string `yaml:"display_name,omitempty" mapstructure:"display_name"`

	// Enabled controls whether the user can authenticate.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Validate checks that the user record is usable.
func (u *User) Validate() error {
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("user %q: password_hash is required", u.Username)
	}
	if u.OwnerID <= 0 {
		return fmt.Errorf("user %q: owner_id must be positive", u.Username)
	}
	return nil
}

// UserStore provides user lookup and credential verification.
//
// Implementations must be safe for concurrent use; the API handlers call
// these methods from multiple requests at once.
type UserStore interface {
	// GetUser returns a user by username.
	// Returns ErrUserNotFound if the user doesn't exist.
	GetUser(username string) (*User, error)

	// ValidateCredentials verifies username/password credentials.
	// Returns ErrInvalidCredentials if the credentials are invalid.
	// Returns ErrUserDisabled if the user account is disabled.
	ValidateCredentials(username, password string) (*User, error)

	// ListUsers returns all users sorted by username.
	ListUsers() ([]*User, error)
}

// ConfigUserStore implements UserStore using in-memory data loaded from
// configuration. Data is loaded at startup and is read-only.
type ConfigUserStore struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewConfigUserStore creates a ConfigUserStore with the given users.
func NewConfigUserStore(users []*User) (*ConfigUserStore, error) {
	store := &ConfigUserStore{
		users: make(map[string]*User),
	}

	owners := make(map[int64]string)
	for _, u := range users {
		if err := u.Validate(); err != nil {
			return nil, err
		}
		if _, exists := store.users[u.Username]; exists {
			return nil, ErrDuplicateUser
		}
		if other, taken := owners[u.OwnerID]; taken {
			return nil, fmt.Errorf("users %q and %q share owner_id %d", other, u.Username, u.OwnerID)
		}
		store.users[u.Username] = u
		owners[u.OwnerID] = u.Username
	}

	return store, nil
}

// GetUser returns a user by username.
func (s *ConfigUserStore) GetUser(username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ValidateCredentials verifies username/password credentials.
func (s *ConfigUserStore) ValidateCredentials(username, password string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.Enabled {
		return nil, ErrUserDisabled
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ListUsers returns all users sorted by username.
func (s *ConfigUserStore) ListUsers() ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	return users, nil
}
