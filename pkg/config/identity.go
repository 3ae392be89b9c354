package config

import (
	"fmt"

	"github.com/cabinetfs/cabinet/pkg/identity"
)

// CreateUserStore builds the user store from the configured users.
func (c *Config) CreateUserStore() (identity.UserStore, error) {
	users := make([]*identity.User, len(c.Users))
	for i := range c.Users {
		users[i] = &c.Users[i]
	}

	store, err := identity.NewConfigUserStore(users)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return store, nil
}
