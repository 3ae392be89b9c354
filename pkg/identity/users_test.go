package identity

import (
	"errors"
	"testing"
)

func newTestUsers(t *testing.T) []*User {
	t.Helper()
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}
	return []*User{
		{Username: "alice", PasswordHash: hash, OwnerID: 1, Enabled: true},
		{Username: "bob", PasswordHash: hash, OwnerID: 2, Enabled: false},
	}
}

func TestConfigUserStoreGetUser(t *testing.T) {
	store, err := NewConfigUserStore(newTestUsers(t))
	if err != nil {
		t.Fatalf("NewConfigUserStore() failed: %v", err)
	}

	user, err := store.GetUser("alice")
	if err != nil {
		t.Fatalf("GetUser() failed: %v", err)
	}
	if user.OwnerID != 1 {
		t.Errorf("expected owner 1, got %d", user.OwnerID)
	}

	if _, err := store.GetUser("mallory"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestConfigUserStoreValidateCredentials(t *testing.T) {
	store, err := NewConfigUserStore(newTestUsers(t))
	if err != nil {
		t.Fatalf("NewConfigUserStore() failed: %v", err)
	}

	user, err := store.ValidateCredentials("alice", "correct horse battery staple")
	if err != nil {
		t.Fatalf("ValidateCredentials() failed: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("unexpected user: %q", user.Username)
	}

	if _, err := store.ValidateCredentials("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
	if _, err := store.ValidateCredentials("mallory", "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user should look like bad credentials, got: %v", err)
	}
	if _, err := store.ValidateCredentials("bob", "correct horse battery staple"); !errors.Is(err, ErrUserDisabled) {
		t.Errorf("expected ErrUserDisabled, got: %v", err)
	}
}

func TestConfigUserStoreRejectsDuplicates(t *testing.T) {
	users := newTestUsers(t)
	users = append(users, &User{Username: "alice", PasswordHash: users[0].PasswordHash, OwnerID: 3, Enabled: true})

	if _, err := NewConfigUserStore(users); !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("expected ErrDuplicateUser, got: %v", err)
	}
}

func TestConfigUserStoreRejectsSharedOwner(t *testing.T) {
	users := newTestUsers(t)
	users = append(users, &User{Username: "eve", PasswordHash: users[0].PasswordHash, OwnerID: 1, Enabled: true})

	if _, err := NewConfigUserStore(users); err == nil {
		t.Error("expected error for shared owner_id")
	}
}

func TestConfigUserStoreListUsers(t *testing.T) {
	store, err := NewConfigUserStore(newTestUsers(t))
	if err != nil {
		t.Fatalf("NewConfigUserStore() failed: %v", err)
	}

	users, err := store.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers() failed: %v", err)
	}
	if len(users) != 2 || users[0].Username != "alice" || users[1].Username != "bob" {
		t.Errorf("unexpected listing: %+v", users)
	}
}

func TestUserValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		user User
	}{
		{"missing username", User{PasswordHash: "x", OwnerID: 1}},
		{"missing hash", User{Username: "alice", OwnerID: 1}},
		{"zero owner", User{Username: "alice", PasswordHash: "x"}},
		{"negative owner", User{Username: "alice", PasswordHash: "x", OwnerID: -1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.user.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
