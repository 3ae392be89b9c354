package identity

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}

	if !VerifyPassword("correct horse battery staple", hash) {
		t.Error("VerifyPassword() should accept the original password")
	}
	if VerifyPassword("wrong password!", hash) {
		t.Error("VerifyPassword() should reject a different password")
	}
}

func TestHashPasswordUnique(t *testing.T) {
	first, err := HashPassword("samepassword")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}
	second, err := HashPassword("samepassword")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err != ErrPasswordTooShort {
		t.Errorf("expected ErrPasswordTooShort, got: %v", err)
	}
	if err := ValidatePassword(strings.Repeat("x", 73)); err != ErrPasswordTooLong {
		t.Errorf("expected ErrPasswordTooLong, got: %v", err)
	}
	if err := ValidatePassword("just-right"); err != nil {
		t.Errorf("expected nil, got: %v", err)
	}
}

func TestNeedsRehash(t *testing.T) {
	weak, err := HashPasswordWithCost("longenoughpassword", 4)
	if err != nil {
		t.Fatalf("HashPasswordWithCost() failed: %v", err)
	}
	if !NeedsRehash(weak) {
		t.Error("low-cost hash should need rehash")
	}

	current, err := HashPassword("longenoughpassword")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}
	if NeedsRehash(current) {
		t.Error("default-cost hash should not need rehash")
	}

	if !NeedsRehash("not-a-bcrypt-hash") {
		t.Error("garbage hash should need rehash")
	}
}
