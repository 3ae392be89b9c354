package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cabinetfs/cabinet/pkg/api/auth"
	"github.com/cabinetfs/cabinet/pkg/api/middleware"
	"github.com/cabinetfs/cabinet/pkg/identity"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestAuthHandler(t *testing.T) (*AuthHandler, *auth.JWTService) {
	t.Helper()

	hash, err := identity.HashPassword("hunter2-hunter2")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}

	users, err := identity.NewConfigUserStore([]*identity.User{
		{Username: "alice", PasswordHash: hash, OwnerID: 1, Enabled: true},
		{Username: "bob", PasswordHash: hash, OwnerID: 2, Enabled: false},
	})
	if err != nil {
		t.Fatalf("NewConfigUserStore() failed: %v", err)
	}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewJWTService() failed: %v", err)
	}

	return NewAuthHandler(users, jwtService), jwtService
}

func TestLogin_ValidCredentials_ReturnsTokenPair(t *testing.T) {
	handler, jwtService := newTestAuthHandler(t)

	body := `{"username":"alice","password":"hunter2-hunter2"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp LoginResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.TokenType != "Bearer" {
		t.Errorf("Expected token type 'Bearer', got '%s'", resp.TokenType)
	}
	if resp.User.Username != "alice" || resp.User.OwnerID != 1 {
		t.Errorf("Unexpected user in response: %+v", resp.User)
	}

	claims, err := jwtService.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("Returned access token did not validate: %v", err)
	}
	if claims.OwnerID != 1 {
		t.Errorf("Expected owner 1 in claims, got %d", claims.OwnerID)
	}

	if _, err := jwtService.ValidateRefreshToken(resp.RefreshToken); err != nil {
		t.Fatalf("Returned refresh token did not validate: %v", err)
	}
}

func TestLogin_WrongPassword_Returns401(t *testing.T) {
	handler, _ := newTestAuthHandler(t)

	body := `{"username":"alice","password":"wrong"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestLogin_UnknownUser_Returns401(t *testing.T) {
	handler, _ := newTestAuthHandler(t)

	body := `{"username":"mallory","password":"hunter2-hunter2"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestLogin_DisabledUser_Returns403(t *testing.T) {
	handler, _ := newTestAuthHandler(t)

	body := `{"username":"bob","password":"hunter2-hunter2"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

func TestLogin_MissingFields_Returns400(t *testing.T) {
	handler, _ := newTestAuthHandler(t)

	req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(`{"username":"alice"}`))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestRefresh_ValidToken_ReturnsNewPair(t *testing.T) {
	handler, jwtService := newTestAuthHandler(t)

	pair, err := jwtService.GenerateTokenPair(&identity.User{Username: "alice", OwnerID: 1, Enabled: true})
	if err != nil {
		t.Fatalf("GenerateTokenPair() failed: %v", err)
	}

	body := `{"refresh_token":"` + pair.RefreshToken + `"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/refresh", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Refresh(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	handler, jwtService := newTestAuthHandler(t)

	pair, err := jwtService.GenerateTokenPair(&identity.User{Username: "alice", OwnerID: 1, Enabled: true})
	if err != nil {
		t.Fatalf("GenerateTokenPair() failed: %v", err)
	}

	// Access token where a refresh token is expected.
	body := `{"refresh_token":"` + pair.AccessToken + `"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/refresh", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Refresh(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestMe_WithClaims_ReturnsUser(t *testing.T) {
	handler, jwtService := newTestAuthHandler(t)

	pair, err := jwtService.GenerateTokenPair(&identity.User{Username: "alice", OwnerID: 1, Enabled: true})
	if err != nil {
		t.Fatalf("GenerateTokenPair() failed: %v", err)
	}
	claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken() failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	w := httptest.NewRecorder()

	handler.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp UserResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Username != "alice" || resp.OwnerID != 1 {
		t.Errorf("Unexpected user: %+v", resp)
	}
}

func TestMe_NoClaims_Returns401(t *testing.T) {
	handler, _ := newTestAuthHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	w := httptest.NewRecorder()

	handler.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}
