package auth

import "github.com/golang-jwt/jwt/v5"

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	// TokenTypeAccess is a short-lived token used to authorize API calls.
	TokenTypeAccess TokenType = "access"

	// TokenTypeRefresh is a long-lived token used to obtain new access tokens.
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the JWT claims carried by Cabinet tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Username is the authenticated user's login name.
	Username string `json:"username"`

	// OwnerID scopes every folder and file operation of this token.
	OwnerID int64 `json:"owner_id"`

	// TokenType is either "access" or "refresh".
	TokenType TokenType `json:"token_type"`
}

// IsAccessToken reports whether the token is an access token.
func (c *Claims) IsAccessToken() bool {
	return c.TokenType == TokenTypeAccess
}

// IsRefreshToken reports whether the token is a refresh token.
func (c *Claims) IsRefreshToken() bool {
	return c.TokenType == TokenTypeRefresh
}
