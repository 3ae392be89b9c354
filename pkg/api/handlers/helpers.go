package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cabinetfs/cabinet/pkg/api/auth"
	"github.com/cabinetfs/cabinet/pkg/api/middleware"
	"github.com/cabinetfs/cabinet/pkg/identity"
	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// decodeJSONBody decodes a JSON request body into the provided pointer.
// Returns true if successful, false if decoding fails (error response is written automatically).
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// requireClaims retrieves JWT claims from the request context, writing 401
// if none are present. Returns the claims and true if successful.
func requireClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return nil, false
	}
	return claims, true
}

// getUserOrUnauthorized fetches a user by username, returning 401 if not found.
// Used for auth-related endpoints where user absence means invalid auth.
// Returns the user and true if successful.
func getUserOrUnauthorized(w http.ResponseWriter, store identity.UserStore, username string) (*identity.User, bool) {
	user, err := store.GetUser(username)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			Unauthorized(w, "User no longer exists")
			return nil, false
		}
		InternalServerError(w, "Failed to get user")
		return nil, false
	}
	return user, true
}

// writeStoreError maps a metadata store error to a problem response.
func writeStoreError(w http.ResponseWriter, err error) {
	switch vfs.CodeOf(err) {
	case vfs.ErrInvalidPath, vfs.ErrInvalidArgument:
		BadRequest(w, err.Error())
	case vfs.ErrNotFound, vfs.ErrFolderNotFound:
		NotFound(w, err.Error())
	case vfs.ErrFolderExists, vfs.ErrAlreadyExists, vfs.ErrFolderNotEmpty:
		Conflict(w, err.Error())
	case vfs.ErrStorageUnavailable:
		ServiceUnavailable(w, "Metadata store is unavailable")
	default:
		InternalServerError(w, "Unexpected error")
	}
}
