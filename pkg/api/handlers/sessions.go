package handlers

import (
	"errors"
	"net/http"

	"github.com/cabinetfs/cabinet/internal/logger"
	"github.com/cabinetfs/cabinet/pkg/session"
	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// SessionsHandler exposes the conversational prompt state machine. A front
// end opens a prompt before asking its user for input, stashes choices on
// the session as they arrive, and resolves the prompt once the flow ends.
type SessionsHandler struct {
	sessions *session.Manager
}

// NewSessionsHandler creates a new SessionsHandler.
func NewSessionsHandler(sessions *session.Manager) *SessionsHandler {
	return &SessionsHandler{sessions: sessions}
}

// SessionResponse is the API representation of an owner's prompt state.
type SessionResponse struct {
	State string `json:"state"`
}

// BeginSessionRequest is the request body for POST /api/v1/session/begin.
type BeginSessionRequest struct {
	// State is the prompt to open, by name: AwaitingFolderName,
	// AwaitingRenameChoice, AwaitingFilename, or AwaitingMoveDestination.
	State string `json:"state"`
}

// SessionValueRequest is the request body for POST /api/v1/session/values.
type SessionValueRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CompleteSessionRequest is the request body for POST /api/v1/session/complete.
type CompleteSessionRequest struct {
	// State names the prompt being resolved. The owner must still be in
	// this state, otherwise the request conflicts.
	State string `json:"state"`
}

// CompleteSessionResponse carries the values collected while the prompt was
// open.
type CompleteSessionResponse struct {
	Values map[string]string `json:"values"`
}

// Get handles GET /api/v1/session. It reports the owner's current state;
// expired prompts read as Idle.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	state := h.sessions.Current(vfs.OwnerID(claims.OwnerID))
	WriteJSONOK(w, SessionResponse{State: state.String()})
}

// Begin handles POST /api/v1/session/begin. Only an idle owner can open a
// prompt; a second prompt while one is outstanding returns 409.
func (h *SessionsHandler) Begin(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req BeginSessionRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	target, err := session.ParseState(req.State)
	if err != nil || target == session.StateIdle {
		BadRequest(w, "state must name a prompt to open")
		return
	}

	if err := h.sessions.Begin(vfs.OwnerID(claims.OwnerID), target); err != nil {
		writeSessionError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "session prompt opened",
		logger.Owner(claims.OwnerID), "state", target.String())

	WriteJSONCreated(w, SessionResponse{State: target.String()})
}

// SetValue handles POST /api/v1/session/values. It stashes a request-scoped
// value on the open prompt and refreshes its TTL.
func (h *SessionsHandler) SetValue(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req SessionValueRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Key == "" {
		BadRequest(w, "key is required")
		return
	}

	owner := vfs.OwnerID(claims.OwnerID)
	if err := h.sessions.SetValue(owner, req.Key, req.Value); err != nil {
		writeSessionError(w, err)
		return
	}

	WriteJSONOK(w, SessionResponse{State: h.sessions.Current(owner).String()})
}

// Complete handles POST /api/v1/session/complete. It resolves the prompt
// and returns the values collected while it was open.
func (h *SessionsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req CompleteSessionRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	expected, err := session.ParseState(req.State)
	if err != nil || expected == session.StateIdle {
		BadRequest(w, "state must name the prompt being resolved")
		return
	}

	values, err := h.sessions.Complete(vfs.OwnerID(claims.OwnerID), expected)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "session prompt resolved",
		logger.Owner(claims.OwnerID), "state", expected.String())

	WriteJSONOK(w, CompleteSessionResponse{Values: values})
}

// Cancel handles DELETE /api/v1/session. Cancelling an idle owner is a
// no-op, so the response is 204 either way.
func (h *SessionsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	h.sessions.Cancel(vfs.OwnerID(claims.OwnerID))
	WriteNoContent(w)
}

// writeSessionError maps a rejected transition to 409; anything else is
// unexpected.
func writeSessionError(w http.ResponseWriter, err error) {
	var transition *session.TransitionError
	if errors.As(err, &transition) {
		Conflict(w, transition.Error())
		return
	}
	InternalServerError(w, "Unexpected error")
}
