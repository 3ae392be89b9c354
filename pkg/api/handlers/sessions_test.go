package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cabinetfs/cabinet/pkg/session"
)

func newTestSessionsHandler() *SessionsHandler {
	return NewSessionsHandler(session.NewManager(session.Config{TTL: time.Minute}))
}

func TestSession_IdleByDefault(t *testing.T) {
	handler := newTestSessionsHandler()

	req := ownerRequest("GET", "/api/v1/session", "", 1)
	w := httptest.NewRecorder()

	handler.Get(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp SessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.State != "Idle" {
		t.Errorf("State = %q, want %q", resp.State, "Idle")
	}
}

func TestBeginSession_ReturnsCreated(t *testing.T) {
	handler := newTestSessionsHandler()

	req := ownerRequest("POST", "/api/v1/session/begin", `{"state":"AwaitingFolderName"}`, 1)
	w := httptest.NewRecorder()

	handler.Begin(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	req = ownerRequest("GET", "/api/v1/session", "", 1)
	w = httptest.NewRecorder()
	handler.Get(w, req)

	var resp SessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.State != "AwaitingFolderName" {
		t.Errorf("State = %q, want %q", resp.State, "AwaitingFolderName")
	}
}

func TestBeginSession_SecondPrompt_Returns409(t *testing.T) {
	handler := newTestSessionsHandler()

	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		req := ownerRequest("POST", "/api/v1/session/begin", `{"state":"AwaitingFilename"}`, 1)
		w := httptest.NewRecorder()

		handler.Begin(w, req)

		if w.Code != want {
			t.Fatalf("Attempt %d: expected status %d, got %d", i, want, w.Code)
		}
	}
}

func TestBeginSession_UnknownState_Returns400(t *testing.T) {
	handler := newTestSessionsHandler()

	for _, body := range []string{`{"state":"Idle"}`, `{"state":"Waiting"}`, `{}`} {
		req := ownerRequest("POST", "/api/v1/session/begin", body, 1)
		w := httptest.NewRecorder()

		handler.Begin(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Body %s: expected status %d, got %d", body, http.StatusBadRequest, w.Code)
		}
	}
}

func TestCompleteSession_ReturnsValues(t *testing.T) {
	handler := newTestSessionsHandler()

	req := ownerRequest("POST", "/api/v1/session/begin", `{"state":"AwaitingMoveDestination"}`, 1)
	w := httptest.NewRecorder()
	handler.Begin(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Begin failed: %d", w.Code)
	}

	req = ownerRequest("POST", "/api/v1/session/values", `{"key":"file_id","value":"abc-123"}`, 1)
	w = httptest.NewRecorder()
	handler.SetValue(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("SetValue failed: %d: %s", w.Code, w.Body.String())
	}

	req = ownerRequest("POST", "/api/v1/session/complete", `{"state":"AwaitingMoveDestination"}`, 1)
	w = httptest.NewRecorder()
	handler.Complete(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Complete failed: %d: %s", w.Code, w.Body.String())
	}

	var resp CompleteSessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Values["file_id"] != "abc-123" {
		t.Errorf("Values = %v, want file_id=abc-123", resp.Values)
	}

	// The prompt is resolved, so the owner is idle again.
	req = ownerRequest("GET", "/api/v1/session", "", 1)
	w = httptest.NewRecorder()
	handler.Get(w, req)

	var state SessionResponse
	if err := json.NewDecoder(w.Body).Decode(&state); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if state.State != "Idle" {
		t.Errorf("State = %q, want %q", state.State, "Idle")
	}
}

func TestCompleteSession_WrongState_Returns409(t *testing.T) {
	handler := newTestSessionsHandler()

	req := ownerRequest("POST", "/api/v1/session/begin", `{"state":"AwaitingFilename"}`, 1)
	w := httptest.NewRecorder()
	handler.Begin(w, req)

	req = ownerRequest("POST", "/api/v1/session/complete", `{"state":"AwaitingFolderName"}`, 1)
	w = httptest.NewRecorder()
	handler.Complete(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestSetSessionValue_NoPrompt_Returns409(t *testing.T) {
	handler := newTestSessionsHandler()

	req := ownerRequest("POST", "/api/v1/session/values", `{"key":"name","value":"docs"}`, 1)
	w := httptest.NewRecorder()

	handler.SetValue(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestCancelSession_Returns204(t *testing.T) {
	handler := newTestSessionsHandler()

	req := ownerRequest("POST", "/api/v1/session/begin", `{"state":"AwaitingRenameChoice"}`, 1)
	w := httptest.NewRecorder()
	handler.Begin(w, req)

	req = ownerRequest("DELETE", "/api/v1/session", "", 1)
	w = httptest.NewRecorder()
	handler.Cancel(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status %d, got %d", http.StatusNoContent, w.Code)
	}

	// A new prompt opens cleanly after the cancel.
	req = ownerRequest("POST", "/api/v1/session/begin", `{"state":"AwaitingFolderName"}`, 1)
	w = httptest.NewRecorder()
	handler.Begin(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("Expected status %d after cancel, got %d", http.StatusCreated, w.Code)
	}
}

func TestSession_ScopedToOwner(t *testing.T) {
	handler := newTestSessionsHandler()

	req := ownerRequest("POST", "/api/v1/session/begin", `{"state":"AwaitingFolderName"}`, 1)
	w := httptest.NewRecorder()
	handler.Begin(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Begin failed: %d", w.Code)
	}

	req = ownerRequest("GET", "/api/v1/session", "", 2)
	w = httptest.NewRecorder()
	handler.Get(w, req)

	var resp SessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.State != "Idle" {
		t.Errorf("Other owner's state = %q, want %q", resp.State, "Idle")
	}
}

func TestSession_NoClaims_Returns401(t *testing.T) {
	handler := newTestSessionsHandler()

	req := httptest.NewRequest("GET", "/api/v1/session", strings.NewReader(""))
	w := httptest.NewRecorder()

	handler.Get(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}
