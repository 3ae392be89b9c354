package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cabinetfs/cabinet/pkg/blob"
	"github.com/cabinetfs/cabinet/pkg/registry"
	"github.com/cabinetfs/cabinet/pkg/vfs/store/memory"
)

// stubBlobStore is a minimal blob.Store for handler tests.
type stubBlobStore struct {
	objects map[string]int64
	statErr error
}

func newStubBlobStore() *stubBlobStore {
	return &stubBlobStore{objects: make(map[string]int64)}
}

func (s *stubBlobStore) Stat(ctx context.Context, ref string) (*blob.Info, error) {
	if s.statErr != nil {
		return nil, s.statErr
	}
	size, ok := s.objects[ref]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return &blob.Info{Ref: ref, Size: size}, nil
}

func (s *stubBlobStore) PresignGet(ctx context.Context, ref string, ttl time.Duration) (string, error) {
	if _, ok := s.objects[ref]; !ok {
		return "", blob.ErrNotFound
	}
	return "https://blobs.test/" + ref, nil
}

func (s *stubBlobStore) Delete(ctx context.Context, ref string) error {
	delete(s.objects, ref)
	return nil
}

func TestLiveness_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(nil, nil)
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.Liveness(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", resp.Status)
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected Data to be a map, got %T", resp.Data)
	}

	if data["service"] != "cabinet" {
		t.Errorf("Expected service 'cabinet', got '%s'", data["service"])
	}
}

func TestReadiness_NoRegistry_Returns503(t *testing.T) {
	handler := NewHealthHandler(nil, nil)
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Status != "unhealthy" {
		t.Errorf("Expected status 'unhealthy', got '%s'", resp.Status)
	}

	if resp.Error != "registry not initialized" {
		t.Errorf("Expected error 'registry not initialized', got '%s'", resp.Error)
	}
}

func TestReadiness_HealthyStore_Returns200(t *testing.T) {
	reg := registry.New(memory.New())
	handler := NewHealthHandler(reg, nil)
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestStores_AllHealthy_Returns200(t *testing.T) {
	reg := registry.New(memory.New())
	handler := NewHealthHandler(reg, newStubBlobStore())
	req := httptest.NewRequest("GET", "/health/stores", nil)
	w := httptest.NewRecorder()

	handler.Stores(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", resp.Status)
	}
}

func TestStores_NoBlobStore_Returns503(t *testing.T) {
	reg := registry.New(memory.New())
	handler := NewHealthHandler(reg, nil)
	req := httptest.NewRequest("GET", "/health/stores", nil)
	w := httptest.NewRecorder()

	handler.Stores(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}
