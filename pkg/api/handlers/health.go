package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cabinetfs/cabinet/pkg/blob"
	"github.com/cabinetfs/cabinet/pkg/registry"
)

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness probe: Is the server process running?
//   - Readiness probe: Is the server ready to accept requests?
//   - Store health: Detailed health status of the backing stores
type HealthHandler struct {
	registry *registry.Registry
	blobs    blob.Store
}

// NewHealthHandler creates a new health handler.
//
// Either parameter may be nil, in which case readiness and store health
// checks report the missing dependency as unhealthy.
func NewHealthHandler(reg *registry.Registry, blobs blob.Store) *HealthHandler {
	return &HealthHandler{registry: reg, blobs: blobs}
}

// startTime records when the process came up, for the uptime reported by
// the liveness probe.
var startTime = time.Now().UTC()

// HealthResponse is the body of every health endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func healthy(data any) HealthResponse {
	return HealthResponse{Status: "healthy", Timestamp: time.Now().UTC(), Data: data}
}

func unhealthy(errMsg string, data any) HealthResponse {
	return HealthResponse{Status: "unhealthy", Timestamp: time.Now().UTC(), Error: errMsg, Data: data}
}

// Liveness handles GET /health - simple liveness probe.
//
// Returns 200 OK if the server process is running. Designed for Kubernetes
// liveness probes; succeeds as long as the HTTP server is responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(startTime)
	WriteJSON(w, http.StatusOK, healthy(map[string]any{
		"service":    "cabinet",
		"started_at": startTime.Format(time.RFC3339),
		"uptime":     uptime.String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// Readiness handles GET /health/ready - readiness probe.
//
// Returns 200 OK when the metadata store answers a health check, 503
// otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthy("registry not initialized", nil))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.registry.Store().HealthCheck(ctx); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthy(err.Error(), nil))
		return
	}

	WriteJSON(w, http.StatusOK, healthy(nil))
}

// StoreHealth represents the health status of a single backing store.
type StoreHealth struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// StoresResponse represents the detailed store health response.
type StoresResponse struct {
	Metadata StoreHealth `json:"metadata"`
	Blob     StoreHealth `json:"blob"`
}

// Stores handles GET /health/stores - detailed store health.
//
// Probes the metadata store via HealthCheck and the blob store via a Stat
// on a sentinel ref (ErrNotFound counts as healthy; the backend answered).
// Returns 200 OK if both are healthy, 503 otherwise.
func (h *HealthHandler) Stores(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var response StoresResponse
	allHealthy := true

	response.Metadata = StoreHealth{Name: "metadata", Status: "healthy"}
	if h.registry == nil {
		response.Metadata.Status = "unhealthy"
		response.Metadata.Error = "registry not initialized"
		allHealthy = false
	} else {
		start := time.Now()
		err := h.registry.Store().HealthCheck(ctx)
		response.Metadata.Latency = time.Since(start).String()
		if err != nil {
			response.Metadata.Status = "unhealthy"
			response.Metadata.Error = err.Error()
			allHealthy = false
		}
	}

	response.Blob = StoreHealth{Name: "blob", Status: "healthy"}
	if h.blobs == nil {
		response.Blob.Status = "unhealthy"
		response.Blob.Error = "blob store not initialized"
		allHealthy = false
	} else {
		start := time.Now()
		_, err := h.blobs.Stat(ctx, ".healthcheck")
		response.Blob.Latency = time.Since(start).String()
		if err != nil && !errors.Is(err, blob.ErrNotFound) {
			response.Blob.Status = "unhealthy"
			response.Blob.Error = err.Error()
			allHealthy = false
		}
	}

	if allHealthy {
		WriteJSON(w, http.StatusOK, healthy(response))
		return
	}
	WriteJSON(w, http.StatusServiceUnavailable, unhealthy("one or more stores unhealthy", response))
}
