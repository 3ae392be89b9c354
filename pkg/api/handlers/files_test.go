package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cabinetfs/cabinet/pkg/registry"
	"github.com/cabinetfs/cabinet/pkg/vfs/store/memory"
)

// newFilesRouter mounts a FilesHandler the way the API router does, so URL
// parameters resolve in tests.
func newFilesRouter(blobs *stubBlobStore) (*chi.Mux, *FilesHandler) {
	handler := NewFilesHandler(registry.New(memory.New()), blobs, time.Minute)

	r := chi.NewRouter()
	r.Post("/files", handler.Register)
	r.Get("/files", handler.List)
	r.Get("/files/search", handler.Search)
	r.Route("/files/{id}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Delete("/", handler.Delete)
		r.Get("/download", handler.Download)
		r.Post("/rename", handler.Rename)
		r.Post("/move", handler.Move)
	})
	return r, handler
}

func registerTestFile(t *testing.T, router *chi.Mux, owner int64, folder, name string) FileResponse {
	t.Helper()

	body := `{"folder_path":"` + folder + `","blob_ref":"blob-` + name + `","original_name":"` + name + `","size":42,"mime_type":"text/plain"}`
	req := ownerRequest("POST", "/files", body, owner)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Register(%s) failed with status %d: %s", name, w.Code, w.Body.String())
	}

	var resp FileResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func TestRegisterFile_ReturnsCreated(t *testing.T) {
	router, _ := newFilesRouter(newStubBlobStore())

	file := registerTestFile(t, router, 1, "/", "report.pdf")

	if file.OriginalName != "report.pdf" {
		t.Errorf("Expected original name 'report.pdf', got '%s'", file.OriginalName)
	}
	if file.Name == "" || file.Name == "report.pdf" {
		t.Errorf("Expected a timestamp-prefixed stored name, got '%s'", file.Name)
	}
	if file.FolderPath != "/" {
		t.Errorf("Expected folder '/', got '%s'", file.FolderPath)
	}
}

func TestRegisterFile_MissingFolder_Returns404(t *testing.T) {
	router, _ := newFilesRouter(newStubBlobStore())

	body := `{"folder_path":"/nope","blob_ref":"b1","original_name":"a.txt","size":1}`
	req := ownerRequest("POST", "/files", body, 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestRegisterFile_MissingBlobRef_Returns400(t *testing.T) {
	router, _ := newFilesRouter(newStubBlobStore())

	body := `{"folder_path":"/","original_name":"a.txt","size":1}`
	req := ownerRequest("POST", "/files", body, 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestListFiles_ScopedToOwnerAndFolder(t *testing.T) {
	router, _ := newFilesRouter(newStubBlobStore())

	registerTestFile(t, router, 1, "/", "a.txt")
	registerTestFile(t, router, 1, "/", "b.txt")
	registerTestFile(t, router, 2, "/", "c.txt")

	req := ownerRequest("GET", "/files?folder=/", "", 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp []FileResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Errorf("Expected 2 files for owner 1, got %d", len(resp))
	}
}

func TestGetFile_OtherOwner_Returns404(t *testing.T) {
	router, _ := newFilesRouter(newStubBlobStore())

	file := registerTestFile(t, router, 1, "/", "a.txt")

	req := ownerRequest("GET", "/files/"+file.ID, "", 2)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestSearchFiles_MatchesOriginalName(t *testing.T) {
	router, _ := newFilesRouter(newStubBlobStore())

	registerTestFile(t, router, 1, "/", "Quarterly-Report.pdf")
	registerTestFile(t, router, 1, "/", "notes.txt")

	req := ownerRequest("GET", "/files/search?q=report", "", 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp []FileResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].OriginalName != "Quarterly-Report.pdf" {
		t.Errorf("Unexpected search result: %+v", resp)
	}
}

func TestDownload_ReturnsPresignedURL(t *testing.T) {
	blobs := newStubBlobStore()
	router, _ := newFilesRouter(blobs)

	file := registerTestFile(t, router, 1, "/", "a.txt")
	blobs.objects[file.BlobRef] = 42

	req := ownerRequest("GET", "/files/"+file.ID+"/download", "", 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp DownloadResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.URL != "https://blobs.test/"+file.BlobRef {
		t.Errorf("Unexpected URL: %s", resp.URL)
	}
	if !resp.ExpiresAt.After(time.Now()) {
		t.Errorf("Expected future expiry, got %v", resp.ExpiresAt)
	}
}

func TestDownload_MissingBlob_Returns404(t *testing.T) {
	router, _ := newFilesRouter(newStubBlobStore())

	file := registerTestFile(t, router, 1, "/", "a.txt")

	req := ownerRequest("GET", "/files/"+file.ID+"/download", "", 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestRenameFile_ReturnsUpdatedRecord(t *testing.T) {
	router, _ := newFilesRouter(newStubBlobStore())

	file := registerTestFile(t, router, 1, "/", "a.txt")

	req := ownerRequest("POST", "/files/"+file.ID+"/rename", `{"new_name":"b.txt"}`, 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp FileResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Name != "b.txt" {
		t.Errorf("Expected name 'b.txt', got '%s'", resp.Name)
	}
}

func TestMoveFile_MissingDestination_Returns404(t *testing.T) {
	router, _ := newFilesRouter(newStubBlobStore())

	file := registerTestFile(t, router, 1, "/", "a.txt")

	req := ownerRequest("POST", "/files/"+file.ID+"/move", `{"folder_path":"/nope"}`, 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestDeleteFile_Returns204ThenGone(t *testing.T) {
	router, _ := newFilesRouter(newStubBlobStore())

	file := registerTestFile(t, router, 1, "/", "a.txt")

	req := ownerRequest("DELETE", "/files/"+file.ID, "", 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status %d, got %d", http.StatusNoContent, w.Code)
	}

	req = ownerRequest("GET", "/files/"+file.ID, "", 1)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d after delete, got %d", http.StatusNotFound, w.Code)
	}
}
