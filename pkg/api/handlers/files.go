package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cabinetfs/cabinet/internal/logger"
	"github.com/cabinetfs/cabinet/pkg/blob"
	"github.com/cabinetfs/cabinet/pkg/registry"
	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// FilesHandler handles file API endpoints.
//
// File content never passes through these handlers. Registration records
// metadata for an already-stored blob, and downloads hand out presigned URLs
// pointing at the blob store.
type FilesHandler struct {
	registry   *registry.Registry
	blobs      blob.Store
	presignTTL time.Duration
}

// NewFilesHandler creates a new FilesHandler.
func NewFilesHandler(reg *registry.Registry, blobs blob.Store, presignTTL time.Duration) *FilesHandler {
	if presignTTL <= 0 {
		presignTTL = 15 * time.Minute
	}
	return &FilesHandler{
		registry:   reg,
		blobs:      blobs,
		presignTTL: presignTTL,
	}
}

// FileResponse is the API representation of a file record.
type FileResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	OriginalName string    `json:"original_name"`
	FolderPath   string    `json:"folder_path"`
	BlobRef      string    `json:"blob_ref"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mime_type,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// RegisterFileRequest is the request body for POST /api/v1/files.
type RegisterFileRequest struct {
	// FolderPath is the containing folder ("/" for top level).
	FolderPath string `json:"folder_path"`

	// BlobRef is the external blob reference of the already-stored content.
	BlobRef string `json:"blob_ref"`

	// OriginalName is the uploader-supplied file name.
	OriginalName string `json:"original_name"`

	// Size is the content size in bytes.
	Size int64 `json:"size"`

	// MimeType is the content type, if known.
	MimeType string `json:"mime_type"`
}

// RenameFileRequest is the request body for POST /api/v1/files/{id}/rename.
type RenameFileRequest struct {
	NewName string `json:"new_name"`
}

// MoveFileRequest is the request body for POST /api/v1/files/{id}/move.
type MoveFileRequest struct {
	FolderPath string `json:"folder_path"`
}

// DownloadResponse is the response body for GET /api/v1/files/{id}/download.
type DownloadResponse struct {
	// URL is a presigned URL for fetching the content directly from the
	// blob store.
	URL string `json:"url"`

	// ExpiresAt is when the URL stops working.
	ExpiresAt time.Time `json:"expires_at"`
}

// Register handles POST /api/v1/files.
func (h *FilesHandler) Register(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req RegisterFileRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.FolderPath == "" {
		req.FolderPath = "/"
	}

	file, err := h.registry.RegisterFile(r.Context(), vfs.OwnerID(claims.OwnerID), registry.RegisterFileParams{
		FolderPath:   req.FolderPath,
		BlobRef:      req.BlobRef,
		OriginalName: req.OriginalName,
		Size:         req.Size,
		MimeType:     req.MimeType,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "file registered",
		logger.Owner(claims.OwnerID),
		logger.FileID(file.ID.String()),
		logger.Path(file.FolderPath),
		logger.Name(file.Name),
		logger.Size(file.Size))

	WriteJSONCreated(w, fileToResponse(file))
}

// List handles GET /api/v1/files?folder=<path>.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = "/"
	}

	files, err := h.registry.ListFiles(r.Context(), vfs.OwnerID(claims.OwnerID), folder)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	out := make([]FileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, fileToResponse(f))
	}
	WriteJSONOK(w, out)
}

// Search handles GET /api/v1/files/search?q=<query>.
// Matches against both stored and original names, case-insensitively.
func (h *FilesHandler) Search(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		BadRequest(w, "q query parameter is required")
		return
	}

	files, err := h.registry.SearchFiles(r.Context(), vfs.OwnerID(claims.OwnerID), query)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	out := make([]FileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, fileToResponse(f))
	}
	WriteJSONOK(w, out)
}

// Get handles GET /api/v1/files/{id}.
func (h *FilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	file, err := h.registry.GetFile(r.Context(), vfs.OwnerID(claims.OwnerID), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	WriteJSONOK(w, fileToResponse(file))
}

// Download handles GET /api/v1/files/{id}/download.
// Returns a presigned URL instead of streaming the content.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	file, err := h.registry.GetFile(r.Context(), vfs.OwnerID(claims.OwnerID), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	url, err := h.blobs.PresignGet(r.Context(), file.BlobRef, h.presignTTL)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			// Metadata exists but the content is gone.
			NotFound(w, "File content is no longer available")
			return
		}
		logger.ErrorCtx(r.Context(), "presign failed",
			logger.FileID(file.ID.String()), logger.BlobRef(file.BlobRef), logger.Err(err))
		InternalServerError(w, "Failed to generate download URL")
		return
	}

	WriteJSONOK(w, DownloadResponse{
		URL:       url,
		ExpiresAt: time.Now().UTC().Add(h.presignTTL),
	})
}

// Rename handles POST /api/v1/files/{id}/rename.
func (h *FilesHandler) Rename(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req RenameFileRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.NewName == "" {
		BadRequest(w, "new_name is required")
		return
	}

	file, err := h.registry.RenameFile(r.Context(), vfs.OwnerID(claims.OwnerID), chi.URLParam(r, "id"), req.NewName)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "file renamed",
		logger.Owner(claims.OwnerID),
		logger.FileID(file.ID.String()),
		logger.Name(file.Name))

	WriteJSONOK(w, fileToResponse(file))
}

// Move handles POST /api/v1/files/{id}/move.
func (h *FilesHandler) Move(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req MoveFileRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.FolderPath == "" {
		BadRequest(w, "folder_path is required")
		return
	}

	file, err := h.registry.MoveFile(r.Context(), vfs.OwnerID(claims.OwnerID), chi.URLParam(r, "id"), req.FolderPath)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "file moved",
		logger.Owner(claims.OwnerID),
		logger.FileID(file.ID.String()),
		logger.NewPath(file.FolderPath))

	WriteJSONOK(w, fileToResponse(file))
}

// Delete handles DELETE /api/v1/files/{id}.
// Removes the metadata record only. Blob cleanup is a separate concern.
func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.registry.DeleteFile(r.Context(), vfs.OwnerID(claims.OwnerID), id); err != nil {
		writeStoreError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "file deleted",
		logger.Owner(claims.OwnerID), logger.FileID(id))

	WriteNoContent(w)
}

func fileToResponse(f *vfs.FileRecord) FileResponse {
	return FileResponse{
		ID:           f.ID.String(),
		Name:         f.Name,
		OriginalName: f.OriginalName,
		FolderPath:   f.FolderPath,
		BlobRef:      f.BlobRef,
		Size:         f.Size,
		MimeType:     f.MimeType,
		UploadedAt:   f.UploadedAt,
	}
}
