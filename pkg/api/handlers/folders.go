package handlers

import (
	"net/http"
	"time"

	"github.com/cabinetfs/cabinet/internal/logger"
	"github.com/cabinetfs/cabinet/pkg/registry"
	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// FoldersHandler handles folder API endpoints.
type FoldersHandler struct {
	registry *registry.Registry
}

// NewFoldersHandler creates a new FoldersHandler.
func NewFoldersHandler(reg *registry.Registry) *FoldersHandler {
	return &FoldersHandler{registry: reg}
}

// FolderResponse is the API representation of a folder.
type FolderResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ParentPath string    `json:"parent_path"`
	Path       string    `json:"path"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateFolderRequest is the request body for POST /api/v1/folders.
type CreateFolderRequest struct {
	// ParentPath is the containing folder ("/" for top level).
	ParentPath string `json:"parent_path"`

	// Name is the new folder's name.
	Name string `json:"name"`
}

// RenameFolderRequest is the request body for POST /api/v1/folders/rename.
type RenameFolderRequest struct {
	// Path is the folder to rename.
	Path string `json:"path"`

	// NewName is the new name. The folder stays under the same parent.
	NewName string `json:"new_name"`
}

// Create handles POST /api/v1/folders.
func (h *FoldersHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req CreateFolderRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.ParentPath == "" {
		req.ParentPath = "/"
	}

	folder, err := h.registry.CreateFolder(r.Context(), vfs.OwnerID(claims.OwnerID), req.ParentPath, req.Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "folder created",
		logger.Owner(claims.OwnerID),
		logger.ParentPath(folder.ParentPath),
		logger.Name(folder.Name))

	WriteJSONCreated(w, folderToResponse(folder))
}

// List handles GET /api/v1/folders?parent=<path>.
// Lists the immediate subfolders of the given parent ("/" when omitted).
func (h *FoldersHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	parent := r.URL.Query().Get("parent")
	if parent == "" {
		parent = "/"
	}

	folders, err := h.registry.ListFolders(r.Context(), vfs.OwnerID(claims.OwnerID), parent)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	out := make([]FolderResponse, 0, len(folders))
	for _, f := range folders {
		out = append(out, folderToResponse(f))
	}
	WriteJSONOK(w, out)
}

// Get handles GET /api/v1/folders/info?path=<path>.
func (h *FoldersHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		BadRequest(w, "path query parameter is required")
		return
	}

	folder, err := h.registry.GetFolder(r.Context(), vfs.OwnerID(claims.OwnerID), path)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	WriteJSONOK(w, folderToResponse(folder))
}

// Delete handles DELETE /api/v1/folders?path=<path>.
// The folder must be empty.
func (h *FoldersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		BadRequest(w, "path query parameter is required")
		return
	}

	if err := h.registry.DeleteFolder(r.Context(), vfs.OwnerID(claims.OwnerID), path); err != nil {
		writeStoreError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "folder deleted",
		logger.Owner(claims.OwnerID), logger.Path(path))

	WriteNoContent(w)
}

// Rename handles POST /api/v1/folders/rename.
func (h *FoldersHandler) Rename(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req RenameFolderRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Path == "" || req.NewName == "" {
		BadRequest(w, "path and new_name are required")
		return
	}

	folder, err := h.registry.RenameFolder(r.Context(), vfs.OwnerID(claims.OwnerID), req.Path, req.NewName)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "folder renamed",
		logger.Owner(claims.OwnerID),
		logger.OldPath(req.Path),
		logger.NewPath(vfs.JoinPath(folder.ParentPath, folder.Name)))

	WriteJSONOK(w, folderToResponse(folder))
}

func folderToResponse(f *vfs.FolderRecord) FolderResponse {
	return FolderResponse{
		ID:         f.ID.String(),
		Name:       f.Name,
		ParentPath: f.ParentPath,
		Path:       vfs.JoinPath(f.ParentPath, f.Name),
		CreatedAt:  f.CreatedAt,
	}
}
