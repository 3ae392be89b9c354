package registry

import (
	"context"

	"github.com/google/uuid"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// RegisterFileParams carries the metadata the transport resolved before
// registration. The byte transfer must already be complete; the registry
// never initiates network I/O.
type RegisterFileParams struct {
	FolderPath   string
	BlobRef      string
	OriginalName string
	Size         int64
	MimeType     string
}

// RegisterFile records an uploaded file under a folder.
//
// The folder must exist (or be the root), otherwise FolderNotFound. The
// stored name is generated from the original name with a timestamp prefix;
// on a same-second collision a counter suffix is added, so repeated uploads
// of the same original name never overwrite each other.
func (r *Registry) RegisterFile(ctx context.Context, owner vfs.OwnerID, params RegisterFileParams) (*vfs.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	folder, err := vfs.NormalizePath(params.FolderPath)
	if err != nil {
		return nil, err
	}
	if params.BlobRef == "" {
		return nil, vfs.NewInvalidArgumentError("blob ref is required")
	}
	if params.OriginalName == "" {
		return nil, vfs.NewInvalidArgumentError("original name is required")
	}
	if params.Size < 0 {
		return nil, vfs.NewInvalidArgumentError("size must not be negative")
	}

	if err := r.requireFolder(ctx, owner, folder); err != nil {
		return nil, err
	}

	uploadedAt := r.now().UTC()
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		record := &vfs.FileRecord{
			ID:           uuid.New(),
			BlobRef:      params.BlobRef,
			Name:         storedName(uploadedAt, params.OriginalName, attempt),
			OriginalName: params.OriginalName,
			OwnerID:      owner,
			FolderPath:   folder,
			Size:         params.Size,
			MimeType:     params.MimeType,
			UploadedAt:   uploadedAt,
		}
		err := r.store.PutFile(ctx, record)
		if err == nil {
			return record, nil
		}
		if vfs.CodeOf(err) == vfs.ErrAlreadyExists {
			continue
		}
		return nil, err
	}
	return nil, vfs.NewAlreadyExistsError(vfs.JoinPath(folder, params.OriginalName))
}

// ListFiles returns the file records under folderPath for the owner.
func (r *Registry) ListFiles(ctx context.Context, owner vfs.OwnerID, folderPath string) ([]*vfs.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	folder, err := vfs.NormalizePath(folderPath)
	if err != nil {
		return nil, err
	}
	if err := r.requireFolder(ctx, owner, folder); err != nil {
		return nil, err
	}
	return r.store.ListFiles(ctx, owner, folder)
}

// GetFile returns one file record by id.
func (r *Registry) GetFile(ctx context.Context, owner vfs.OwnerID, id string) (*vfs.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, vfs.NewInvalidArgumentError("file id is required")
	}
	return r.store.GetFile(ctx, owner, id)
}

// RenameFile changes a file's stored display name in place. The original
// name is preserved unchanged.
func (r *Registry) RenameFile(ctx context.Context, owner vfs.OwnerID, id, newName string) (*vfs.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := vfs.ValidateName(newName); err != nil {
		return nil, err
	}

	record, err := r.store.GetFile(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if record.Name == newName {
		return record, nil
	}

	record.Name = newName
	if err := r.store.UpdateFile(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// MoveFile relocates a file to another folder, which must already exist.
func (r *Registry) MoveFile(ctx context.Context, owner vfs.OwnerID, id, destFolderPath string) (*vfs.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dest, err := vfs.NormalizePath(destFolderPath)
	if err != nil {
		return nil, err
	}
	if err := r.requireFolder(ctx, owner, dest); err != nil {
		return nil, err
	}

	record, err := r.store.GetFile(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if record.FolderPath == dest {
		return record, nil
	}

	record.FolderPath = dest
	if err := r.store.UpdateFile(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteFile removes a file record. The blob itself is the transport
// layer's responsibility.
func (r *Registry) DeleteFile(ctx context.Context, owner vfs.OwnerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return vfs.NewInvalidArgumentError("file id is required")
	}
	return r.store.DeleteFile(ctx, owner, id)
}

// SearchFiles finds the owner's files whose stored or original name contains
// the query, case-insensitively, across all folders.
func (r *Registry) SearchFiles(ctx context.Context, owner vfs.OwnerID, query string) ([]*vfs.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if query == "" {
		return nil, vfs.NewInvalidArgumentError("search query is required")
	}
	return r.store.SearchFiles(ctx, owner, query)
}
