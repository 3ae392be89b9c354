package registry

import (
	"context"

	"github.com/google/uuid"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// CreateFolder creates a folder under parentPath for the owner.
//
// The parent must already exist (the root always does). A sibling with the
// same name is rejected with FolderExists, surfaced distinctly from success
// rather than silently merged.
func (r *Registry) CreateFolder(ctx context.Context, owner vfs.OwnerID, parentPath, name string) (*vfs.FolderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parent, err := vfs.NormalizePath(parentPath)
	if err != nil {
		return nil, err
	}
	if err := vfs.ValidateName(name); err != nil {
		return nil, err
	}

	if err := r.requireFolder(ctx, owner, parent); err != nil {
		return nil, err
	}

	record := &vfs.FolderRecord{
		ID:         uuid.New(),
		Name:       name,
		OwnerID:    owner,
		ParentPath: parent,
		CreatedAt:  r.now().UTC(),
	}
	if err := r.store.PutFolder(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListFolders returns the immediate child folders of parentPath for the owner.
func (r *Registry) ListFolders(ctx context.Context, owner vfs.OwnerID, parentPath string) ([]*vfs.FolderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parent, err := vfs.NormalizePath(parentPath)
	if err != nil {
		return nil, err
	}
	if err := r.requireFolder(ctx, owner, parent); err != nil {
		return nil, err
	}
	return r.store.ListFolders(ctx, owner, parent)
}

// GetFolder returns the folder record at path for the owner.
func (r *Registry) GetFolder(ctx context.Context, owner vfs.OwnerID, path string) (*vfs.FolderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalized, err := vfs.NormalizePath(path)
	if err != nil {
		return nil, err
	}
	if vfs.IsRoot(normalized) {
		return nil, vfs.NewInvalidPathError(path, "root folder has no record")
	}
	return r.store.GetFolder(ctx, owner, normalized)
}

// DeleteFolder removes an empty folder. Folders that still contain files or
// subfolders are rejected with FolderNotEmpty.
func (r *Registry) DeleteFolder(ctx context.Context, owner vfs.OwnerID, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	normalized, err := vfs.NormalizePath(path)
	if err != nil {
		return err
	}
	if vfs.IsRoot(normalized) {
		return vfs.NewInvalidPathError(path, "cannot delete the root folder")
	}

	if _, err := r.store.GetFolder(ctx, owner, normalized); err != nil {
		return err
	}

	folders, files, err := r.store.CountFolderEntries(ctx, owner, normalized)
	if err != nil {
		return err
	}
	if folders > 0 || files > 0 {
		return vfs.NewFolderNotEmptyError(normalized)
	}

	return r.store.DeleteFolder(ctx, owner, normalized)
}

// RenameFolder renames a folder in place. Descendant folder and file paths
// are rewritten by the store in the same transaction.
func (r *Registry) RenameFolder(ctx context.Context, owner vfs.OwnerID, path, newName string) (*vfs.FolderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalized, err := vfs.NormalizePath(path)
	if err != nil {
		return nil, err
	}
	if vfs.IsRoot(normalized) {
		return nil, vfs.NewInvalidPathError(path, "cannot rename the root folder")
	}
	if err := vfs.ValidateName(newName); err != nil {
		return nil, err
	}

	return r.store.RenameFolder(ctx, owner, normalized, newName)
}

// requireFolder verifies that path references an existing folder (or the
// implicit root) for the owner. Returns FolderNotFound otherwise.
func (r *Registry) requireFolder(ctx context.Context, owner vfs.OwnerID, path string) error {
	if vfs.IsRoot(path) {
		return nil
	}
	_, err := r.store.GetFolder(ctx, owner, path)
	return err
}
