package vfs

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate is the shared validator instance for record construction.
// validator.Validate is safe for concurrent use and caches struct metadata.
var validate = validator.New()

// OwnerID identifies the end user that owns a record. Every uniqueness check
// is scoped to the owner; records are never shared between owners.
type OwnerID int64

// FileRecord is the metadata for one stored file. The bytes themselves live
// in an external blob store and are referenced by BlobRef; Cabinet never
// touches file content.
//
// Uniqueness key: (OwnerID, FolderPath, Name).
type FileRecord struct {
	// ID is the local identity assigned at registration time.
	ID uuid.UUID `json:"id" validate:"required"`

	// BlobRef is the opaque external blob reference, unique per owner.
	BlobRef string `json:"blob_ref" validate:"required"`

	// Name is the stored display name, unique within (owner, folder).
	// Generated from OriginalName with a timestamp prefix to avoid
	// overwriting earlier uploads of the same file.
	Name string `json:"name" validate:"required"`

	// OriginalName is the name exactly as supplied by the uploader.
	OriginalName string `json:"original_name" validate:"required"`

	// OwnerID is the uploading user.
	OwnerID OwnerID `json:"owner_id" validate:"required"`

	// FolderPath is the normalized absolute path of the containing folder.
	// Must reference an existing folder (or the root) owned by OwnerID.
	FolderPath string `json:"folder_path" validate:"required,startswith=/"`

	// Size is the content size in bytes as resolved by the transport.
	Size int64 `json:"size" validate:"gte=0"`

	// MimeType is the content type as resolved by the transport. May be
	// empty when the transport could not determine one.
	MimeType string `json:"mime_type"`

	// UploadedAt is the registration time in UTC.
	UploadedAt time.Time `json:"uploaded_at" validate:"required"`
}

// Validate checks the record's field constraints and name/path rules.
func (f *FileRecord) Validate() error {
	if err := validate.Struct(f); err != nil {
		return NewInvalidArgumentError(fmt.Sprintf("invalid file record: %v", err))
	}
	if err := ValidateName(f.Name); err != nil {
		return err
	}
	if _, err := NormalizePath(f.FolderPath); err != nil {
		return err
	}
	return nil
}

// Key returns the uniqueness key tuple for the record.
func (f *FileRecord) Key() (OwnerID, string, string) {
	return f.OwnerID, f.FolderPath, f.Name
}

// FolderRecord is the metadata for one folder. The parent graph is a tree
// rooted at "/"; the root itself is implicit and never stored.
//
// Uniqueness key: (OwnerID, ParentPath, Name).
type FolderRecord struct {
	// ID is the local identity assigned at creation time.
	ID uuid.UUID `json:"id" validate:"required"`

	// Name is the folder name, unique among siblings under ParentPath.
	Name string `json:"name" validate:"required"`

	// OwnerID is the creating user.
	OwnerID OwnerID `json:"owner_id" validate:"required"`

	// ParentPath is the normalized absolute path of the containing folder.
	ParentPath string `json:"parent_path" validate:"required,startswith=/"`

	// CreatedAt is the creation time in UTC.
	CreatedAt time.Time `json:"created_at" validate:"required"`
}

// Validate checks the record's field constraints and name/path rules.
func (f *FolderRecord) Validate() error {
	if err := validate.Struct(f); err != nil {
		return NewInvalidArgumentError(fmt.Sprintf("invalid folder record: %v", err))
	}
	if err := ValidateName(f.Name); err != nil {
		return err
	}
	if _, err := NormalizePath(f.ParentPath); err != nil {
		return err
	}
	return nil
}

// Path returns the folder's own normalized absolute path.
func (f *FolderRecord) Path() string {
	return JoinPath(f.ParentPath, f.Name)
}

// Key returns the uniqueness key tuple for the record.
func (f *FolderRecord) Key() (OwnerID, string, string) {
	return f.OwnerID, f.ParentPath, f.Name
}
