package sql

import (
	"time"

	"github.com/google/uuid"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// folderModel is the GORM row for a folder record.
//
// Path is the folder's full normalized path; the (owner_id, path) unique
// index is equivalent to the (owner, parent_path, name) key because the
// path is derived from them.
type folderModel struct {
	ID         string    `gorm:"primaryKey;size:36"`
	OwnerID    int64     `gorm:"uniqueIndex:idx_folders_owner_path;not null"`
	Path       string    `gorm:"uniqueIndex:idx_folders_owner_path;not null;size:4096"`
	ParentPath string    `gorm:"index:idx_folders_owner_parent;not null;size:4096"`
	Name       string    `gorm:"not null;size:255"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for folderModel.
func (folderModel) TableName() string {
	return "folders"
}

// fileModel is the GORM row for a file record.
type fileModel struct {
	ID           string    `gorm:"primaryKey;size:36"`
	OwnerID      int64     `gorm:"uniqueIndex:idx_files_owner_folder_name;not null"`
	FolderPath   string    `gorm:"uniqueIndex:idx_files_owner_folder_name;not null;size:4096"`
	Name         string    `gorm:"uniqueIndex:idx_files_owner_folder_name;not null;size:255"`
	OriginalName string    `gorm:"not null;size:255"`
	BlobRef      string    `gorm:"not null;size:512"`
	Size         int64     `gorm:"not null"`
	MimeType     string    `gorm:"size:255"`
	UploadedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for fileModel.
func (fileModel) TableName() string {
	return "files"
}

func folderToModel(r *vfs.FolderRecord) *folderModel {
	return &folderModel{
		ID:         r.ID.String(),
		OwnerID:    int64(r.OwnerID),
		Path:       r.Path(),
		ParentPath: r.ParentPath,
		Name:       r.Name,
		CreatedAt:  r.CreatedAt,
	}
}

func folderFromModel(m *folderModel) (*vfs.FolderRecord, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	return &vfs.FolderRecord{
		ID:         id,
		Name:       m.Name,
		OwnerID:    vfs.OwnerID(m.OwnerID),
		ParentPath: m.ParentPath,
		CreatedAt:  m.CreatedAt,
	}, nil
}

func fileToModel(r *vfs.FileRecord) *fileModel {
	return &fileModel{
		ID:           r.ID.String(),
		OwnerID:      int64(r.OwnerID),
		FolderPath:   r.FolderPath,
		Name:         r.Name,
		OriginalName: r.OriginalName,
		BlobRef:      r.BlobRef,
		Size:         r.Size,
		MimeType:     r.MimeType,
		UploadedAt:   r.UploadedAt,
	}
}

func fileFromModel(m *fileModel) (*vfs.FileRecord, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	return &vfs.FileRecord{
		ID:           id,
		BlobRef:      m.BlobRef,
		Name:         m.Name,
		OriginalName: m.OriginalName,
		OwnerID:      vfs.OwnerID(m.OwnerID),
		FolderPath:   m.FolderPath,
		Size:         m.Size,
		MimeType:     m.MimeType,
		UploadedAt:   m.UploadedAt,
	}, nil
}
