package sql

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// PutFile implements vfs.Store. The (owner_id, folder_path, name) unique
// index rejects duplicate names.
func (s *SQLStore) PutFile(ctx context.Context, record *vfs.FileRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Create(fileToModel(record)).Error
	return convertError(err, nil,
		vfs.NewAlreadyExistsError(vfs.JoinPath(record.FolderPath, record.Name)))
}

// GetFile implements vfs.Store.
func (s *SQLStore) GetFile(ctx context.Context, owner vfs.OwnerID, id string) (*vfs.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var model fileModel
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", int64(owner), id).
		First(&model).Error
	if err != nil {
		return nil, convertError(err, vfs.NewNotFoundError(id, "file"), nil)
	}
	return fileFromModel(&model)
}

// ListFiles implements vfs.Store. Files are returned in name order.
func (s *SQLStore) ListFiles(ctx context.Context, owner vfs.OwnerID, folderPath string) ([]*vfs.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var models []fileModel
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND folder_path = ?", int64(owner), folderPath).
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, convertError(err, nil, nil)
	}
	return filesFromModels(models)
}

// SearchFiles implements vfs.Store. Matching is a case-insensitive substring
// test over both the stored and the original name.
func (s *SQLStore) SearchFiles(ctx context.Context, owner vfs.OwnerID, query string) ([]*vfs.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pattern := likeContains(strings.ToLower(query))

	var models []fileModel
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND (LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(original_name) LIKE ? ESCAPE '\\')",
			int64(owner), pattern, pattern).
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, convertError(err, nil, nil)
	}
	return filesFromModels(models)
}

// UpdateFile implements vfs.Store.
func (s *SQLStore) UpdateFile(ctx context.Context, record *vfs.FileRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}

	id := record.ID.String()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing fileModel
		if err := tx.Where("owner_id = ? AND id = ?", int64(record.OwnerID), id).
			First(&existing).Error; err != nil {
			return convertError(err, vfs.NewNotFoundError(id, "file"), nil)
		}

		moved := existing.FolderPath != record.FolderPath || existing.Name != record.Name
		if moved {
			var count int64
			if err := tx.Model(&fileModel{}).
				Where("owner_id = ? AND folder_path = ? AND name = ?",
					int64(record.OwnerID), record.FolderPath, record.Name).
				Count(&count).Error; err != nil {
				return convertError(err, nil, nil)
			}
			if count > 0 {
				return vfs.NewAlreadyExistsError(vfs.JoinPath(record.FolderPath, record.Name))
			}
		}

		err := tx.Save(fileToModel(record)).Error
		return convertError(err, nil,
			vfs.NewAlreadyExistsError(vfs.JoinPath(record.FolderPath, record.Name)))
	})
}

// DeleteFile implements vfs.Store.
func (s *SQLStore) DeleteFile(ctx context.Context, owner vfs.OwnerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", int64(owner), id).
		Delete(&fileModel{})
	if result.Error != nil {
		return convertError(result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return vfs.NewNotFoundError(id, "file")
	}
	return nil
}

// likeContains escapes LIKE metacharacters in needle and wraps it in
// wildcards for substring matching.
func likeContains(needle string) string {
	escaped := make([]byte, 0, len(needle)+2)
	for i := 0; i < len(needle); i++ {
		c := needle[i]
		if c == '%' || c == '_' || c == '\\' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, c)
	}
	return "%" + string(escaped) + "%"
}

func filesFromModels(models []fileModel) ([]*vfs.FileRecord, error) {
	result := make([]*vfs.FileRecord, 0, len(models))
	for i := range models {
		record, err := fileFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to decode file row: %w", err)
		}
		result = append(result, record)
	}
	return result, nil
}
