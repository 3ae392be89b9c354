package sql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// PutFolder implements vfs.Store. Duplicate siblings are rejected by the
// (owner_id, path) unique index, so concurrent writers resolve in the
// database with exactly one winner.
func (s *SQLStore) PutFolder(ctx context.Context, record *vfs.FolderRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Create(folderToModel(record)).Error
	return convertError(err, nil, vfs.NewFolderExistsError(record.Path()))
}

// GetFolder implements vfs.Store.
func (s *SQLStore) GetFolder(ctx context.Context, owner vfs.OwnerID, path string) (*vfs.FolderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var model folderModel
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND path = ?", int64(owner), path).
		First(&model).Error
	if err != nil {
		return nil, convertError(err, vfs.NewFolderNotFoundError(path), nil)
	}
	return folderFromModel(&model)
}

// ListFolders implements vfs.Store. Children are returned in name order.
func (s *SQLStore) ListFolders(ctx context.Context, owner vfs.OwnerID, parentPath string) ([]*vfs.FolderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var models []folderModel
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND parent_path = ?", int64(owner), parentPath).
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, convertError(err, nil, nil)
	}

	result := make([]*vfs.FolderRecord, 0, len(models))
	for i := range models {
		record, err := folderFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to decode folder row: %w", err)
		}
		result = append(result, record)
	}
	return result, nil
}

// DeleteFolder implements vfs.Store.
func (s *SQLStore) DeleteFolder(ctx context.Context, owner vfs.OwnerID, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("owner_id = ? AND path = ?", int64(owner), path).
		Delete(&folderModel{})
	if result.Error != nil {
		return convertError(result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return vfs.NewFolderNotFoundError(path)
	}
	return nil
}

// RenameFolder implements vfs.Store. The folder row and every descendant
// folder and file row are rewritten in one transaction.
func (s *SQLStore) RenameFolder(ctx context.Context, owner vfs.OwnerID, path, newName string) (*vfs.FolderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := vfs.ValidateName(newName); err != nil {
		return nil, err
	}

	var renamed *vfs.FolderRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model folderModel
		if err := tx.Where("owner_id = ? AND path = ?", int64(owner), path).
			First(&model).Error; err != nil {
			return convertError(err, vfs.NewFolderNotFoundError(path), nil)
		}

		newPath := vfs.JoinPath(model.ParentPath, newName)
		if newPath == path {
			record, err := folderFromModel(&model)
			if err != nil {
				return err
			}
			renamed = record
			return nil
		}

		var count int64
		if err := tx.Model(&folderModel{}).
			Where("owner_id = ? AND path = ?", int64(owner), newPath).
			Count(&count).Error; err != nil {
			return convertError(err, nil, nil)
		}
		if count > 0 {
			return vfs.NewFolderExistsError(newPath)
		}

		model.Name = newName
		model.Path = newPath
		if err := tx.Save(&model).Error; err != nil {
			return convertError(err, nil, vfs.NewFolderExistsError(newPath))
		}

		if err := rewriteDescendants(tx, int64(owner), path, newPath); err != nil {
			return err
		}

		record, err := folderFromModel(&model)
		if err != nil {
			return err
		}
		renamed = record
		return nil
	})
	if err != nil {
		return nil, convertError(err, nil, nil)
	}
	return renamed, nil
}

// rewriteDescendants moves every folder and file row under oldPath to the
// corresponding location under newPath within the given transaction.
func rewriteDescendants(tx *gorm.DB, owner int64, oldPath, newPath string) error {
	oldPrefix := oldPath + "/"
	newPrefix := newPath + "/"

	var folders []folderModel
	if err := tx.Where("owner_id = ? AND path LIKE ? ESCAPE '\\'", owner, likePrefix(oldPrefix)).
		Find(&folders).Error; err != nil {
		return convertError(err, nil, nil)
	}
	for i := range folders {
		model := &folders[i]
		model.Path = newPrefix + model.Path[len(oldPrefix):]
		if model.ParentPath == oldPath {
			model.ParentPath = newPath
		} else if len(model.ParentPath) >= len(oldPrefix) && model.ParentPath[:len(oldPrefix)] == oldPrefix {
			model.ParentPath = newPrefix + model.ParentPath[len(oldPrefix):]
		}
		if err := tx.Save(model).Error; err != nil {
			return convertError(err, nil, nil)
		}
	}

	var files []fileModel
	if err := tx.Where("owner_id = ? AND (folder_path = ? OR folder_path LIKE ? ESCAPE '\\')",
		owner, oldPath, likePrefix(oldPrefix)).
		Find(&files).Error; err != nil {
		return convertError(err, nil, nil)
	}
	for i := range files {
		model := &files[i]
		if model.FolderPath == oldPath {
			model.FolderPath = newPath
		} else {
			model.FolderPath = newPrefix + model.FolderPath[len(oldPrefix):]
		}
		if err := tx.Save(model).Error; err != nil {
			return convertError(err, nil, nil)
		}
	}

	return nil
}

// likePrefix escapes LIKE metacharacters in prefix and appends the wildcard.
func likePrefix(prefix string) string {
	escaped := make([]byte, 0, len(prefix)+2)
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if c == '%' || c == '_' || c == '\\' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, c)
	}
	return string(escaped) + "%"
}

// CountFolderEntries implements vfs.Store.
func (s *SQLStore) CountFolderEntries(ctx context.Context, owner vfs.OwnerID, path string) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	var folders int64
	err := s.db.WithContext(ctx).Model(&folderModel{}).
		Where("owner_id = ? AND parent_path = ?", int64(owner), path).
		Count(&folders).Error
	if err != nil {
		return 0, 0, convertError(err, nil, nil)
	}

	var files int64
	err = s.db.WithContext(ctx).Model(&fileModel{}).
		Where("owner_id = ? AND folder_path = ?", int64(owner), path).
		Count(&files).Error
	if err != nil {
		return 0, 0, convertError(err, nil, nil)
	}

	return int(folders), int(files), nil
}
