package badger

import (
	"context"
	"fmt"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// PutFile implements vfs.Store.
//
// The (owner, folder_path, name) uniqueness check runs against the file
// name index inside the write transaction, serialized by the per-folder
// lock.
func (s *BadgerStore) PutFile(ctx context.Context, record *vfs.FileRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}

	mu := s.lockDir(string(keyFileNamePrefix(record.OwnerID, record.FolderPath)))
	defer s.unlockDir(mu)

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		nameKey := keyFileName(record.OwnerID, record.FolderPath, record.Name)
		_, err := txn.Get(nameKey)
		if err == nil {
			return vfs.NewAlreadyExistsError(vfs.JoinPath(record.FolderPath, record.Name))
		}
		if err != badgerdb.ErrKeyNotFound {
			return fmt.Errorf("failed to check file existence: %w", err)
		}

		id := record.ID.String()
		if _, err := txn.Get(keyFile(record.OwnerID, id)); err == nil {
			return vfs.NewAlreadyExistsError(id)
		} else if err != badgerdb.ErrKeyNotFound {
			return fmt.Errorf("failed to check file id: %w", err)
		}

		bytes, err := encodeFile(record)
		if err != nil {
			return err
		}
		if err := txn.Set(keyFile(record.OwnerID, id), bytes); err != nil {
			return fmt.Errorf("failed to store file record: %w", err)
		}
		if err := txn.Set(nameKey, []byte(id)); err != nil {
			return fmt.Errorf("failed to store file name index: %w", err)
		}
		return nil
	})
	return wrapIOError(err)
}

// GetFile implements vfs.Store.
func (s *BadgerStore) GetFile(ctx context.Context, owner vfs.OwnerID, id string) (*vfs.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var record *vfs.FileRecord
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyFile(owner, id))
		if err == badgerdb.ErrKeyNotFound {
			return vfs.NewNotFoundError(id, "file")
		}
		if err != nil {
			return fmt.Errorf("failed to get file: %w", err)
		}
		return item.Value(func(val []byte) error {
			fr, err := decodeFile(val)
			if err != nil {
				return err
			}
			record = fr
			return nil
		})
	})
	if err != nil {
		return nil, wrapIOError(err)
	}
	return record, nil
}

// ListFiles implements vfs.Store.
//
// The file name index is scanned with the folder's prefix; entries come
// back in name order, which is stable across calls.
func (s *BadgerStore) ListFiles(ctx context.Context, owner vfs.OwnerID, folderPath string) ([]*vfs.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []*vfs.FileRecord
	prefix := keyFileNamePrefix(owner, folderPath)

	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		count := 0
		for it.Rewind(); it.Valid(); it.Next() {
			if count%100 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			count++

			var id string
			err := it.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			item, err := txn.Get(keyFile(owner, id))
			if err == badgerdb.ErrKeyNotFound {
				// Dangling index entry - skip.
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to get file: %w", err)
			}
			err = item.Value(func(val []byte) error {
				fr, err := decodeFile(val)
				if err != nil {
					return err
				}
				result = append(result, fr)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapIOError(err)
	}
	return result, nil
}

// SearchFiles implements vfs.Store. All of the owner's file records are
// scanned; owners hold metadata-sized record counts, so a full scan is
// acceptable here.
func (s *BadgerStore) SearchFiles(ctx context.Context, owner vfs.OwnerID, query string) ([]*vfs.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var result []*vfs.FileRecord

	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = keyFilePrefix(owner)

		it := txn.NewIterator(opts)
		defer it.Close()

		count := 0
		for it.Rewind(); it.Valid(); it.Next() {
			if count%100 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			count++

			err := it.Item().Value(func(val []byte) error {
				fr, err := decodeFile(val)
				if err != nil {
					return err
				}
				if strings.Contains(strings.ToLower(fr.Name), needle) ||
					strings.Contains(strings.ToLower(fr.OriginalName), needle) {
					result = append(result, fr)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapIOError(err)
	}
	return result, nil
}

// UpdateFile implements vfs.Store.
func (s *BadgerStore) UpdateFile(ctx context.Context, record *vfs.FileRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}

	mu := s.lockDir(string(keyFileNamePrefix(record.OwnerID, record.FolderPath)))
	defer s.unlockDir(mu)

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		id := record.ID.String()
		item, err := txn.Get(keyFile(record.OwnerID, id))
		if err == badgerdb.ErrKeyNotFound {
			return vfs.NewNotFoundError(id, "file")
		}
		if err != nil {
			return fmt.Errorf("failed to get file: %w", err)
		}

		var existing *vfs.FileRecord
		if err := item.Value(func(val []byte) error {
			fr, decodeErr := decodeFile(val)
			if decodeErr != nil {
				return decodeErr
			}
			existing = fr
			return nil
		}); err != nil {
			return err
		}

		newKey := keyFileName(record.OwnerID, record.FolderPath, record.Name)
		oldKey := keyFileName(existing.OwnerID, existing.FolderPath, existing.Name)
		if string(newKey) != string(oldKey) {
			if _, err := txn.Get(newKey); err == nil {
				return vfs.NewAlreadyExistsError(vfs.JoinPath(record.FolderPath, record.Name))
			} else if err != badgerdb.ErrKeyNotFound {
				return fmt.Errorf("failed to check file existence: %w", err)
			}
			if err := txn.Delete(oldKey); err != nil {
				return fmt.Errorf("failed to delete old file name index: %w", err)
			}
			if err := txn.Set(newKey, []byte(id)); err != nil {
				return fmt.Errorf("failed to store file name index: %w", err)
			}
		}

		bytes, err := encodeFile(record)
		if err != nil {
			return err
		}
		if err := txn.Set(keyFile(record.OwnerID, id), bytes); err != nil {
			return fmt.Errorf("failed to store file record: %w", err)
		}
		return nil
	})
	return wrapIOError(err)
}

// DeleteFile implements vfs.Store.
func (s *BadgerStore) DeleteFile(ctx context.Context, owner vfs.OwnerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyFile(owner, id))
		if err == badgerdb.ErrKeyNotFound {
			return vfs.NewNotFoundError(id, "file")
		}
		if err != nil {
			return fmt.Errorf("failed to get file: %w", err)
		}

		var record *vfs.FileRecord
		if err := item.Value(func(val []byte) error {
			fr, decodeErr := decodeFile(val)
			if decodeErr != nil {
				return decodeErr
			}
			record = fr
			return nil
		}); err != nil {
			return err
		}

		if err := txn.Delete(keyFileName(owner, record.FolderPath, record.Name)); err != nil {
			return fmt.Errorf("failed to delete file name index: %w", err)
		}
		if err := txn.Delete(keyFile(owner, id)); err != nil {
			return fmt.Errorf("failed to delete file record: %w", err)
		}
		return nil
	})
	return wrapIOError(err)
}
