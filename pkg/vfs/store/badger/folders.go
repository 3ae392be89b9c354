package badger

import (
	"context"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// PutFolder implements vfs.Store.
//
// The sibling uniqueness check and the insert run in the same BadgerDB
// write transaction, serialized with the per-(owner, parent) lock so
// concurrent duplicate attempts see exactly one success.
func (s *BadgerStore) PutFolder(ctx context.Context, record *vfs.FolderRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}

	path := record.Path()
	lockKey := string(keyFolder(record.OwnerID, record.ParentPath))
	mu := s.lockDir(lockKey)
	defer s.unlockDir(mu)

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(keyFolder(record.OwnerID, path))
		if err == nil {
			return vfs.NewFolderExistsError(path)
		}
		if err != badgerdb.ErrKeyNotFound {
			return fmt.Errorf("failed to check folder existence: %w", err)
		}

		bytes, err := encodeFolder(record)
		if err != nil {
			return err
		}
		if err := txn.Set(keyFolder(record.OwnerID, path), bytes); err != nil {
			return fmt.Errorf("failed to store folder: %w", err)
		}
		return nil
	})
	return wrapIOError(err)
}

// GetFolder implements vfs.Store.
func (s *BadgerStore) GetFolder(ctx context.Context, owner vfs.OwnerID, path string) (*vfs.FolderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var record *vfs.FolderRecord
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyFolder(owner, path))
		if err == badgerdb.ErrKeyNotFound {
			return vfs.NewFolderNotFoundError(path)
		}
		if err != nil {
			return fmt.Errorf("failed to get folder: %w", err)
		}
		return item.Value(func(val []byte) error {
			fr, err := decodeFolder(val)
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

// ListFolders implements vfs.Store.
//
// Children are scanned with a range iterator over the parent's path prefix;
// deeper descendants (keys containing a further "/") are skipped. BadgerDB
// iterates keys in sorted order, which is stable across calls.
func (s *BadgerStore) ListFolders(ctx context.Context, owner vfs.OwnerID, parentPath string) ([]*vfs.FolderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []*vfs.FolderRecord
	prefix := keyFolderChildPrefix(owner, parentPath)

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

			item := it.Item()
			if immediateChildName(item.Key(), prefix) == "" {
				continue
			}
			err := item.Value(func(val []byte) error {
				fr, err := decodeFolder(val)
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

// DeleteFolder implements vfs.Store.
func (s *BadgerStore) DeleteFolder(ctx context.Context, owner vfs.OwnerID, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mu := s.lockDir(string(keyFolder(owner, vfs.ParentOf(path))))
	defer s.unlockDir(mu)

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(keyFolder(owner, path))
		if err == badgerdb.ErrKeyNotFound {
			return vfs.NewFolderNotFoundError(path)
		}
		if err != nil {
			return fmt.Errorf("failed to get folder: %w", err)
		}
		if err := txn.Delete(keyFolder(owner, path)); err != nil {
			return fmt.Errorf("failed to delete folder: %w", err)
		}
		return nil
	})
	return wrapIOError(err)
}

// RenameFolder implements vfs.Store.
//
// The folder, its descendant folders, and the files under the subtree are
// rewritten in one write transaction. Large subtrees stay well within
// BadgerDB transaction limits for metadata-sized values.
func (s *BadgerStore) RenameFolder(ctx context.Context, owner vfs.OwnerID, path, newName string) (*vfs.FolderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := vfs.ValidateName(newName); err != nil {
		return nil, err
	}

	mu := s.lockDir(string(keyFolder(owner, vfs.ParentOf(path))))
	defer s.unlockDir(mu)

	var renamed *vfs.FolderRecord

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyFolder(owner, path))
		if err == badgerdb.ErrKeyNotFound {
			return vfs.NewFolderNotFoundError(path)
		}
		if err != nil {
			return fmt.Errorf("failed to get folder: %w", err)
		}

		var folder *vfs.FolderRecord
		if err := item.Value(func(val []byte) error {
			fr, decodeErr := decodeFolder(val)
			if decodeErr != nil {
				return decodeErr
			}
			folder = fr
			return nil
		}); err != nil {
			return err
		}

		newPath := vfs.JoinPath(folder.ParentPath, newName)
		if newPath == path {
			renamed = folder
			return nil
		}
		if _, err := txn.Get(keyFolder(owner, newPath)); err == nil {
			return vfs.NewFolderExistsError(newPath)
		} else if err != badgerdb.ErrKeyNotFound {
			return fmt.Errorf("failed to check folder existence: %w", err)
		}

		folder.Name = newName
		renamed = folder

		bytes, err := encodeFolder(folder)
		if err != nil {
			return err
		}
		if err := txn.Delete(keyFolder(owner, path)); err != nil {
			return fmt.Errorf("failed to delete old folder key: %w", err)
		}
		if err := txn.Set(keyFolder(owner, newPath), bytes); err != nil {
			return fmt.Errorf("failed to store renamed folder: %w", err)
		}

		if err := s.rewriteDescendants(txn, owner, path, newPath); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, wrapIOError(err)
	}
	return renamed, nil
}

// rewriteDescendants moves every folder and file record under oldPath to the
// corresponding location under newPath within the given transaction.
func (s *BadgerStore) rewriteDescendants(txn *badgerdb.Txn, owner vfs.OwnerID, oldPath, newPath string) error {
	oldPrefix := oldPath + "/"
	newPrefix := newPath + "/"

	// Descendant folders: collect first, then rewrite, so the iterator does
	// not observe its own writes.
	type folderMove struct {
		oldKey []byte
		record *vfs.FolderRecord
	}
	var folderMoves []folderMove

	prefix := keyFolderChildPrefix(owner, oldPath)
	opts := badgerdb.DefaultIteratorOptions
	opts.PrefetchValues = true
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		err := item.Value(func(val []byte) error {
			fr, err := decodeFolder(val)
			if err != nil {
				return err
			}
			folderMoves = append(folderMoves, folderMove{oldKey: key, record: fr})
			return nil
		})
		if err != nil {
			it.Close()
			return err
		}
	}
	it.Close()

	for _, move := range folderMoves {
		record := move.record
		if record.ParentPath == oldPath {
			record.ParentPath = newPath
		} else if len(record.ParentPath) > len(oldPrefix) && record.ParentPath[:len(oldPrefix)] == oldPrefix {
			record.ParentPath = newPrefix + record.ParentPath[len(oldPrefix):]
		}
		bytes, err := encodeFolder(record)
		if err != nil {
			return err
		}
		if err := txn.Delete(move.oldKey); err != nil {
			return fmt.Errorf("failed to delete descendant folder key: %w", err)
		}
		if err := txn.Set(keyFolder(owner, record.Path()), bytes); err != nil {
			return fmt.Errorf("failed to store descendant folder: %w", err)
		}
	}

	// Files: scan all of the owner's file records and rewrite those under
	// the moved subtree, including their name index entries.
	type fileMove struct {
		record *vfs.FileRecord
		oldDir string
	}
	var fileMoves []fileMove

	filePrefix := keyFilePrefix(owner)
	fileOpts := badgerdb.DefaultIteratorOptions
	fileOpts.PrefetchValues = true
	fileOpts.Prefix = filePrefix

	fit := txn.NewIterator(fileOpts)
	for fit.Rewind(); fit.Valid(); fit.Next() {
		err := fit.Item().Value(func(val []byte) error {
			fr, err := decodeFile(val)
			if err != nil {
				return err
			}
			if fr.FolderPath == oldPath ||
				(len(fr.FolderPath) > len(oldPrefix) && fr.FolderPath[:len(oldPrefix)] == oldPrefix) {
				fileMoves = append(fileMoves, fileMove{record: fr, oldDir: fr.FolderPath})
			}
			return nil
		})
		if err != nil {
			fit.Close()
			return err
		}
	}
	fit.Close()

	for _, move := range fileMoves {
		record := move.record
		if record.FolderPath == oldPath {
			record.FolderPath = newPath
		} else {
			record.FolderPath = newPrefix + record.FolderPath[len(oldPrefix):]
		}
		bytes, err := encodeFile(record)
		if err != nil {
			return err
		}
		if err := txn.Delete(keyFileName(owner, move.oldDir, record.Name)); err != nil {
			return fmt.Errorf("failed to delete old file name index: %w", err)
		}
		if err := txn.Set(keyFileName(owner, record.FolderPath, record.Name), []byte(record.ID.String())); err != nil {
			return fmt.Errorf("failed to store file name index: %w", err)
		}
		if err := txn.Set(keyFile(owner, record.ID.String()), bytes); err != nil {
			return fmt.Errorf("failed to store file record: %w", err)
		}
	}

	return nil
}

// CountFolderEntries implements vfs.Store.
func (s *BadgerStore) CountFolderEntries(ctx context.Context, owner vfs.OwnerID, path string) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	folders := 0
	files := 0

	err := s.db.View(func(txn *badgerdb.Txn) error {
		prefix := keyFolderChildPrefix(owner, path)
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			if immediateChildName(it.Item().Key(), prefix) != "" {
				folders++
			}
		}
		it.Close()

		namePrefix := keyFileNamePrefix(owner, path)
		nameOpts := badgerdb.DefaultIteratorOptions
		nameOpts.PrefetchValues = false
		nameOpts.Prefix = namePrefix

		nit := txn.NewIterator(nameOpts)
		for nit.Rewind(); nit.Valid(); nit.Next() {
			files++
		}
		nit.Close()

		return nil
	})
	if err != nil {
		return 0, 0, wrapIOError(err)
	}
	return folders, files, nil
}
