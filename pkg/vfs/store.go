package vfs

import (
	"context"
)

// Store is the durable persistence contract for file and folder records.
//
// Implementations must guarantee per-key atomicity: when two callers race to
// insert records with the same uniqueness key, exactly one insert succeeds
// and the other observes FolderExists/AlreadyExists. The check-then-insert
// must run inside whatever transaction or lock the backend provides.
//
// Every write is flushed to durable storage before the call returns; the
// store is the single source of truth with no write-behind layer in front
// of it. Listings are finite and their order is stable within a process run
// (insertion order for the memory backend, key order for badger, primary
// key order for SQL).
//
// All methods accept a context and return before doing work if it is
// already cancelled. Backend I/O failures are reported as
// StorageUnavailable; validation and conflict failures use their dedicated
// codes and must never be retried by the store itself.
type Store interface {
	// PutFolder inserts a folder record. Fails with FolderExists if the
	// (owner, parent_path, name) key is taken.
	PutFolder(ctx context.Context, record *FolderRecord) error

	// GetFolder looks up a folder by its own normalized path. Fails with
	// FolderNotFound if absent. The root is implicit: callers must not ask
	// the store for "/".
	GetFolder(ctx context.Context, owner OwnerID, path string) (*FolderRecord, error)

	// ListFolders returns the immediate child folders of parentPath for the
	// owner. An empty result is not an error.
	ListFolders(ctx context.Context, owner OwnerID, parentPath string) ([]*FolderRecord, error)

	// DeleteFolder removes a folder by its own path. Fails with
	// FolderNotFound if absent.
	DeleteFolder(ctx context.Context, owner OwnerID, path string) error

	// RenameFolder changes a folder's name in place and rewrites the
	// parent_path of its descendant folders and the folder_path of files
	// under it. Fails with FolderExists if the target name is taken.
	RenameFolder(ctx context.Context, owner OwnerID, path, newName string) (*FolderRecord, error)

	// PutFile inserts a file record. Fails with AlreadyExists if the
	// (owner, folder_path, name) key is taken.
	PutFile(ctx context.Context, record *FileRecord) error

	// GetFile looks up a file by its local ID. Fails with NotFound if absent.
	GetFile(ctx context.Context, owner OwnerID, id string) (*FileRecord, error)

	// ListFiles returns the file records under folderPath for the owner.
	ListFiles(ctx context.Context, owner OwnerID, folderPath string) ([]*FileRecord, error)

	// SearchFiles returns the owner's files whose stored or original name
	// contains the query, case-insensitively, across all folders.
	SearchFiles(ctx context.Context, owner OwnerID, query string) ([]*FileRecord, error)

	// UpdateFile rewrites a file record in place, keyed by ID. The
	// uniqueness key of the new state must not collide with another record
	// (AlreadyExists otherwise). Used for rename and move.
	UpdateFile(ctx context.Context, record *FileRecord) error

	// DeleteFile removes a file record by its local ID. Fails with NotFound
	// if absent.
	DeleteFile(ctx context.Context, owner OwnerID, id string) error

	// CountFolderEntries returns the number of immediate child folders and
	// files under path. Used to enforce non-empty delete protection.
	CountFolderEntries(ctx context.Context, owner OwnerID, path string) (folders, files int, err error)

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases backend resources. The store is unusable afterwards.
	Close() error
}
