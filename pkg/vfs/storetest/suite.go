package storetest

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// StoreFactory creates a fresh Store instance for each test.
// The factory receives *testing.T so it can use t.TempDir() for stores
// that need filesystem paths and t.Cleanup() for teardown.
type StoreFactory func(t *testing.T) vfs.Store

// RunConformanceSuite runs the full conformance test suite against the provided
// store factory. Each test gets a fresh store instance to ensure isolation.
//
// The suite covers three categories:
//   - FolderOps: folder CRUD, listing, nesting, rename with descendants
//   - FileOps: file CRUD, per-folder name uniqueness, search, moves
//   - Concurrency: conflicting writers racing on the same key
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("FolderOps", func(t *testing.T) {
		runFolderOpsTests(t, factory)
	})

	t.Run("FileOps", func(t *testing.T) {
		runFileOpsTests(t, factory)
	})

	t.Run("Concurrency", func(t *testing.T) {
		runConcurrencyTests(t, factory)
	})
}

const testOwner = vfs.OwnerID(4242)

// createTestFolder is a helper that stores a folder under parentPath and
// returns its record.
func createTestFolder(t *testing.T, store vfs.Store, owner vfs.OwnerID, parentPath, name string) *vfs.FolderRecord {
	t.Helper()

	record := &vfs.FolderRecord{
		ID:         uuid.New(),
		Name:       name,
		OwnerID:    owner,
		ParentPath: parentPath,
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.PutFolder(t.Context(), record); err != nil {
		t.Fatalf("PutFolder(%q/%q) failed: %v", parentPath, name, err)
	}
	return record
}

// createTestFile is a helper that stores a file record in folderPath and
// returns it.
func createTestFile(t *testing.T, store vfs.Store, owner vfs.OwnerID, folderPath, name string) *vfs.FileRecord {
	t.Helper()

	record := &vfs.FileRecord{
		ID:           uuid.New(),
		BlobRef:      "blob-" + name,
		Name:         name,
		OriginalName: name,
		OwnerID:      owner,
		FolderPath:   folderPath,
		Size:         1024,
		MimeType:     "application/octet-stream",
		UploadedAt:   time.Now().UTC(),
	}
	if err := store.PutFile(t.Context(), record); err != nil {
		t.Fatalf("PutFile(%q/%q) failed: %v", folderPath, name, err)
	}
	return record
}
