package storetest

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// runConcurrencyTests runs the conformance tests for racing writers.
func runConcurrencyTests(t *testing.T, factory StoreFactory) {
	t.Run("ConcurrentDuplicateFolders", func(t *testing.T) { testConcurrentDuplicateFolders(t, factory) })
	t.Run("ConcurrentDuplicateFiles", func(t *testing.T) { testConcurrentDuplicateFiles(t, factory) })
	t.Run("ConcurrentDistinctFolders", func(t *testing.T) { testConcurrentDistinctFolders(t, factory) })
}

// testConcurrentDuplicateFolders launches N writers racing to create the same
// folder; exactly one must win and the rest must see FolderExists.
func testConcurrentDuplicateFolders(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	const writers = 16

	var wg sync.WaitGroup
	var successes, conflicts atomic.Int64
	start := make(chan struct{})

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			record := &vfs.FolderRecord{
				ID:         uuid.New(),
				Name:       "contested",
				OwnerID:    testOwner,
				ParentPath: vfs.Root,
				CreatedAt:  time.Now().UTC(),
			}
			err := store.PutFolder(ctx, record)
			switch {
			case err == nil:
				successes.Add(1)
			case vfs.CodeOf(err) == vfs.ErrFolderExists:
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if successes.Load() != 1 {
		t.Errorf("successes = %d, want 1", successes.Load())
	}
	if conflicts.Load() != writers-1 {
		t.Errorf("conflicts = %d, want %d", conflicts.Load(), writers-1)
	}
}

// testConcurrentDuplicateFiles is the file-side variant of the duplicate race.
func testConcurrentDuplicateFiles(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	createTestFolder(t, store, testOwner, vfs.Root, "uploads")

	const writers = 16

	var wg sync.WaitGroup
	var successes, conflicts atomic.Int64
	start := make(chan struct{})

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			record := &vfs.FileRecord{
				ID:           uuid.New(),
				BlobRef:      "blob-race",
				Name:         "contested.bin",
				OriginalName: "contested.bin",
				OwnerID:      testOwner,
				FolderPath:   "/uploads",
				Size:         1,
				MimeType:     "application/octet-stream",
				UploadedAt:   time.Now().UTC(),
			}
			err := store.PutFile(ctx, record)
			switch {
			case err == nil:
				successes.Add(1)
			case vfs.CodeOf(err) == vfs.ErrAlreadyExists:
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if successes.Load() != 1 {
		t.Errorf("successes = %d, want 1", successes.Load())
	}
	if conflicts.Load() != writers-1 {
		t.Errorf("conflicts = %d, want %d", conflicts.Load(), writers-1)
	}

	files, err := store.ListFiles(ctx, testOwner, "/uploads")
	if err != nil {
		t.Fatalf("ListFiles() failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("ListFiles() returned %d files, want 1", len(files))
	}
}

// testConcurrentDistinctFolders verifies independent keys never conflict.
func testConcurrentDistinctFolders(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	const writers = 16

	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			record := &vfs.FolderRecord{
				ID:         uuid.New(),
				Name:       "folder-" + uuid.NewString(),
				OwnerID:    testOwner,
				ParentPath: vfs.Root,
				CreatedAt:  time.Now().UTC(),
			}
			if err := store.PutFolder(ctx, record); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}

	folders, err := store.ListFolders(ctx, testOwner, vfs.Root)
	if err != nil {
		t.Fatalf("ListFolders() failed: %v", err)
	}
	if len(folders) != writers {
		t.Errorf("ListFolders() returned %d folders, want %d", len(folders), writers)
	}
}
