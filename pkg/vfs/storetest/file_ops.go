package storetest

import (
	"sort"
	"testing"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// runFileOpsTests runs all file operation conformance tests.
func runFileOpsTests(t *testing.T, factory StoreFactory) {
	t.Run("PutAndGetFile", func(t *testing.T) { testPutAndGetFile(t, factory) })
	t.Run("DuplicateFileName", func(t *testing.T) { testDuplicateFileName(t, factory) })
	t.Run("SameNameDifferentFolders", func(t *testing.T) { testFileSameNameDifferentFolders(t, factory) })
	t.Run("ListFiles", func(t *testing.T) { testListFiles(t, factory) })
	t.Run("DeleteFile", func(t *testing.T) { testDeleteFile(t, factory) })
	t.Run("UpdateFileRename", func(t *testing.T) { testUpdateFileRename(t, factory) })
	t.Run("UpdateFileMove", func(t *testing.T) { testUpdateFileMove(t, factory) })
	t.Run("UpdateFileConflict", func(t *testing.T) { testUpdateFileConflict(t, factory) })
	t.Run("SearchFiles", func(t *testing.T) { testSearchFiles(t, factory) })
}

// testPutAndGetFile verifies a file record round-trips with all fields intact.
func testPutAndGetFile(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	createTestFolder(t, store, testOwner, vfs.Root, "inbox")
	created := createTestFile(t, store, testOwner, "/inbox", "20240101_120000_notes.txt")

	got, err := store.GetFile(ctx, testOwner, created.ID.String())
	if err != nil {
		t.Fatalf("GetFile() failed: %v", err)
	}
	if got.Name != created.Name {
		t.Errorf("Name = %q, want %q", got.Name, created.Name)
	}
	if got.BlobRef != created.BlobRef {
		t.Errorf("BlobRef = %q, want %q", got.BlobRef, created.BlobRef)
	}
	if got.FolderPath != "/inbox" {
		t.Errorf("FolderPath = %q, want %q", got.FolderPath, "/inbox")
	}
	if got.Size != created.Size {
		t.Errorf("Size = %d, want %d", got.Size, created.Size)
	}
}

// testDuplicateFileName verifies the (owner, folder, name) key is enforced.
func testDuplicateFileName(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	createTestFolder(t, store, testOwner, vfs.Root, "inbox")
	first := createTestFile(t, store, testOwner, "/inbox", "dup.txt")

	dup := *first
	if err := store.PutFile(ctx, &dup); err == nil {
		t.Fatal("PutFile() should fail for duplicate name")
	} else if vfs.CodeOf(err) != vfs.ErrAlreadyExists {
		t.Errorf("expected AlreadyExists, got: %v", err)
	}
}

// testFileSameNameDifferentFolders verifies the key includes the folder path.
func testFileSameNameDifferentFolders(t *testing.T, factory StoreFactory) {
	store := factory(t)

	createTestFolder(t, store, testOwner, vfs.Root, "a")
	createTestFolder(t, store, testOwner, vfs.Root, "b")
	createTestFile(t, store, testOwner, "/a", "same.txt")
	createTestFile(t, store, testOwner, "/b", "same.txt")

	ctx := t.Context()
	for _, folder := range []string{"/a", "/b"} {
		files, err := store.ListFiles(ctx, testOwner, folder)
		if err != nil {
			t.Fatalf("ListFiles(%q) failed: %v", folder, err)
		}
		if len(files) != 1 || files[0].Name != "same.txt" {
			t.Errorf("ListFiles(%q) = %v, want [same.txt]", folder, fileNames(files))
		}
	}
}

// testListFiles verifies listing returns exactly the folder's files.
func testListFiles(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	createTestFolder(t, store, testOwner, vfs.Root, "docs")
	createTestFolder(t, store, testOwner, "/docs", "archive")
	createTestFile(t, store, testOwner, "/docs", "one.txt")
	createTestFile(t, store, testOwner, "/docs", "two.txt")
	createTestFile(t, store, testOwner, "/docs/archive", "three.txt")

	files, err := store.ListFiles(ctx, testOwner, "/docs")
	if err != nil {
		t.Fatalf("ListFiles() failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("ListFiles() returned %d files, want 2", len(files))
	}

	names := fileNames(files)
	sort.Strings(names)
	if names[0] != "one.txt" || names[1] != "two.txt" {
		t.Errorf("names = %v, want [one.txt two.txt]", names)
	}

	// Stable ordering across calls.
	again, err := store.ListFiles(ctx, testOwner, "/docs")
	if err != nil {
		t.Fatalf("ListFiles() failed: %v", err)
	}
	for i := range files {
		if files[i].ID != again[i].ID {
			t.Errorf("ordering not stable at index %d: %v vs %v", i, files[i].Name, again[i].Name)
		}
	}
}

// testDeleteFile verifies deletion frees the name for reuse.
func testDeleteFile(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	createTestFolder(t, store, testOwner, vfs.Root, "tmp")
	created := createTestFile(t, store, testOwner, "/tmp", "gone.txt")

	if err := store.DeleteFile(ctx, testOwner, created.ID.String()); err != nil {
		t.Fatalf("DeleteFile() failed: %v", err)
	}

	_, err := store.GetFile(ctx, testOwner, created.ID.String())
	if vfs.CodeOf(err) != vfs.ErrNotFound {
		t.Errorf("expected NotFound, got: %v", err)
	}

	// The name is available again.
	createTestFile(t, store, testOwner, "/tmp", "gone.txt")
}

// testUpdateFileRename verifies renaming a file in place.
func testUpdateFileRename(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	createTestFolder(t, store, testOwner, vfs.Root, "docs")
	created := createTestFile(t, store, testOwner, "/docs", "before.txt")

	updated := *created
	updated.Name = "after.txt"
	if err := store.UpdateFile(ctx, &updated); err != nil {
		t.Fatalf("UpdateFile() failed: %v", err)
	}

	got, err := store.GetFile(ctx, testOwner, created.ID.String())
	if err != nil {
		t.Fatalf("GetFile() failed: %v", err)
	}
	if got.Name != "after.txt" {
		t.Errorf("Name = %q, want %q", got.Name, "after.txt")
	}

	files, err := store.ListFiles(ctx, testOwner, "/docs")
	if err != nil {
		t.Fatalf("ListFiles() failed: %v", err)
	}
	if len(files) != 1 || files[0].Name != "after.txt" {
		t.Errorf("ListFiles() = %v, want [after.txt]", fileNames(files))
	}
}

// testUpdateFileMove verifies moving a file between folders.
func testUpdateFileMove(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	createTestFolder(t, store, testOwner, vfs.Root, "src")
	createTestFolder(t, store, testOwner, vfs.Root, "dst")
	created := createTestFile(t, store, testOwner, "/src", "moving.txt")

	moved := *created
	moved.FolderPath = "/dst"
	if err := store.UpdateFile(ctx, &moved); err != nil {
		t.Fatalf("UpdateFile() failed: %v", err)
	}

	files, err := store.ListFiles(ctx, testOwner, "/src")
	if err != nil {
		t.Fatalf("ListFiles(/src) failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("ListFiles(/src) = %v, want empty", fileNames(files))
	}

	files, err = store.ListFiles(ctx, testOwner, "/dst")
	if err != nil {
		t.Fatalf("ListFiles(/dst) failed: %v", err)
	}
	if len(files) != 1 || files[0].Name != "moving.txt" {
		t.Errorf("ListFiles(/dst) = %v, want [moving.txt]", fileNames(files))
	}
}

// testUpdateFileConflict verifies an update cannot steal an occupied name.
func testUpdateFileConflict(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	createTestFolder(t, store, testOwner, vfs.Root, "docs")
	createTestFile(t, store, testOwner, "/docs", "taken.txt")
	victim := createTestFile(t, store, testOwner, "/docs", "free.txt")

	updated := *victim
	updated.Name = "taken.txt"
	err := store.UpdateFile(ctx, &updated)
	if vfs.CodeOf(err) != vfs.ErrAlreadyExists {
		t.Errorf("expected AlreadyExists, got: %v", err)
	}

	// The victim keeps its original name.
	got, err := store.GetFile(ctx, testOwner, victim.ID.String())
	if err != nil {
		t.Fatalf("GetFile() failed: %v", err)
	}
	if got.Name != "free.txt" {
		t.Errorf("Name = %q, want %q", got.Name, "free.txt")
	}
}

// testSearchFiles verifies case-insensitive substring matching on stored and
// original names.
func testSearchFiles(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	createTestFolder(t, store, testOwner, vfs.Root, "docs")
	createTestFile(t, store, testOwner, "/docs", "20240101_120000_Invoice.pdf")
	createTestFile(t, store, testOwner, "/docs", "20240102_090000_holiday.jpg")
	createTestFile(t, store, testOwner, vfs.Root, "20240103_100000_invoice_final.pdf")

	results, err := store.SearchFiles(ctx, testOwner, "invoice")
	if err != nil {
		t.Fatalf("SearchFiles() failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("SearchFiles(invoice) returned %d files, want 2", len(results))
	}

	results, err = store.SearchFiles(ctx, testOwner, "HOLIDAY")
	if err != nil {
		t.Fatalf("SearchFiles() failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("SearchFiles(HOLIDAY) returned %d files, want 1", len(results))
	}

	results, err = store.SearchFiles(ctx, testOwner, "nomatch")
	if err != nil {
		t.Fatalf("SearchFiles() failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("SearchFiles(nomatch) = %v, want empty", fileNames(results))
	}
}
