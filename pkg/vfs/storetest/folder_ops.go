package storetest

import (
	"sort"
	"testing"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// runFolderOpsTests runs all folder operation conformance tests.
func runFolderOpsTests(t *testing.T, factory StoreFactory) {
	t.Run("CreateFolder", func(t *testing.T) { testCreateFolder(t, factory) })
	t.Run("DuplicateFolder", func(t *testing.T) { testDuplicateFolder(t, factory) })
	t.Run("SameNameDifferentParents", func(t *testing.T) { testSameNameDifferentParents(t, factory) })
	t.Run("ListFolders", func(t *testing.T) { testListFolders(t, factory) })
	t.Run("ListFoldersImmediateOnly", func(t *testing.T) { testListFoldersImmediateOnly(t, factory) })
	t.Run("DeleteFolder", func(t *testing.T) { testDeleteFolder(t, factory) })
	t.Run("DeleteThenRecreate", func(t *testing.T) { testDeleteThenRecreate(t, factory) })
	t.Run("RenameFolder", func(t *testing.T) { testRenameFolder(t, factory) })
	t.Run("RenameFolderRewritesDescendants", func(t *testing.T) { testRenameFolderRewritesDescendants(t, factory) })
	t.Run("RenameFolderConflict", func(t *testing.T) { testRenameFolderConflict(t, factory) })
	t.Run("OwnerIsolation", func(t *testing.T) { testOwnerIsolation(t, factory) })
	t.Run("CountFolderEntries", func(t *testing.T) { testCountFolderEntries(t, factory) })
}

// testCreateFolder verifies that a stored folder round-trips through GetFolder.
func testCreateFolder(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	created := createTestFolder(t, store, testOwner, vfs.Root, "documents")

	got, err := store.GetFolder(ctx, testOwner, "/documents")
	if err != nil {
		t.Fatalf("GetFolder() failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %v, want %v", got.ID, created.ID)
	}
	if got.Name != "documents" {
		t.Errorf("Name = %q, want %q", got.Name, "documents")
	}
	if got.ParentPath != vfs.Root {
		t.Errorf("ParentPath = %q, want %q", got.ParentPath, vfs.Root)
	}
}

// testDuplicateFolder verifies that a second folder with the same
// (owner, parent, name) key is rejected with FolderExists.
func testDuplicateFolder(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	first := createTestFolder(t, store, testOwner, vfs.Root, "photos")

	dup := *first
	if err := store.PutFolder(ctx, &dup); err == nil {
		t.Fatal("PutFolder() should fail for duplicate folder")
	} else if vfs.CodeOf(err) != vfs.ErrFolderExists {
		t.Errorf("expected FolderExists, got: %v", err)
	}

	// The original record is untouched.
	got, err := store.GetFolder(ctx, testOwner, "/photos")
	if err != nil {
		t.Fatalf("GetFolder() failed: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("ID = %v, want %v", got.ID, first.ID)
	}
}

// testSameNameDifferentParents verifies the uniqueness key includes the parent.
func testSameNameDifferentParents(t *testing.T, factory StoreFactory) {
	store := factory(t)

	createTestFolder(t, store, testOwner, vfs.Root, "work")
	createTestFolder(t, store, testOwner, vfs.Root, "personal")
	createTestFolder(t, store, testOwner, "/work", "reports")
	createTestFolder(t, store, testOwner, "/personal", "reports")

	ctx := t.Context()
	for _, path := range []string{"/work/reports", "/personal/reports"} {
		if _, err := store.GetFolder(ctx, testOwner, path); err != nil {
			t.Errorf("GetFolder(%q) failed: %v", path, err)
		}
	}
}

// testListFolders verifies listing returns all immediate children.
func testListFolders(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	createTestFolder(t, store, testOwner, vfs.Root, "alpha")
	createTestFolder(t, store, testOwner, vfs.Root, "beta")
	createTestFolder(t, store, testOwner, vfs.Root, "gamma")

	folders, err := store.ListFolders(ctx, testOwner, vfs.Root)
	if err != nil {
		t.Fatalf("ListFolders() failed: %v", err)
	}
	if len(folders) != 3 {
		t.Fatalf("ListFolders() returned %d folders, want 3", len(folders))
	}

	names := make([]string, len(folders))
	for i, f := range folders {
		names[i] = f.Name
	}
	sort.Strings(names)

	expected := []string{"alpha", "beta", "gamma"}
	for i, want := range expected {
		if names[i] != want {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want)
		}
	}
}

// testListFoldersImmediateOnly verifies that listing a parent does not
// surface deeper descendants.
func testListFoldersImmediateOnly(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	createTestFolder(t, store, testOwner, vfs.Root, "projects")
	createTestFolder(t, store, testOwner, "/projects", "cabinet")
	createTestFolder(t, store, testOwner, "/projects/cabinet", "docs")

	folders, err := store.ListFolders(ctx, testOwner, vfs.Root)
	if err != nil {
		t.Fatalf("ListFolders() failed: %v", err)
	}
	if len(folders) != 1 {
		t.Fatalf("ListFolders(root) returned %d folders, want 1", len(folders))
	}
	if folders[0].Name != "projects" {
		t.Errorf("Name = %q, want %q", folders[0].Name, "projects")
	}

	folders, err = store.ListFolders(ctx, testOwner, "/projects")
	if err != nil {
		t.Fatalf("ListFolders() failed: %v", err)
	}
	if len(folders) != 1 || folders[0].Name != "cabinet" {
		t.Fatalf("ListFolders(/projects) = %v, want exactly [cabinet]", folderNames(folders))
	}
}

// testDeleteFolder verifies deletion and the FolderNotFound error afterwards.
func testDeleteFolder(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	createTestFolder(t, store, testOwner, vfs.Root, "scratch")

	if err := store.DeleteFolder(ctx, testOwner, "/scratch"); err != nil {
		t.Fatalf("DeleteFolder() failed: %v", err)
	}

	_, err := store.GetFolder(ctx, testOwner, "/scratch")
	if err == nil {
		t.Fatal("GetFolder() should fail after deletion")
	}
	if vfs.CodeOf(err) != vfs.ErrFolderNotFound {
		t.Errorf("expected FolderNotFound, got: %v", err)
	}

	// Deleting again reports FolderNotFound.
	err = store.DeleteFolder(ctx, testOwner, "/scratch")
	if vfs.CodeOf(err) != vfs.ErrFolderNotFound {
		t.Errorf("expected FolderNotFound on double delete, got: %v", err)
	}
}

// testDeleteThenRecreate verifies a path can be reused after deletion and
// that the re-created folder lists exactly once.
func testDeleteThenRecreate(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	first := createTestFolder(t, store, testOwner, vfs.Root, "photos")
	if err := store.DeleteFolder(ctx, testOwner, "/photos"); err != nil {
		t.Fatalf("DeleteFolder() failed: %v", err)
	}
	second := createTestFolder(t, store, testOwner, vfs.Root, "photos")

	if second.ID == first.ID {
		t.Fatal("re-created folder should have a fresh ID")
	}

	got, err := store.GetFolder(ctx, testOwner, "/photos")
	if err != nil {
		t.Fatalf("GetFolder() failed: %v", err)
	}
	if got.ID != second.ID {
		t.Errorf("ID = %v, want %v", got.ID, second.ID)
	}

	folders, err := store.ListFolders(ctx, testOwner, vfs.Root)
	if err != nil {
		t.Fatalf("ListFolders() failed: %v", err)
	}
	if len(folders) != 1 {
		t.Fatalf("ListFolders() returned %d records, want 1", len(folders))
	}
	if folders[0].ID != second.ID {
		t.Errorf("listed ID = %v, want %v", folders[0].ID, second.ID)
	}
}

// testRenameFolder verifies the record is reachable under the new path only.
func testRenameFolder(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	created := createTestFolder(t, store, testOwner, vfs.Root, "drafts")

	renamed, err := store.RenameFolder(ctx, testOwner, "/drafts", "published")
	if err != nil {
		t.Fatalf("RenameFolder() failed: %v", err)
	}
	if renamed.Name != "published" {
		t.Errorf("Name = %q, want %q", renamed.Name, "published")
	}
	if renamed.ID != created.ID {
		t.Errorf("ID = %v, want %v", renamed.ID, created.ID)
	}

	if _, err := store.GetFolder(ctx, testOwner, "/published"); err != nil {
		t.Errorf("GetFolder(new path) failed: %v", err)
	}
	if _, err := store.GetFolder(ctx, testOwner, "/drafts"); vfs.CodeOf(err) != vfs.ErrFolderNotFound {
		t.Errorf("expected FolderNotFound for old path, got: %v", err)
	}
}

// testRenameFolderRewritesDescendants verifies nested folders and files move
// with their renamed ancestor.
func testRenameFolderRewritesDescendants(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	createTestFolder(t, store, testOwner, vfs.Root, "old")
	createTestFolder(t, store, testOwner, "/old", "nested")
	createTestFolder(t, store, testOwner, "/old/nested", "deep")
	file := createTestFile(t, store, testOwner, "/old/nested", "report.pdf")

	if _, err := store.RenameFolder(ctx, testOwner, "/old", "new"); err != nil {
		t.Fatalf("RenameFolder() failed: %v", err)
	}

	for _, path := range []string{"/new", "/new/nested", "/new/nested/deep"} {
		if _, err := store.GetFolder(ctx, testOwner, path); err != nil {
			t.Errorf("GetFolder(%q) failed after rename: %v", path, err)
		}
	}
	for _, path := range []string{"/old", "/old/nested"} {
		if _, err := store.GetFolder(ctx, testOwner, path); vfs.CodeOf(err) != vfs.ErrFolderNotFound {
			t.Errorf("expected FolderNotFound for %q, got: %v", path, err)
		}
	}

	got, err := store.GetFile(ctx, testOwner, file.ID.String())
	if err != nil {
		t.Fatalf("GetFile() failed: %v", err)
	}
	if got.FolderPath != "/new/nested" {
		t.Errorf("FolderPath = %q, want %q", got.FolderPath, "/new/nested")
	}

	files, err := store.ListFiles(ctx, testOwner, "/new/nested")
	if err != nil {
		t.Fatalf("ListFiles() failed: %v", err)
	}
	if len(files) != 1 || files[0].Name != "report.pdf" {
		t.Errorf("ListFiles(/new/nested) = %v, want [report.pdf]", fileNames(files))
	}
}

// testRenameFolderConflict verifies renaming onto an existing sibling fails.
func testRenameFolderConflict(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	createTestFolder(t, store, testOwner, vfs.Root, "first")
	createTestFolder(t, store, testOwner, vfs.Root, "second")

	_, err := store.RenameFolder(ctx, testOwner, "/first", "second")
	if vfs.CodeOf(err) != vfs.ErrFolderExists {
		t.Errorf("expected FolderExists, got: %v", err)
	}

	// Both originals survive.
	for _, path := range []string{"/first", "/second"} {
		if _, err := store.GetFolder(ctx, testOwner, path); err != nil {
			t.Errorf("GetFolder(%q) failed: %v", path, err)
		}
	}
}

// testOwnerIsolation verifies records of one owner are invisible to another.
func testOwnerIsolation(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	other := vfs.OwnerID(9999)

	createTestFolder(t, store, testOwner, vfs.Root, "private")
	createTestFolder(t, store, other, vfs.Root, "private")

	folders, err := store.ListFolders(ctx, other, vfs.Root)
	if err != nil {
		t.Fatalf("ListFolders() failed: %v", err)
	}
	if len(folders) != 1 {
		t.Fatalf("ListFolders(other) returned %d folders, want 1", len(folders))
	}

	if err := store.DeleteFolder(ctx, other, "/private"); err != nil {
		t.Fatalf("DeleteFolder() failed: %v", err)
	}
	if _, err := store.GetFolder(ctx, testOwner, "/private"); err != nil {
		t.Errorf("owner's folder should survive the other owner's delete: %v", err)
	}
}

// testCountFolderEntries verifies the child counts used for non-empty checks.
func testCountFolderEntries(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	createTestFolder(t, store, testOwner, vfs.Root, "mixed")
	createTestFolder(t, store, testOwner, "/mixed", "sub")
	createTestFile(t, store, testOwner, "/mixed", "a.txt")
	createTestFile(t, store, testOwner, "/mixed", "b.txt")

	folders, files, err := store.CountFolderEntries(ctx, testOwner, "/mixed")
	if err != nil {
		t.Fatalf("CountFolderEntries() failed: %v", err)
	}
	if folders != 1 {
		t.Errorf("folders = %d, want 1", folders)
	}
	if files != 2 {
		t.Errorf("files = %d, want 2", files)
	}

	folders, files, err = store.CountFolderEntries(ctx, testOwner, "/mixed/sub")
	if err != nil {
		t.Fatalf("CountFolderEntries() failed: %v", err)
	}
	if folders != 0 || files != 0 {
		t.Errorf("counts = (%d, %d), want (0, 0)", folders, files)
	}
}

func folderNames(folders []*vfs.FolderRecord) []string {
	names := make([]string, len(folders))
	for i, f := range folders {
		names[i] = f.Name
	}
	return names
}

func fileNames(files []*vfs.FileRecord) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}
