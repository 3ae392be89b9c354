package registry

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabinetfs/cabinet/pkg/vfs"
	"github.com/cabinetfs/cabinet/pkg/vfs/store/memory"
)

const owner = vfs.OwnerID(42)

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() {
		store.Close()
	})
	return New(store, opts...)
}

func TestCreateFolderThenDuplicate(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	first, err := reg.CreateFolder(ctx, owner, "/", "Photos")
	require.NoError(t, err)
	assert.Equal(t, "Photos", first.Name)
	assert.Equal(t, "/", first.ParentPath)

	_, err = reg.CreateFolder(ctx, owner, "/", "Photos")
	assert.Equal(t, vfs.ErrFolderExists, vfs.CodeOf(err))
}

func TestCreateFolderMissingParent(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.CreateFolder(t.Context(), owner, "/missing", "sub")
	assert.Equal(t, vfs.ErrFolderNotFound, vfs.CodeOf(err))
}

func TestCreateFolderInvalidInput(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	_, err := reg.CreateFolder(ctx, owner, "/../etc", "x")
	assert.True(t, vfs.IsInvalidPathError(err))

	_, err = reg.CreateFolder(ctx, owner, "/", "a/b")
	assert.True(t, vfs.IsInvalidPathError(err))

	_, err = reg.CreateFolder(ctx, owner, "/", "")
	assert.True(t, vfs.IsInvalidPathError(err))
}

func TestListFoldersIncludesCreatedOnce(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	_, err := reg.CreateFolder(ctx, owner, "/", "Photos")
	require.NoError(t, err)

	folders, err := reg.ListFolders(ctx, owner, "/")
	require.NoError(t, err)

	seen := 0
	for _, f := range folders {
		if f.Name == "Photos" {
			seen++
		}
	}
	assert.Equal(t, 1, seen)
}

func TestPathNormalizationEquivalence(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	_, err := reg.CreateFolder(ctx, owner, "/", "docs")
	require.NoError(t, err)

	// "/docs/", "/docs" and "docs" all resolve to the same folder.
	for _, raw := range []string{"/docs", "/docs/", "docs"} {
		folder, err := reg.GetFolder(ctx, owner, raw)
		require.NoError(t, err, "GetFolder(%q)", raw)
		assert.Equal(t, "docs", folder.Name)
	}
}

func TestDeleteFolder(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	_, err := reg.CreateFolder(ctx, owner, "/", "trash")
	require.NoError(t, err)
	require.NoError(t, reg.DeleteFolder(ctx, owner, "/trash"))

	_, err = reg.GetFolder(ctx, owner, "/trash")
	assert.Equal(t, vfs.ErrFolderNotFound, vfs.CodeOf(err))
}

func TestDeleteFolderNotEmpty(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	_, err := reg.CreateFolder(ctx, owner, "/", "keep")
	require.NoError(t, err)
	_, err = reg.CreateFolder(ctx, owner, "/keep", "inner")
	require.NoError(t, err)

	err = reg.DeleteFolder(ctx, owner, "/keep")
	assert.Equal(t, vfs.ErrFolderNotEmpty, vfs.CodeOf(err))

	// Still not empty with only a file inside.
	require.NoError(t, reg.DeleteFolder(ctx, owner, "/keep/inner"))
	_, err = reg.RegisterFile(ctx, owner, RegisterFileParams{
		FolderPath:   "/keep",
		BlobRef:      "blob-1",
		OriginalName: "cat.png",
		Size:         1024,
		MimeType:     "image/png",
	})
	require.NoError(t, err)

	err = reg.DeleteFolder(ctx, owner, "/keep")
	assert.Equal(t, vfs.ErrFolderNotEmpty, vfs.CodeOf(err))
}

func TestDeleteRootRejected(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.DeleteFolder(t.Context(), owner, "/")
	assert.True(t, vfs.IsInvalidPathError(err))
}

func TestRenameFolder(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	_, err := reg.CreateFolder(ctx, owner, "/", "drafts")
	require.NoError(t, err)
	_, err = reg.CreateFolder(ctx, owner, "/drafts", "2024")
	require.NoError(t, err)

	renamed, err := reg.RenameFolder(ctx, owner, "/drafts", "published")
	require.NoError(t, err)
	assert.Equal(t, "published", renamed.Name)

	// The nested folder followed its parent.
	_, err = reg.GetFolder(ctx, owner, "/published/2024")
	require.NoError(t, err)
}

func TestRegisterFileMissingFolder(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	_, err := reg.RegisterFile(ctx, owner, RegisterFileParams{
		FolderPath:   "/nowhere",
		BlobRef:      "blob-1",
		OriginalName: "cat.png",
		Size:         1024,
	})
	assert.Equal(t, vfs.ErrFolderNotFound, vfs.CodeOf(err))

	// No record was created anywhere.
	files, err := reg.ListFiles(ctx, owner, "/")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRegisterFileValidation(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	_, err := reg.RegisterFile(ctx, owner, RegisterFileParams{
		FolderPath:   "/",
		OriginalName: "cat.png",
		Size:         1,
	})
	assert.Equal(t, vfs.ErrInvalidArgument, vfs.CodeOf(err))

	_, err = reg.RegisterFile(ctx, owner, RegisterFileParams{
		FolderPath: "/",
		BlobRef:    "blob-1",
		Size:       1,
	})
	assert.Equal(t, vfs.ErrInvalidArgument, vfs.CodeOf(err))

	_, err = reg.RegisterFile(ctx, owner, RegisterFileParams{
		FolderPath:   "/",
		BlobRef:      "blob-1",
		OriginalName: "cat.png",
		Size:         -1,
	})
	assert.Equal(t, vfs.ErrInvalidArgument, vfs.CodeOf(err))
}

func TestRegisterFileSameOriginalName(t *testing.T) {
	// Freeze the clock so both uploads land in the same second and must be
	// disambiguated by the suffix.
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	reg := newTestRegistry(t, WithClock(func() time.Time { return fixed }))
	ctx := t.Context()

	first, err := reg.RegisterFile(ctx, owner, RegisterFileParams{
		FolderPath:   "/",
		BlobRef:      "blob-1",
		OriginalName: "cat.png",
		Size:         1024,
		MimeType:     "image/png",
	})
	require.NoError(t, err)

	second, err := reg.RegisterFile(ctx, owner, RegisterFileParams{
		FolderPath:   "/",
		BlobRef:      "blob-2",
		OriginalName: "cat.png",
		Size:         2048,
		MimeType:     "image/png",
	})
	require.NoError(t, err)

	assert.NotEqual(t, first.Name, second.Name)
	assert.Equal(t, "cat.png", first.OriginalName)
	assert.Equal(t, "cat.png", second.OriginalName)
	assert.Equal(t, "20240601_120000_cat.png", first.Name)
	assert.Equal(t, "20240601_120000_cat_1.png", second.Name)
}

func TestRegisterFileSanitizesName(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	record, err := reg.RegisterFile(ctx, owner, RegisterFileParams{
		FolderPath:   "/",
		BlobRef:      "blob-1",
		OriginalName: "../../etc/pass\twd",
		Size:         1,
	})
	require.NoError(t, err)
	assert.NoError(t, vfs.ValidateName(record.Name))
	assert.Equal(t, "../../etc/pass\twd", record.OriginalName)
}

func TestRenameFile(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	record, err := reg.RegisterFile(ctx, owner, RegisterFileParams{
		FolderPath:   "/",
		BlobRef:      "blob-1",
		OriginalName: "cat.png",
		Size:         1,
	})
	require.NoError(t, err)

	renamed, err := reg.RenameFile(ctx, owner, record.ID.String(), "kitten.png")
	require.NoError(t, err)
	assert.Equal(t, "kitten.png", renamed.Name)
	assert.Equal(t, "cat.png", renamed.OriginalName)
}

func TestMoveFile(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	_, err := reg.CreateFolder(ctx, owner, "/", "Photos")
	require.NoError(t, err)

	record, err := reg.RegisterFile(ctx, owner, RegisterFileParams{
		FolderPath:   "/",
		BlobRef:      "blob-1",
		OriginalName: "cat.png",
		Size:         1,
	})
	require.NoError(t, err)

	moved, err := reg.MoveFile(ctx, owner, record.ID.String(), "/Photos")
	require.NoError(t, err)
	assert.Equal(t, "/Photos", moved.FolderPath)

	// Destination must exist.
	_, err = reg.MoveFile(ctx, owner, record.ID.String(), "/missing")
	assert.Equal(t, vfs.ErrFolderNotFound, vfs.CodeOf(err))
}

func TestDeleteFile(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	record, err := reg.RegisterFile(ctx, owner, RegisterFileParams{
		FolderPath:   "/",
		BlobRef:      "blob-1",
		OriginalName: "cat.png",
		Size:         1,
	})
	require.NoError(t, err)

	require.NoError(t, reg.DeleteFile(ctx, owner, record.ID.String()))

	_, err = reg.GetFile(ctx, owner, record.ID.String())
	assert.Equal(t, vfs.ErrNotFound, vfs.CodeOf(err))
}

func TestSearchFiles(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	_, err := reg.CreateFolder(ctx, owner, "/", "docs")
	require.NoError(t, err)

	for _, upload := range []struct{ folder, name string }{
		{"/", "Invoice March.pdf"},
		{"/docs", "invoice-april.pdf"},
		{"/docs", "holiday.jpg"},
	} {
		_, err := reg.RegisterFile(ctx, owner, RegisterFileParams{
			FolderPath:   upload.folder,
			BlobRef:      "blob-" + upload.name,
			OriginalName: upload.name,
			Size:         1,
		})
		require.NoError(t, err)
	}

	results, err := reg.SearchFiles(ctx, owner, "invoice")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	_, err = reg.SearchFiles(ctx, owner, "")
	assert.Equal(t, vfs.ErrInvalidArgument, vfs.CodeOf(err))
}

func TestConcurrentCreateFolder(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	const writers = 8

	var wg sync.WaitGroup
	var successes, conflicts atomic.Int64

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.CreateFolder(ctx, owner, "/", "contested")
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
	wg.Wait()

	assert.Equal(t, int64(1), successes.Load())
	assert.Equal(t, int64(writers-1), conflicts.Load())
}

func TestUploadScenario(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := t.Context()

	_, err := reg.CreateFolder(ctx, owner, "/", "Photos")
	require.NoError(t, err)

	folders, err := reg.ListFolders(ctx, owner, "/")
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "Photos", folders[0].Name)

	record, err := reg.RegisterFile(ctx, owner, RegisterFileParams{
		FolderPath:   "/Photos",
		BlobRef:      "blob-cat",
		OriginalName: "cat.png",
		Size:         1024,
		MimeType:     "image/png",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "cat.png", record.Name)

	files, err := reg.ListFiles(ctx, owner, "/Photos")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "cat.png", files[0].OriginalName)
}
