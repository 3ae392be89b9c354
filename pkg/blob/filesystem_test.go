package blob

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FilesystemStore {
	t.Helper()
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func writeBlob(t *testing.T, store *FilesystemStore, ref, content string) {
	t.Helper()
	path := filepath.Join(store.root, filepath.FromSlash(ref))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFilesystemStat(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	writeBlob(t, store, "uploads/cat.png", "meow")

	info, err := store.Stat(ctx, "uploads/cat.png")
	require.NoError(t, err)
	assert.Equal(t, "uploads/cat.png", info.Ref)
	assert.Equal(t, int64(4), info.Size)
	assert.False(t, info.ModifiedAt.IsZero())
}

func TestFilesystemStatMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Stat(t.Context(), "missing.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilesystemPresignGet(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	writeBlob(t, store, "doc.pdf", "content")

	u, err := store.PresignGet(ctx, "doc.pdf", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "file://"))
	assert.True(t, strings.HasSuffix(u, "/doc.pdf"))

	_, err = store.PresignGet(ctx, "missing.pdf", time.Minute)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilesystemDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	writeBlob(t, store, "gone.txt", "bye")

	require.NoError(t, store.Delete(ctx, "gone.txt"))
	_, err := store.Stat(ctx, "gone.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	// Idempotent.
	require.NoError(t, store.Delete(ctx, "gone.txt"))
}

func TestFilesystemRejectsEscapingRefs(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	for _, ref := range []string{"", "../outside.txt", "/etc/passwd", "a/../../outside"} {
		_, err := store.Stat(ctx, ref)
		assert.Error(t, err, "Stat(%q) should fail", ref)
		assert.NotErrorIs(t, err, ErrNotFound)
	}
}
