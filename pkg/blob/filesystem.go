package blob

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var _ Store = (*FilesystemStore)(nil)

// FilesystemStore serves blobs from a local directory. Refs are paths
// relative to the root; escaping the root is rejected.
//
// Presigned URLs are file:// URLs: useful for single-node deployments where
// the caller shares the filesystem, and for tests.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore creates a blob store rooted at dir, creating it when
// missing.
func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("blob directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve blob directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &FilesystemStore{root: abs}, nil
}

// Stat implements Store.
func (s *FilesystemStore) Stat(ctx context.Context, ref string) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat blob %q: %w", ref, err)
	}
	if fi.IsDir() {
		return nil, ErrNotFound
	}

	return &Info{
		Ref:        ref,
		Size:       fi.Size(),
		ModifiedAt: fi.ModTime(),
	}, nil
}

// PresignGet implements Store. The TTL is ignored; file URLs carry no
// expiry.
func (s *FilesystemStore) PresignGet(ctx context.Context, ref string, _ time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.resolve(ref)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to stat blob %q: %w", ref, err)
	}

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String(), nil
}

// Delete implements Store. Deleting a missing ref is not an error.
func (s *FilesystemStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %q: %w", ref, err)
	}
	return nil
}

// resolve maps a ref to an absolute path under the root, rejecting refs
// that would escape it.
func (s *FilesystemStore) resolve(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("blob ref is required")
	}
	if filepath.IsAbs(ref) {
		return "", fmt.Errorf("blob ref must be relative: %q", ref)
	}

	path := filepath.Join(s.root, filepath.FromSlash(ref))
	if path != s.root && !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("blob ref escapes the store root: %q", ref)
	}
	return path, nil
}
