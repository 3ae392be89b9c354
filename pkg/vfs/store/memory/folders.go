package memory

import (
	"context"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// PutFolder implements vfs.Store.
func (s *MemoryStore) PutFolder(ctx context.Context, record *vfs.FolderRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	state := s.owner(record.OwnerID)
	path := record.Path()
	if _, exists := state.folders[path]; exists {
		return vfs.NewFolderExistsError(path)
	}

	state.folders[path] = copyFolder(record)
	state.folderSeq = append(state.folderSeq, path)
	return nil
}

// GetFolder implements vfs.Store.
func (s *MemoryStore) GetFolder(ctx context.Context, owner vfs.OwnerID, path string) (*vfs.FolderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	state, ok := s.ownerRead(owner)
	if !ok {
		return nil, vfs.NewFolderNotFoundError(path)
	}
	folder, exists := state.folders[path]
	if !exists {
		return nil, vfs.NewFolderNotFoundError(path)
	}
	return copyFolder(folder), nil
}

// ListFolders implements vfs.Store.
func (s *MemoryStore) ListFolders(ctx context.Context, owner vfs.OwnerID, parentPath string) ([]*vfs.FolderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	state, ok := s.ownerRead(owner)
	if !ok {
		return nil, nil
	}

	var result []*vfs.FolderRecord
	for _, path := range state.folderSeq {
		folder, exists := state.folders[path]
		if !exists {
			continue
		}
		if folder.ParentPath == parentPath {
			result = append(result, copyFolder(folder))
		}
	}
	return result, nil
}

// DeleteFolder implements vfs.Store.
func (s *MemoryStore) DeleteFolder(ctx context.Context, owner vfs.OwnerID, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	state, ok := s.ownerRead(owner)
	if !ok {
		return vfs.NewFolderNotFoundError(path)
	}
	if _, exists := state.folders[path]; !exists {
		return vfs.NewFolderNotFoundError(path)
	}
	delete(state.folders, path)
	state.folderSeq = dropSeqEntry(state.folderSeq, path)
	return nil
}

// RenameFolder implements vfs.Store. Descendant folder and file paths are
// rewritten in the same critical section, so the rename is atomic.
func (s *MemoryStore) RenameFolder(ctx context.Context, owner vfs.OwnerID, path, newName string) (*vfs.FolderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := vfs.ValidateName(newName); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	state, ok := s.ownerRead(owner)
	if !ok {
		return nil, vfs.NewFolderNotFoundError(path)
	}
	folder, exists := state.folders[path]
	if !exists {
		return nil, vfs.NewFolderNotFoundError(path)
	}

	newPath := vfs.JoinPath(folder.ParentPath, newName)
	if newPath == path {
		return copyFolder(folder), nil
	}
	if _, taken := state.folders[newPath]; taken {
		return nil, vfs.NewFolderExistsError(newPath)
	}

	renamed := copyFolder(folder)
	renamed.Name = newName
	delete(state.folders, path)
	state.folders[newPath] = renamed
	for i, p := range state.folderSeq {
		if p == path {
			state.folderSeq[i] = newPath
		}
	}

	// Rewrite descendant folder paths.
	oldPrefix := path + "/"
	newPrefix := newPath + "/"
	for i, p := range state.folderSeq {
		child, exists := state.folders[p]
		if !exists {
			continue
		}
		if rewritten, changed := rewritePrefix(child.ParentPath, path, newPath, oldPrefix, newPrefix); changed {
			child.ParentPath = rewritten
			childPath := child.Path()
			if childPath != p {
				delete(state.folders, p)
				state.folders[childPath] = child
				state.folderSeq[i] = childPath
			}
		}
	}

	// Rewrite file folder paths and their uniqueness keys.
	for _, id := range state.fileSeq {
		file, exists := state.files[id]
		if !exists {
			continue
		}
		if rewritten, changed := rewritePrefix(file.FolderPath, path, newPath, oldPrefix, newPrefix); changed {
			delete(state.fileKeys, fileKey(file.FolderPath, file.Name))
			file.FolderPath = rewritten
			state.fileKeys[fileKey(file.FolderPath, file.Name)] = id
		}
	}

	return copyFolder(renamed), nil
}

// rewritePrefix maps a path equal to oldPath, or nested under it, to the
// corresponding path under newPath.
func rewritePrefix(p, oldPath, newPath, oldPrefix, newPrefix string) (string, bool) {
	if p == oldPath {
		return newPath, true
	}
	if len(p) > len(oldPrefix) && p[:len(oldPrefix)] == oldPrefix {
		return newPrefix + p[len(oldPrefix):], true
	}
	return p, false
}

// CountFolderEntries implements vfs.Store.
func (s *MemoryStore) CountFolderEntries(ctx context.Context, owner vfs.OwnerID, path string) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return 0, 0, err
	}

	state, ok := s.ownerRead(owner)
	if !ok {
		return 0, 0, nil
	}

	folders := 0
	for _, folder := range state.folders {
		if folder.ParentPath == path {
			folders++
		}
	}
	files := 0
	for _, file := range state.files {
		if file.FolderPath == path {
			files++
		}
	}
	return folders, files, nil
}
