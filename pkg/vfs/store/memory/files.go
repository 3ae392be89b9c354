package memory

import (
	"context"
	"strings"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// PutFile implements vfs.Store.
func (s *MemoryStore) PutFile(ctx context.Context, record *vfs.FileRecord) error {
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
	key := fileKey(record.FolderPath, record.Name)
	if _, exists := state.fileKeys[key]; exists {
		return vfs.NewAlreadyExistsError(vfs.JoinPath(record.FolderPath, record.Name))
	}
	id := record.ID.String()
	if _, exists := state.files[id]; exists {
		return vfs.NewAlreadyExistsError(id)
	}

	state.files[id] = copyFile(record)
	state.fileKeys[key] = id
	state.fileSeq = append(state.fileSeq, id)
	return nil
}

// GetFile implements vfs.Store.
func (s *MemoryStore) GetFile(ctx context.Context, owner vfs.OwnerID, id string) (*vfs.FileRecord, error) {
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
		return nil, vfs.NewNotFoundError(id, "file")
	}
	file, exists := state.files[id]
	if !exists {
		return nil, vfs.NewNotFoundError(id, "file")
	}
	return copyFile(file), nil
}

// ListFiles implements vfs.Store.
func (s *MemoryStore) ListFiles(ctx context.Context, owner vfs.OwnerID, folderPath string) ([]*vfs.FileRecord, error) {
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

	var result []*vfs.FileRecord
	for _, id := range state.fileSeq {
		file, exists := state.files[id]
		if !exists {
			continue
		}
		if file.FolderPath == folderPath {
			result = append(result, copyFile(file))
		}
	}
	return result, nil
}

// SearchFiles implements vfs.Store.
func (s *MemoryStore) SearchFiles(ctx context.Context, owner vfs.OwnerID, query string) ([]*vfs.FileRecord, error) {
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

	needle := strings.ToLower(query)
	var result []*vfs.FileRecord
	for _, id := range state.fileSeq {
		file, exists := state.files[id]
		if !exists {
			continue
		}
		if strings.Contains(strings.ToLower(file.Name), needle) ||
			strings.Contains(strings.ToLower(file.OriginalName), needle) {
			result = append(result, copyFile(file))
		}
	}
	return result, nil
}

// UpdateFile implements vfs.Store.
func (s *MemoryStore) UpdateFile(ctx context.Context, record *vfs.FileRecord) error {
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

	state, ok := s.ownerRead(record.OwnerID)
	if !ok {
		return vfs.NewNotFoundError(record.ID.String(), "file")
	}
	id := record.ID.String()
	existing, exists := state.files[id]
	if !exists {
		return vfs.NewNotFoundError(id, "file")
	}

	newKey := fileKey(record.FolderPath, record.Name)
	oldKey := fileKey(existing.FolderPath, existing.Name)
	if newKey != oldKey {
		if _, taken := state.fileKeys[newKey]; taken {
			return vfs.NewAlreadyExistsError(vfs.JoinPath(record.FolderPath, record.Name))
		}
		delete(state.fileKeys, oldKey)
		state.fileKeys[newKey] = id
	}

	state.files[id] = copyFile(record)
	return nil
}

// DeleteFile implements vfs.Store.
func (s *MemoryStore) DeleteFile(ctx context.Context, owner vfs.OwnerID, id string) error {
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
		return vfs.NewNotFoundError(id, "file")
	}
	file, exists := state.files[id]
	if !exists {
		return vfs.NewNotFoundError(id, "file")
	}
	delete(state.fileKeys, fileKey(file.FolderPath, file.Name))
	delete(state.files, id)
	state.fileSeq = dropSeqEntry(state.fileSeq, id)
	return nil
}
