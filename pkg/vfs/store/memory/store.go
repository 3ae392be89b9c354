package memory

import (
	"context"
	"sync"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

var _ vfs.Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory implementation of vfs.Store.
type MemoryStore struct {
	mu     sync.RWMutex
	owners map[vfs.OwnerID]*ownerState
	closed bool
}

// New creates an empty in-memory store.
func New() *MemoryStore {
	return &MemoryStore{
		owners: make(map[vfs.OwnerID]*ownerState),
	}
}

// owner returns the state for an owner, creating it on first use.
// Callers must hold the write lock.
func (s *MemoryStore) owner(id vfs.OwnerID) *ownerState {
	state, ok := s.owners[id]
	if !ok {
		state = newOwnerState()
		s.owners[id] = state
	}
	return state
}

// ownerRead returns the state for an owner without creating it.
// Callers must hold at least the read lock.
func (s *MemoryStore) ownerRead(id vfs.OwnerID) (*ownerState, bool) {
	state, ok := s.owners[id]
	return state, ok
}

// HealthCheck implements vfs.Store. The memory store is healthy until closed.
func (s *MemoryStore) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return vfs.NewStorageUnavailableError(errClosed)
	}
	return nil
}

// Close implements vfs.Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.owners = nil
	return nil
}

// checkOpen reports StorageUnavailable after Close. Callers must hold a lock.
func (s *MemoryStore) checkOpen() error {
	if s.closed {
		return vfs.NewStorageUnavailableError(errClosed)
	}
	return nil
}

type closedError struct{}

func (closedError) Error() string { return "store is closed" }

var errClosed = closedError{}

// dropSeqEntry removes a key from an insertion-order slice. Entries are
// unique, so the scan stops at the first hit.
func dropSeqEntry(seq []string, key string) []string {
	for i, v := range seq {
		if v == key {
			return append(seq[:i], seq[i+1:]...)
		}
	}
	return seq
}

func copyFolder(r *vfs.FolderRecord) *vfs.FolderRecord {
	c := *r
	return &c
}

func copyFile(r *vfs.FileRecord) *vfs.FileRecord {
	c := *r
	return &c
}
