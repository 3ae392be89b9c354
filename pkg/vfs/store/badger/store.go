// Package badger provides a BadgerDB-backed Store implementation.
//
// BadgerDB gives Cabinet an embedded, durable key-value store with
// serializable transactions. Uniqueness checks run as check-then-insert
// inside db.Update transactions, additionally serialized by a per-owner
// directory mutex so concurrent conflicting inserts never both commit.
package badger

import (
	"context"
	"fmt"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

var _ vfs.Store = (*BadgerStore)(nil)

// BadgerStore is a BadgerDB implementation of vfs.Store.
type BadgerStore struct {
	db *badgerdb.DB

	// dirLocks serializes mutations under the same (owner, folder) key.
	// BadgerDB would detect the write conflict on commit, but taking the
	// lock up front turns retry loops into simple blocking.
	dirLocks sync.Map // string -> *sync.Mutex
}

// Options configures the badger store.
type Options struct {
	// Path is the directory for the BadgerDB value log and LSM tree.
	Path string

	// InMemory runs the store without touching disk. Used by tests.
	InMemory bool
}

// New opens (or creates) a BadgerDB store at the configured path.
//
// SyncWrites is enabled so every committed transaction is flushed to disk
// before the call returns; the store is the single source of truth and has
// no write-behind layer in front of it.
func New(opts Options) (*BadgerStore, error) {
	var badgerOpts badgerdb.Options
	if opts.InMemory {
		badgerOpts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, vfs.NewInvalidArgumentError("badger store path is required")
		}
		badgerOpts = badgerdb.DefaultOptions(opts.Path).WithSyncWrites(true)
	}
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badgerdb.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

// Close implements vfs.Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// HealthCheck implements vfs.Store. It verifies the database accepts read
// transactions.
func (s *BadgerStore) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return vfs.NewStorageUnavailableError(fmt.Errorf("badger store is closed"))
	}
	err := s.db.View(func(txn *badgerdb.Txn) error {
		return nil
	})
	if err != nil {
		return vfs.NewStorageUnavailableError(err)
	}
	return nil
}

// lockDir acquires the per-(owner, folder) mutex used to serialize
// conflicting inserts under the same parent.
func (s *BadgerStore) lockDir(key string) *sync.Mutex {
	mu, _ := s.dirLocks.LoadOrStore(key, &sync.Mutex{})
	dirMu := mu.(*sync.Mutex)
	dirMu.Lock()
	return dirMu
}

// unlockDir releases the per-directory mutex.
func (s *BadgerStore) unlockDir(mu *sync.Mutex) {
	mu.Unlock()
}

// wrapIOError converts raw badger failures to StorageUnavailable while
// passing typed StoreErrors and context errors through untouched.
func wrapIOError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*vfs.StoreError); ok {
		return err
	}
	if err == context.Canceled || err == context.DeadlineExceeded {
		return err
	}
	return vfs.NewStorageUnavailableError(err)
}
