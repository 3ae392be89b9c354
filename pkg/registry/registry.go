// Package registry implements the folder and file registries: the
// orchestration layer between front ends (bot, CLI, HTTP API) and the
// metadata store.
//
// The registries validate paths, enforce hierarchy rules (parents must
// exist, the root is implicit), and generate collision-resistant stored
// names for uploads. They never touch file bytes; content lives in an
// external blob store referenced by FileRecord.BlobRef.
//
// Example usage:
//
//	store, _ := badger.New(badger.Options{Path: dbPath})
//	reg := registry.New(store)
//	folder, err := reg.CreateFolder(ctx, owner, "/", "Photos")
package registry

import (
	"time"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// Registry exposes the folder and file operations over a metadata store.
// It is stateless apart from the store handle and safe for concurrent use.
type Registry struct {
	store vfs.Store

	// now is the clock used for record timestamps and stored-name
	// prefixes. Overridable in tests.
	now func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the registry clock. Used by tests that need
// deterministic stored names.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// New creates a registry over the given store.
func New(store vfs.Store, opts ...Option) *Registry {
	r := &Registry{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the underlying metadata store. Useful for health checks.
func (r *Registry) Store() vfs.Store {
	return r.store
}
