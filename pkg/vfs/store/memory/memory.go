// Package memory provides an in-memory Store implementation.
//
// The memory store is used for tests and ephemeral development setups. It
// holds everything under a single RWMutex, which trivially provides the
// per-key atomicity the Store contract requires: conflicting inserts
// serialize on the lock and the loser observes the conflict.
//
// Listings preserve insertion order, which satisfies the "stable within a
// process run" ordering guarantee.
package memory

import (
	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// ownerState holds one owner's records. Separate per-owner maps keep lookups
// scoped the same way the uniqueness invariants are.
type ownerState struct {
	// folders keyed by the folder's own normalized path.
	folders map[string]*vfs.FolderRecord

	// folderSeq records folder insertion order (paths).
	folderSeq []string

	// files keyed by local ID.
	files map[string]*vfs.FileRecord

	// fileKeys maps the (folder_path, name) uniqueness key to the file ID.
	fileKeys map[string]string

	// fileSeq records file insertion order (IDs).
	fileSeq []string
}

func newOwnerState() *ownerState {
	return &ownerState{
		folders:  make(map[string]*vfs.FolderRecord),
		files:    make(map[string]*vfs.FileRecord),
		fileKeys: make(map[string]string),
	}
}

func fileKey(folderPath, name string) string {
	return folderPath + "\x00" + name
}
