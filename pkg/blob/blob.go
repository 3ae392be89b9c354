// Package blob defines the external content-store collaborator. Cabinet
// records metadata only; the bytes behind a FileRecord live in a blob store
// addressed by an opaque ref. Front ends resolve uploads before calling the
// registry, and the download endpoint asks this package for a fetch URL.
package blob

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a ref does not resolve to a stored object.
var ErrNotFound = errors.New("blob not found")

// Info describes one stored object.
type Info struct {
	// Ref is the opaque reference the object was looked up by.
	Ref string

	// Size is the content size in bytes.
	Size int64

	// ModifiedAt is the last modification time, when the backend tracks it.
	ModifiedAt time.Time
}

// Store is the content-store collaborator interface. Implementations must be
// safe for concurrent use.
type Store interface {
	// Stat returns metadata for the object behind ref, or ErrNotFound.
	Stat(ctx context.Context, ref string) (*Info, error)

	// PresignGet returns a URL from which the object can be fetched for
	// the given duration without further credentials.
	PresignGet(ctx context.Context, ref string, ttl time.Duration) (string, error)

	// Delete removes the object. Deleting a missing ref is not an error.
	Delete(ctx context.Context, ref string) error
}
