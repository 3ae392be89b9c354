package logger

import "log/slog"

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so logs can be
// aggregated and queried.
const (
	// Distributed tracing
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// Request handling
	KeyRequestID = "request_id" // HTTP request ID
	KeyOperation = "operation"  // Registry operation name
	KeyClientIP  = "client_ip"  // Client IP address
	KeyStatus    = "status"     // HTTP status code
	KeyMethod    = "method"     // HTTP method
	KeyRoute     = "route"      // Matched route pattern

	// Ownership
	KeyOwner    = "owner"    // Owner ID the operation is scoped to
	KeyUsername = "username" // Username on auth operations

	// Folder and file records
	KeyPath         = "path"          // Folder path
	KeyParentPath   = "parent_path"   // Parent folder path
	KeyOldPath      = "old_path"      // Source path for rename/move operations
	KeyNewPath      = "new_path"      // Destination path for rename/move operations
	KeyName         = "name"          // Folder or stored file name
	KeyOriginalName = "original_name" // Upload filename before renaming
	KeyFileID       = "file_id"       // File record identifier
	KeySize         = "size"          // File size in bytes
	KeyMimeType     = "mime_type"     // File MIME type
	KeyQuery        = "query"         // Search query
	KeyEntries      = "entries"       // Number of listing/search results

	// Blob store
	KeyBlobRef = "blob_ref" // Blob reference in the content store
	KeyBucket  = "bucket"   // S3 bucket name
	KeyAttempt = "attempt"  // Name-collision retry attempt

	// Storage backends
	KeyBackend   = "backend"    // Store backend: memory, badger, sqlite, postgres
	KeyStorePath = "store_path" // Filesystem path of an embedded store

	// Sessions
	KeySessionState = "session_state" // Conversation session state

	// Operation metadata
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Store error code
)

// Field constructors for type safety.

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// RequestID returns a slog.Attr for the HTTP request ID
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Operation returns a slog.Attr for the operation name
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// ClientIP returns a slog.Attr for the client IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// Status returns a slog.Attr for an HTTP status code
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// Owner returns a slog.Attr for the owner ID
func Owner(id int64) slog.Attr {
	return slog.Int64(KeyOwner, id)
}

// Username returns a slog.Attr for a username
func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

// Path returns a slog.Attr for a folder path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// ParentPath returns a slog.Attr for a parent folder path
func ParentPath(p string) slog.Attr {
	return slog.String(KeyParentPath, p)
}

// OldPath returns a slog.Attr for the source path in rename/move operations
func OldPath(p string) slog.Attr {
	return slog.String(KeyOldPath, p)
}

// NewPath returns a slog.Attr for the destination path in rename/move operations
func NewPath(p string) slog.Attr {
	return slog.String(KeyNewPath, p)
}

// Name returns a slog.Attr for a folder or stored file name
func Name(name string) slog.Attr {
	return slog.String(KeyName, name)
}

// OriginalName returns a slog.Attr for an upload filename
func OriginalName(name string) slog.Attr {
	return slog.String(KeyOriginalName, name)
}

// FileID returns a slog.Attr for a file record identifier
func FileID(id string) slog.Attr {
	return slog.String(KeyFileID, id)
}

// Size returns a slog.Attr for a file size in bytes
func Size(s int64) slog.Attr {
	return slog.Int64(KeySize, s)
}

// MimeType returns a slog.Attr for a file MIME type
func MimeType(mt string) slog.Attr {
	return slog.String(KeyMimeType, mt)
}

// Query returns a slog.Attr for a search query
func Query(q string) slog.Attr {
	return slog.String(KeyQuery, q)
}

// Entries returns a slog.Attr for the number of listing/search results
func Entries(n int) slog.Attr {
	return slog.Int(KeyEntries, n)
}

// BlobRef returns a slog.Attr for a blob reference
func BlobRef(ref string) slog.Attr {
	return slog.String(KeyBlobRef, ref)
}

// Bucket returns a slog.Attr for an S3 bucket name
func Bucket(name string) slog.Attr {
	return slog.String(KeyBucket, name)
}

// Attempt returns a slog.Attr for a retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// Backend returns a slog.Attr for a store backend name
func Backend(name string) slog.Attr {
	return slog.String(KeyBackend, name)
}

// StorePath returns a slog.Attr for the filesystem path of an embedded store
func StorePath(p string) slog.Attr {
	return slog.String(KeyStorePath, p)
}

// SessionState returns a slog.Attr for a conversation session state
func SessionState(state string) slog.Attr {
	return slog.String(KeySessionState, state)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a store error code
func ErrorCode(code string) slog.Attr {
	return slog.String(KeyErrorCode, code)
}
