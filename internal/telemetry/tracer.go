package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for virtual filesystem operations.
// These follow OpenTelemetry semantic conventions where applicable.
// Filesystem keys use the "fs." prefix, backend-specific keys use their own.
const (
	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	// ========================================================================
	// Filesystem attributes
	// ========================================================================
	AttrOwner        = "fs.owner"         // Owning principal of the namespace
	AttrOperation    = "fs.operation"     // Generic operation name
	AttrPath         = "fs.path"          // Folder path
	AttrParentPath   = "fs.parent_path"   // Parent folder path
	AttrName         = "fs.name"          // Entry name (basename)
	AttrOriginalName = "fs.original_name" // Name the file was uploaded with
	AttrSize         = "fs.size"          // File size in bytes
	AttrMimeType     = "fs.mime_type"     // File MIME type
	AttrEntries      = "fs.entries"       // Number of entries returned
	AttrQuery        = "fs.query"         // Search query

	// ========================================================================
	// File attributes
	// ========================================================================
	AttrFileID = "file.id"

	// ========================================================================
	// User/Auth attributes
	// ========================================================================
	AttrUsername = "user.name"
	AttrAuth     = "auth.method"

	// ========================================================================
	// Session attributes
	// ========================================================================
	AttrSessionState = "session.state"

	// ========================================================================
	// Storage backend attributes
	// ========================================================================
	AttrBlobRef      = "blob.ref"
	AttrStoreBackend = "store.backend" // memory, badger, sqlite, postgres
	AttrBucket       = "storage.bucket"
	AttrKey          = "storage.key"
	AttrRegion       = "storage.region"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	// ========================================================================
	// Registry spans (folder and file semantics)
	// ========================================================================
	SpanRegistryCreateFolder = "registry.create_folder"
	SpanRegistryGetFolder    = "registry.get_folder"
	SpanRegistryListFolders  = "registry.list_folders"
	SpanRegistryDeleteFolder = "registry.delete_folder"
	SpanRegistryRenameFolder = "registry.rename_folder"
	SpanRegistryRegisterFile = "registry.register_file"
	SpanRegistryGetFile      = "registry.get_file"
	SpanRegistryListFiles    = "registry.list_files"
	SpanRegistrySearchFiles  = "registry.search_files"
	SpanRegistryRenameFile   = "registry.rename_file"
	SpanRegistryMoveFile     = "registry.move_file"
	SpanRegistryDeleteFile   = "registry.delete_file"

	// ========================================================================
	// Metadata store spans
	// ========================================================================
	SpanStorePutFolder = "store.put_folder"
	SpanStoreGetFolder = "store.get_folder"
	SpanStorePutFile   = "store.put_file"
	SpanStoreGetFile   = "store.get_file"
	SpanStoreSearch    = "store.search_files"
	SpanStoreHealth    = "store.health_check"

	// ========================================================================
	// Blob store spans
	// ========================================================================
	SpanBlobStat    = "blob.stat"
	SpanBlobPresign = "blob.presign"
	SpanBlobDelete  = "blob.delete"

	// ========================================================================
	// Session spans
	// ========================================================================
	SpanSessionBegin  = "session.begin"
	SpanSessionUpdate = "session.update"
	SpanSessionEnd    = "session.end"
	SpanSessionSweep  = "session.sweep"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// Owner returns an attribute for the owning principal
func Owner(owner int64) attribute.KeyValue {
	return attribute.Int64(AttrOwner, owner)
}

// FSOperation returns an attribute for filesystem operation name
func FSOperation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// FSPath returns an attribute for folder path
func FSPath(path string) attribute.KeyValue {
	return attribute.String(AttrPath, path)
}

// ParentPath returns an attribute for parent folder path
func ParentPath(path string) attribute.KeyValue {
	return attribute.String(AttrParentPath, path)
}

// Name returns an attribute for entry name
func Name(name string) attribute.KeyValue {
	return attribute.String(AttrName, name)
}

// OriginalName returns an attribute for the uploaded file name
func OriginalName(name string) attribute.KeyValue {
	return attribute.String(AttrOriginalName, name)
}

// Size returns an attribute for file size
func Size(size int64) attribute.KeyValue {
	return attribute.Int64(AttrSize, size)
}

// MimeType returns an attribute for file MIME type
func MimeType(mime string) attribute.KeyValue {
	return attribute.String(AttrMimeType, mime)
}

// Entries returns an attribute for the number of entries returned
func Entries(n int) attribute.KeyValue {
	return attribute.Int(AttrEntries, n)
}

// Query returns an attribute for a search query
func Query(q string) attribute.KeyValue {
	return attribute.String(AttrQuery, q)
}

// FileID returns an attribute for a file record ID
func FileID(id string) attribute.KeyValue {
	return attribute.String(AttrFileID, id)
}

// Username returns an attribute for username
func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

// AuthMethod returns an attribute for authentication method
func AuthMethod(method string) attribute.KeyValue {
	return attribute.String(AttrAuth, method)
}

// SessionState returns an attribute for dialogue session state
func SessionState(state string) attribute.KeyValue {
	return attribute.String(AttrSessionState, state)
}

// BlobRef returns an attribute for a blob reference
func BlobRef(ref string) attribute.KeyValue {
	return attribute.String(AttrBlobRef, ref)
}

// StoreBackend returns an attribute for the metadata store backend
func StoreBackend(backend string) attribute.KeyValue {
	return attribute.String(AttrStoreBackend, backend)
}

// Bucket returns an attribute for S3 bucket name
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for S3 object key
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// Region returns an attribute for cloud region
func Region(region string) attribute.KeyValue {
	return attribute.String(AttrRegion, region)
}

// StartRegistrySpan starts a span for a registry operation.
// This is a convenience function that sets common attributes.
func StartRegistrySpan(ctx context.Context, operation string, owner int64, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Owner(owner),
		FSOperation(operation),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "registry."+operation, trace.WithAttributes(allAttrs...))
}

// StartStoreSpan starts a span for a metadata store operation.
func StartStoreSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "store."+operation, trace.WithAttributes(attrs...))
}

// StartBlobSpan starts a span for a blob store operation.
func StartBlobSpan(ctx context.Context, operation string, ref string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		BlobRef(ref),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "blob."+operation, trace.WithAttributes(allAttrs...))
}

// StartSessionSpan starts a span for a dialogue session operation.
func StartSessionSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "session."+operation, trace.WithAttributes(attrs...))
}
