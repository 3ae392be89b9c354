package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "cabinet", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// Should be able to call shutdown without error
	err = shutdown(ctx)
	assert.NoError(t, err)

	// Should not be enabled
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	// Reset state
	tracer = nil
	enabled = false

	// Without initialization, should return no-op tracer
	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	// Even without initialization, StartSpan should work (no-op)
	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)

	// Should be able to end the span
	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()

	// Should return a span even without active span
	span := SpanFromContext(ctx)
	require.NotNil(t, span)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	// Should not panic with no active span
	require.NotPanics(t, func() {
		AddEvent(ctx, "test.event")
	})
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()

	// Should not panic with nil error
	require.NotPanics(t, func() {
		RecordError(ctx, nil)
	})

	// Should not panic with error
	require.NotPanics(t, func() {
		RecordError(ctx, errors.New("test error"))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Ok, "success")
	})

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Error, "failed")
	})
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetAttributes(ctx, ClientIP("192.168.1.1"))
	})
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	traceID := TraceID(ctx)
	assert.Equal(t, "", traceID)
}

func TestSpanID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	spanID := SpanID(ctx)
	assert.Equal(t, "", spanID)
}

func TestAttributeHelpers(t *testing.T) {
	t.Run("ClientIP", func(t *testing.T) {
		attr := ClientIP("192.168.1.100")
		assert.Equal(t, AttrClientIP, string(attr.Key))
		assert.Equal(t, "192.168.1.100", attr.Value.AsString())
	})

	t.Run("ClientAddr", func(t *testing.T) {
		attr := ClientAddr("192.168.1.100:12345")
		assert.Equal(t, AttrClientAddr, string(attr.Key))
		assert.Equal(t, "192.168.1.100:12345", attr.Value.AsString())
	})

	t.Run("Owner", func(t *testing.T) {
		attr := Owner(42)
		assert.Equal(t, AttrOwner, string(attr.Key))
		assert.Equal(t, int64(42), attr.Value.AsInt64())
	})

	t.Run("FSPath", func(t *testing.T) {
		attr := FSPath("/docs/reports")
		assert.Equal(t, AttrPath, string(attr.Key))
		assert.Equal(t, "/docs/reports", attr.Value.AsString())
	})

	t.Run("ParentPath", func(t *testing.T) {
		attr := ParentPath("/docs")
		assert.Equal(t, AttrParentPath, string(attr.Key))
		assert.Equal(t, "/docs", attr.Value.AsString())
	})

	t.Run("Name", func(t *testing.T) {
		attr := Name("reports")
		assert.Equal(t, AttrName, string(attr.Key))
		assert.Equal(t, "reports", attr.Value.AsString())
	})

	t.Run("OriginalName", func(t *testing.T) {
		attr := OriginalName("invoice.pdf")
		assert.Equal(t, AttrOriginalName, string(attr.Key))
		assert.Equal(t, "invoice.pdf", attr.Value.AsString())
	})

	t.Run("Size", func(t *testing.T) {
		attr := Size(1048576)
		assert.Equal(t, AttrSize, string(attr.Key))
		assert.Equal(t, int64(1048576), attr.Value.AsInt64())
	})

	t.Run("MimeType", func(t *testing.T) {
		attr := MimeType("application/pdf")
		assert.Equal(t, AttrMimeType, string(attr.Key))
		assert.Equal(t, "application/pdf", attr.Value.AsString())
	})

	t.Run("Entries", func(t *testing.T) {
		attr := Entries(7)
		assert.Equal(t, AttrEntries, string(attr.Key))
		assert.Equal(t, int64(7), attr.Value.AsInt64())
	})

	t.Run("Query", func(t *testing.T) {
		attr := Query("invoice")
		assert.Equal(t, AttrQuery, string(attr.Key))
		assert.Equal(t, "invoice", attr.Value.AsString())
	})

	t.Run("FileID", func(t *testing.T) {
		attr := FileID("file-123")
		assert.Equal(t, AttrFileID, string(attr.Key))
		assert.Equal(t, "file-123", attr.Value.AsString())
	})

	t.Run("Username", func(t *testing.T) {
		attr := Username("alice")
		assert.Equal(t, AttrUsername, string(attr.Key))
		assert.Equal(t, "alice", attr.Value.AsString())
	})

	t.Run("SessionState", func(t *testing.T) {
		attr := SessionState("awaiting_name")
		assert.Equal(t, AttrSessionState, string(attr.Key))
		assert.Equal(t, "awaiting_name", attr.Value.AsString())
	})

	t.Run("BlobRef", func(t *testing.T) {
		attr := BlobRef("blobs/ab/cdef")
		assert.Equal(t, AttrBlobRef, string(attr.Key))
		assert.Equal(t, "blobs/ab/cdef", attr.Value.AsString())
	})

	t.Run("StoreBackend", func(t *testing.T) {
		attr := StoreBackend("sqlite")
		assert.Equal(t, AttrStoreBackend, string(attr.Key))
		assert.Equal(t, "sqlite", attr.Value.AsString())
	})

	t.Run("Bucket", func(t *testing.T) {
		attr := Bucket("my-bucket")
		assert.Equal(t, AttrBucket, string(attr.Key))
		assert.Equal(t, "my-bucket", attr.Value.AsString())
	})

	t.Run("StorageKey", func(t *testing.T) {
		attr := StorageKey("path/to/object")
		assert.Equal(t, AttrKey, string(attr.Key))
		assert.Equal(t, "path/to/object", attr.Value.AsString())
	})
}

func TestStartRegistrySpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartRegistrySpan(ctx, "create_folder", 1, FSPath("/docs"))
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// Without additional attributes
	newCtx2, span2 := StartRegistrySpan(ctx, "list_folders", 2)
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartStoreSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartStoreSpan(ctx, "put_folder")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartStoreSpan(ctx, "get_file", StoreBackend("badger"))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartBlobSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartBlobSpan(ctx, "presign", "blobs/ab/cdef")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartBlobSpan(ctx, "stat", "blobs/ab/cdef", Bucket("cabinet-blobs"))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}
