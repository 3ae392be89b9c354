package metrics

import (
	"context"
	"time"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// StoreMetrics records metadata store operations.
//
// A nil StoreMetrics is valid and records nothing; callers go through
// ObserveOp which handles the nil case.
type StoreMetrics interface {
	// ObserveOp records one store operation with its outcome and duration.
	ObserveOp(op string, err error, duration time.Duration)
}

// NewStoreMetrics creates a new Prometheus-backed StoreMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called) or the
// prometheus subpackage was never imported. When nil is returned, the
// instrumented store degrades to a transparent passthrough.
func NewStoreMetrics() StoreMetrics {
	if !IsEnabled() || newPrometheusStoreMetrics == nil {
		return nil
	}
	return newPrometheusStoreMetrics()
}

// newPrometheusStoreMetrics is implemented in pkg/metrics/prometheus.
// This indirection avoids import cycles while keeping the API clean.
var newPrometheusStoreMetrics func() StoreMetrics

// RegisterStoreMetricsConstructor registers the Prometheus store metrics
// constructor. Called by pkg/metrics/prometheus during package
// initialization.
func RegisterStoreMetricsConstructor(constructor func() StoreMetrics) {
	newPrometheusStoreMetrics = constructor
}

// ObserveOp records a store operation, tolerating a nil StoreMetrics.
func ObserveOp(m StoreMetrics, op string, err error, duration time.Duration) {
	if m != nil {
		m.ObserveOp(op, err, duration)
	}
}

// InstrumentStore wraps a vfs.Store so every operation is recorded. When m
// is nil the store is returned unwrapped.
func InstrumentStore(store vfs.Store, m StoreMetrics) vfs.Store {
	if m == nil {
		return store
	}
	return &instrumentedStore{store: store, metrics: m}
}

type instrumentedStore struct {
	store   vfs.Store
	metrics StoreMetrics
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	s.metrics.ObserveOp(op, err, time.Since(start))
}

func (s *instrumentedStore) PutFolder(ctx context.Context, record *vfs.FolderRecord) error {
	start := time.Now()
	err := s.store.PutFolder(ctx, record)
	s.observe("put_folder", start, err)
	return err
}

func (s *instrumentedStore) GetFolder(ctx context.Context, owner vfs.OwnerID, path string) (*vfs.FolderRecord, error) {
	start := time.Now()
	record, err := s.store.GetFolder(ctx, owner, path)
	s.observe("get_folder", start, err)
	return record, err
}

func (s *instrumentedStore) ListFolders(ctx context.Context, owner vfs.OwnerID, parentPath string) ([]*vfs.FolderRecord, error) {
	start := time.Now()
	records, err := s.store.ListFolders(ctx, owner, parentPath)
	s.observe("list_folders", start, err)
	return records, err
}

func (s *instrumentedStore) DeleteFolder(ctx context.Context, owner vfs.OwnerID, path string) error {
	start := time.Now()
	err := s.store.DeleteFolder(ctx, owner, path)
	s.observe("delete_folder", start, err)
	return err
}

func (s *instrumentedStore) RenameFolder(ctx context.Context, owner vfs.OwnerID, path, newName string) (*vfs.FolderRecord, error) {
	start := time.Now()
	record, err := s.store.RenameFolder(ctx, owner, path, newName)
	s.observe("rename_folder", start, err)
	return record, err
}

func (s *instrumentedStore) PutFile(ctx context.Context, record *vfs.FileRecord) error {
	start := time.Now()
	err := s.store.PutFile(ctx, record)
	s.observe("put_file", start, err)
	return err
}

func (s *instrumentedStore) GetFile(ctx context.Context, owner vfs.OwnerID, id string) (*vfs.FileRecord, error) {
	start := time.Now()
	record, err := s.store.GetFile(ctx, owner, id)
	s.observe("get_file", start, err)
	return record, err
}

func (s *instrumentedStore) ListFiles(ctx context.Context, owner vfs.OwnerID, folderPath string) ([]*vfs.FileRecord, error) {
	start := time.Now()
	records, err := s.store.ListFiles(ctx, owner, folderPath)
	s.observe("list_files", start, err)
	return records, err
}

func (s *instrumentedStore) SearchFiles(ctx context.Context, owner vfs.OwnerID, query string) ([]*vfs.FileRecord, error) {
	start := time.Now()
	records, err := s.store.SearchFiles(ctx, owner, query)
	s.observe("search_files", start, err)
	return records, err
}

func (s *instrumentedStore) UpdateFile(ctx context.Context, record *vfs.FileRecord) error {
	start := time.Now()
	err := s.store.UpdateFile(ctx, record)
	s.observe("update_file", start, err)
	return err
}

func (s *instrumentedStore) DeleteFile(ctx context.Context, owner vfs.OwnerID, id string) error {
	start := time.Now()
	err := s.store.DeleteFile(ctx, owner, id)
	s.observe("delete_file", start, err)
	return err
}

func (s *instrumentedStore) CountFolderEntries(ctx context.Context, owner vfs.OwnerID, path string) (folders, files int, err error) {
	start := time.Now()
	folders, files, err = s.store.CountFolderEntries(ctx, owner, path)
	s.observe("count_folder_entries", start, err)
	return folders, files, err
}

func (s *instrumentedStore) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := s.store.HealthCheck(ctx)
	s.observe("health_check", start, err)
	return err
}

func (s *instrumentedStore) Close() error {
	return s.store.Close()
}
