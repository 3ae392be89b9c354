package config

import (
	"context"
	"fmt"

	"github.com/cabinetfs/cabinet/pkg/blob"
	"github.com/cabinetfs/cabinet/pkg/vfs"
	badgerstore "github.com/cabinetfs/cabinet/pkg/vfs/store/badger"
	"github.com/cabinetfs/cabinet/pkg/vfs/store/memory"
	sqlstore "github.com/cabinetfs/cabinet/pkg/vfs/store/sql"
)

// CreateStore creates the metadata store selected by the configuration.
func (c *Config) CreateStore() (vfs.Store, error) {
	switch c.Store.Type {
	case StoreTypeMemory:
		return memory.New(), nil

	case StoreTypeBadger:
		store, err := badgerstore.New(badgerstore.Options{
			Path: c.Store.Badger.Path,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		return store, nil

	case StoreTypeSQLite:
		store, err := sqlstore.New(&sqlstore.Config{
			Type:   sqlstore.DatabaseTypeSQLite,
			SQLite: c.Store.SQLite,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, nil

	case StoreTypePostgres:
		store, err := sqlstore.New(&sqlstore.Config{
			Type:     sqlstore.DatabaseTypePostgres,
			Postgres: c.Store.Postgres,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported store type: %s", c.Store.Type)
	}
}

// CreateBlobStore creates the content blob store selected by the configuration.
func (c *Config) CreateBlobStore(ctx context.Context) (blob.Store, error) {
	switch c.Blob.Type {
	case BlobTypeFilesystem:
		store, err := blob.NewFilesystemStore(c.Blob.Filesystem.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open filesystem blob store: %w", err)
		}
		return store, nil

	case BlobTypeS3:
		store, err := blob.NewS3Store(ctx, blob.S3Config{
			Endpoint:        c.Blob.S3.Endpoint,
			Region:          c.Blob.S3.Region,
			Bucket:          c.Blob.S3.Bucket,
			KeyPrefix:       c.Blob.S3.KeyPrefix,
			AccessKeyID:     c.Blob.S3.AccessKeyID,
			SecretAccessKey: c.Blob.S3.SecretAccessKey,
			ForcePathStyle:  c.Blob.S3.ForcePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to s3: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported blob store type: %s", c.Blob.Type)
	}
}
