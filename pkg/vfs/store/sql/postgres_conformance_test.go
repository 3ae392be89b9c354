//go:build integration

package sql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cabinetfs/cabinet/pkg/vfs"
	"github.com/cabinetfs/cabinet/pkg/vfs/store/sql"
	"github.com/cabinetfs/cabinet/pkg/vfs/storetest"
)

// Shared postgres container for all tests in this package.
var (
	pgHost string
	pgPort int
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "cabinet_test",
			"POSTGRES_USER":     "cabinet_test",
			"POSTGRES_PASSWORD": "cabinet_test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
			wait.ForListeningPort("5432/tcp"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		_ = container.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container port: %v\n", err)
		os.Exit(1)
	}

	pgHost = host
	pgPort = port.Int()

	exitCode := m.Run()

	if err := container.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to terminate container: %v\n", err)
	}

	os.Exit(exitCode)
}

func TestConformancePostgres(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) vfs.Store {
		store, err := sql.New(&sql.Config{
			Type: sql.DatabaseTypePostgres,
			Postgres: sql.PostgresConfig{
				Host:     pgHost,
				Port:     pgPort,
				Database: "cabinet_test",
				User:     "cabinet_test",
				Password: "cabinet_test",
				SSLMode:  "disable",
			},
		})
		if err != nil {
			t.Fatalf("sql.New() failed: %v", err)
		}
		// Each test gets a clean slate in the shared database.
		if err := store.DB().Exec("TRUNCATE folders, files").Error; err != nil {
			t.Fatalf("failed to truncate tables: %v", err)
		}
		t.Cleanup(func() {
			store.Close()
		})
		return store
	})
}
