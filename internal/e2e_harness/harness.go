package e2e_harness

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/lychee-technology/rowmap"
	"github.com/lychee-technology/rowmap/internal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	s3AccessKey = "rustfs"
	s3SecretKey = "rustfs-secret"
)

// TestHarness holds lightweight runners for dependencies used by E2E tests.
type TestHarness struct {
	PGContainer testcontainers.Container
	PGConfig    rowmap.DatabaseConfig
	PGDB        *sql.DB
	S3Container testcontainers.Container
	S3Config    rowmap.ExportConfig
	Duck        *internal.DuckDBClient
}

// StartPostgres starts a postgres container and opens a lib/pq handle to it.
// Caller is responsible for calling StopPostgres.
func (h *TestHarness) StartPostgres(ctx context.Context) (rowmap.DatabaseConfig, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return rowmap.DatabaseConfig{}, err
	}
	h.PGContainer = container

	host, err := container.Host(ctx)
	if err != nil {
		return rowmap.DatabaseConfig{}, err
	}
	mapped, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return rowmap.DatabaseConfig{}, err
	}
	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		return rowmap.DatabaseConfig{}, err
	}

	cfg := rowmap.DefaultConfig().Database
	cfg.Host = host
	cfg.Port = port
	cfg.Database = "postgres"
	cfg.Username = "postgres"
	cfg.Password = "password"
	h.PGConfig = cfg

	// The listening port opens before Postgres accepts queries.
	deadline := time.Now().Add(20 * time.Second)
	for {
		db, err := internal.OpenPostgresDB(ctx, cfg, cfg.Password)
		if err == nil {
			h.PGDB = db
			return cfg, nil
		}
		if time.Now().After(deadline) {
			return rowmap.DatabaseConfig{}, fmt.Errorf("postgres did not become ready: %w", err)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// StopPostgres stops the Postgres container and closes DB handle.
func (h *TestHarness) StopPostgres(ctx context.Context) error {
	if h.PGDB != nil {
		h.PGDB.Close()
		h.PGDB = nil
	}
	if h.PGContainer != nil {
		if err := h.PGContainer.Terminate(ctx); err != nil {
			return err
		}
		h.PGContainer = nil
	}
	return nil
}

// StartS3 starts a RustFS container and returns an export config pointing at it.
func (h *TestHarness) StartS3(ctx context.Context, bucket string) (rowmap.ExportConfig, error) {
	req := testcontainers.ContainerRequest{
		Image:        "rustfs/rustfs:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"RUSTFS_ACCESS_KEY": s3AccessKey,
			"RUSTFS_SECRET_KEY": s3SecretKey,
		},
		WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return rowmap.ExportConfig{}, err
	}
	h.S3Container = container
	host, err := container.Host(ctx)
	if err != nil {
		return rowmap.ExportConfig{}, err
	}
	mapped, err := container.MappedPort(ctx, "9000")
	if err != nil {
		return rowmap.ExportConfig{}, err
	}

	h.S3Config = rowmap.ExportConfig{
		Bucket:          bucket,
		Prefix:          "e2e",
		Region:          "us-east-1",
		Endpoint:        fmt.Sprintf("http://%s:%s", host, mapped.Port()),
		AccessKeyID:     s3AccessKey,
		SecretAccessKey: s3SecretKey,
		UsePathStyle:    true,
		CreateBucket:    true,
		ValidateRecord:  true,
	}
	return h.S3Config, nil
}

// StopS3 stops the RustFS container.
func (h *TestHarness) StopS3(ctx context.Context) error {
	if h.S3Container != nil {
		if err := h.S3Container.Terminate(ctx); err != nil {
			return err
		}
		h.S3Container = nil
	}
	return nil
}

// StartDuckDB opens an in-memory DuckDB client.
func (h *TestHarness) StartDuckDB(ctx context.Context) error {
	cfg := rowmap.DefaultConfig().DuckDB
	c, err := internal.NewDuckDBClient(ctx, cfg)
	if err != nil {
		return err
	}
	h.Duck = c
	return nil
}

// StopDuckDB closes the duckdb client.
func (h *TestHarness) StopDuckDB() error {
	if h.Duck != nil {
		if err := h.Duck.Close(); err != nil {
			return err
		}
		h.Duck = nil
	}
	return nil
}
