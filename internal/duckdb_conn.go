package internal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/lychee-technology/rowmap"
	"go.uber.org/zap"
)

// DuckDBClient wraps a database/sql DB opened with the DuckDB driver.
type DuckDBClient struct {
	DB  *sql.DB
	cfg rowmap.DuckDBConfig
}

// ValidateDuckDBConfig performs basic sanity checks on user-provided DuckDB configuration.
func ValidateDuckDBConfig(cfg rowmap.DuckDBConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.MemoryLimitMB < 0 {
		return fmt.Errorf("invalid memoryLimitMB: must be >= 0")
	}
	if cfg.MaxParallelism < 0 {
		return fmt.Errorf("invalid maxParallelism: must be >= 0")
	}
	if cfg.MaxConnections < 1 {
		return fmt.Errorf("maxConnections must be >= 1")
	}
	if cfg.QueryTimeout <= 0 {
		return fmt.Errorf("queryTimeout must be > 0")
	}
	return nil
}

// NewDuckDBClient opens DuckDB (in-memory when DBPath is empty) and applies the configured pragmas.
func NewDuckDBClient(ctx context.Context, cfg rowmap.DuckDBConfig) (*DuckDBClient, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("duckdb disabled in config")
	}
	if err := ValidateDuckDBConfig(cfg); err != nil {
		return nil, err
	}

	dsn := cfg.DBPath
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	db.SetMaxOpenConns(1)
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	for _, ext := range cfg.Extensions {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("INSTALL %s;", ext)); err != nil {
			zap.S().Warnw("duckdb: install extension failed", "extension", ext, "err", err)
			continue
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf("LOAD %s;", ext)); err != nil {
			zap.S().Warnw("duckdb: load extension failed", "extension", ext, "err", err)
		}
	}

	if cfg.MemoryLimitMB > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA memory_limit='%dMB';", cfg.MemoryLimitMB)); err != nil {
			zap.S().Warnw("duckdb: set memory_limit failed", "err", err, "memoryLimitMB", cfg.MemoryLimitMB)
		}
	}
	if cfg.MaxParallelism > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA threads=%d;", cfg.MaxParallelism)); err != nil {
			zap.S().Warnw("duckdb: set threads failed", "err", err, "maxParallelism", cfg.MaxParallelism)
		}
	}

	return &DuckDBClient{DB: db, cfg: cfg}, nil
}

// Store returns a record store backed by this client.
func (c *DuckDBClient) Store(mapper rowmap.FieldMapper) *SQLRecordStore {
	return NewSQLRecordStore(c.DB, mapper, DialectDuckDB)
}

// WithQueryTimeout bounds ctx by the configured query timeout.
func (c *DuckDBClient) WithQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.QueryTimeout)
}

// Close closes the underlying DuckDB DB.
func (c *DuckDBClient) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

// HealthCheck runs a trivial query and best-effort checks of the configured pragmas.
func (c *DuckDBClient) HealthCheck(ctx context.Context) error {
	if c == nil || c.DB == nil {
		return fmt.Errorf("duckdb client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var v int
	if err := c.DB.QueryRowContext(ctx, "SELECT 1;").Scan(&v); err != nil {
		return fmt.Errorf("duckdb health query failed: %w", err)
	}
	if v != 1 {
		return fmt.Errorf("unexpected duckdb health result: %d", v)
	}

	if c.cfg.MaxParallelism > 0 {
		var threads int
		if err := c.DB.QueryRowContext(ctx, "SELECT current_setting('threads');").Scan(&threads); err != nil {
			zap.S().Warnw("duckdb: threads setting query failed (non-fatal)", "err", err)
		} else if threads <= 0 {
			zap.S().Warnw("duckdb: threads setting invalid (non-fatal)", "threads", threads)
		}
	}
	return nil
}
