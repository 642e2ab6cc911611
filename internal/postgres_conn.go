package internal

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dsql/auth"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/lychee-technology/rowmap"
	"go.uber.org/zap"
)

// ValidatePostgresConfig performs basic sanity checks on Postgres-related settings.
func ValidatePostgresConfig(cfg rowmap.DatabaseConfig) error {
	if cfg.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("database.port must be a valid TCP port")
	}
	if cfg.MaxConnections <= 0 {
		return fmt.Errorf("database.maxConnections must be greater than 0")
	}
	return nil
}

// AuthTokenFunc produces a short-lived database password for endpoint (host:port).
type AuthTokenFunc func(ctx context.Context, endpoint, region string) (string, error)

// DSQLAuthToken signs a connect token with the default AWS credential chain.
func DSQLAuthToken(ctx context.Context, endpoint, region string) (string, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return "", fmt.Errorf("load aws config: %w", err)
	}
	token, err := auth.GenerateDbConnectAuthToken(ctx, endpoint, awsCfg.Region, awsCfg.Credentials)
	if err != nil {
		return "", fmt.Errorf("generate db connect token: %w", err)
	}
	return token, nil
}

// ResolvePassword returns the configured password, or an IAM token when useIAM is set.
// A failed token falls back to the static password.
func ResolvePassword(ctx context.Context, cfg rowmap.DatabaseConfig, tokenFn AuthTokenFunc) string {
	if !cfg.UseIAM {
		return cfg.Password
	}
	if tokenFn == nil {
		tokenFn = DSQLAuthToken
	}
	endpoint := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	token, err := tokenFn(ctx, endpoint, cfg.Region)
	if err != nil || token == "" {
		zap.S().Warnw("failed to generate IAM auth token; falling back to configured password", "endpoint", endpoint, "err", err)
		return cfg.Password
	}
	zap.S().Infow("generated IAM auth token for Postgres connection", "endpoint", endpoint)
	return token
}

// PostgresDSN renders a postgres:// URL with the given password.
func PostgresDSN(cfg rowmap.DatabaseConfig, password string) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// NewPgxPool connects a pgx pool and pings it.
func NewPgxPool(ctx context.Context, cfg rowmap.DatabaseConfig, password string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(PostgresDSN(cfg, password))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.Timeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.Timeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// OpenPostgresDB opens a database/sql handle through lib/pq and pings it.
func OpenPostgresDB(ctx context.Context, cfg rowmap.DatabaseConfig, password string) (*sql.DB, error) {
	db, err := sql.Open("postgres", PostgresDSN(cfg, password))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}
