package main

import (
	"fmt"
	"strings"

	"github.com/lychee-technology/rowmap"
	"github.com/spf13/viper"
)

const envPrefix = "ROWMAP"

// configKeys are the settings that may be overridden through ROWMAP_ environment variables.
var configKeys = map[string]func(c *rowmap.Config) any{
	"mapping.tagName":          func(c *rowmap.Config) any { return c.Mapping.TagName },
	"mapping.policy":           func(c *rowmap.Config) any { return string(c.Mapping.Policy) },
	"mapping.cachePlans":       func(c *rowmap.Config) any { return c.Mapping.CachePlans },
	"logging.level":            func(c *rowmap.Config) any { return c.Logging.Level },
	"logging.format":           func(c *rowmap.Config) any { return c.Logging.Format },
	"database.driver":          func(c *rowmap.Config) any { return c.Database.Driver },
	"database.host":            func(c *rowmap.Config) any { return c.Database.Host },
	"database.port":            func(c *rowmap.Config) any { return c.Database.Port },
	"database.database":        func(c *rowmap.Config) any { return c.Database.Database },
	"database.username":        func(c *rowmap.Config) any { return c.Database.Username },
	"database.password":        func(c *rowmap.Config) any { return c.Database.Password },
	"database.sslMode":         func(c *rowmap.Config) any { return c.Database.SSLMode },
	"database.useIAM":          func(c *rowmap.Config) any { return c.Database.UseIAM },
	"database.region":          func(c *rowmap.Config) any { return c.Database.Region },
	"database.maxConnections":  func(c *rowmap.Config) any { return c.Database.MaxConnections },
	"database.maxIdleConns":    func(c *rowmap.Config) any { return c.Database.MaxIdleConns },
	"database.connMaxLifetime": func(c *rowmap.Config) any { return c.Database.ConnMaxLifetime },
	"database.timeout":         func(c *rowmap.Config) any { return c.Database.Timeout },
	"duckdb.enabled":           func(c *rowmap.Config) any { return c.DuckDB.Enabled },
	"duckdb.dbPath":            func(c *rowmap.Config) any { return c.DuckDB.DBPath },
	"duckdb.memoryLimitMB":     func(c *rowmap.Config) any { return c.DuckDB.MemoryLimitMB },
	"duckdb.maxParallelism":    func(c *rowmap.Config) any { return c.DuckDB.MaxParallelism },
	"duckdb.maxConnections":    func(c *rowmap.Config) any { return c.DuckDB.MaxConnections },
	"duckdb.queryTimeout":      func(c *rowmap.Config) any { return c.DuckDB.QueryTimeout },
	"duckdb.extensions":        func(c *rowmap.Config) any { return c.DuckDB.Extensions },
	"export.bucket":            func(c *rowmap.Config) any { return c.Export.Bucket },
	"export.prefix":            func(c *rowmap.Config) any { return c.Export.Prefix },
	"export.region":            func(c *rowmap.Config) any { return c.Export.Region },
	"export.endpoint":          func(c *rowmap.Config) any { return c.Export.Endpoint },
	"export.accessKeyId":       func(c *rowmap.Config) any { return c.Export.AccessKeyID },
	"export.secretAccessKey":   func(c *rowmap.Config) any { return c.Export.SecretAccessKey },
	"export.usePathStyle":      func(c *rowmap.Config) any { return c.Export.UsePathStyle },
	"export.createBucket":      func(c *rowmap.Config) any { return c.Export.CreateBucket },
	"export.validateRecord":    func(c *rowmap.Config) any { return c.Export.ValidateRecord },
}

// loadConfig layers defaults, the optional config file and ROWMAP_ environment variables.
func loadConfig(v *viper.Viper, path string) (*rowmap.Config, error) {
	defaults := rowmap.DefaultConfig()
	for key, get := range configKeys {
		v.SetDefault(key, get(defaults))
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &rowmap.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
