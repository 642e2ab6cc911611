package rowmap

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "db", cfg.Mapping.TagName)
	assert.Equal(t, PolicyLenient, cfg.Mapping.Policy)
	assert.False(t, cfg.Mapping.Strict())
	assert.False(t, cfg.Mapping.CachePlans)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, 30*time.Second, cfg.DuckDB.QueryTimeout)
	assert.True(t, cfg.Export.ValidateRecord)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty tag name", func(c *Config) { c.Mapping.TagName = "" }, "mapping.tagName"},
		{"unknown policy", func(c *Config) { c.Mapping.Policy = "sloppy" }, "mapping.policy"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"negative connections", func(c *Config) { c.Database.MaxConnections = -1 }, "database.maxConnections"},
		{"iam without region", func(c *Config) { c.Database.UseIAM = true }, "database.region"},
		{"negative memory limit", func(c *Config) { c.DuckDB.MemoryLimitMB = -1 }, "duckdb.memoryLimitMB"},
		{"negative parallelism", func(c *Config) { c.DuckDB.MaxParallelism = -2 }, "duckdb.maxParallelism"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestMappingConfigStrict(t *testing.T) {
	assert.True(t, MappingConfig{Policy: PolicyStrict}.Strict())
	assert.False(t, MappingConfig{Policy: PolicyLenient}.Strict())
}
