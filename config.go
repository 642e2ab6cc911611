package rowmap

import (
	"time"
)

// ErrorPolicy selects how field-level failures are handled.
type ErrorPolicy string

const (
	// PolicyLenient logs field failures and keeps going.
	PolicyLenient ErrorPolicy = "lenient"
	// PolicyStrict fails the whole call on the first field failure.
	PolicyStrict ErrorPolicy = "strict"
)

// Config consolidates mapper, logging and storage settings
type Config struct {
	Mapping  MappingConfig  `json:"mapping" mapstructure:"mapping"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
	Database DatabaseConfig `json:"database" mapstructure:"database"`
	DuckDB   DuckDBConfig   `json:"duckdb" mapstructure:"duckdb"`
	Export   ExportConfig   `json:"export" mapstructure:"export"`
}

// MappingConfig contains field mapping settings
type MappingConfig struct {
	TagName    string      `json:"tagName" mapstructure:"tagName"`
	Policy     ErrorPolicy `json:"policy" mapstructure:"policy"`
	CachePlans bool        `json:"cachePlans" mapstructure:"cachePlans"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"` // json or console
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Driver          string        `json:"driver" mapstructure:"driver"` // pgx or postgres
	Host            string        `json:"host" mapstructure:"host"`
	Port            int           `json:"port" mapstructure:"port"`
	Database        string        `json:"database" mapstructure:"database"`
	Username        string        `json:"username" mapstructure:"username"`
	Password        string        `json:"password" mapstructure:"password"`
	SSLMode         string        `json:"sslMode" mapstructure:"sslMode"`
	UseIAM          bool          `json:"useIAM" mapstructure:"useIAM"`
	Region          string        `json:"region" mapstructure:"region"`
	MaxConnections  int           `json:"maxConnections" mapstructure:"maxConnections"`
	MaxIdleConns    int           `json:"maxIdleConns" mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" mapstructure:"connMaxLifetime"`
	Timeout         time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DuckDBConfig contains DuckDB settings
type DuckDBConfig struct {
	Enabled        bool          `json:"enabled" mapstructure:"enabled"`
	DBPath         string        `json:"dbPath" mapstructure:"dbPath"`
	MemoryLimitMB  int           `json:"memoryLimitMB" mapstructure:"memoryLimitMB"`
	MaxParallelism int           `json:"maxParallelism" mapstructure:"maxParallelism"`
	MaxConnections int           `json:"maxConnections" mapstructure:"maxConnections"`
	QueryTimeout   time.Duration `json:"queryTimeout" mapstructure:"queryTimeout"`
	Extensions     []string      `json:"extensions" mapstructure:"extensions"`
}

// ExportConfig contains S3 export settings
type ExportConfig struct {
	Bucket          string `json:"bucket" mapstructure:"bucket"`
	Prefix          string `json:"prefix" mapstructure:"prefix"`
	Region          string `json:"region" mapstructure:"region"`
	Endpoint        string `json:"endpoint" mapstructure:"endpoint"`
	AccessKeyID     string `json:"accessKeyId" mapstructure:"accessKeyId"` // empty uses the default credential chain
	SecretAccessKey string `json:"secretAccessKey" mapstructure:"secretAccessKey"`
	UsePathStyle    bool   `json:"usePathStyle" mapstructure:"usePathStyle"`
	CreateBucket    bool   `json:"createBucket" mapstructure:"createBucket"`
	ValidateRecord  bool   `json:"validateRecord" mapstructure:"validateRecord"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Mapping: MappingConfig{
			TagName:    "db",
			Policy:     PolicyLenient,
			CachePlans: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Driver:          "pgx",
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxConnections:  10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			Timeout:         30 * time.Second,
		},
		DuckDB: DuckDBConfig{
			Enabled:        true,
			DBPath:         "",
			MaxConnections: 1,
			QueryTimeout:   30 * time.Second,
		},
		Export: ExportConfig{
			Prefix:         "rowmap",
			CreateBucket:   true,
			ValidateRecord: true,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Mapping.TagName == "" {
		return &ConfigError{Field: "mapping.tagName", Message: "must not be empty"}
	}
	switch c.Mapping.Policy {
	case PolicyLenient, PolicyStrict:
	default:
		return &ConfigError{Field: "mapping.policy", Message: "must be 'lenient' or 'strict'"}
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be 'json' or 'console'"}
	}
	switch c.Database.Driver {
	case "", "pgx", "postgres":
	default:
		return &ConfigError{Field: "database.driver", Message: "must be 'pgx' or 'postgres'"}
	}
	if c.Database.MaxConnections < 0 {
		return &ConfigError{Field: "database.maxConnections", Message: "must be >= 0"}
	}
	if c.Database.UseIAM && c.Database.Region == "" {
		return &ConfigError{Field: "database.region", Message: "required when useIAM is set"}
	}
	if c.DuckDB.MemoryLimitMB < 0 {
		return &ConfigError{Field: "duckdb.memoryLimitMB", Message: "must be >= 0"}
	}
	if c.DuckDB.MaxParallelism < 0 {
		return &ConfigError{Field: "duckdb.maxParallelism", Message: "must be >= 0"}
	}
	return nil
}

// Strict reports whether the strict error policy is selected.
func (c MappingConfig) Strict() bool {
	return c.Policy == PolicyStrict
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return "config validation error for field '" + e.Field + "': " + e.Message
}
