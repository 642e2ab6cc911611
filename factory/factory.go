package factory

import (
	"context"
	"fmt"

	"github.com/lychee-technology/rowmap"
	"github.com/lychee-technology/rowmap/internal"
	"go.uber.org/zap"
)

// NewFieldMapper creates a FieldMapper from the mapping section of config.
// This is the primary way for external projects to create a mapper.
//
// Usage:
//
//	import (
//	    "github.com/lychee-technology/rowmap"
//	    "github.com/lychee-technology/rowmap/factory"
//	)
//
//	config := rowmap.DefaultConfig()
//	config.Mapping.Policy = rowmap.PolicyStrict
//	mapper, err := factory.NewFieldMapper(config)
//	if err != nil {
//	    // handle error
//	}
//	person, err := rowmap.DecodeAs[Person](mapper, row)
func NewFieldMapper(config *rowmap.Config) (rowmap.FieldMapper, error) {
	return NewFieldMapperWithLogger(config, nil)
}

// NewFieldMapperWithLogger is NewFieldMapper with an explicit logger; nil uses zap.S().
func NewFieldMapperWithLogger(config *rowmap.Config, logger *zap.SugaredLogger) (rowmap.FieldMapper, error) {
	if config == nil {
		config = rowmap.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	var opts []internal.FieldMapperOption
	if logger != nil {
		opts = append(opts, internal.WithLogger(logger))
	}
	return internal.NewFieldMapper(config.Mapping, opts...), nil
}

// NewPostgresRecordStore connects to Postgres and returns a record store plus its closer.
// database.driver selects pgx (default) or lib/pq; useIAM swaps the password for a DSQL token.
func NewPostgresRecordStore(ctx context.Context, config *rowmap.Config, mapper rowmap.FieldMapper) (rowmap.RecordStore, func(), error) {
	if err := internal.ValidatePostgresConfig(config.Database); err != nil {
		return nil, nil, err
	}
	password := internal.ResolvePassword(ctx, config.Database, nil)

	switch config.Database.Driver {
	case "", "pgx":
		pool, err := internal.NewPgxPool(ctx, config.Database, password)
		if err != nil {
			return nil, nil, err
		}
		return internal.NewPgxRecordStore(pool, mapper), pool.Close, nil
	case "postgres":
		db, err := internal.OpenPostgresDB(ctx, config.Database, password)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := db.Close(); err != nil {
				zap.S().Warnw("close postgres", "err", err)
			}
		}
		return internal.NewSQLRecordStore(db, mapper, internal.DialectPostgres), closer, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}
}

// NewDuckDBRecordStore opens DuckDB per config.DuckDB and returns a record store plus its closer.
func NewDuckDBRecordStore(ctx context.Context, config *rowmap.Config, mapper rowmap.FieldMapper) (rowmap.RecordStore, func(), error) {
	client, err := internal.NewDuckDBClient(ctx, config.DuckDB)
	if err != nil {
		return nil, nil, err
	}
	if err := client.HealthCheck(ctx); err != nil {
		client.Close()
		return nil, nil, err
	}
	closer := func() {
		if err := client.Close(); err != nil {
			zap.S().Warnw("close duckdb", "err", err)
		}
	}
	return client.Store(mapper), closer, nil
}

// NewS3Exporter builds an NDJSON exporter for config.Export.
func NewS3Exporter(ctx context.Context, config *rowmap.Config, mapper rowmap.FieldMapper) (rowmap.RecordExporter, error) {
	exporter, err := internal.NewS3ExporterFromConfig(ctx, config.Export, mapper)
	if err != nil {
		return nil, err
	}
	return exporter, nil
}
