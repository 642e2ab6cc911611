package main

import (
	"context"
	"fmt"

	"github.com/lychee-technology/rowmap"
	"github.com/lychee-technology/rowmap/factory"
	"github.com/lychee-technology/rowmap/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type storeOpener func(ctx context.Context, cfg *rowmap.Config, mapper rowmap.FieldMapper) (rowmap.RecordStore, func(), error)

type exporterOpener func(ctx context.Context, cfg *rowmap.Config, mapper rowmap.FieldMapper) (rowmap.RecordExporter, error)

// app carries the loaded configuration and the backends commands run against.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *rowmap.Config
	mapper     rowmap.FieldMapper
	logger     *zap.Logger

	openPostgres storeOpener
	openDuckDB   storeOpener
	openExporter exporterOpener
}

func newApp() *app {
	return &app{
		v:            viper.New(),
		openPostgres: factory.NewPostgresRecordStore,
		openDuckDB:   factory.NewDuckDBRecordStore,
		openExporter: factory.NewS3Exporter,
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.logger == nil {
		logger, err := internal.NewLogger(cfg.Logging)
		if err != nil {
			return err
		}
		a.logger = logger
	}
	zap.ReplaceGlobals(a.logger)

	mapper, err := factory.NewFieldMapperWithLogger(cfg, a.logger.Sugar().Named("mapper"))
	if err != nil {
		return err
	}
	a.mapper = mapper
	return nil
}

func (a *app) teardown(cmd *cobra.Command, _ []string) {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// NewRootCommand wires the CLI around a.
func (a *app) NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "rowmap",
		Short:             "Move records between row stores with struct field mapping",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().String("policy", "", "Mapping error policy: lenient or strict")
	cmd.PersistentFlags().String("log-level", "", "Log level")
	_ = a.v.BindPFlag("mapping.policy", cmd.PersistentFlags().Lookup("policy"))
	_ = a.v.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(a.newPlanCommand())
	cmd.AddCommand(a.newCopyCommand())
	cmd.AddCommand(a.newExportCommand())
	return cmd
}

func (a *app) sourceStore(ctx context.Context) (rowmap.RecordStore, func(), error) {
	store, closer, err := a.openPostgres(ctx, a.cfg, a.mapper)
	if err != nil {
		return nil, nil, fmt.Errorf("open source: %w", err)
	}
	return store, closer, nil
}
