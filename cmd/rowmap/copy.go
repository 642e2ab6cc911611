package main

import (
	"fmt"

	"github.com/lychee-technology/rowmap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) newCopyCommand() *cobra.Command {
	var (
		query       string
		table       string
		dest        string
		createTable bool
	)
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Decode Contacts from Postgres and insert them into DuckDB or Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" || table == "" {
				return fmt.Errorf("--query and --table are required")
			}
			ctx := cmd.Context()

			source, closeSource, err := a.sourceStore(ctx)
			if err != nil {
				return err
			}
			defer closeSource()

			var (
				target      rowmap.RecordStore
				closeTarget func()
			)
			switch dest {
			case "duckdb":
				target, closeTarget, err = a.openDuckDB(ctx, a.cfg, a.mapper)
			case "postgres":
				target, closeTarget, err = a.openPostgres(ctx, a.cfg, a.mapper)
			default:
				return fmt.Errorf("unsupported destination %q", dest)
			}
			if err != nil {
				return fmt.Errorf("open destination: %w", err)
			}
			defer closeTarget()

			records, err := source.QueryRecords(ctx, contactType, query)
			if err != nil {
				return err
			}
			if createTable {
				if err := target.CreateTable(ctx, table, contactType); err != nil {
					return err
				}
			}
			for i, record := range records {
				if err := target.InsertRecord(ctx, table, record); err != nil {
					return fmt.Errorf("insert record %d: %w", i, err)
				}
			}

			zap.S().Infow("copied contacts", "records", len(records), "table", table, "dest", dest)
			fmt.Fprintf(cmd.OutOrStdout(), "copied %d records into %s\n", len(records), table)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Source query returning Contact columns")
	cmd.Flags().StringVarP(&table, "table", "t", "", "Destination table")
	cmd.Flags().StringVar(&dest, "dest", "duckdb", "Destination store: duckdb or postgres")
	cmd.Flags().BoolVar(&createTable, "create-table", false, "Create the destination table if missing")
	return cmd
}
