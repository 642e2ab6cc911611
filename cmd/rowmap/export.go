package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newExportCommand() *cobra.Command {
	var (
		query string
		key   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Decode Contacts from Postgres and upload them to S3 as NDJSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" || key == "" {
				return fmt.Errorf("--query and --key are required")
			}
			ctx := cmd.Context()

			source, closeSource, err := a.sourceStore(ctx)
			if err != nil {
				return err
			}
			defer closeSource()

			exporter, err := a.openExporter(ctx, a.cfg, a.mapper)
			if err != nil {
				return fmt.Errorf("open exporter: %w", err)
			}

			records, err := source.QueryRecords(ctx, contactType, query)
			if err != nil {
				return err
			}
			result, err := exporter.Export(ctx, key, records)
			if err != nil {
				return err
			}

			bs, err := json.Marshal(result)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bs))
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Source query returning Contact columns")
	cmd.Flags().StringVarP(&key, "key", "k", "", "Object key under export.prefix")
	return cmd
}
