package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/lychee-technology/rowmap/internal"
	"github.com/spf13/cobra"
)

func (a *app) newPlanCommand() *cobra.Command {
	var fieldsOnly bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the Contact field plan as JSON Schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := a.mapper.Plan(contactType)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if fieldsOnly {
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "FIELD\tCOLUMN\tKIND\tNULLABLE")
				for _, fd := range plan.Fields {
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", fd.Name, fd.StorageName, fd.Kind, !fd.Primitive)
				}
				return w.Flush()
			}

			bs, err := json.MarshalIndent(internal.PlanJSONSchema(plan), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(bs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fieldsOnly, "fields", false, "Print a field table instead of JSON Schema")
	return cmd
}
