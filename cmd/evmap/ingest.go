package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"evmap/pkg/contracts/domain"
)

func newIngestCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Parse both workbooks once and print table sizes and diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.loadApplication(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			out := cmd.OutOrStdout()
			counts := a.DataService.Counts()
			for _, source := range domain.Sources() {
				fmt.Fprintf(out, "%-18s %d records\n", source, counts[source])
			}

			report, err := json.MarshalIndent(a.DataService.Diagnostics(ctx), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(report))
			return nil
		},
	}
}
