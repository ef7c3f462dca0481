package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"evmap/internal/exporter"
	"evmap/pkg/contracts/domain"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		source  string
		format  string
		out     string
		from    int
		to      int
		reducer string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a table dump, or an aggregate with --from/--to, under the exports directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := domain.ParseSource(source)
			if err != nil {
				return err
			}
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}
			ranged := cmd.Flags().Changed("from") || cmd.Flags().Changed("to")
			if ranged && from > to {
				return fmt.Errorf("--from (%d) is after --to (%d)", from, to)
			}
			red, err := domain.ParseReducer(reducer)
			if err != nil {
				return err
			}
			if out == "" {
				out = string(src)
			}

			ctx := cmd.Context()
			a, err := c.loadApplication(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			var path string
			if ranged {
				rows, err := a.DataService.Ranked(ctx, src, from, to, red)
				if err != nil {
					return err
				}
				path, err = a.Exporter.SaveAggregate(out, f, rows)
				if err != nil {
					return err
				}
			} else {
				table, err := a.DataService.Table(src)
				if err != nil {
					return err
				}
				path, err = a.Exporter.SaveTable(out, f, table)
				if err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", string(domain.SourceVehicles), "Table to export (vehicles, vehicle-countries, environment)")
	cmd.Flags().StringVar(&format, "format", string(exporter.FormatCSV), "Output format (csv, xlsx)")
	cmd.Flags().StringVar(&out, "out", "", "Output file name, relative to the exports directory")
	cmd.Flags().IntVar(&from, "from", 0, "First year of an aggregate export, inclusive")
	cmd.Flags().IntVar(&to, "to", 0, "Last year of an aggregate export, inclusive")
	cmd.Flags().StringVar(&reducer, "reducer", string(domain.ReducerSum), "Reducer for aggregate exports (sum, mean)")
	return cmd
}
