package main

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"evmap/pkg/contracts/domain"
)

func newAggregateCmd(c *cli) *cobra.Command {
	var (
		source  string
		regions []string
		from    int
		to      int
		reducer string
	)

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Reduce regions over an inclusive year range",
		Long: "Reduce regions over an inclusive year range. Requested regions without data report 0.\n" +
			"Without --regions every region with data in the range is reported.",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := domain.ParseSource(source)
			if err != nil {
				return err
			}
			red, err := domain.ParseReducer(reducer)
			if err != nil {
				return err
			}
			if from > to {
				return fmt.Errorf("--from (%d) is after --to (%d)", from, to)
			}

			ctx := cmd.Context()
			a, err := c.loadApplication(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			var values map[string]float64
			if len(regions) == 0 {
				values, err = a.DataService.AggregateAll(ctx, src, from, to, red)
			} else {
				values, err = a.DataService.Aggregate(ctx, domain.AggregateQuery{
					Source:    src,
					Regions:   regions,
					YearStart: from,
					YearEnd:   to,
					Reducer:   red,
				})
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "REGION\tLABEL\tVALUE")
			for _, region := range slices.Sorted(maps.Keys(values)) {
				fmt.Fprintf(w, "%s\t%s\t%g\n", region, a.DataService.Label(region), values[region])
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&source, "source", string(domain.SourceVehicles), "Table to query (vehicles, vehicle-countries, environment)")
	cmd.Flags().StringSliceVar(&regions, "regions", nil, "Comma separated region codes")
	cmd.Flags().IntVar(&from, "from", 0, "First year, inclusive")
	cmd.Flags().IntVar(&to, "to", 0, "Last year, inclusive")
	cmd.Flags().StringVar(&reducer, "reducer", string(domain.ReducerSum), "Reducer (sum, mean)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
