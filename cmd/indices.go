package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"student-loan-sim/service"
)

var indicesCmd = &cobra.Command{
	Use:   "indices",
	Short: "List the built-in index funds and their trailing returns",
	Run: func(cmd *cobra.Command, args []string) {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TICKER\tNAME\tREGION\tALIASES\tRETURNS (years: mean +/- variation)")
		for _, f := range service.IndexFunds {
			periods := make([]string, 0, len(f.Periods))
			for _, p := range f.Periods {
				periods = append(periods, fmt.Sprintf("%dy: %.1f%% +/- %.0f%%", p.Years, p.Return*100, p.Variation*100))
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				f.Ticker, f.Name, f.Region, strings.Join(f.Aliases, ","), strings.Join(periods, ", "))
		}
		tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(indicesCmd)
}
