package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"student-loan-sim/config"
	"student-loan-sim/domain"
)

var traceOpts struct {
	scenario string
	seed     uint64
	json     bool
}

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Show one simulated path year by year",
	Long: `trace simulates a single path and prints each year's salary, payment,
loan balance and investment value. With --seed the path is the first one
of "slc run" with the same seed.`,
	RunE: runTrace,
}

func init() {
	f := traceCmd.Flags()
	f.StringVar(&traceOpts.scenario, "scenario", "", "YAML scenario file")
	f.Uint64Var(&traceOpts.seed, "seed", 0, "seed (random when unset)")
	f.BoolVar(&traceOpts.json, "json", false, "print the trace as JSON")
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		printError("config", err)
		return err
	}

	req := domain.TraceRequest{Parameters: cfg.Simulation.Defaults}
	if traceOpts.scenario != "" {
		scenario, err := config.LoadScenario(traceOpts.scenario, cfg.Simulation.Defaults)
		if err != nil {
			printError("scenario", err)
			return err
		}
		req.Parameters = scenario.Parameters
		req.Seed = scenario.Seed
	}
	if cmd.Flags().Changed("seed") {
		seed := traceOpts.seed
		req.Seed = &seed
	}

	a, err := newApp(cmd.Context(), cfg, logger, nil)
	if err != nil {
		printError("startup", err)
		return err
	}
	defer a.cleanup()

	trace, err := a.service.Trace(cmd.Context(), req)
	if err != nil {
		printError("trace", err)
		return err
	}

	if traceOpts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(trace)
	}
	printTrace(cmd.OutOrStdout(), trace)
	return nil
}

func printTrace(w io.Writer, trace domain.PathTrace) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "year\tsalary\tpayment\tloan\trepaid\tinvestment\tbreak\t")
	for _, y := range trace.Years {
		brk := ""
		if y.CareerBreak {
			brk = "yes"
		}
		fmt.Fprintf(tw, "%d\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t%s\t\n",
			y.Year, y.Salary, y.Payment, y.Loan, y.TotalRepayments, y.Investment, brk)
	}
	tw.Flush()

	fmt.Fprintln(w)
	if trace.RepaidInFull {
		fmt.Fprintf(w, "Loan repaid in full after %d years.\n", len(trace.Years))
	} else {
		fmt.Fprintf(w, "%.0f written off at the end of the term.\n", trace.RemainingLoan)
	}
	fmt.Fprintf(w, "Total repaid %.0f, investment worth %.0f, %d career break years.\n",
		trace.Outcome.TotalRepayments, trace.Outcome.FinalInvestment, trace.CareerBreakYears)
}
