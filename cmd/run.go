package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"student-loan-sim/config"
	"student-loan-sim/domain"
	"student-loan-sim/report"
	"student-loan-sim/service"
)

var runOpts struct {
	scenario    string
	simulations int
	seed        uint64
	workers     int
	ticker      string
	lookback    int
	pdf         string
	json        bool
	quiet       bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate a scenario and print the recommendation",
	Example: `  slc run --simulations 20000 --seed 42
  slc run --scenario me.yaml --ticker SPY --pdf summary.pdf`,
	RunE: runSimulation,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runOpts.scenario, "scenario", "", "YAML scenario file")
	f.IntVar(&runOpts.simulations, "simulations", service.DefaultSimulationCount, "number of simulated paths")
	f.Uint64Var(&runOpts.seed, "seed", 0, "seed for a reproducible run (random when unset)")
	f.IntVar(&runOpts.workers, "workers", 0, "worker count (0 uses all CPUs)")
	f.StringVar(&runOpts.ticker, "ticker", "", "take investment returns from this index fund")
	f.IntVar(&runOpts.lookback, "lookback", 0, "years of history for --ticker (default: returns.lookback_years)")
	f.StringVar(&runOpts.pdf, "pdf", "", "also write a PDF summary to this file")
	f.BoolVar(&runOpts.json, "json", false, "print the run record as JSON")
	f.BoolVarP(&runOpts.quiet, "quiet", "q", false, "no progress output")
	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		printError("config", err)
		return err
	}
	if cmd.Flags().Changed("workers") {
		cfg.Simulation.Workers = runOpts.workers
	}

	req, err := scenarioRequest(cmd, cfg)
	if err != nil {
		printError("scenario", err)
		return err
	}

	a, err := newApp(cmd.Context(), cfg, logger, nil)
	if err != nil {
		printError("startup", err)
		return err
	}
	defer a.cleanup()

	var progress service.ProgressFunc
	if !runOpts.quiet {
		progress = progressPrinter(os.Stderr)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	record, err := a.service.Run(ctx, req, progress)
	if progress != nil {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		printError("simulation", err)
		return err
	}

	if runOpts.pdf != "" {
		if err := writePDF(runOpts.pdf, record); err != nil {
			printError("pdf", err)
			return err
		}
		logger.Info("wrote PDF summary", "path", runOpts.pdf)
	}

	if runOpts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}
	printSummary(cmd.OutOrStdout(), record)
	return nil
}

// scenarioRequest merges the configured defaults, the scenario file and
// explicitly set flags, in that order.
func scenarioRequest(cmd *cobra.Command, cfg *config.Config) (domain.SimulationRequest, error) {
	req := domain.SimulationRequest{
		Parameters:  cfg.Simulation.Defaults,
		Simulations: service.DefaultSimulationCount,
	}
	if runOpts.scenario != "" {
		var err error
		req, err = config.LoadScenario(runOpts.scenario, cfg.Simulation.Defaults)
		if err != nil {
			return domain.SimulationRequest{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("simulations") {
		req.Simulations = runOpts.simulations
	}
	if flags.Changed("seed") {
		seed := runOpts.seed
		req.Seed = &seed
	}
	if flags.Changed("ticker") {
		req.InvestmentTicker = runOpts.ticker
	}
	if flags.Changed("lookback") {
		req.LookbackYears = runOpts.lookback
	}
	if req.LookbackYears == 0 {
		req.LookbackYears = cfg.Returns.LookbackYears
	}
	return req, nil
}

func progressPrinter(w io.Writer) service.ProgressFunc {
	last := -1
	return func(done, total int) {
		pct := done * 100 / total
		if pct == last {
			return
		}
		last = pct
		fmt.Fprintf(w, "\rsimulating... %3d%% (%d/%d)", pct, done, total)
	}
}

func writePDF(path string, record domain.RunRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteSummaryPDF(f, record); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(w io.Writer, record domain.RunRecord) {
	sum := record.Summary
	fmt.Fprintf(w, "Run %s (%d paths, seed %d)\n", record.ID, sum.Simulations, record.Seed)
	if record.InvestmentTicker != "" {
		fmt.Fprintf(w, "Investment returns from %s: %.1f%% +/- %.1f%%\n",
			record.InvestmentTicker, record.Parameters.InvestmentRate*100, record.Parameters.InvestmentRateSigma*100)
	}
	if record.Cached {
		fmt.Fprintln(w, "(served from cache)")
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tmean\tmedian\tp5\tp95")
	for _, row := range []struct {
		name string
		d    domain.Distribution
	}{
		{"total repayments", sum.Repayments},
		{"investment value", sum.Investments},
		{"gain from paying early", sum.Gains},
	} {
		fmt.Fprintf(tw, "%s\t%.0f\t%.0f\t%.0f\t%.0f\n", row.name, row.d.Mean, row.d.Median, row.d.P5, row.d.P95)
	}
	tw.Flush()
	fmt.Fprintln(w)

	if sum.Recommendation == domain.RecommendPayEarly {
		fmt.Fprintln(w, "Recommendation: pay off the loan early")
	} else {
		fmt.Fprintln(w, "Recommendation: keep the loan and invest")
	}
	fmt.Fprintf(w, "The recommendation wins in %.1f%% of paths.\n", sum.RecommendedWinFraction*100)
	if record.Explanation != "" {
		fmt.Fprintf(w, "\n%s\n", record.Explanation)
	}
}
