// Package cmd holds the slc command line: the HTTP server and one-off
// simulation runs from the terminal.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"student-loan-sim/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "slc",
	Short: "Student loan repayment simulator",
	Long: `slc estimates whether paying off a student loan early beats keeping
the loan and investing the money instead.

Each run simulates thousands of possible careers with random salary
growth, loan interest, investment returns and career breaks, then compares
what the loan would have cost against what the investment would be worth.

Commands:
  serve    - HTTP API
  run      - simulate a scenario and print the summary
  trace    - show one simulated path year by year
  indices  - list the built-in index funds
  scenario - write a scenario file from the defaults`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig reads the configuration and installs the default logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	logger := newLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
