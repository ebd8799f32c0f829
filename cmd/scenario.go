package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"student-loan-sim/config"
	"student-loan-sim/domain"
	"student-loan-sim/service"
)

var scenarioForce bool

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Manage scenario files for run and trace",
}

var scenarioInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write a scenario file filled with the configured defaults",
	Long: `init writes the configured default parameters as a YAML scenario file,
ready to edit and pass to "slc run --scenario". Without a file name the
scenario is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScenarioInit,
}

func init() {
	scenarioInitCmd.Flags().BoolVarP(&scenarioForce, "force", "f", false, "overwrite an existing file")
	scenarioCmd.AddCommand(scenarioInitCmd)
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarioInit(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		printError("config", err)
		return err
	}

	req := domain.SimulationRequest{
		Parameters:    cfg.Simulation.Defaults,
		Simulations:   service.DefaultSimulationCount,
		LookbackYears: cfg.Returns.LookbackYears,
	}

	if len(args) == 0 {
		return config.WriteScenario(cmd.OutOrStdout(), req)
	}

	path := args[0]
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if scenarioForce {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, os.ErrExist) {
		err = fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err != nil {
		printError("scenario", err)
		return err
	}
	if err := writeScenarioFile(f, req); err != nil {
		printError("scenario", err)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func writeScenarioFile(f io.WriteCloser, req domain.SimulationRequest) error {
	if err := config.WriteScenario(f, req); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
