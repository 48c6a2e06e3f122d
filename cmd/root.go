package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/pacu-sim/pacu-sim/sim"
)

var (
	// CLI flags; scalar flags override the loaded scenario
	scenarioPath string // Path to a YAML scenario file
	seed         int64  // Seed for deterministic case and duration draws
	horizonDays  int    // Simulation horizon in days
	logLevel     string // Log verbosity level
	orCount      int    // Operating room count
	pacu1Beds    int    // Phase-1 recovery bed count
	pacu2Beds    int    // Phase-2 recovery bed count
	wardBeds     int    // Ward bed count
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "pacu-sim",
	Short: "Discrete-event simulator for surgical recovery unit capacity planning",
}

// runCmd executes the simulation using a scenario file plus CLI overrides
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the recovery-unit simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := DefaultScenario()
		if scenarioPath != "" {
			cfg, err = LoadScenario(scenarioPath)
			if err != nil {
				logrus.Fatalf("unable to load scenario: %v", err)
			}
		}
		applyOverrides(cmd, cfg)

		logrus.Infof("Starting simulation: %d day(s), %d OR(s), %d/%d recovery beds, %d ward beds, seed=%d",
			cfg.HorizonDays, cfg.ORCount, cfg.Pacu1Beds, cfg.Pacu2Beds, cfg.WardBeds, cfg.Seed)

		startTime := time.Now()
		results, err := sim.RunSimulation(cfg)
		if err != nil {
			logrus.Fatalf("simulation failed: %v", err)
		}
		results.Print()

		logrus.Infof("Simulation complete in %s.", time.Since(startTime).Round(time.Millisecond))
	},
}

// applyOverrides copies explicitly-set scalar flags over the scenario.
func applyOverrides(cmd *cobra.Command, cfg *sim.SimulationConfig) {
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("horizon-days") {
		cfg.HorizonDays = horizonDays
	}
	if cmd.Flags().Changed("or-count") {
		cfg.ORCount = orCount
	}
	if cmd.Flags().Changed("pacu1-beds") {
		cfg.Pacu1Beds = pacu1Beds
	}
	if cmd.Flags().Changed("pacu2-beds") {
		cfg.Pacu2Beds = pacu2Beds
	}
	if cmd.Flags().Changed("ward-beds") {
		cfg.WardBeds = wardBeds
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to a YAML scenario file")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for deterministic generation")
	runCmd.Flags().IntVar(&horizonDays, "horizon-days", 5, "Simulation horizon in days")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().IntVar(&orCount, "or-count", 2, "Operating room count")
	runCmd.Flags().IntVar(&pacu1Beds, "pacu1-beds", 4, "Phase-1 recovery bed count")
	runCmd.Flags().IntVar(&pacu2Beds, "pacu2-beds", 4, "Phase-2 recovery bed count")
	runCmd.Flags().IntVar(&wardBeds, "ward-beds", 12, "Ward bed count")

	rootCmd.AddCommand(runCmd)
}
