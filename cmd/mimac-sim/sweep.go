package main

import (
	"fmt"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mimac-sim/internal/config"
	"mimac-sim/internal/scenario"
	"mimac-sim/internal/sim"
)

var (
	sweepConfigPath string
	sweepSchemaPath string
	sweepName       string
	sweepFile       string
	sweepSeed       int64
	sweepDetector   string
	sweepOutput     outputOptions
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run all profiles over a range of attempt rates",
	Long:  "sweep runs a built-in or YAML-defined load sweep and prints how collisions and energy grow with offered load.",
	RunE: func(cmd *cobra.Command, args []string) error {
		sw, err := resolveSweep(sweepName, sweepFile)
		if err != nil {
			return err
		}
		cfg, err := config.Load(sweepConfigPath, sweepSchemaPath)
		if err != nil {
			return err
		}
		seed := cfg.Seed
		if cmd.Flags().Changed("seed") {
			seed = sweepSeed
		}

		ctx, stop := signal.NotifyContext(sweepOutput.context(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		// the TUI signals an interrupt on quit; ctx must be listening first
		writer, sWriter, cleanup, err := newWriters(cfg, sweepOutput)
		if err != nil {
			return err
		}
		defer cleanup()

		simulator, err := newSimulator(cfg, writer, sWriter, nil, sweepDetector)
		if err != nil {
			return err
		}

		batches, runErr := simulator.RunSweep(ctx, *sw, seed)
		if !sweepOutput.tui {
			printSweepTable(cmd, sw, batches)
		}
		return awaitExit(ctx, sweepOutput.tui, runErr)
	},
}

// resolveSweep prefers a sweep file over a built-in name.
func resolveSweep(name, file string) (*scenario.Sweep, error) {
	if file != "" {
		return scenario.Load(file)
	}
	builtIn := scenario.BuiltIn()
	sw, ok := builtIn[name]
	if !ok {
		names := make([]string, 0, len(builtIn))
		for n := range builtIn {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown sweep %q (built-in: %s)", name, strings.Join(names, ", "))
	}
	return &sw, nil
}

func printSweepTable(cmd *cobra.Command, sw *scenario.Sweep, batches []sim.Batch) {
	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "\nSweep %s: %s\n", sw.Name, sw.Description)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Rate (1/ms)\tProfile\tCollided\tCompleted\tDelivered (B)\tEnergy (mJ)\t\n")
	for _, b := range batches {
		for _, s := range b.Summaries {
			fmt.Fprintf(tw, "%.4f\t%s\t%d\t%d\t%d\t%.4f\t\n", s.RatePerMS, s.Profile, s.Collided, s.Completed, s.BytesDelivered, s.EnergyJ*1e3)
		}
	}
	tw.Flush()
}

func init() {
	sweepCmd.Flags().StringVar(&sweepConfigPath, "config", "config/mimac.yaml", "Path to simulation configuration YAML")
	sweepCmd.Flags().StringVar(&sweepSchemaPath, "schema", "schemas/mimac.cue", "Path to CUE schema file (empty skips validation)")
	sweepCmd.Flags().StringVar(&sweepName, "sweep", "moderate", "Built-in sweep: light, moderate or saturated")
	sweepCmd.Flags().StringVar(&sweepFile, "file", "", "YAML sweep definition (overrides --sweep)")
	sweepCmd.Flags().Int64Var(&sweepSeed, "seed", 0, "Base seed shared by every rate")
	sweepCmd.Flags().StringVar(&sweepDetector, "detector", "scan", "Collision detector: scan or index")
	sweepOutput.bind(sweepCmd)
}
