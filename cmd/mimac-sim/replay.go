package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"mimac-sim/internal/sim"
)

var (
	replayInput     string
	replaySummaries string
	replaySpeed     float64
	replayOutput    outputOptions
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay an exported result log",
	Long: "replay feeds summaries and node rows from a --log-file export back into GreptimeDB, " +
		"TimescaleDB or STDOUT, spacing runs by their recorded timestamps.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		if replaySpeed <= 0 {
			return fmt.Errorf("speed must be positive")
		}
		replayOutput.logFile = ""
		writer, sWriter, cleanup, err := newWriters(nil, replayOutput)
		if err != nil {
			return err
		}
		defer cleanup()

		summaries := replaySummaries
		if summaries == "" {
			summaries = replayInput + ".summary"
		}
		if err := sim.ReplaySummaryLogFile(summaries, sWriter, replaySpeed); err != nil {
			if !errors.Is(err, fs.ErrNotExist) || replaySummaries != "" {
				return err
			}
		}
		return sim.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to node log file")
	replayCmd.Flags().StringVar(&replaySummaries, "summaries", "", "Path to summary log (default <input>.summary, skipped if missing)")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayOutput.printOnly, "print-only", false, "Print rows to STDOUT instead of writing to a database")
	replayCmd.Flags().StringVar(&replayOutput.format, "format", "json", "STDOUT format: auto, color or json")
	replayCmd.MarkFlagRequired("input")
}
