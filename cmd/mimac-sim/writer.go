package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mimac-sim/internal/config"
	"mimac-sim/internal/logging"
	"mimac-sim/internal/sim"
)

// outputOptions are the writer flags shared by simulate and sweep.
type outputOptions struct {
	printOnly bool
	format    string
	logFile   string
	tui       bool
}

func (o *outputOptions) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&o.printOnly, "print-only", false, "Print results to STDOUT instead of writing to a database")
	fs.StringVar(&o.format, "format", "auto", "STDOUT format: auto, color or json")
	fs.StringVar(&o.logFile, "log-file", "", "Path to export node rows (JSONL); summaries go to <path>.summary")
	fs.BoolVar(&o.tui, "tui", false, "Browse results in a terminal UI")
}

// context returns parent with logging silenced when the TUI owns the terminal.
func (o outputOptions) context(parent context.Context) context.Context {
	if !o.tui {
		return parent
	}
	return logging.NewContext(parent, slog.New(slog.DiscardHandler))
}

// awaitExit returns runErr at once for one-shot output. Interactive output
// (TUI or admin UI) stays up until ctx is cancelled and runErr is only logged.
func awaitExit(ctx context.Context, interactive bool, runErr error) error {
	log := logging.FromContext(ctx)
	if !interactive {
		return runErr
	}
	if runErr != nil {
		log.Error("run failed", "err", runErr)
	}
	<-ctx.Done()
	log.Info("simulation stopped")
	return nil
}

// newWriters sets up node and summary writers based on flags and env vars.
// It returns the writers and a cleanup function to close any resources.
func newWriters(cfg *config.SimulationConfig, opts outputOptions) (sim.NodeWriter, sim.SummaryWriter, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	nws, sws, err := baseWriters(cfg, opts, &closers)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	if opts.logFile != "" {
		fw, err := sim.NewFileWriter(opts.logFile, opts.logFile+".summary")
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		closers = append(closers, fw.Close)
		nws = append(nws, fw)
		sws = append(sws, fw)
	}
	if len(nws) == 1 && len(sws) == 1 {
		return nws[0], sws[0], cleanup, nil
	}
	mw := sim.NewMultiWriter(nws, sws)
	return mw, mw, cleanup, nil
}

// baseWriters chooses STDOUT or the TUI when printing, otherwise every
// database sink configured through the environment.
func baseWriters(cfg *config.SimulationConfig, opts outputOptions, closers *[]func() error) ([]sim.NodeWriter, []sim.SummaryWriter, error) {
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	dsn := os.Getenv("TIMESCALE_DSN")
	if opts.tui {
		w := sim.NewTUIWriter(cfg)
		*closers = append(*closers, w.Close)
		return []sim.NodeWriter{w}, []sim.SummaryWriter{w}, nil
	}
	if opts.printOnly || (endpoint == "" && dsn == "") {
		w, err := stdoutWriter(cfg, opts.format)
		if err != nil {
			return nil, nil, err
		}
		return []sim.NodeWriter{w}, []sim.SummaryWriter{w}, nil
	}

	var (
		nws []sim.NodeWriter
		sws []sim.SummaryWriter
	)
	if endpoint != "" {
		database := os.Getenv("GREPTIMEDB_DATABASE")
		if database == "" {
			database = "public"
		}
		w, err := sim.NewGreptimeDBWriter(endpoint, database, os.Getenv("GREPTIMEDB_NODE_TABLE"), os.Getenv("GREPTIMEDB_SUMMARY_TABLE"))
		if err != nil {
			return nil, nil, fmt.Errorf("init GreptimeDB writer: %w", err)
		}
		nws, sws = append(nws, w), append(sws, w)
	}
	if dsn != "" {
		db, err := sim.OpenTimescale(dsn)
		if err != nil {
			return nil, nil, err
		}
		*closers = append(*closers, db.Close)
		w := sim.NewTimescaleWriter(db, os.Getenv("TIMESCALE_NODE_TABLE"), os.Getenv("TIMESCALE_SUMMARY_TABLE"))
		nws, sws = append(nws, w), append(sws, w)
	}
	return nws, sws, nil
}

type stdoutSink interface {
	sim.NodeWriter
	sim.SummaryWriter
}

func stdoutWriter(cfg *config.SimulationConfig, format string) (stdoutSink, error) {
	switch format {
	case "auto", "":
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return sim.NewColorStdoutWriter(cfg), nil
		}
		return sim.NewJSONStdoutWriter(), nil
	case "color":
		return sim.NewColorStdoutWriter(cfg), nil
	case "json":
		return sim.NewJSONStdoutWriter(), nil
	}
	return nil, errors.New("format must be auto, color or json")
}
