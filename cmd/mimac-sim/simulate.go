package main

import (
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"mimac-sim/internal/admin"
	"mimac-sim/internal/config"
	"mimac-sim/internal/logging"
	"mimac-sim/internal/mac"
	"mimac-sim/internal/sim"
)

var (
	simConfigPath string
	simSchemaPath string
	simSeed       int64
	simProfiles   []string
	simDetector   string
	simAdminAddr  string
	simOutput     outputOptions
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run every coil configuration over one seeded traffic pattern",
	Long: "simulate draws a Poisson attempt stream per profile, walks it through the wake-up/ACK/DATA exchange " +
		"and reports collisions, delivered bytes and energy per node. With --admin the results stay browsable " +
		"and can be re-run until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = simSeed
		}

		ctx, stop := signal.NotifyContext(simOutput.context(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		writer, sWriter, cleanup, err := newWriters(cfg, simOutput)
		if err != nil {
			return err
		}
		defer cleanup()

		simulator, err := newSimulator(cfg, writer, sWriter, simProfiles, simDetector)
		if err != nil {
			return err
		}

		_, runErr := simulator.RunAll(ctx)
		if simAdminAddr != "" {
			srv := admin.NewServer(simulator, nil)
			go func() {
				logging.FromContext(ctx).Info("admin UI listening", "addr", simAdminAddr)
				if err := srv.Start(ctx, simAdminAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logging.FromContext(ctx).Error("admin server failed", "err", err)
					stop()
				}
			}()
			if aw, ok := writer.(sim.AdminStatusWriter); ok {
				aw.SetAdminStatus(true)
			}
		}
		return awaitExit(ctx, simAdminAddr != "" || simOutput.tui, runErr)
	},
}

// processMetrics registers the simulator collectors on the default registry
// once per process.
var processMetrics = sync.OnceValue(func() *sim.Metrics { return sim.NewMetrics(nil) })

// newSimulator builds a simulator reporting to processMetrics and applies the
// profile and detector selection.
func newSimulator(cfg *config.SimulationConfig, writer sim.NodeWriter, sWriter sim.SummaryWriter, profiles []string, detector string) (*sim.Simulator, error) {
	simulator, err := sim.NewSimulator(cfg, writer, sWriter, processMetrics())
	if err != nil {
		return nil, err
	}
	if len(profiles) > 0 {
		if err := simulator.SetProfiles(profiles); err != nil {
			return nil, err
		}
	}
	d, ok := mac.DetectorByName(detector)
	if !ok {
		return nil, errors.New("detector must be scan or index")
	}
	simulator.SetDetector(d)
	return simulator, nil
}

func init() {
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/mimac.yaml", "Path to simulation configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/mimac.cue", "Path to CUE schema file (empty skips validation)")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "Base seed; profile i uses seed+i, 0 picks one from the clock")
	simulateCmd.Flags().StringSliceVar(&simProfiles, "profiles", nil, "Profiles to run ("+profileNames()+")")
	simulateCmd.Flags().StringVar(&simDetector, "detector", "scan", "Collision detector: scan or index")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin", "", "Serve the results UI on this address (e.g. :8080)")
	simOutput.bind(simulateCmd)
}

func profileNames() string {
	var names []string
	for _, id := range mac.Profiles() {
		names = append(names, string(id))
	}
	return strings.Join(names, ", ")
}
