// Simulator running coil configurations and fanning results out to writers
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mimac-sim/internal/config"
	"mimac-sim/internal/logging"
	"mimac-sim/internal/mac"
	"mimac-sim/internal/telemetry"
)

// Batch is the output of one RunAll call: every selected profile simulated
// over its own stream drawn from the same base seed.
type Batch struct {
	RunID     string                    `json:"run_id"`
	Seed      int64                     `json:"seed"`
	Summaries []telemetry.RunSummaryRow `json:"summaries"`
	Nodes     []telemetry.NodeEnergyRow `json:"nodes"`
	Errors    []string                  `json:"errors,omitempty"`
}

// Simulator runs the selected coil configurations and writes their results.
type Simulator struct {
	cfg           *config.SimulationConfig
	params        mac.Params
	profiles      []mac.ProfileID
	detector      mac.Detector
	writer        NodeWriter
	summaryWriter SummaryWriter
	metrics       *Metrics
	now           func() time.Time
	mu            sync.Mutex
	writeMu       sync.Mutex
	seed          int64
	latest        Batch
}

// NewSimulator prepares a simulator for cfg. Nil writers and metrics are allowed.
func NewSimulator(cfg *config.SimulationConfig, writer NodeWriter, sWriter SummaryWriter, metrics *Metrics) (*Simulator, error) {
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	return &Simulator{
		cfg:           cfg,
		params:        params,
		profiles:      mac.Profiles(),
		detector:      mac.ScanDetector{},
		writer:        writer,
		summaryWriter: sWriter,
		metrics:       metrics,
		now:           time.Now,
		seed:          cfg.Seed,
	}, nil
}

// SetProfiles restricts the run to names (canonical or aliases), keeping
// their order. Duplicates are dropped.
func (s *Simulator) SetProfiles(names []string) error {
	ids, err := parseProfiles(names)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.profiles = ids
	s.mu.Unlock()
	return nil
}

func parseProfiles(names []string) ([]mac.ProfileID, error) {
	var ids []mac.ProfileID
	for _, n := range names {
		id, err := mac.ParseProfileID(n)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no profiles selected", mac.ErrInvalidParams)
	}
	return ids, nil
}

// SetDetector swaps the collision detector. Nil restores the scanning one.
func (s *Simulator) SetDetector(d mac.Detector) {
	if d == nil {
		d = mac.ScanDetector{}
	}
	s.mu.Lock()
	s.detector = d
	s.mu.Unlock()
}

// SetRate overrides the per-node attempt rate, e.g. for sweeps.
func (s *Simulator) SetRate(rate float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.params
	p.Rate = rate
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = p
	return nil
}

// SetNodes overrides the network size.
func (s *Simulator) SetNodes(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.params
	p.Nodes = n
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = p
	return nil
}

// GetConfig returns the configuration the simulator was built from.
func (s *Simulator) GetConfig() *config.SimulationConfig {
	return s.cfg
}

// RunAll simulates every selected profile with the configured seed.
func (s *Simulator) RunAll(ctx context.Context) (Batch, error) {
	s.mu.Lock()
	seed := s.seed
	s.mu.Unlock()
	return s.RunWithSeed(ctx, seed)
}

// RunWithSeed simulates every selected profile. Profile i draws its stream
// from seed+i, so results are reproducible per profile; seed 0 picks a
// time-based seed that is reported in the batch. Profiles run in parallel;
// a profile that fails does not stop the others and all failures are joined
// into the returned error.
func (s *Simulator) RunWithSeed(ctx context.Context, seed int64) (Batch, error) {
	if seed == 0 {
		seed = s.now().UnixNano()
	}
	s.mu.Lock()
	params := s.params
	profiles := slices.Clone(s.profiles)
	detector := s.detector
	s.mu.Unlock()
	return s.run(ctx, seed, params, profiles, detector)
}

func (s *Simulator) run(ctx context.Context, seed int64, params mac.Params, profiles []mac.ProfileID, detector mac.Detector) (Batch, error) {
	log := logging.FromContext(ctx)
	results := make([]mac.Result, len(profiles))
	elapsed := make([]time.Duration, len(profiles))
	errs := make([]error, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range profiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			rng := rand.New(rand.NewSource(seed + int64(i)))
			attempts, err := mac.GenerateAttempts(rng, params.Nodes, params.Horizon, params.Rate)
			if err == nil {
				results[i], err = mac.SimulateWith(gctx, params, id, attempts, detector)
			}
			if err != nil {
				errs[i] = fmt.Errorf("profile %s: %w", id, err)
				return nil
			}
			elapsed[i] = time.Since(start)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, err
	}

	batch := Batch{RunID: uuid.NewString(), Seed: seed}
	ts := s.now()
	var nodeSets [][]telemetry.NodeEnergyRow
	for i, res := range results {
		if errs[i] != nil {
			batch.Errors = append(batch.Errors, errs[i].Error())
			log.Error("profile failed", "profile", profiles[i], "err", errs[i])
			continue
		}
		summary, nodes := telemetry.FromResult(batch.RunID, seed+int64(i), res, ts)
		batch.Summaries = append(batch.Summaries, summary)
		batch.Nodes = append(batch.Nodes, nodes...)
		nodeSets = append(nodeSets, nodes)
		s.metrics.Observe(res, elapsed[i])
		log.Info("profile finished",
			"run_id", batch.RunID,
			"profile", res.Profile,
			"collided", res.Collided,
			"completed", res.Completed,
			"energy_j", res.EnergyJ,
		)
	}
	if err := s.emit(batch.Summaries, nodeSets); err != nil {
		log.Error("write failed", "run_id", batch.RunID, "err", err)
		errs = append(errs, fmt.Errorf("write results: %w", err))
	}

	if len(batch.Summaries) > 0 {
		s.mu.Lock()
		s.latest = batch
		s.mu.Unlock()
	}
	return batch, errors.Join(errs...)
}

// emit writes all summaries of a batch in one call, then each profile's
// node rows. Concurrent batches never interleave.
func (s *Simulator) emit(summaries []telemetry.RunSummaryRow, nodeSets [][]telemetry.NodeEnergyRow) error {
	if len(summaries) == 0 {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	var errs []error
	if s.summaryWriter != nil {
		if err := writeSummaries(s.summaryWriter, summaries); err != nil {
			errs = append(errs, err)
		}
	}
	if s.writer != nil {
		for _, nodes := range nodeSets {
			if err := writeNodes(s.writer, nodes); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Latest returns a copy of the most recent batch that produced results.
func (s *Simulator) Latest() Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.latest
	b.Summaries = slices.Clone(b.Summaries)
	b.Nodes = slices.Clone(b.Nodes)
	b.Errors = slices.Clone(b.Errors)
	return b
}
