package sim

import (
	"context"
	"errors"
	"slices"

	"mimac-sim/internal/logging"
	"mimac-sim/internal/scenario"
)

// RunSweep runs every rate of sw in ascending order with the same base seed,
// so batches differ only in offered load. Overrides in sw apply to the sweep
// alone; the simulator's own settings are left untouched. A failing rate does
// not stop the sweep.
func (s *Simulator) RunSweep(ctx context.Context, sw scenario.Sweep, seed int64) ([]Batch, error) {
	if err := sw.Validate(); err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = s.now().UnixNano()
	}

	s.mu.Lock()
	base := s.params
	profiles := slices.Clone(s.profiles)
	detector := s.detector
	s.mu.Unlock()

	if sw.Nodes != 0 {
		base.Nodes = sw.Nodes
	}
	if sw.HorizonMS != 0 {
		base.Horizon = sw.HorizonMS
	}
	if len(sw.Profiles) > 0 {
		ids, err := parseProfiles(sw.Profiles)
		if err != nil {
			return nil, err
		}
		profiles = ids
	}

	log := logging.FromContext(ctx)
	var (
		batches []Batch
		errs    []error
	)
	for _, rate := range sw.SortedRates() {
		if err := ctx.Err(); err != nil {
			return batches, err
		}
		p := base
		p.Rate = rate
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		log.Debug("sweep step", "sweep", sw.Name, "rate", rate, "nodes", p.Nodes)
		b, err := s.run(ctx, seed, p, profiles, detector)
		if err != nil {
			errs = append(errs, err)
		}
		if len(b.Summaries) > 0 {
			batches = append(batches, b)
		}
	}
	return batches, errors.Join(errs...)
}
