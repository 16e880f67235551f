package mac

import (
	"context"
	"fmt"
	"math/rand"

	"mimac-sim/internal/logging"
)

// Result is the frozen outcome of one run.
type Result struct {
	Profile           ProfileID    `json:"profile"`
	Nodes             []NodeTotals `json:"nodes"`
	NodeCount         int          `json:"node_count"`
	Horizon           float64      `json:"horizon"`
	Rate              float64      `json:"rate"`
	AttemptsGenerated int          `json:"attempts_generated"`
	AttemptsProcessed int          `json:"attempts_processed"`
	Collided          int          `json:"collided"`
	Completed         int          `json:"completed"`
	BytesSent         int          `json:"bytes_sent"`
	BytesDelivered    int          `json:"bytes_delivered"`
	EnergyJ           float64      `json:"energy_j"`
	Outcomes          []Outcome    `json:"-"`
}

// CollidedAttempts returns the attempts that ended in a collision, in
// processing order.
func (r Result) CollidedAttempts() []Attempt {
	var out []Attempt
	for _, o := range r.Outcomes {
		if o.Collided {
			out = append(out, o.Attempt)
		}
	}
	return out
}

// Simulate runs one full simulation of profile id: a fresh attempt stream is
// drawn from rng and walked through the protocol with a ScanDetector.
// Configuration errors are returned before any work is done.
func Simulate(ctx context.Context, params Params, id ProfileID, rng *rand.Rand) (Result, error) {
	if err := params.Validate(); err != nil {
		return Result{}, err
	}
	if _, err := ParseProfileID(string(id)); err != nil {
		return Result{}, err
	}
	attempts, err := GenerateAttempts(rng, params.Nodes, params.Horizon, params.Rate)
	if err != nil {
		return Result{}, err
	}
	return SimulateWith(ctx, params, id, attempts, ScanDetector{})
}

// SimulateWith walks a pre-generated, time-ordered attempt stream.
func SimulateWith(ctx context.Context, params Params, id ProfileID, attempts []Attempt, detector Detector) (Result, error) {
	log := logging.FromContext(ctx)
	run, err := NewRun(params, id, detector)
	if err != nil {
		return Result{}, err
	}
	if err := checkStream(attempts, params.Nodes); err != nil {
		return Result{}, err
	}
	log.Debug("run starting", "profile", id, "attempts", len(attempts), "nodes", params.Nodes)
	for _, a := range attempts {
		run.Walk(a)
	}
	res := run.Finish(len(attempts))
	log.Debug("run finished",
		"profile", res.Profile,
		"processed", res.AttemptsProcessed,
		"collided", res.Collided,
		"bytes_delivered", res.BytesDelivered,
		"energy_j", res.EnergyJ,
	)
	return res, nil
}

// checkStream rejects streams the walker cannot consume: out of order
// times, unknown nodes or self-addressed attempts.
func checkStream(attempts []Attempt, nodes int) error {
	for i, a := range attempts {
		if a.Node < 0 || a.Node >= nodes || a.Target < 0 || a.Target >= nodes {
			return fmt.Errorf("%w: attempt %d references node outside [0,%d)", ErrInvalidParams, i, nodes)
		}
		if a.Node == a.Target {
			return fmt.Errorf("%w: attempt %d is addressed to its own sender", ErrInvalidParams, i)
		}
		if i > 0 && a.Time < attempts[i-1].Time {
			return fmt.Errorf("%w: attempt %d at %g precedes previous attempt at %g", ErrInvalidParams, i, a.Time, attempts[i-1].Time)
		}
	}
	return nil
}
