package mac

import (
	"cmp"
	"fmt"
	"math/rand"
	"slices"
)

// Attempt is one node's intention to reach a peer at a generated time.
type Attempt struct {
	Node   int     `json:"node"`
	Target int     `json:"target"`
	Time   float64 `json:"time"`
}

const maxAttemptHint = 1 << 20

// GenerateAttempts draws an independent Poisson arrival process per node over
// [0, horizon) and returns the merged stream sorted by time. Each attempt is
// addressed to a peer chosen uniformly among the other nodes. All randomness
// comes from rng.
func GenerateAttempts(rng *rand.Rand, nodes int, horizon, rate float64) ([]Attempt, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidParams)
	}
	if nodes < 2 {
		return nil, fmt.Errorf("%w: nodes must be >= 2, got %d", ErrInvalidParams, nodes)
	}
	if !positive(horizon) || !positive(rate) {
		return nil, fmt.Errorf("%w: horizon and rate must be positive and finite (horizon=%g rate=%g)", ErrInvalidParams, horizon, rate)
	}

	// capacity hint only; append grows past it for very long runs
	expected := min(float64(nodes)*horizon*rate, maxAttemptHint)
	attempts := make([]Attempt, 0, int(expected)+nodes)
	for node := 0; node < nodes; node++ {
		t := 0.0
		for {
			t += rng.ExpFloat64() / rate
			if t >= horizon {
				break
			}
			attempts = append(attempts, Attempt{Node: node, Target: pickPeer(rng, node, nodes), Time: t})
		}
	}

	// Stable so equal times keep node order and replays stay identical.
	slices.SortStableFunc(attempts, func(a, b Attempt) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return attempts, nil
}

// pickPeer returns a node index in [0, nodes) other than self.
func pickPeer(rng *rand.Rand, self, nodes int) int {
	peer := rng.Intn(nodes - 1)
	if peer >= self {
		peer++
	}
	return peer
}
