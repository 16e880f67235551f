package mac

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func TestSimulateDeterministic(t *testing.T) {
	p := DefaultParams()
	for _, id := range Profiles() {
		r1, err := Simulate(context.Background(), p, id, rand.New(rand.NewSource(42)))
		if err != nil {
			t.Fatalf("Simulate: %v", err)
		}
		r2, err := Simulate(context.Background(), p, id, rand.New(rand.NewSource(42)))
		if err != nil {
			t.Fatalf("Simulate: %v", err)
		}
		if !reflect.DeepEqual(r1, r2) {
			t.Fatalf("%s: same seed produced different results", id)
		}
	}
}

func TestSimulateAccounting(t *testing.T) {
	p := DefaultParams()
	p.Rate = 0.08
	for seed := int64(1); seed <= 10; seed++ {
		for _, id := range Profiles() {
			res, err := Simulate(context.Background(), p, id, rand.New(rand.NewSource(seed)))
			if err != nil {
				t.Fatalf("Simulate: %v", err)
			}
			if res.AttemptsProcessed != res.Collided+res.Completed {
				t.Fatalf("processed %d != collided %d + completed %d", res.AttemptsProcessed, res.Collided, res.Completed)
			}
			if res.AttemptsProcessed > res.AttemptsGenerated {
				t.Fatalf("processed %d exceeds generated %d", res.AttemptsProcessed, res.AttemptsGenerated)
			}
			if len(res.Nodes) != p.Nodes {
				t.Fatalf("expected %d nodes, got %d", p.Nodes, len(res.Nodes))
			}
			sent, delivered := 0, 0
			for _, n := range res.Nodes {
				sent += n.BytesSent
				delivered += n.BytesDelivered
				if n.EnergyJ < p.IdleBaseline() {
					t.Fatalf("node %d energy %g below idle baseline", n.Node, n.EnergyJ)
				}
			}
			if sent != res.BytesSent || delivered != res.BytesDelivered {
				t.Fatalf("node sums (%d,%d) != totals (%d,%d)", sent, delivered, res.BytesSent, res.BytesDelivered)
			}
			if res.BytesDelivered != res.Completed*p.Packets.Data {
				t.Fatalf("delivered %d != completed*data %d", res.BytesDelivered, res.Completed*p.Packets.Data)
			}
			wantSent := res.Completed*p.Packets.Exchange() + res.Collided*p.Packets.WakeUp
			if res.BytesSent != wantSent {
				t.Fatalf("sent %d, want %d", res.BytesSent, wantSent)
			}
			if len(res.CollidedAttempts()) != res.Collided {
				t.Fatalf("collided list length %d != %d", len(res.CollidedAttempts()), res.Collided)
			}
		}
	}
}

func TestSimulateWithReplayIsStable(t *testing.T) {
	p := DefaultParams()
	p.Rate = 0.15
	attempts, err := GenerateAttempts(rand.New(rand.NewSource(8)), p.Nodes, p.Horizon, p.Rate)
	if err != nil {
		t.Fatalf("GenerateAttempts: %v", err)
	}
	r1, err := SimulateWith(context.Background(), p, Hybrid, attempts, ScanDetector{})
	if err != nil {
		t.Fatalf("SimulateWith: %v", err)
	}
	r2, err := SimulateWith(context.Background(), p, Hybrid, attempts, ScanDetector{})
	if err != nil {
		t.Fatalf("SimulateWith: %v", err)
	}
	if !reflect.DeepEqual(r1.CollidedAttempts(), r2.CollidedAttempts()) {
		t.Fatalf("replay changed the collided set")
	}
}

func TestSimulateZeroTraffic(t *testing.T) {
	p := DefaultParams()
	p.Rate = 1e-12
	res, err := Simulate(context.Background(), p, Sequential, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if res.AttemptsGenerated != 0 || res.AttemptsProcessed != 0 {
		t.Fatalf("expected no traffic, got %+v", res)
	}
	for _, n := range res.Nodes {
		if n.EnergyJ != p.IdleBaseline() || n.BytesSent != 0 || n.BytesDelivered != 0 {
			t.Fatalf("node %d: %+v", n.Node, n)
		}
	}
}

func TestSimulateWithEmptyStream(t *testing.T) {
	res, err := SimulateWith(context.Background(), DefaultParams(), Simultaneous, nil, nil)
	if err != nil {
		t.Fatalf("SimulateWith: %v", err)
	}
	if res.AttemptsGenerated != 0 || res.Collided != 0 || res.BytesSent != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSimulateConfigErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	single := DefaultParams()
	single.Nodes = 1
	noRate := DefaultParams()
	noRate.Rate = 0

	if _, err := Simulate(context.Background(), single, Sequential, rng); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("nodes=1: %v", err)
	}
	if _, err := Simulate(context.Background(), noRate, Sequential, rng); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("rate=0: %v", err)
	}
	infRate := DefaultParams()
	infRate.Rate = math.Inf(1)
	if _, err := Simulate(context.Background(), infRate, Sequential, rng); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("rate=+Inf: %v", err)
	}
	if _, err := Simulate(context.Background(), DefaultParams(), "config9", rng); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("unknown profile: %v", err)
	}
}

func TestSimulateWithRejectsBadStreams(t *testing.T) {
	p := DefaultParams()
	p.Nodes = 3
	cases := []struct {
		name     string
		attempts []Attempt
	}{
		{"unsorted", []Attempt{{Node: 0, Target: 1, Time: 10}, {Node: 1, Target: 2, Time: 5}}},
		{"self addressed", []Attempt{{Node: 1, Target: 1, Time: 1}}},
		{"unknown node", []Attempt{{Node: 0, Target: 7, Time: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := SimulateWith(context.Background(), p, Sequential, tc.attempts, nil); !errors.Is(err, ErrInvalidParams) {
				t.Fatalf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestProfilesRankByEnergy(t *testing.T) {
	// Single exchange: the sequential data phase dominates at low current,
	// simultaneous pays high current for a short exchange.
	p := DefaultParams()
	p.Nodes = 2
	attempts := []Attempt{{Node: 0, Target: 1, Time: 5}}
	energy := map[ProfileID]float64{}
	for _, id := range Profiles() {
		res, err := SimulateWith(context.Background(), p, id, attempts, nil)
		if err != nil {
			t.Fatalf("SimulateWith: %v", err)
		}
		energy[id] = res.EnergyJ
		if res.BytesDelivered != 24 {
			t.Fatalf("%s delivered %d", id, res.BytesDelivered)
		}
	}
	if !(energy[Hybrid] < energy[Sequential]) {
		t.Fatalf("hybrid %g should use less than sequential %g", energy[Hybrid], energy[Sequential])
	}
}
