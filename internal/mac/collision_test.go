package mac

import (
	"context"
	"math/rand"
	"reflect"
	"testing"
)

func TestOverlapHalfOpen(t *testing.T) {
	base := Transmission{Start: 1, End: 3}
	cases := []struct {
		name string
		o    Transmission
		want bool
	}{
		{"touching before", Transmission{Start: 0, End: 1}, false},
		{"touching after", Transmission{Start: 3, End: 4}, false},
		{"inside", Transmission{Start: 1.5, End: 2}, true},
		{"covering", Transmission{Start: 0, End: 5}, true},
		{"straddling start", Transmission{Start: 0.5, End: 1.5}, true},
		{"disjoint", Transmission{Start: 7, End: 8}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := base.Overlaps(tc.o); got != tc.want {
				t.Fatalf("Overlaps=%v, want %v", got, tc.want)
			}
			if got := tc.o.Overlaps(base); got != tc.want {
				t.Fatalf("reverse Overlaps=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestDetectorsOnlyWakeUpSameTarget(t *testing.T) {
	for name, det := range map[string]Detector{"scan": ScanDetector{}, "index": IndexDetector{}} {
		t.Run(name, func(t *testing.T) {
			l := NewLedger()
			l.Append(Transmission{Start: 0, End: 5, Sender: 0, Target: 1, Phase: PhaseData})
			l.Append(Transmission{Start: 0, End: 5, Sender: 1, Target: 2, Phase: PhaseAck})
			l.Append(Transmission{Start: 0, End: 5, Sender: 3, Target: 2, Phase: PhaseWakeUp})
			cand := l.Append(Transmission{Start: 1, End: 2, Sender: 4, Target: 1, Phase: PhaseWakeUp})
			if det.Collides(l, cand) {
				t.Fatalf("data frame or other-target wake-up must not collide")
			}
			hit := l.Append(Transmission{Start: 1.5, End: 2.5, Sender: 2, Target: 1, Phase: PhaseWakeUp})
			if !det.Collides(l, hit) {
				t.Fatalf("expected collision with earlier wake-up to the same target")
			}
		})
	}
}

func TestDetectorsAgree(t *testing.T) {
	p := DefaultParams()
	p.Rate = 0.2
	for seed := int64(1); seed <= 5; seed++ {
		attempts, err := GenerateAttempts(rand.New(rand.NewSource(seed)), p.Nodes, p.Horizon, p.Rate)
		if err != nil {
			t.Fatalf("GenerateAttempts: %v", err)
		}
		for _, id := range Profiles() {
			scan, err := SimulateWith(context.Background(), p, id, attempts, ScanDetector{})
			if err != nil {
				t.Fatalf("scan: %v", err)
			}
			idx, err := SimulateWith(context.Background(), p, id, attempts, IndexDetector{})
			if err != nil {
				t.Fatalf("index: %v", err)
			}
			if !reflect.DeepEqual(scan, idx) {
				t.Fatalf("seed %d %s: detectors disagree", seed, id)
			}
			if scan.Collided == 0 {
				t.Fatalf("seed %d %s: expected collisions at this load", seed, id)
			}
		}
	}
}

func TestDetectorByName(t *testing.T) {
	if d, ok := DetectorByName(""); !ok || d != (ScanDetector{}) {
		t.Fatalf("default detector should be scan, got %T", d)
	}
	if d, ok := DetectorByName("index"); !ok || d != (IndexDetector{}) {
		t.Fatalf("expected index detector, got %T", d)
	}
	if _, ok := DetectorByName("tree"); ok {
		t.Fatalf("unknown detector accepted")
	}
}
