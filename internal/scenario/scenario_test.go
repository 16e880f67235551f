package scenario

import (
	"errors"
	"slices"
	"testing"
)

func TestLoadSweep(t *testing.T) {
	sw, err := Load("testdata/simple.yaml")
	if err != nil {
		t.Fatalf("load sweep: %v", err)
	}
	if sw.Name != "example" {
		t.Fatalf("unexpected name %s", sw.Name)
	}
	if sw.Description != "basic test sweep" {
		t.Fatalf("unexpected description %s", sw.Description)
	}
	if sw.Nodes != 4 || sw.HorizonMS != 100 {
		t.Fatalf("unexpected size %d/%g", sw.Nodes, sw.HorizonMS)
	}
	if !slices.Equal(sw.Profiles, []string{"sequential", "config3"}) {
		t.Fatalf("unexpected profiles %v", sw.Profiles)
	}
	if got := sw.SortedRates(); !slices.Equal(got, []float64{0.01, 0.02}) {
		t.Fatalf("unexpected sorted rates %v", got)
	}
}

func TestLoadSweepErrors(t *testing.T) {
	if _, err := Load("testdata/missing.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := Load("testdata/bad_profile.yaml"); !errors.Is(err, ErrInvalidSweep) {
		t.Fatalf("expected ErrInvalidSweep, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		s    Sweep
		ok   bool
	}{
		{"valid", Sweep{Rates: []float64{0.1}}, true},
		{"no rates", Sweep{}, false},
		{"zero rate", Sweep{Rates: []float64{0}}, false},
		{"one node", Sweep{Rates: []float64{0.1}, Nodes: 1}, false},
		{"negative horizon", Sweep{Rates: []float64{0.1}, HorizonMS: -1}, false},
		{"alias profile", Sweep{Rates: []float64{0.1}, Profiles: []string{"config2"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.s.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidSweep) {
				t.Fatalf("expected ErrInvalidSweep, got %v", err)
			}
		})
	}
}

func TestBuiltInSweeps(t *testing.T) {
	sweeps := BuiltIn()
	for _, n := range []string{"light", "moderate", "saturated"} {
		sw, ok := sweeps[n]
		if !ok {
			t.Fatalf("sweep %s not found", n)
		}
		if sw.Description == "" {
			t.Fatalf("sweep %s missing description", n)
		}
		if err := sw.Validate(); err != nil {
			t.Fatalf("sweep %s invalid: %v", n, err)
		}
		if !slices.IsSorted(sw.Rates) {
			t.Fatalf("sweep %s rates not ascending", n)
		}
	}
}
