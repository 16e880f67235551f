package mac

import (
	"errors"
	"testing"
)

func TestParseProfileID(t *testing.T) {
	cases := map[string]ProfileID{
		"sequential":    Sequential,
		"config1":       Sequential,
		" Simultaneous": Simultaneous,
		"config2":       Simultaneous,
		"HYBRID":        Hybrid,
		"config3":       Hybrid,
	}
	for in, want := range cases {
		got, err := ParseProfileID(in)
		if err != nil {
			t.Fatalf("ParseProfileID(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseProfileID(%q)=%s, want %s", in, got, want)
		}
	}
	if _, err := ParseProfileID("config4"); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
}

func TestDefaultTable(t *testing.T) {
	tbl := DefaultTable()
	seq := tbl.Lookup(Sequential)
	if seq.WakeUp.Duration != 3 || seq.WakeUp.Current != txLowA {
		t.Errorf("sequential wake-up: %+v", seq.WakeUp)
	}
	if seq.Data.Duration != 9 || seq.Data.Current != txLowA {
		t.Errorf("sequential data: %+v", seq.Data)
	}
	sim := tbl.Lookup(Simultaneous)
	if sim.WakeUp.Duration != 1 || sim.Ack.Current != txHighA || sim.Data.Current != txHighA {
		t.Errorf("simultaneous: %+v", sim)
	}
	hyb := tbl.Lookup(Hybrid)
	if hyb.WakeUp.Duration != 3 || hyb.WakeUp.Current != txHighA {
		t.Errorf("hybrid wake-up: %+v", hyb.WakeUp)
	}
	if hyb.Ack.Current != txLowA || hyb.Data.Current != txLowA || hyb.Data.Duration != 3 {
		t.Errorf("hybrid ack/data: %+v", hyb)
	}
	for _, id := range Profiles() {
		if tbl.Lookup(id).Ack.Duration != 0.7 {
			t.Errorf("%s ack duration = %g", id, tbl.Lookup(id).Ack.Duration)
		}
	}
}

func TestLookupUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	DefaultTable().Lookup("config1")
}

func TestProfileSpec(t *testing.T) {
	p := DefaultTable().Lookup(Hybrid)
	if p.Spec(PhaseWakeUp) != p.WakeUp || p.Spec(PhaseAck) != p.Ack || p.Spec(PhaseData) != p.Data {
		t.Fatalf("Spec does not match fields: %+v", p)
	}
}
