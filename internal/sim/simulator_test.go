package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"mimac-sim/internal/config"
	"mimac-sim/internal/mac"
)

func newTestSimulator(t *testing.T, w *MockWriter) *Simulator {
	t.Helper()
	s, err := NewSimulator(config.Default(), w, w, nil)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	return s
}

func TestSimulatorRunWritesEveryProfile(t *testing.T) {
	w := &MockWriter{}
	s := newTestSimulator(t, w)

	batch, err := s.RunWithSeed(context.Background(), 42)
	if err != nil {
		t.Fatalf("RunWithSeed: %v", err)
	}
	if len(batch.Summaries) != 3 || len(w.Summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d/%d", len(batch.Summaries), len(w.Summaries))
	}
	if len(w.Rows) != 3*10 {
		t.Fatalf("expected 30 node rows, got %d", len(w.Rows))
	}
	for i, id := range mac.Profiles() {
		sum := batch.Summaries[i]
		if sum.Profile != string(id) || sum.Seed != 42+int64(i) || sum.RunID != batch.RunID {
			t.Fatalf("summary %d: %+v", i, sum)
		}
		if sum.AttemptsProcessed != sum.Collided+sum.Completed {
			t.Fatalf("summary %d accounting broken: %+v", i, sum)
		}
	}
	if batch.RunID == "" {
		t.Fatalf("missing run id")
	}
}

func TestSimulatorDeterministicPerSeed(t *testing.T) {
	s := newTestSimulator(t, &MockWriter{})
	b1, err := s.RunWithSeed(context.Background(), 7)
	if err != nil {
		t.Fatalf("RunWithSeed: %v", err)
	}
	b2, err := s.RunWithSeed(context.Background(), 7)
	if err != nil {
		t.Fatalf("RunWithSeed: %v", err)
	}
	if b1.RunID == b2.RunID {
		t.Fatalf("run ids should differ between batches")
	}
	for i := range b1.Summaries {
		a, b := b1.Summaries[i], b2.Summaries[i]
		if a.Collided != b.Collided || a.EnergyJ != b.EnergyJ || a.BytesDelivered != b.BytesDelivered {
			t.Fatalf("profile %s differs between identical seeds", a.Profile)
		}
	}
}

func TestSimulatorSetProfiles(t *testing.T) {
	s := newTestSimulator(t, &MockWriter{})
	if err := s.SetProfiles([]string{"config3", "hybrid", "sequential"}); err != nil {
		t.Fatalf("SetProfiles: %v", err)
	}
	batch, err := s.RunWithSeed(context.Background(), 1)
	if err != nil {
		t.Fatalf("RunWithSeed: %v", err)
	}
	if len(batch.Summaries) != 2 || batch.Summaries[0].Profile != "hybrid" || batch.Summaries[1].Profile != "sequential" {
		t.Fatalf("unexpected profiles: %+v", batch.Summaries)
	}
	if err := s.SetProfiles([]string{"quad"}); !errors.Is(err, mac.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
	if err := s.SetProfiles(nil); err == nil {
		t.Fatalf("expected error for empty selection")
	}
}

func TestSimulatorDetectorsAgree(t *testing.T) {
	s := newTestSimulator(t, &MockWriter{})
	if err := s.SetRate(0.2); err != nil {
		t.Fatalf("SetRate: %v", err)
	}
	scan, err := s.RunWithSeed(context.Background(), 5)
	if err != nil {
		t.Fatalf("scan run: %v", err)
	}
	s.SetDetector(mac.IndexDetector{})
	idx, err := s.RunWithSeed(context.Background(), 5)
	if err != nil {
		t.Fatalf("index run: %v", err)
	}
	for i := range scan.Summaries {
		if scan.Summaries[i].Collided != idx.Summaries[i].Collided {
			t.Fatalf("detectors disagree for %s", scan.Summaries[i].Profile)
		}
	}
}

func TestSimulatorOverridesValidate(t *testing.T) {
	s := newTestSimulator(t, &MockWriter{})
	if err := s.SetNodes(1); !errors.Is(err, mac.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
	if err := s.SetRate(0); !errors.Is(err, mac.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
	if err := s.SetNodes(4); err != nil {
		t.Fatalf("SetNodes: %v", err)
	}
	batch, err := s.RunWithSeed(context.Background(), 3)
	if err != nil {
		t.Fatalf("RunWithSeed: %v", err)
	}
	if batch.Summaries[0].Nodes != 4 || len(batch.Nodes) != 3*4 {
		t.Fatalf("node override not applied: %+v", batch.Summaries[0])
	}
}

func TestSimulatorWriterErrorsAreJoined(t *testing.T) {
	w := &MockWriter{Err: errors.New("disk full")}
	s := newTestSimulator(t, w)
	batch, err := s.RunWithSeed(context.Background(), 9)
	if err == nil {
		t.Fatalf("expected write error")
	}
	if len(batch.Summaries) != 3 {
		t.Fatalf("results should survive writer failures, got %d", len(batch.Summaries))
	}
	if got := s.Latest(); got.RunID != batch.RunID {
		t.Fatalf("latest batch not stored")
	}
}

func TestSimulatorCanceledContext(t *testing.T) {
	s := newTestSimulator(t, &MockWriter{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.RunWithSeed(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if s.Latest().RunID != "" {
		t.Fatalf("canceled run should not replace latest batch")
	}
}

func TestSimulatorTimeSeed(t *testing.T) {
	s := newTestSimulator(t, &MockWriter{})
	fixed := time.Unix(1700000000, 0)
	s.now = func() time.Time { return fixed }
	batch, err := s.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if batch.Seed != fixed.UnixNano() {
		t.Fatalf("seed=%d, want %d", batch.Seed, fixed.UnixNano())
	}
	latest := s.Latest()
	latest.Summaries[0].Profile = "mutated"
	if s.Latest().Summaries[0].Profile == "mutated" {
		t.Fatalf("Latest should return a copy")
	}
}

func TestSimulatorWritesSummariesAsOneBatch(t *testing.T) {
	w := &mockBatchWriter{}
	s, err := NewSimulator(config.Default(), w, w, nil)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	if _, err := s.RunWithSeed(context.Background(), 4); err != nil {
		t.Fatalf("RunWithSeed: %v", err)
	}
	if w.SummaryBatches != 1 || len(w.Summaries) != 3 {
		t.Fatalf("expected one batch of 3 summaries, got %d batches / %d rows", w.SummaryBatches, len(w.Summaries))
	}
	if w.Batches != 3 || len(w.Rows) != 30 {
		t.Fatalf("expected one node batch per profile, got %d batches / %d rows", w.Batches, len(w.Rows))
	}
}
