package sim

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mimac-sim/internal/telemetry"
)

func TestReplayLog(t *testing.T) {
	rows := []telemetry.NodeEnergyRow{
		{RunID: "r", Node: 0, Timestamp: time.Unix(0, 0)},
		{RunID: "r", Node: 1, Timestamp: time.Unix(1, 0)},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	cw := &MockWriter{}
	if err := ReplayLog(&buf, cw, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if len(cw.Rows) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(cw.Rows))
	}
	for i, r := range rows {
		if cw.Rows[i].Node != r.Node {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, cw.Rows[i], r)
		}
	}
}

func TestReplaySummaryLog(t *testing.T) {
	in := `{"run_id":"r","profile":"hybrid","collided":3,"ts":"2025-01-01T00:00:00Z"}` + "\n"
	cw := &MockWriter{}
	if err := ReplaySummaryLog(strings.NewReader(in), cw, 0); err != nil {
		t.Fatalf("ReplaySummaryLog: %v", err)
	}
	if len(cw.Summaries) != 1 || cw.Summaries[0].Collided != 3 {
		t.Fatalf("unexpected summaries: %+v", cw.Summaries)
	}
}

func TestReplayLogMalformed(t *testing.T) {
	if err := ReplayLog(strings.NewReader("{not json"), &MockWriter{}, 0); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestReplayLogFileMissing(t *testing.T) {
	if err := ReplayLogFile(filepath.Join(t.TempDir(), "absent.jsonl"), &MockWriter{}, 0); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
