package sim

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"mimac-sim/internal/telemetry"
)

// ReplayLog replays node rows from r to writer. A speed >0 accelerates playback
// relative to the row timestamps. If speed <= 0, no artificial delay is inserted.
func ReplayLog(r io.Reader, writer NodeWriter, speed float64) error {
	return replayJSONL(r, speed, func(row telemetry.NodeEnergyRow) time.Time { return row.Timestamp }, writer.Write)
}

// ReplaySummaryLog replays run summaries from r to writer.
func ReplaySummaryLog(r io.Reader, writer SummaryWriter, speed float64) error {
	return replayJSONL(r, speed, func(row telemetry.RunSummaryRow) time.Time { return row.Timestamp }, writer.WriteSummary)
}

// ReplayLogFile opens a file and replays its node rows.
func ReplayLogFile(path string, writer NodeWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}

// ReplaySummaryLogFile opens a file and replays its summaries.
func ReplaySummaryLogFile(path string, writer SummaryWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplaySummaryLog(f, writer, speed)
}

func replayJSONL[T any](r io.Reader, speed float64, stamp func(T) time.Time, emit func(T) error) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	for {
		var row T
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		ts := stamp(row)
		if !prev.IsZero() && speed > 0 {
			diff := ts.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		if err := emit(row); err != nil {
			return err
		}
		prev = ts
	}
}
