package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"mimac-sim/internal/telemetry"
)

// JSONStdoutWriter prints node and summary rows as JSON to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// Write outputs a node row in JSON format.
func (w *JSONStdoutWriter) Write(row telemetry.NodeEnergyRow) error {
	return w.emit(row)
}

// WriteBatch outputs multiple node rows in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []telemetry.NodeEnergyRow) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary outputs a run summary in JSON format.
func (w *JSONStdoutWriter) WriteSummary(row telemetry.RunSummaryRow) error {
	return w.emit(row)
}
