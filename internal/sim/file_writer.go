package sim

import (
	"encoding/json"
	"os"

	"mimac-sim/internal/telemetry"
)

// FileWriter writes node and summary rows to JSONL files.
type FileWriter struct {
	nodeFile    *os.File
	summaryFile *os.File
	nodeEnc     *json.Encoder
	summaryEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. summaryPath may be empty to skip the summary log.
func NewFileWriter(nodePath, summaryPath string) (*FileWriter, error) {
	nf, err := os.Create(nodePath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{nodeFile: nf, nodeEnc: json.NewEncoder(nf)}
	if summaryPath != "" {
		sf, err := os.Create(summaryPath)
		if err != nil {
			nf.Close()
			return nil, err
		}
		fw.summaryFile = sf
		fw.summaryEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// Write logs a single node row.
func (f *FileWriter) Write(row telemetry.NodeEnergyRow) error {
	return f.nodeEnc.Encode(row)
}

// WriteBatch logs multiple node rows.
func (f *FileWriter) WriteBatch(rows []telemetry.NodeEnergyRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary logs a run summary, if enabled.
func (f *FileWriter) WriteSummary(row telemetry.RunSummaryRow) error {
	if f.summaryEnc == nil {
		return nil
	}
	return f.summaryEnc.Encode(row)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.nodeFile != nil {
		if e := f.nodeFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.summaryFile != nil {
		if e := f.summaryFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
