package sim

import "mimac-sim/internal/telemetry"

// MultiWriter fan-outs node and summary rows to multiple writers.
type MultiWriter struct {
	nodeWriters    []NodeWriter
	summaryWriters []SummaryWriter
}

// NewMultiWriter creates a new MultiWriter. Nil entries are skipped.
func NewMultiWriter(nws []NodeWriter, sws []SummaryWriter) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range nws {
		if w != nil {
			mw.nodeWriters = append(mw.nodeWriters, w)
		}
	}
	for _, w := range sws {
		if w != nil {
			mw.summaryWriters = append(mw.summaryWriters, w)
		}
	}
	return mw
}

// Write sends a node row to all writers.
func (mw *MultiWriter) Write(row telemetry.NodeEnergyRow) error {
	for _, w := range mw.nodeWriters {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple node rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.NodeEnergyRow) error {
	for _, w := range mw.nodeWriters {
		if err := writeNodes(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary sends a summary row to all summary writers.
func (mw *MultiWriter) WriteSummary(row telemetry.RunSummaryRow) error {
	for _, w := range mw.summaryWriters {
		if err := w.WriteSummary(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummaries sends multiple summaries to all summary writers, using batch if supported.
func (mw *MultiWriter) WriteSummaries(rows []telemetry.RunSummaryRow) error {
	for _, w := range mw.summaryWriters {
		if err := writeSummaries(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// SetAdminStatus forwards the admin UI state to writers that display it.
func (mw *MultiWriter) SetAdminStatus(listening bool) {
	for _, w := range mw.nodeWriters {
		if aw, ok := w.(AdminStatusWriter); ok {
			aw.SetAdminStatus(listening)
		}
	}
}
