package sim

import "mimac-sim/internal/telemetry"

// NodeWriter is an interface to support different output writers.
type NodeWriter interface {
	Write(telemetry.NodeEnergyRow) error
}

// Optional: Writers can also support batch mode
type batchWriter interface {
	WriteBatch([]telemetry.NodeEnergyRow) error
}

// SummaryWriter receives one row per profile run.
type SummaryWriter interface {
	WriteSummary(telemetry.RunSummaryRow) error
}

// Optional: Summary writers may support batch mode.
type batchSummaryWriter interface {
	WriteSummaries([]telemetry.RunSummaryRow) error
}

// AdminStatusWriter allows writers to receive admin UI status updates.
type AdminStatusWriter interface {
	SetAdminStatus(listening bool)
}

func writeNodes(w NodeWriter, rows []telemetry.NodeEnergyRow) error {
	if bw, ok := w.(batchWriter); ok {
		return bw.WriteBatch(rows)
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

func writeSummaries(w SummaryWriter, rows []telemetry.RunSummaryRow) error {
	if bw, ok := w.(batchSummaryWriter); ok {
		return bw.WriteSummaries(rows)
	}
	for _, r := range rows {
		if err := w.WriteSummary(r); err != nil {
			return err
		}
	}
	return nil
}
