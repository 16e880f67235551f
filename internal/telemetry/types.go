// Result rows with greptime tags
package telemetry

import (
	"os"
	"time"

	"mimac-sim/internal/mac"
)

// NodeEnergyRow is the final tally of one node in one run.
type NodeEnergyRow struct {
	RunID          string    `json:"run_id"`          // TAG
	Profile        string    `json:"profile"`         // TAG
	Node           int       `json:"node"`            // TAG
	EnergyJ        float64   `json:"energy_j"`        // FIELD
	BytesSent      int       `json:"bytes_sent"`      // FIELD
	BytesDelivered int       `json:"bytes_delivered"` // FIELD
	Timestamp      time.Time `json:"ts"`              // TIME INDEX
}

// RunSummaryRow aggregates one run of one coil configuration.
type RunSummaryRow struct {
	RunID             string    `json:"run_id"`  // TAG
	Profile           string    `json:"profile"` // TAG
	Seed              int64     `json:"seed"`
	Nodes             int       `json:"nodes"`
	HorizonMS         float64   `json:"horizon_ms"`
	RatePerMS         float64   `json:"rate_per_ms"`
	AttemptsGenerated int       `json:"attempts_generated"`
	AttemptsProcessed int       `json:"attempts_processed"`
	Collided          int       `json:"collided"`
	Completed         int       `json:"completed"`
	BytesSent         int       `json:"bytes_sent"`
	BytesDelivered    int       `json:"bytes_delivered"`
	EnergyJ           float64   `json:"energy_j"`
	Timestamp         time.Time `json:"ts"` // TIME INDEX
}

// NodeTableName holds the per-node table name. It defaults to
// "mimac_node_energy" and can be overridden via GREPTIMEDB_NODE_TABLE.
var NodeTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_NODE_TABLE"); env != "" {
		return env
	}
	return "mimac_node_energy"
}()

// SummaryTableName defaults to "mimac_run_summary"; override with
// GREPTIMEDB_SUMMARY_TABLE.
var SummaryTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_SUMMARY_TABLE"); env != "" {
		return env
	}
	return "mimac_run_summary"
}()

func (NodeEnergyRow) TableName() string { return NodeTableName }

func (RunSummaryRow) TableName() string { return SummaryTableName }

// FromResult flattens an engine result into one summary row and one row per
// node, all stamped with runID and ts.
func FromResult(runID string, seed int64, res mac.Result, ts time.Time) (RunSummaryRow, []NodeEnergyRow) {
	profile := string(res.Profile)
	summary := RunSummaryRow{
		RunID:             runID,
		Profile:           profile,
		Seed:              seed,
		Nodes:             res.NodeCount,
		HorizonMS:         res.Horizon,
		RatePerMS:         res.Rate,
		AttemptsGenerated: res.AttemptsGenerated,
		AttemptsProcessed: res.AttemptsProcessed,
		Collided:          res.Collided,
		Completed:         res.Completed,
		BytesSent:         res.BytesSent,
		BytesDelivered:    res.BytesDelivered,
		EnergyJ:           res.EnergyJ,
		Timestamp:         ts,
	}
	nodes := make([]NodeEnergyRow, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		nodes = append(nodes, NodeEnergyRow{
			RunID:          runID,
			Profile:        profile,
			Node:           n.Node,
			EnergyJ:        n.EnergyJ,
			BytesSent:      n.BytesSent,
			BytesDelivered: n.BytesDelivered,
			Timestamp:      ts,
		})
	}
	return summary, nodes
}
