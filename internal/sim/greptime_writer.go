package sim

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"mimac-sim/internal/telemetry"
)

// greptimeClient is the subset of the ingester client the writer needs.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes node and summary rows to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client       greptimeClient
	nodeTable    string
	summaryTable string
}

// NewGreptimeDBWriter connects to endpoint (host or host:port). Empty table
// names fall back to the telemetry package defaults.
func NewGreptimeDBWriter(endpoint, database, nodeTable, summaryTable string) (*GreptimeDBWriter, error) {
	host, port := endpoint, 0
	if h, p, err := net.SplitHostPort(endpoint); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid GreptimeDB port %q: %w", p, err)
		}
		host, port = h, n
	}
	cfg := greptime.NewConfig(host).WithDatabase(database)
	if port != 0 {
		cfg = cfg.WithPort(port)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if nodeTable == "" {
		nodeTable = telemetry.NodeTableName
	}
	if summaryTable == "" {
		summaryTable = telemetry.SummaryTableName
	}
	return &GreptimeDBWriter{client: client, nodeTable: nodeTable, summaryTable: summaryTable}, nil
}

// Write inserts a single node row.
func (w *GreptimeDBWriter) Write(row telemetry.NodeEnergyRow) error {
	return w.WriteBatch([]telemetry.NodeEnergyRow{row})
}

// WriteBatch inserts multiple node rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.NodeEnergyRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.nodeTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("run_id", types.STRING)
	tbl.AddTagColumn("profile", types.STRING)
	tbl.AddTagColumn("node", types.INT64)
	tbl.AddFieldColumn("energy_j", types.FLOAT64)
	tbl.AddFieldColumn("bytes_sent", types.INT64)
	tbl.AddFieldColumn("bytes_delivered", types.INT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.RunID, r.Profile, int64(r.Node), r.EnergyJ, int64(r.BytesSent), int64(r.BytesDelivered), r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(tbl, w.nodeTable, len(rows))
}

// WriteSummary inserts a single run summary.
func (w *GreptimeDBWriter) WriteSummary(row telemetry.RunSummaryRow) error {
	return w.WriteSummaries([]telemetry.RunSummaryRow{row})
}

// WriteSummaries inserts multiple run summaries.
func (w *GreptimeDBWriter) WriteSummaries(rows []telemetry.RunSummaryRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.summaryTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("run_id", types.STRING)
	tbl.AddTagColumn("profile", types.STRING)
	tbl.AddFieldColumn("seed", types.INT64)
	tbl.AddFieldColumn("nodes", types.INT64)
	tbl.AddFieldColumn("horizon_ms", types.FLOAT64)
	tbl.AddFieldColumn("rate_per_ms", types.FLOAT64)
	tbl.AddFieldColumn("attempts_generated", types.INT64)
	tbl.AddFieldColumn("attempts_processed", types.INT64)
	tbl.AddFieldColumn("collided", types.INT64)
	tbl.AddFieldColumn("completed", types.INT64)
	tbl.AddFieldColumn("bytes_sent", types.INT64)
	tbl.AddFieldColumn("bytes_delivered", types.INT64)
	tbl.AddFieldColumn("energy_j", types.FLOAT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		err := tbl.AddRow(
			r.RunID, r.Profile,
			r.Seed, int64(r.Nodes), r.HorizonMS, r.RatePerMS,
			int64(r.AttemptsGenerated), int64(r.AttemptsProcessed),
			int64(r.Collided), int64(r.Completed),
			int64(r.BytesSent), int64(r.BytesDelivered),
			r.EnergyJ, r.Timestamp,
		)
		if err != nil {
			return err
		}
	}
	return w.write(tbl, w.summaryTable, len(rows))
}

func (w *GreptimeDBWriter) write(tbl *table.Table, name string, n int) error {
	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		slog.Error("greptime write failed", "table", name, "err", err)
		return err
	}
	slog.Debug("greptime write", "table", name, "rows", n)
	return nil
}
