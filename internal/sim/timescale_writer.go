package sim

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"mimac-sim/internal/telemetry"
)

// TimescaleWriter stores node and summary rows in TimescaleDB (or plain
// PostgreSQL). Inserts are idempotent on the row identity.
type TimescaleWriter struct {
	db           *sql.DB
	nodeTable    string
	summaryTable string
}

// OpenTimescale opens a PostgreSQL connection pool for connString.
func OpenTimescale(connString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("open timescale: %w", err)
	}
	return db, nil
}

// NewTimescaleWriter wraps db. Empty table names fall back to the telemetry
// package defaults.
func NewTimescaleWriter(db *sql.DB, nodeTable, summaryTable string) *TimescaleWriter {
	if nodeTable == "" {
		nodeTable = telemetry.NodeTableName
	}
	if summaryTable == "" {
		summaryTable = telemetry.SummaryTableName
	}
	return &TimescaleWriter{db: db, nodeTable: nodeTable, summaryTable: summaryTable}
}

// Write inserts a single node row.
func (t *TimescaleWriter) Write(row telemetry.NodeEnergyRow) error {
	return t.WriteBatch([]telemetry.NodeEnergyRow{row})
}

// WriteBatch inserts node rows with multi-row statements.
func (t *TimescaleWriter) WriteBatch(rows []telemetry.NodeEnergyRow) error {
	cols := []string{"run_id", "profile", "node", "energy_j", "bytes_sent", "bytes_delivered", "ts"}
	return t.insert(t.nodeTable, cols, "run_id, profile, node", len(rows), func(i int) []any {
		r := rows[i]
		return []any{r.RunID, r.Profile, r.Node, r.EnergyJ, r.BytesSent, r.BytesDelivered, r.Timestamp}
	})
}

// WriteSummary inserts a single run summary.
func (t *TimescaleWriter) WriteSummary(row telemetry.RunSummaryRow) error {
	return t.WriteSummaries([]telemetry.RunSummaryRow{row})
}

// WriteSummaries inserts run summaries with multi-row statements.
func (t *TimescaleWriter) WriteSummaries(rows []telemetry.RunSummaryRow) error {
	cols := []string{
		"run_id", "profile", "seed", "nodes", "horizon_ms", "rate_per_ms",
		"attempts_generated", "attempts_processed", "collided", "completed",
		"bytes_sent", "bytes_delivered", "energy_j", "ts",
	}
	return t.insert(t.summaryTable, cols, "run_id, profile", len(rows), func(i int) []any {
		r := rows[i]
		return []any{
			r.RunID, r.Profile, r.Seed, r.Nodes, r.HorizonMS, r.RatePerMS,
			r.AttemptsGenerated, r.AttemptsProcessed, r.Collided, r.Completed,
			r.BytesSent, r.BytesDelivered, r.EnergyJ, r.Timestamp,
		}
	})
}

// maxPlaceholders is PostgreSQL's limit on bind parameters per statement.
var maxPlaceholders = 65535

// insert writes n rows in as few statements as the placeholder limit allows.
// Statements are idempotent, so a failed chunk can simply be retried.
func (t *TimescaleWriter) insert(table string, cols []string, key string, n int, row func(int) []any) error {
	perStmt := max(maxPlaceholders/len(cols), 1)
	for start := 0; start < n; start += perStmt {
		end := min(start+perStmt, n)
		args := make([]any, 0, (end-start)*len(cols))
		for i := start; i < end; i++ {
			args = append(args, row(i)...)
		}
		if _, err := t.db.Exec(insertStatement(table, cols, end-start, key), args...); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return nil
}

// quoteTable quotes each part of a possibly schema-qualified table name.
func quoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// insertStatement builds INSERT ... VALUES ($1,..),(..) ON CONFLICT (key) DO NOTHING.
func insertStatement(table string, cols []string, n int, key string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quoteTable(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(") VALUES ")
	arg := 1
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(")
		for j := range cols {
			if j > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "$%d", arg)
			arg++
		}
		b.WriteString(")")
	}
	b.WriteString(" ON CONFLICT (")
	b.WriteString(key)
	b.WriteString(") DO NOTHING")
	return b.String()
}
