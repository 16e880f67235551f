// ColorStdoutWriter prints human-friendly, colorized results to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"mimac-sim/internal/config"
	"mimac-sim/internal/mac"
	"mimac-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints summaries and per-node tables using ANSI colors.
type ColorStdoutWriter struct {
	cfg           *config.SimulationConfig
	out           io.Writer
	once          sync.Once
	profileColors map[string]string
	colorIdx      int
}

var profilePalette = []string{colorGreen, colorYellow, colorMagenta, colorCyan, colorBlue, colorRed}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{
		cfg:           cfg,
		out:           os.Stdout,
		profileColors: make(map[string]string),
	}
}

func (w *ColorStdoutWriter) getProfileColor(id string) string {
	if c, ok := w.profileColors[id]; ok {
		return c
	}
	c := profilePalette[w.colorIdx%len(profilePalette)]
	w.profileColors[id] = c
	w.colorIdx++
	return c
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}
	params, err := w.cfg.Params()
	if err != nil {
		return
	}

	fmt.Fprintln(w.out, "Simulation Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Nodes:\t%d\n", params.Nodes)
	fmt.Fprintf(tw, "Horizon (ms):\t%.1f\n", params.Horizon)
	fmt.Fprintf(tw, "Rate (1/ms/node):\t%.4f\n", params.Rate)
	fmt.Fprintf(tw, "Seed:\t%d\n", w.cfg.Seed)
	fmt.Fprintf(tw, "Supply (V):\t%.2f\n", params.Electrical.SupplyVoltage)
	fmt.Fprintf(tw, "Packets (W/ACK/DATA bytes):\t%d/%d/%d\n", params.Packets.WakeUp, params.Packets.Ack, params.Packets.Data)
	tw.Flush()

	fmt.Fprintln(w.out, "\nProfiles:")
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tWake-up\tAck\tData\n")
	for _, id := range mac.Profiles() {
		p := params.Table.Lookup(id)
		col := w.getProfileColor(string(id))
		fmt.Fprintf(tw, "%s%s%s\t%s\t%s\t%s\n", col, id, colorReset, phaseLabel(p.WakeUp), phaseLabel(p.Ack), phaseLabel(p.Data))
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

func phaseLabel(s mac.PhaseSpec) string {
	return fmt.Sprintf("%.1fms@%.0fmA", s.Duration, s.Current*1e3)
}

// WriteSummary prints one profile run.
func (w *ColorStdoutWriter) WriteSummary(row telemetry.RunSummaryRow) error {
	w.once.Do(w.printOverview)
	pColor := w.getProfileColor(row.Profile)
	collColor := colorGreen
	if row.Collided > 0 {
		collColor = colorRed
	}
	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%srun=%s%s ", colorBlue, shortID(row.RunID), colorReset)
	fmt.Fprintf(w.out, "%sprofile=%s%s ", pColor, row.Profile, colorReset)
	fmt.Fprintf(w.out, "attempts=%d/%d ", row.AttemptsProcessed, row.AttemptsGenerated)
	fmt.Fprintf(w.out, "%scollided=%d%s ", collColor, row.Collided, colorReset)
	fmt.Fprintf(w.out, "%scompleted=%d%s ", colorGreen, row.Completed, colorReset)
	fmt.Fprintf(w.out, "%ssent=%dB%s ", colorYellow, row.BytesSent, colorReset)
	fmt.Fprintf(w.out, "%sdelivered=%dB%s ", colorCyan, row.BytesDelivered, colorReset)
	fmt.Fprintf(w.out, "%senergy=%.4fmJ%s\n", colorMagenta, row.EnergyJ*1e3, colorReset)
	return nil
}

// Write outputs a single node row.
func (w *ColorStdoutWriter) Write(row telemetry.NodeEnergyRow) error {
	w.once.Do(w.printOverview)
	pColor := w.getProfileColor(row.Profile)
	fmt.Fprintf(w.out, "%s%s%s node=%d energy=%.4fmJ sent=%dB delivered=%dB\n",
		pColor, row.Profile, colorReset, row.Node, row.EnergyJ*1e3, row.BytesSent, row.BytesDelivered)
	return nil
}

// WriteBatch prints a per-node table for one profile followed by
// describe-style statistics of energy and delivered bytes.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.NodeEnergyRow) error {
	w.once.Do(w.printOverview)
	if len(rows) == 0 {
		return nil
	}
	pColor := w.getProfileColor(rows[0].Profile)
	fmt.Fprintf(w.out, "%s%s%s %srun=%s%s\n", pColor, rows[0].Profile, colorReset, colorBlue, shortID(rows[0].RunID), colorReset)
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Node\tEnergy (mJ)\tSent (B)\tDelivered (B)\t\n")
	energy := make([]float64, 0, len(rows))
	delivered := make([]float64, 0, len(rows))
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%.4f\t%d\t%d\t\n", r.Node, r.EnergyJ*1e3, r.BytesSent, r.BytesDelivered)
		energy = append(energy, r.EnergyJ*1e3)
		delivered = append(delivered, float64(r.BytesDelivered))
	}
	tw.Flush()

	e, d := describe(energy), describe(delivered)
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\tEnergy (mJ)\tDelivered (B)\t%s\n", colorGray, colorReset)
	for _, s := range []struct {
		name string
		e, d float64
	}{
		{"count", float64(e.Count), float64(d.Count)},
		{"mean", e.Mean, d.Mean},
		{"std", e.Std, d.Std},
		{"min", e.Min, d.Min},
		{"25%", e.Q25, d.Q25},
		{"50%", e.Q50, d.Q50},
		{"75%", e.Q75, d.Q75},
		{"max", e.Max, d.Max},
	} {
		fmt.Fprintf(tw, "%s\t%.4f\t%.2f\t\n", s.name, s.e, s.d)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
