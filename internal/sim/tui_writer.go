package sim

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"mimac-sim/internal/config"
	"mimac-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a log line for the viewport.
type logMsg struct{ line string }

// summaryMsg carries a finished profile run.
type summaryMsg struct{ telemetry.RunSummaryRow }

// nodesMsg carries per-node totals of one profile run.
type nodesMsg struct{ rows []telemetry.NodeEnergyRow }

// adminMsg reports admin UI status.
type adminMsg struct{ active bool }

// TUIWriter renders results using a bubbletea TUI.
type TUIWriter struct {
	program       teaProgram
	profileColors map[string]string
	colorIdx      int
	done          chan struct{}
	sendSignal    atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter. Quitting
// the TUI interrupts the process unless Close was called first.
func NewTUIWriter(cfg *config.SimulationConfig) *TUIWriter {
	w := &TUIWriter{profileColors: make(map[string]string), done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(cfg), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

func (w *TUIWriter) getProfileColor(id string) string {
	if c, ok := w.profileColors[id]; ok {
		return c
	}
	c := profilePalette[w.colorIdx%len(profilePalette)]
	w.profileColors[id] = c
	w.colorIdx++
	return c
}

// Write implements NodeWriter.
func (w *TUIWriter) Write(row telemetry.NodeEnergyRow) error {
	return w.WriteBatch([]telemetry.NodeEnergyRow{row})
}

// WriteBatch hands the node table of one run to the TUI.
func (w *TUIWriter) WriteBatch(rows []telemetry.NodeEnergyRow) error {
	if len(rows) == 0 {
		return nil
	}
	w.program.Send(nodesMsg{rows: rows})
	return nil
}

// WriteSummary implements SummaryWriter.
func (w *TUIWriter) WriteSummary(row telemetry.RunSummaryRow) error {
	pColor := w.getProfileColor(row.Profile)
	line := fmt.Sprintf("%s[%s]%s %srun=%s%s %sprofile=%s%s collided=%d completed=%d delivered=%dB energy=%.4fmJ",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, shortID(row.RunID), colorReset,
		pColor, row.Profile, colorReset,
		row.Collided, row.Completed, row.BytesDelivered, row.EnergyJ*1e3)
	w.program.Send(logMsg{line: line})
	w.program.Send(summaryMsg{row})
	return nil
}

// SetAdminStatus implements AdminStatusWriter.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// Close stops the TUI and waits for it to restore the terminal.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	cfg        *config.SimulationConfig
	table      table.Model
	nodeVP     viewport.Model
	vp         viewport.Model
	summaries  []telemetry.RunSummaryRow
	nodes      map[string][]telemetry.NodeEnergyRow
	logs       []string
	admin      bool
	wrap       bool
	autoscroll bool
	help       bool
	width      int
	height     int
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newTUIModel(cfg *config.SimulationConfig) tuiModel {
	cols := []table.Column{
		{Title: "Profile", Width: 14},
		{Title: "Attempts", Width: 9},
		{Title: "Collided", Width: 9},
		{Title: "Completed", Width: 10},
		{Title: "Delivered (B)", Width: 14},
		{Title: "Energy (mJ)", Width: 12},
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(true), table.WithHeight(4))
	return tuiModel{
		cfg:        cfg,
		table:      t,
		nodeVP:     viewport.New(0, 0),
		vp:         viewport.New(0, 0),
		nodes:      make(map[string][]telemetry.NodeEnergyRow),
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width)
		m.nodeVP.Width = msg.Width
		m.vp.Width = msg.Width
		m.layout()
		m.refreshNodes()
		m.refreshViewport()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		case "h", "?":
			m.help = !m.help
			return m, nil
		case "pgup":
			m.vp.LineUp(1)
			return m, nil
		case "pgdown":
			m.vp.LineDown(1)
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		m.refreshNodes()
		return m, cmd
	case logMsg:
		m.logs = append(m.logs, msg.line)
		m.refreshViewport()
	case summaryMsg:
		m.upsertSummary(msg.RunSummaryRow)
		m.refreshNodes()
	case nodesMsg:
		m.nodes[msg.rows[0].Profile] = msg.rows
		m.refreshNodes()
	case adminMsg:
		m.admin = msg.active
	}
	return m, nil
}

// upsertSummary keeps one table row per profile, newest run wins.
func (m *tuiModel) upsertSummary(row telemetry.RunSummaryRow) {
	replaced := false
	for i, s := range m.summaries {
		if s.Profile == row.Profile {
			m.summaries[i] = row
			replaced = true
		}
	}
	if !replaced {
		m.summaries = append(m.summaries, row)
	}
	rows := make([]table.Row, 0, len(m.summaries))
	for _, s := range m.summaries {
		rows = append(rows, table.Row{
			s.Profile,
			fmt.Sprintf("%d", s.AttemptsProcessed),
			fmt.Sprintf("%d", s.Collided),
			fmt.Sprintf("%d", s.Completed),
			fmt.Sprintf("%d", s.BytesDelivered),
			fmt.Sprintf("%.4f", s.EnergyJ*1e3),
		})
	}
	m.table.SetRows(rows)
	m.table.SetHeight(len(rows) + 1)
	m.layout()
}

func (m tuiModel) selectedProfile() string {
	if r := m.table.SelectedRow(); len(r) > 0 {
		return r[0]
	}
	return ""
}

func (m *tuiModel) layout() {
	if m.height == 0 {
		return
	}
	rest := m.height - lipgloss.Height(m.renderHeader()) - lipgloss.Height(m.table.View()) - lipgloss.Height(m.renderBottom()) - 4
	if rest < 2 {
		rest = 2
	}
	m.nodeVP.Height = rest / 2
	m.vp.Height = rest - m.nodeVP.Height
}

func (m *tuiModel) refreshNodes() {
	rows := m.nodes[m.selectedProfile()]
	if len(rows) == 0 {
		m.nodeVP.SetContent("no node data")
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %12s %10s %14s\n", "Node", "Energy (mJ)", "Sent (B)", "Delivered (B)")
	energy := make([]float64, 0, len(rows))
	for _, r := range rows {
		fmt.Fprintf(&b, "%-6d %12.4f %10d %14d\n", r.Node, r.EnergyJ*1e3, r.BytesSent, r.BytesDelivered)
		energy = append(energy, r.EnergyJ*1e3)
	}
	d := describe(energy)
	fmt.Fprintf(&b, "energy mJ: mean=%.4f std=%.4f min=%.4f max=%.4f", d.Mean, d.Std, d.Min, d.Max)
	m.nodeVP.SetContent(b.String())
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap && m.vp.Width > 0 {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := dimStyle.Render(strings.Repeat("─", m.width))
	return strings.Join([]string{
		m.renderHeader(),
		m.table.View(),
		divider,
		m.nodeVP.View(),
		divider,
		m.vp.View(),
		m.renderBottom(),
	}, "\n")
}

func (m tuiModel) renderHeader() string {
	title := titleStyle.Render("MI MAC simulator")
	if m.cfg == nil {
		return title
	}
	info := fmt.Sprintf("nodes=%d horizon=%.0fms rate=%.4f/ms seed=%d", m.cfg.Nodes, m.cfg.HorizonMS, m.cfg.RatePerMS, m.cfg.Seed)
	if m.wrap && m.width > 0 {
		info = wordwrap.String(info, m.width)
	}
	return title + "\n" + dimStyle.Render(info)
}

func indicator(on bool) string {
	c := lipgloss.Color("9")
	if on {
		c = lipgloss.Color("10")
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

func (m tuiModel) renderBottom() string {
	return fmt.Sprintf("%s admin  %s wrap  %s scroll  %s",
		indicator(m.admin), indicator(m.wrap), indicator(m.autoscroll),
		dimStyle.Render("↑/↓ select profile · w wrap · s scroll · h help · q quit"))
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		titleStyle.Render("Keys"),
		"↑/↓      select profile",
		"pgup/dn  scroll log",
		"w        toggle wrap",
		"s        toggle autoscroll",
		"h, ?     toggle help",
		"q        quit",
	}
	return strings.Join(lines, "\n")
}
