// Package dashboard is a live, re-polling bubbletea table view of
// every configured service, used by "ada dashboard". It never mutates
// anything; it only reads through a status.Reader on a fixed ticker.
package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ada-cli/ada/internal/status"
)

// pollInterval matches the documented 2s dashboard refresh cadence.
const pollInterval = 2 * time.Second

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	runningFg   = lipgloss.Color("10")
	stoppedFg   = lipgloss.Color("8")
	crashFg     = lipgloss.Color("9")
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type tickMsg time.Time

type entriesMsg struct {
	entries []status.Entry
	err     error
}

// model is the bubbletea model backing the dashboard.
type model struct {
	reader *status.Reader
	table  table.Model
	err    error
}

// New returns a tea.Program wired to reader, ready to Run.
func New(reader *status.Reader) *tea.Program {
	columns := []table.Column{
		{Title: "NAME", Width: 20},
		{Title: "STATE", Width: 12},
		{Title: "PID", Width: 8},
		{Title: "UPTIME", Width: 10},
		{Title: "RESTARTS", Width: 9},
		{Title: "LAST LOG", Width: 40},
	}
	t := table.New(table.WithColumns(columns), table.WithFocused(false), table.WithHeight(15))
	m := model{reader: reader, table: t}
	return tea.NewProgram(m)
}

func (m model) Init() tea.Cmd {
	return tea.Batch(pollOnce(m.reader), tick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		return m, tea.Batch(pollOnce(m.reader), tick())
	case entriesMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.table.SetRows(rowsFor(msg.entries))
	}
	return m, nil
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("error reading status: %v\n\n%s", m.err, footerStyle.Render("q to quit"))
	}
	return headerStyle.Render("ada dashboard") + "\n\n" + m.table.View() + "\n\n" + footerStyle.Render("q to quit · refreshes every 2s")
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func pollOnce(r *status.Reader) tea.Cmd {
	return func() tea.Msg {
		entries, err := r.All()
		return entriesMsg{entries: entries, err: err}
	}
}

func rowsFor(entries []status.Entry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		pid := "-"
		if e.HasPID {
			pid = fmt.Sprintf("%d", e.PID)
		}
		uptime := e.Uptime
		if uptime == "" {
			uptime = "-"
		}
		rows = append(rows, table.Row{
			e.Name,
			stateLabel(e.State),
			pid,
			uptime,
			fmt.Sprintf("%d", e.RestartCount),
			e.LastLogLine,
		})
	}
	return rows
}

func stateLabel(s status.State) string {
	switch s {
	case status.Running:
		return lipgloss.NewStyle().Foreground(runningFg).Render(string(s))
	case status.CrashLoop:
		return lipgloss.NewStyle().Foreground(crashFg).Bold(true).Render(string(s))
	default:
		return lipgloss.NewStyle().Foreground(stoppedFg).Render(string(s))
	}
}
