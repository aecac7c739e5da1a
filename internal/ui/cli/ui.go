package cli

import (
	"fmt"
	"time"

	"crateview/internal/analysis"
	"crateview/internal/core/app"
	"crateview/internal/ui/report"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// diagnosticItem is one row of the watch view.
type diagnosticItem struct {
	title, desc string
}

func (i diagnosticItem) Title() string       { return i.title }
func (i diagnosticItem) Description() string { return i.desc }
func (i diagnosticItem) FilterValue() string { return i.title + " " + i.desc }

func newDiagnosticItem(r app.FileReport, d analysis.Diagnostic) diagnosticItem {
	lc := r.Lines.LineCol(d.Range.Start)
	desc := fmt.Sprintf("%s:%d:%d %s", r.Path, lc.Line+1, lc.Col+1, d.Message)
	if d.Fix != nil {
		desc += " (fix: " + d.Fix.Label + ")"
	}
	return diagnosticItem{title: fmt.Sprintf("%s[%s]", d.Severity, d.Code), desc: desc}
}

// updateMsg carries a recheck into the program.
type updateMsg app.Update

type model struct {
	list        list.Model
	root        string
	lastUpdate  time.Time
	fileCount   int
	changed     int
	problems    int
	reportFiles int
}

func initialModel(root string) model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Diagnostics"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{list: l, root: root, lastUpdate: time.Now()}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering && (msg.String() == "ctrl+c" || msg.String() == "q") {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		var items []list.Item
		for _, r := range msg.Reports {
			for _, d := range r.Diagnostics {
				items = append(items, newDiagnosticItem(r, d))
			}
		}
		m.fileCount = msg.FileCount
		m.changed = msg.Changed
		m.problems = len(items)
		m.reportFiles = len(msg.Reports)
		m.lastUpdate = time.Now()
		cmd := m.list.SetItems(items)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %s | %d files | %d changed",
		m.lastUpdate.Format("15:04:05"), m.fileCount, m.changed))
	header := fmt.Sprintf("%s\n%s | %s\n",
		titleStyle("crateview "+m.root), status, report.Summary(m.problems, m.reportFiles))
	return docStyle.Render(header + "\n" + m.list.View())
}
