// Package report renders analysis results for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"crateview/internal/analysis"
	"crateview/internal/core/app"
	"crateview/internal/engine/symbols"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	pathStyle = lipgloss.NewStyle().Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

func severityStyle(s analysis.Severity) lipgloss.Style {
	switch s {
	case analysis.SeverityError:
		return errorStyle
	case analysis.SeverityWarning:
		return warningStyle
	default:
		return hintStyle
	}
}

// Diagnostics writes one line per diagnostic followed by a summary and
// returns the number of diagnostics written.
func Diagnostics(w io.Writer, reports []app.FileReport) int {
	total := 0
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			lc := r.Lines.LineCol(d.Range.Start)
			line := fmt.Sprintf("%s %s %s",
				pathStyle.Render(fmt.Sprintf("%s:%d:%d:", r.Path, lc.Line+1, lc.Col+1)),
				severityStyle(d.Severity).Render(fmt.Sprintf("%s[%s]", d.Severity, d.Code)),
				d.Message)
			if d.Fix != nil {
				line += " " + statusStyle.Render("(fix: "+d.Fix.Label+")")
			}
			fmt.Fprintln(w, line)
			total++
		}
	}
	fmt.Fprintln(w, Summary(total, len(reports)))
	return total
}

// Summary is the closing line of a check.
func Summary(diagnostics, files int) string {
	if diagnostics == 0 {
		return successStyle.Render("No problems found")
	}
	return errorStyle.Render(fmt.Sprintf("%d %s in %d %s",
		diagnostics, plural(diagnostics, "problem", "problems"),
		files, plural(files, "file", "files")))
}

// Update renders a watcher recheck.
func Update(w io.Writer, u app.Update) {
	fmt.Fprintln(w, statusStyle.Render(fmt.Sprintf("%d changed | %d files", u.Changed, u.FileCount)))
	Diagnostics(w, u.Reports)
}

// Symbols writes one symbol per line.
func Symbols(w io.Writer, hits []app.SymbolHit) {
	if len(hits) == 0 {
		fmt.Fprintln(w, statusStyle.Render("no symbols"))
		return
	}
	for _, h := range hits {
		fmt.Fprintf(w, "%-8s %s %s\n",
			h.Symbol.Kind,
			pathStyle.Render(h.Symbol.Name),
			statusStyle.Render(fmt.Sprintf("%s:%d:%d", h.Path, h.Line, h.Col)))
	}
}

// Structure writes a file outline indented by nesting depth.
func Structure(w io.Writer, nodes []symbols.StructureNode) {
	depth := make([]int, len(nodes))
	for i, n := range nodes {
		if n.Parent >= 0 {
			depth[i] = depth[n.Parent] + 1
		}
		fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth[i]), statusStyle.Render(string(n.Kind)), n.Label)
	}
}

// Assists writes the labels of applicable assists.
func Assists(w io.Writer, changes []analysis.SourceChange) {
	if len(changes) == 0 {
		fmt.Fprintln(w, statusStyle.Render("no assists available"))
		return
	}
	for i, c := range changes {
		fmt.Fprintf(w, "%d. %s\n", i+1, c.Label)
	}
}

// Fixes writes the labels of applied quick fixes.
func Fixes(w io.Writer, labels []string) {
	if len(labels) == 0 {
		fmt.Fprintln(w, successStyle.Render("nothing to fix"))
		return
	}
	for _, l := range labels {
		fmt.Fprintf(w, "%s %s\n", successStyle.Render("applied"), l)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
