package cli

import (
	"strings"
	"testing"

	"crateview/internal/analysis"
	"crateview/internal/core/app"
	"crateview/internal/engine/syntax"

	tea "github.com/charmbracelet/bubbletea"
)

func TestModel_UpdateListsDiagnostics(t *testing.T) {
	text := "mod a;\nmod b;\n"
	m := initialModel("/work/demo")

	updated, _ := m.Update(updateMsg{
		Reports: []app.FileReport{{
			Path:  "src/lib.rs",
			Text:  text,
			Lines: syntax.NewLineIndex(text),
			Diagnostics: []analysis.Diagnostic{
				{
					Range:    syntax.TextRange{Start: 4, End: 5},
					Message:  "unresolved module",
					Severity: analysis.SeverityError,
					Code:     analysis.CodeUnresolvedModule,
					Fix:      &analysis.SourceChange{Label: "create module"},
				},
				{
					Range:    syntax.TextRange{Start: 11, End: 12},
					Message:  "module `b` resolves to 2 files",
					Severity: analysis.SeverityWarning,
					Code:     analysis.CodeAmbiguousModule,
				},
			},
		}},
		FileCount: 3,
		Changed:   1,
	})

	state, ok := updated.(model)
	if !ok {
		t.Fatalf("expected model type, got %T", updated)
	}
	items := state.list.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	first := items[0].(diagnosticItem)
	if first.Title() != "error[unresolved-module]" {
		t.Errorf("unexpected title %q", first.Title())
	}
	if first.Description() != "src/lib.rs:1:5 unresolved module (fix: create module)" {
		t.Errorf("unexpected description %q", first.Description())
	}
	if got := items[1].(diagnosticItem).Description(); got != "src/lib.rs:2:5 module `b` resolves to 2 files" {
		t.Errorf("unexpected description %q", got)
	}
	if state.fileCount != 3 || state.changed != 1 || state.problems != 2 || state.reportFiles != 1 {
		t.Errorf("unexpected counters %+v", state)
	}
	if view := state.View(); !strings.Contains(view, "2 problems in 1 file") {
		t.Errorf("summary missing from view:\n%s", view)
	}
}

func TestModel_CleanUpdateClearsList(t *testing.T) {
	m := initialModel("/work/demo")
	updated, _ := m.Update(updateMsg{FileCount: 2})
	state := updated.(model)
	if len(state.list.Items()) != 0 {
		t.Fatalf("expected no items, got %d", len(state.list.Items()))
	}
	if view := state.View(); !strings.Contains(view, "No problems found") {
		t.Errorf("clean summary missing from view:\n%s", view)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	m := initialModel("/work/demo")
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("expected quit command for %q", key.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("expected QuitMsg for %q", key.String())
		}
	}
}
