package lspconv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"crateview/internal/analysis"
	"crateview/internal/engine/symbols"
	"crateview/internal/engine/syntax"
	"crateview/internal/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

func setup(t *testing.T, files map[string]string) (*workspace.FileSet, *analysis.World) {
	t.Helper()
	root := t.TempDir()
	for rel, text := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(text), 0o644))
	}
	fs, err := workspace.NewFileSet(root)
	require.NoError(t, err)
	filter, err := workspace.NewFilter([]string{".rs"}, nil, nil)
	require.NoError(t, err)
	changes, err := fs.Load(filter)
	require.NoError(t, err)

	ws := analysis.NewWorldState()
	ws.ApplyChanges(context.Background(), changes)
	w := ws.Fork(fs)
	t.Cleanup(w.Close)
	return fs, w
}

func TestRange_UTF16(t *testing.T) {
	li := syntax.NewLineIndex("fn a() {}\nlet é = x;\n")
	x := uint32(len("fn a() {}\nlet é = "))

	got := Range(li, syntax.NewRange(x, x+1))
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 8},
		End:   protocol.Position{Line: 1, Character: 9},
	}, got)
	assert.Equal(t, x, Offset(li, got.Start))
}

func TestDiagnostic(t *testing.T) {
	li := syntax.NewLineIndex("mod b;\n")
	d := Diagnostic(li, analysis.Diagnostic{
		Range:    syntax.NewRange(4, 5),
		Message:  "unresolved module",
		Severity: analysis.SeverityError,
		Code:     analysis.CodeUnresolvedModule,
	})

	assert.Equal(t, protocol.DiagnosticSeverityError, d.Severity)
	assert.Equal(t, analysis.CodeUnresolvedModule, d.Code)
	assert.Equal(t, Source, d.Source)
	assert.Equal(t, uint32(4), d.Range.Start.Character)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, Severity(analysis.SeverityWarning))
}

func TestSymbolInformation(t *testing.T) {
	fs, w := setup(t, map[string]string{"src/lib.rs": "\nstruct Server;\n"})
	syms := w.WorldSymbols(context.Background(), symbols.NewQuery("Server").Exact())
	require.Len(t, syms, 1)

	info, err := SymbolInformation(fs, w, syms[0])
	require.NoError(t, err)
	assert.Equal(t, "Server", info.Name)
	assert.Equal(t, protocol.SymbolKindStruct, info.Kind)
	assert.Equal(t, protocol.DocumentURI(uri.File(filepath.Join(fs.Root(), "src", "lib.rs"))), info.Location.URI)
	assert.Equal(t, uint32(1), info.Location.Range.Start.Line)
}

func TestCodeActions(t *testing.T) {
	fs, w := setup(t, map[string]string{"main.rs": "mod net;\nstruct S { a: u8, b: u8 }\n"})
	id, ok := fs.Lookup("main.rs")
	require.True(t, ok)

	diags, err := w.Diagnostics(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, diags, 1)

	assists, err := w.Assists(id, 25)
	require.NoError(t, err)
	require.Len(t, assists, 3)

	actions, err := CodeActions(fs, w, id, diags, assists)
	require.NoError(t, err)
	require.Len(t, actions, 4)

	fix := actions[0]
	assert.Equal(t, "create module", fix.Title)
	assert.Equal(t, protocol.QuickFix, fix.Kind)
	require.Len(t, fix.Diagnostics, 1)
	assert.Nil(t, fix.Edit)
	require.NotNil(t, fix.Command)
	assert.Equal(t, ApplyCommand, fix.Command.Command)
	require.Len(t, fix.Command.Arguments, 1)
	op, ok := fix.Command.Arguments[0].(FileSystemOp)
	require.True(t, ok)
	assert.Equal(t, "create", op.Op)
	assert.Equal(t, "../net.rs", op.Path)

	flip := actions[1]
	assert.Equal(t, "flip comma", flip.Title)
	assert.Equal(t, protocol.RefactorRewrite, flip.Kind)
	require.NotNil(t, flip.Edit)
	u, err := URI(fs, id)
	require.NoError(t, err)
	assert.Len(t, flip.Edit.Changes[u], 2)
	assert.Nil(t, flip.Command)
}
