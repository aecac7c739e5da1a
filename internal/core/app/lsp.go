package app

import (
	"context"

	"crateview/internal/analysis"
	"crateview/internal/lspconv"

	"go.lsp.dev/protocol"
)

// PublishDiagnostics returns the diagnostics of every file that has any, in
// the shape of textDocument/publishDiagnostics notifications.
func (a *App) PublishDiagnostics(ctx context.Context) ([]protocol.PublishDiagnosticsParams, error) {
	reports, err := a.Check(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]protocol.PublishDiagnosticsParams, 0, len(reports))
	for _, r := range reports {
		u, err := lspconv.URI(a.Files, r.File)
		if err != nil {
			return nil, err
		}
		diags := make([]protocol.Diagnostic, 0, len(r.Diagnostics))
		for _, d := range r.Diagnostics {
			diags = append(diags, lspconv.Diagnostic(r.Lines, d))
		}
		out = append(out, protocol.PublishDiagnosticsParams{URI: u, Diagnostics: diags})
	}
	return out, nil
}

// WorkspaceSymbols runs req and converts the results for workspace/symbol.
func (a *App) WorkspaceSymbols(ctx context.Context, req SearchRequest) ([]protocol.SymbolInformation, error) {
	q, err := a.query(req)
	if err != nil {
		return nil, err
	}
	world := a.Snapshot()
	defer world.Close()

	found := world.WorldSymbols(ctx, q)
	out := make([]protocol.SymbolInformation, 0, len(found))
	for _, fs := range found {
		info, err := lspconv.SymbolInformation(a.Files, world, fs)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// CodeActions returns the quick fixes for diagnostics touching pos followed
// by the assists available there.
func (a *App) CodeActions(ctx context.Context, path, pos string) ([]protocol.CodeAction, error) {
	id, offset, err := a.position(path, pos)
	if err != nil {
		return nil, err
	}
	world := a.Snapshot()
	defer world.Close()

	all, err := world.Diagnostics(ctx, id)
	if err != nil {
		return nil, err
	}
	var diags []analysis.Diagnostic
	for _, d := range all {
		if d.Range.ContainsInclusive(offset) {
			diags = append(diags, d)
		}
	}
	assists, err := world.Assists(id, offset)
	if err != nil {
		return nil, err
	}
	return lspconv.CodeActions(a.Files, world, id, diags, assists)
}
