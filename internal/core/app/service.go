package app

import (
	"context"
	"log/slog"

	"crateview/internal/analysis"
	"crateview/internal/core/errors"
	"crateview/internal/core/ports"
	"crateview/internal/engine/symbols"
	"crateview/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SymbolHit is a symbol search result with its location resolved.
type SymbolHit struct {
	Path   string
	Line   uint32
	Col    uint32
	Symbol symbols.Symbol
}

// SearchRequest describes a workspace symbol search. Empty Mode and zero
// Limit fall back to the configured defaults.
type SearchRequest struct {
	Name      string
	Mode      string
	Limit     int
	TypesOnly bool
}

// Search runs a workspace symbol query.
func (a *App) Search(ctx context.Context, req SearchRequest) ([]SymbolHit, error) {
	ctx, span := observability.Tracer.Start(ctx, "App.Search",
		trace.WithAttributes(attribute.String("query", req.Name)))
	defer span.End()

	q, err := a.query(req)
	if err != nil {
		return nil, err
	}

	world := a.Snapshot()
	defer world.Close()
	return a.hits(world, world.WorldSymbols(ctx, q))
}

func (a *App) query(req SearchRequest) (symbols.Query, error) {
	cfg := a.config()
	modeName := req.Mode
	if modeName == "" {
		modeName = cfg.Search.Mode
	}
	mode, ok := symbols.ParseMode(modeName)
	if !ok {
		return symbols.Query{}, errors.AddContext(errors.New(errors.CodeValidationError, "unknown search mode"), "mode", modeName)
	}
	limit := req.Limit
	if limit == 0 {
		limit = cfg.Search.DefaultLimit
	}

	q := symbols.NewQuery(req.Name).WithMode(mode).WithLimit(limit)
	if req.TypesOnly {
		q = q.TypesOnly()
	}
	return q, nil
}

// ParentModules lists the `mod` declarations that resolve to path.
func (a *App) ParentModules(ctx context.Context, path string) ([]SymbolHit, error) {
	id, err := a.FileID(path)
	if err != nil {
		return nil, err
	}
	world := a.Snapshot()
	defer world.Close()
	parents, err := world.ParentModule(id)
	if err != nil {
		return nil, err
	}
	return a.hits(world, parents)
}

// Resolve guesses the definitions of the identifier at pos in path.
func (a *App) Resolve(ctx context.Context, path, pos string) ([]SymbolHit, error) {
	id, offset, err := a.position(path, pos)
	if err != nil {
		return nil, err
	}
	world := a.Snapshot()
	defer world.Close()
	found, err := world.ApproximatelyResolveSymbol(ctx, id, offset)
	if err != nil {
		return nil, err
	}
	return a.hits(world, found)
}

// Assists lists the assists applicable at pos in path.
func (a *App) Assists(ctx context.Context, path, pos string) ([]analysis.SourceChange, error) {
	id, offset, err := a.position(path, pos)
	if err != nil {
		return nil, err
	}
	world := a.Snapshot()
	defer world.Close()
	return world.Assists(id, offset)
}

// ApplyAssist applies the assist labelled label at pos in path.
func (a *App) ApplyAssist(ctx context.Context, path, pos, label string) error {
	changes, err := a.Assists(ctx, path, pos)
	if err != nil {
		return err
	}
	for _, change := range changes {
		if change.Label == label {
			return a.Apply(ctx, change)
		}
	}
	return errors.AddContext(errors.New(errors.CodeNotFound, "assist not applicable"), "label", label)
}

// SyntaxTree renders the syntax tree of path for debugging.
func (a *App) SyntaxTree(path string) (string, error) {
	id, err := a.FileID(path)
	if err != nil {
		return "", err
	}
	world := a.Snapshot()
	defer world.Close()
	return world.SyntaxTree(id)
}

// Structure returns the outline of path.
func (a *App) Structure(path string) ([]symbols.StructureNode, error) {
	id, err := a.FileID(path)
	if err != nil {
		return nil, err
	}
	world := a.Snapshot()
	defer world.Close()
	return world.FileStructure(id)
}

// Apply writes change to disk and loads the touched files back into the
// world state.
func (a *App) Apply(ctx context.Context, change analysis.SourceChange) error {
	touched, err := a.Files.ApplySourceChange(change)
	if len(touched) > 0 {
		a.State.ApplyChanges(ctx, a.Files.ChangesFor(touched))
	}
	if err != nil {
		return errors.AddContext(err, errors.CtxOperation, "apply_source_change")
	}
	slog.Info("applied change", "label", change.Label, "files", len(touched))
	return nil
}

const maxFixRounds = 64

// Fix applies quick fixes to path until none remain and returns the labels
// of the fixes applied.
func (a *App) Fix(ctx context.Context, path string) ([]string, error) {
	id, err := a.FileID(path)
	if err != nil {
		return nil, err
	}

	var applied []string
	for round := 0; round < maxFixRounds; round++ {
		fix, err := a.firstFix(ctx, id)
		if err != nil || fix == nil {
			return applied, err
		}
		if err := a.Apply(ctx, *fix); err != nil {
			return applied, err
		}
		applied = append(applied, fix.Label)
	}
	return applied, errors.AddContext(errors.New(errors.CodeInternal, "fixes did not converge"), errors.CtxPath, path)
}

func (a *App) firstFix(ctx context.Context, id ports.FileID) (*analysis.SourceChange, error) {
	world := a.Snapshot()
	defer world.Close()
	diags, err := world.Diagnostics(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, d := range diags {
		if d.Fix != nil {
			return d.Fix, nil
		}
	}
	return nil, nil
}

func (a *App) position(path, pos string) (ports.FileID, uint32, error) {
	id, err := a.FileID(path)
	if err != nil {
		return 0, 0, err
	}
	offset, err := a.Offset(id, pos)
	if err != nil {
		return 0, 0, err
	}
	return id, offset, nil
}

func (a *App) hits(world *analysis.World, found []analysis.FileSymbol) ([]SymbolHit, error) {
	out := make([]SymbolHit, 0, len(found))
	for _, fs := range found {
		lines, err := world.FileLineIndex(fs.File)
		if err != nil {
			return nil, err
		}
		path, _ := a.Files.Path(fs.File)
		lc := lines.LineCol(fs.Symbol.NameRange.Start)
		out = append(out, SymbolHit{Path: path, Line: lc.Line + 1, Col: lc.Col + 1, Symbol: fs.Symbol})
	}
	return out, nil
}
