package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"crateview/internal/core/errors"
	"crateview/internal/core/ports"
	"crateview/internal/engine/assists"
	"crateview/internal/engine/modgraph"
	"crateview/internal/engine/symbols"
	"crateview/internal/engine/syntax"
	"crateview/internal/shared/observability"
	"crateview/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// World is an immutable snapshot of the registry. All methods are safe for
// concurrent use. A World must not be used after Close.
type World struct {
	resolver ports.FileResolver
	data     *registry
	parser   syntax.Parser
	assists  []assists.Assist
	workers  int
	modules  *modgraph.View

	indexed atomic.Bool
	closed  atomic.Bool
}

// Clone returns another handle on the same snapshot. The clone keeps the
// receiver's indexed state.
func (w *World) Clone() *World {
	c := &World{
		resolver: w.resolver,
		data:     w.data.acquire(),
		parser:   w.parser,
		assists:  w.assists,
		workers:  w.workers,
		modules:  w.modules,
	}
	c.indexed.Store(w.indexed.Load())
	return c
}

// Close releases the snapshot's hold on the registry. It is idempotent.
func (w *World) Close() {
	if w.closed.CompareAndSwap(false, true) {
		w.data.release()
	}
}

func (w *World) file(id ports.FileID) (*fileData, error) {
	fd, ok := w.data.files[id]
	if !ok {
		return nil, errors.NotFound("unknown file", errors.CtxFileID, id)
	}
	return fd, nil
}

// Files returns the ids in the snapshot in ascending order.
func (w *World) Files() []ports.FileID {
	return util.SortedKeys(w.data.files)
}

// FileText returns the text of id.
func (w *World) FileText(id ports.FileID) (string, error) {
	fd, err := w.file(id)
	if err != nil {
		return "", err
	}
	return fd.text, nil
}

// FileSyntax returns the cached syntax tree of id, parsing it on first use.
func (w *World) FileSyntax(id ports.FileID) (*syntax.File, error) {
	fd, err := w.file(id)
	if err != nil {
		return nil, err
	}
	return fd.syntaxTree(w.parser), nil
}

// FileLineIndex returns the cached line index of id.
func (w *World) FileLineIndex(id ports.FileID) (*syntax.LineIndex, error) {
	fd, err := w.file(id)
	if err != nil {
		return nil, err
	}
	return fd.lineIndex(), nil
}

// SyntaxTree renders the syntax tree of id for debugging.
func (w *World) SyntaxTree(id ports.FileID) (string, error) {
	file, err := w.FileSyntax(id)
	if err != nil {
		return "", err
	}
	return file.DebugString(), nil
}

// FileStructure returns the outline of id.
func (w *World) FileStructure(id ports.FileID) ([]symbols.StructureNode, error) {
	file, err := w.FileSyntax(id)
	if err != nil {
		return nil, err
	}
	return symbols.Structure(file), nil
}

// parseFile is the modgraph.ParseFunc for this snapshot. Graph queries only
// ask for files present in the graph, which mirrors the file table.
func (w *World) parseFile(id ports.FileID) *syntax.File {
	return w.data.files[id].syntaxTree(w.parser)
}

// Reindex builds every file's symbol index in parallel. Only the first call
// on a World does any work; later and concurrent calls return immediately.
// Trees parsed only for indexing are not cached.
func (w *World) Reindex(ctx context.Context) {
	if !w.indexed.CompareAndSwap(false, true) {
		return
	}
	_, span := observability.Tracer.Start(ctx, "World.Reindex",
		trace.WithAttributes(attribute.Int("files", len(w.data.files))))
	defer span.End()

	start := time.Now()
	var g errgroup.Group
	g.SetLimit(w.workers)
	for _, fd := range w.data.files {
		fd := fd
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = faultError(r)
				}
			}()
			fd.fileSymbols(w.parser)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Parser faults are fatal for the calling operation.
		panic(err)
	}

	elapsed := time.Since(start)
	observability.ReindexTotal.Inc()
	observability.ReindexDuration.Observe(elapsed.Seconds())
	slog.Info("symbol index built", "files", len(w.data.files), "duration", elapsed)
}

func faultError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &errors.DomainError{Code: errors.CodeParserFault, Message: fmt.Sprintf("%v", r)}
}

// WorldSymbols searches every file's symbols, building the index first if
// needed. Files are visited in ascending id order and the query limit
// applies to the combined result.
func (w *World) WorldSymbols(ctx context.Context, q symbols.Query) []FileSymbol {
	w.Reindex(ctx)

	searcher := q.Searcher()
	var out []FileSymbol
	for _, id := range w.Files() {
		if searcher.Done() {
			break
		}
		for _, sym := range searcher.Process(w.data.files[id].fileSymbols(w.parser)) {
			out = append(out, FileSymbol{File: id, Symbol: sym})
		}
	}
	return out
}

// ParentModule returns the module declarations that resolve to id.
func (w *World) ParentModule(id ports.FileID) ([]FileSymbol, error) {
	if _, err := w.file(id); err != nil {
		return nil, err
	}
	parents := w.modules.ParentModules(id)
	out := make([]FileSymbol, 0, len(parents))
	for _, p := range parents {
		out = append(out, FileSymbol{
			File: p.File,
			Symbol: symbols.Symbol{
				Name:      p.Name,
				Kind:      symbols.KindModule,
				NodeRange: p.Decl.NodeRange,
				NameRange: p.Decl.NameRange,
			},
		})
	}
	return out, nil
}

var identifierKinds = map[string]bool{
	syntax.KindIdentifier:        true,
	syntax.KindTypeIdentifier:    true,
	"field_identifier":           true,
	"shorthand_field_identifier": true,
}

// ApproximatelyResolveSymbol guesses what the identifier at offset refers
// to. A reference resolves by exact name through the symbol index; the name
// of a `mod name;` declaration resolves to the module's files. Other
// declaration names resolve to nothing.
func (w *World) ApproximatelyResolveSymbol(ctx context.Context, id ports.FileID, offset uint32) ([]FileSymbol, error) {
	file, err := w.FileSyntax(id)
	if err != nil {
		return nil, err
	}

	var ident *syntax.Node
	for _, leaf := range file.LeavesAt(offset) {
		if identifierKinds[leaf.Kind] {
			ident = leaf
			break
		}
	}
	if ident == nil {
		return nil, nil
	}
	name := file.NodeText(ident)

	if ident.Field != syntax.FieldName || ident.Parent() == nil {
		return w.WorldSymbols(ctx, symbols.NewQuery(name).Exact().WithLimit(4)), nil
	}

	if ident.Parent().Kind != syntax.KindModItem {
		return nil, nil
	}
	decl, ok := file.ModuleAt(offset)
	if !ok || !decl.HasSemi {
		return nil, nil
	}
	var out []FileSymbol
	for _, target := range w.modules.ChildModuleByName(id, name) {
		out = append(out, FileSymbol{
			File:   target,
			Symbol: symbols.Symbol{Name: name, Kind: symbols.KindModule},
		})
	}
	return out, nil
}

// Assists runs every assist at offset and returns the applicable ones in
// order.
func (w *World) Assists(id ports.FileID, offset uint32) ([]SourceChange, error) {
	file, err := w.FileSyntax(id)
	if err != nil {
		return nil, err
	}
	var out []SourceChange
	for _, a := range w.assists {
		if le := a.Run(file, offset); le != nil {
			out = append(out, FromLocalEdit(id, a.Label, le))
		}
	}
	return out, nil
}

// ChildModules returns the files the `mod name;` declaration in id resolves to.
func (w *World) ChildModules(id ports.FileID, name string) ([]ports.FileID, error) {
	if _, err := w.file(id); err != nil {
		return nil, err
	}
	return w.modules.ChildModuleByName(id, name), nil
}

// moduleProblems forwards graph problems for id.
func (w *World) moduleProblems(id ports.FileID, fn func(syntax.ModuleDecl, modgraph.Problem)) {
	w.modules.Problems(id, fn)
}
