package analysis

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"crateview/internal/core/ports"
	"crateview/internal/engine/assists"
	"crateview/internal/engine/modgraph"
	"crateview/internal/engine/syntax"
	"crateview/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// WorldState owns the mutable file registry. Changes are applied in place
// while no World shares the registry, and to a private copy otherwise.
//
// Writers must be serialized by the caller; Fork may run concurrently with
// queries on existing Worlds.
type WorldState struct {
	mu   sync.Mutex
	data *registry

	parser  syntax.Parser
	assists []assists.Assist
	workers int
}

type Option func(*WorldState)

// WithParser replaces the default tree-sitter parser.
func WithParser(p syntax.Parser) Option {
	return func(ws *WorldState) { ws.parser = p }
}

// WithAssists replaces the default assist list.
func WithAssists(list []assists.Assist) Option {
	return func(ws *WorldState) { ws.assists = list }
}

// WithWorkers bounds the goroutines used by Reindex. Zero or less uses
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(ws *WorldState) { ws.workers = n }
}

func NewWorldState(opts ...Option) *WorldState {
	ws := &WorldState{
		data:    newRegistry(),
		assists: assists.Default(),
	}
	for _, opt := range opts {
		opt(ws)
	}
	if ws.parser == nil {
		ws.parser = syntax.NewRustParser()
	}
	if ws.workers <= 0 {
		ws.workers = runtime.GOMAXPROCS(0)
	}
	return ws
}

// ApplyChanges applies a batch of changes. Each change is classified against
// the current registry: text for an unknown id inserts, text for a known id
// updates, and nil text for a known id deletes.
func (ws *WorldState) ApplyChanges(ctx context.Context, changes []FileChange) {
	_, span := observability.Tracer.Start(ctx, "WorldState.ApplyChanges",
		trace.WithAttributes(attribute.Int("changes", len(changes))))
	defer span.End()

	ws.mu.Lock()
	defer ws.mu.Unlock()

	data := ws.mutable()
	for _, change := range changes {
		_, exists := data.files[change.ID]

		var kind modgraph.ChangeKind
		switch {
		case exists && change.Text == nil:
			kind = modgraph.Delete
			delete(data.files, change.ID)
		case !exists && change.Text != nil:
			kind = modgraph.Insert
			data.files[change.ID] = newFileData(*change.Text)
		case exists:
			kind = modgraph.Update
			data.files[change.ID] = newFileData(*change.Text)
		default:
			slog.Warn("ignoring deletion of unknown file", "file_id", change.ID)
			continue
		}
		data.graph.UpdateFile(change.ID, kind)
		observability.ChangesAppliedTotal.WithLabelValues(kind.String()).Inc()
	}

	observability.RegistryFiles.Set(float64(len(data.files)))
	observability.GraphNodes.Set(float64(data.graph.Len()))
}

// ChangeFile applies a single change.
func (ws *WorldState) ChangeFile(ctx context.Context, id ports.FileID, text *string) {
	ws.ApplyChanges(ctx, []FileChange{{ID: id, Text: text}})
}

// mutable returns a registry that only ws holds, copying the current one if
// any World still shares it. Callers hold ws.mu.
func (ws *WorldState) mutable() *registry {
	if !ws.data.shared() {
		return ws.data
	}
	old := ws.data
	ws.data = old.clone()
	old.release()
	slog.Debug("registry copied for pending snapshots", "files", len(ws.data.files))
	return ws.data
}

// Fork returns a snapshot of the current registry. The snapshot is
// unaffected by later changes and starts with its symbol index unbuilt.
// Closing it lets the next change skip the registry copy.
func (ws *WorldState) Fork(resolver ports.FileResolver) *World {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	w := &World{
		resolver: resolver,
		data:     ws.data.acquire(),
		parser:   ws.parser,
		assists:  ws.assists,
		workers:  ws.workers,
	}
	w.modules = w.data.graph.View(resolver, w.parseFile)
	return w
}
