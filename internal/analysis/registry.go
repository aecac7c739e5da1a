package analysis

import (
	"sync/atomic"

	"crateview/internal/core/ports"
	"crateview/internal/engine/modgraph"
	"crateview/internal/shared/observability"
)

// registry is the file table plus module graph shared by a WorldState and
// its Worlds. holders counts the WorldState and every open World; the
// WorldState may only mutate a registry it holds alone.
type registry struct {
	files   map[ports.FileID]*fileData
	graph   *modgraph.ModuleMap
	holders atomic.Int64
}

func newRegistry() *registry {
	r := &registry{
		files: make(map[ports.FileID]*fileData),
		graph: modgraph.New(),
	}
	r.holders.Store(1)
	return r
}

func (r *registry) acquire() *registry {
	r.holders.Add(1)
	return r
}

func (r *registry) release() {
	r.holders.Add(-1)
}

func (r *registry) shared() bool {
	return r.holders.Load() > 1
}

// clone copies both top-level tables. The fileData values are shared, so
// caches computed by either side remain visible to both.
func (r *registry) clone() *registry {
	files := make(map[ports.FileID]*fileData, len(r.files))
	for id, fd := range r.files {
		files[id] = fd
	}
	c := &registry{files: files, graph: r.graph.Clone()}
	c.holders.Store(1)
	observability.RegistryCopiesTotal.Inc()
	return c
}
