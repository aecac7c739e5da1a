package analysis

import (
	"context"
	"path"
	"strings"
	"testing"

	"crateview/internal/core/ports"
)

// memFiles is a path-keyed file set used as the resolver in tests.
type memFiles struct {
	ids   map[string]ports.FileID
	paths map[ports.FileID]string
}

func newMemFiles() *memFiles {
	return &memFiles{ids: map[string]ports.FileID{}, paths: map[ports.FileID]string{}}
}

func (m *memFiles) id(p string) ports.FileID {
	if id, ok := m.ids[p]; ok {
		return id
	}
	id := ports.FileID(len(m.ids) + 1)
	m.ids[p] = id
	m.paths[id] = p
	return id
}

func (m *memFiles) FileStem(id ports.FileID) string {
	return strings.TrimSuffix(path.Base(m.paths[id]), ".rs")
}

func (m *memFiles) Resolve(id ports.FileID, rel string) (ports.FileID, bool) {
	target, ok := m.ids[path.Clean(path.Join(m.paths[id], rel))]
	return target, ok
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	files *memFiles
	ws    *WorldState
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	return &fixture{t: t, ctx: context.Background(), files: newMemFiles(), ws: NewWorldState(opts...)}
}

func (f *fixture) set(p, text string) ports.FileID {
	id := f.files.id(p)
	f.ws.ChangeFile(f.ctx, id, Text(text))
	return id
}

func (f *fixture) remove(p string) {
	f.ws.ChangeFile(f.ctx, f.files.id(p), nil)
}

func (f *fixture) world() *World {
	w := f.ws.Fork(f.files)
	f.t.Cleanup(w.Close)
	return w
}
