package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"crateview/internal/analysis"
	"crateview/internal/core/config"
	"crateview/internal/core/errors"
	"crateview/internal/engine/symbols"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, text := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(text), 0o644))
	}
}

func newApp(t *testing.T, files map[string]string) (*App, string) {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, files)
	a, err := New(config.Default(), root)
	require.NoError(t, err)
	_, err = a.InitialScan(context.Background())
	require.NoError(t, err)
	return a, root
}

func TestInitialScanLoadsMatchingFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/lib.rs":        "fn a() {}\n",
		"src/util.rs":       "fn b() {}\n",
		"README.md":         "# readme\n",
		"target/debug/x.rs": "fn c() {}\n",
	})
	a, err := New(config.Default(), root)
	require.NoError(t, err)
	assert.NotEmpty(t, a.SessionID)

	n, err := a.InitialScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCheckReportsUnresolvedModule(t *testing.T) {
	a, _ := newApp(t, map[string]string{
		"src/lib.rs": "mod foo;\nmod bar;\n",
		"src/bar.rs": "",
	})

	reports, err := a.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "src/lib.rs", reports[0].Path)
	require.Len(t, reports[0].Diagnostics, 1)
	d := reports[0].Diagnostics[0]
	assert.Equal(t, analysis.CodeUnresolvedModule, d.Code)
	assert.Equal(t, "foo", reports[0].Text[d.Range.Start:d.Range.End])
}

func TestFixCreatesMissingModule(t *testing.T) {
	a, root := newApp(t, map[string]string{
		"src/lib.rs": "mod foo;\n",
	})

	applied, err := a.Fix(context.Background(), filepath.Join(root, "src", "lib.rs"))
	require.NoError(t, err)
	assert.Equal(t, []string{"create module"}, applied)
	assert.FileExists(t, filepath.Join(root, "src", "foo.rs"))

	reports, err := a.Check(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestFixMovesNonOwnerFile(t *testing.T) {
	a, root := newApp(t, map[string]string{
		"src/lib.rs": "mod a;\n",
		"src/a.rs":   "mod b;\n",
	})

	applied, err := a.Fix(context.Background(), filepath.Join(root, "src", "a.rs"))
	require.NoError(t, err)
	assert.Equal(t, []string{"move file and create module"}, applied)
	assert.NoFileExists(t, filepath.Join(root, "src", "a.rs"))
	assert.FileExists(t, filepath.Join(root, "src", "a", "mod.rs"))
	assert.FileExists(t, filepath.Join(root, "src", "a", "b.rs"))

	reports, err := a.Check(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestFixLeavesStemDirectoryLayoutAlone(t *testing.T) {
	a, root := newApp(t, map[string]string{
		"src/lib.rs": "mod a;\n",
		"src/a.rs":   "mod b;\n",
		"src/a/b.rs": "fn f() {}\n",
	})

	applied, err := a.Fix(context.Background(), filepath.Join(root, "src", "a.rs"))
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.FileExists(t, filepath.Join(root, "src", "a.rs"))
	assert.NoFileExists(t, filepath.Join(root, "src", "a", "mod.rs"))

	reports, err := a.Check(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestSearchUsesConfiguredDefaults(t *testing.T) {
	a, _ := newApp(t, map[string]string{
		"src/lib.rs":  "fn hello() {}\nstruct Help;\n",
		"src/util.rs": "\nfn helper() {}\n",
	})
	ctx := context.Background()

	hits, err := a.Search(ctx, SearchRequest{Name: "hello", Mode: "exact"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "src/lib.rs", hits[0].Path)
	assert.Equal(t, uint32(1), hits[0].Line)
	assert.Equal(t, uint32(4), hits[0].Col)

	hits, err = a.Search(ctx, SearchRequest{Name: "hel", Mode: "prefix"})
	require.NoError(t, err)
	assert.Len(t, hits, 3)

	hits, err = a.Search(ctx, SearchRequest{Name: "hel", Mode: "prefix", TypesOnly: true})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, symbols.KindStruct, hits[0].Symbol.Kind)

	_, err = a.Search(ctx, SearchRequest{Name: "x", Mode: "regex"})
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestOffsetParsing(t *testing.T) {
	a, root := newApp(t, map[string]string{
		"src/lib.rs": "fn a() {}\nfn bee() {}\n",
	})
	id, err := a.FileID(filepath.Join(root, "src", "lib.rs"))
	require.NoError(t, err)

	off, err := a.Offset(id, "14")
	require.NoError(t, err)
	assert.Equal(t, uint32(14), off)

	off, err = a.Offset(id, "2:4")
	require.NoError(t, err)
	assert.Equal(t, uint32(13), off)

	_, err = a.Offset(id, "0:1")
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
	_, err = a.Offset(id, "abc")
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestFileIDRejectsUnknownPaths(t *testing.T) {
	a, root := newApp(t, map[string]string{"src/lib.rs": ""})

	_, err := a.FileID(filepath.Join(root, "src", "missing.rs"))
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))

	_, err = a.FileID(filepath.Join(root, "..", "elsewhere.rs"))
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestResolveAndParents(t *testing.T) {
	a, root := newApp(t, map[string]string{
		"src/lib.rs": "mod net;\nfn main() { connect(); }\n",
		"src/net.rs": "pub fn connect() {}\n",
	})
	ctx := context.Background()
	lib := filepath.Join(root, "src", "lib.rs")

	hits, err := a.Resolve(ctx, lib, "2:14")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "src/net.rs", hits[0].Path)
	assert.Equal(t, "connect", hits[0].Symbol.Name)

	hits, err = a.Resolve(ctx, lib, "1:5")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "src/net.rs", hits[0].Path)
	assert.Equal(t, symbols.KindModule, hits[0].Symbol.Kind)

	parents, err := a.ParentModules(ctx, filepath.Join(root, "src", "net.rs"))
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, "src/lib.rs", parents[0].Path)
	assert.Equal(t, uint32(1), parents[0].Line)
}

func TestApplyAssistWritesFile(t *testing.T) {
	a, root := newApp(t, map[string]string{
		"src/lib.rs": "struct Foo;\n",
	})
	lib := filepath.Join(root, "src", "lib.rs")

	changes, err := a.Assists(context.Background(), lib, "1:9")
	require.NoError(t, err)
	labels := make([]string, 0, len(changes))
	for _, c := range changes {
		labels = append(labels, c.Label)
	}
	assert.Contains(t, labels, "add `#[derive]`")

	require.NoError(t, a.ApplyAssist(context.Background(), lib, "1:9", "add `#[derive]`"))
	data, err := os.ReadFile(lib)
	require.NoError(t, err)
	assert.Equal(t, "#[derive()]\nstruct Foo;\n", string(data))

	err = a.ApplyAssist(context.Background(), lib, "1:9", "no such assist")
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestHandleChangesEmitsUpdate(t *testing.T) {
	a, root := newApp(t, map[string]string{
		"src/lib.rs": "",
	})

	var got []Update
	a.SetUpdateHandler(func(u Update) { got = append(got, u) })

	lib := filepath.Join(root, "src", "lib.rs")
	writeFiles(t, root, map[string]string{"src/lib.rs": "mod gone;\n"})
	a.HandleChanges(context.Background(), []string{lib})

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Changed)
	assert.Equal(t, 1, got[0].FileCount)
	require.Len(t, got[0].Reports, 1)
	assert.Equal(t, analysis.CodeUnresolvedModule, got[0].Reports[0].Diagnostics[0].Code)
}

func TestHandleChangesDropsRenamedDirectory(t *testing.T) {
	a, root := newApp(t, map[string]string{
		"src/lib.rs":      "mod net;\n",
		"src/net/mod.rs":  "mod http;\n",
		"src/net/http.rs": "",
	})

	var got []Update
	a.SetUpdateHandler(func(u Update) { got = append(got, u) })

	net := filepath.Join(root, "src", "net")
	require.NoError(t, os.Rename(net, filepath.Join(t.TempDir(), "net")))
	a.HandleChanges(context.Background(), []string{net})

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Changed)
	assert.Equal(t, 1, got[0].FileCount)
	require.Len(t, got[0].Reports, 1)
	assert.Equal(t, analysis.CodeUnresolvedModule, got[0].Reports[0].Diagnostics[0].Code)
}

func TestUpdateConfigSwapsConfig(t *testing.T) {
	a, _ := newApp(t, map[string]string{"src/lib.rs": ""})

	cfg := config.Default()
	cfg.Search.Mode = "exact"
	a.UpdateConfig(cfg)
	assert.Equal(t, "exact", a.config().Search.Mode)
}

func TestHealthServiceReportsWorld(t *testing.T) {
	a, _ := newApp(t, map[string]string{"src/lib.rs": "", "src/a.rs": ""})

	status := NewHealthService(a).Check(context.Background())
	assert.Equal(t, "up", status.Status)
	assert.Equal(t, a.SessionID, status.Session)
	assert.Equal(t, "ok (2 files)", status.Components["world"])
	assert.Equal(t, "inactive", status.Components["watcher"])
}
