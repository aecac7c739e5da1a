package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"crateview/internal/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, text := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(text), 0o644))
	}
}

func defaultFilter(t *testing.T) *Filter {
	t.Helper()
	f, err := NewFilter([]string{".rs"}, []string{".git", "target"}, []string{"*.generated.rs"})
	require.NoError(t, err)
	return f
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/lib.rs":               "mod a;\n",
		"src/a.rs":                 "fn a() {}\n",
		"src/schema.generated.rs":  "",
		"target/debug/build.rs":    "",
		"README.md":                "# readme\n",
		".git/hooks/pre-commit.rs": "",
	})

	fs, err := NewFileSet(root)
	require.NoError(t, err)

	changes, err := fs.Load(defaultFilter(t))
	require.NoError(t, err)
	require.Len(t, changes, 2)

	var paths []string
	for _, c := range changes {
		p, ok := fs.Path(c.ID)
		require.True(t, ok)
		paths = append(paths, p)
		require.NotNil(t, c.Text)
	}
	assert.Equal(t, []string{"src/a.rs", "src/lib.rs"}, paths)
	assert.Equal(t, "fn a() {}\n", *changes[0].Text)
}

func TestChangesFor(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.rs": "fn a() {}\n"})

	fs, err := NewFileSet(root)
	require.NoError(t, err)
	_, err = fs.Load(defaultFilter(t))
	require.NoError(t, err)
	a, _ := fs.Lookup("a.rs")

	require.NoError(t, os.Remove(filepath.Join(root, "a.rs")))
	writeTree(t, root, map[string]string{"b.rs": "fn b() {}\n"})

	changes := fs.ChangesFor([]string{
		filepath.Join(root, "a.rs"),
		filepath.Join(root, "b.rs"),
		filepath.Join(root, "never.rs"),
		filepath.Join(root, "..", "outside.rs"),
	})
	require.Len(t, changes, 2)
	assert.Equal(t, analysis.FileChange{ID: a}, changes[0])

	b, ok := fs.Lookup("b.rs")
	require.True(t, ok)
	assert.Equal(t, b, changes[1].ID)
	require.NotNil(t, changes[1].Text)
}

func TestChangesFor_DirectoryRenamedAway(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/lib.rs":      "mod net;\n",
		"src/net/mod.rs":  "mod http;\n",
		"src/net/http.rs": "fn get() {}\n",
		"src/network.rs":  "",
	})

	fs, err := NewFileSet(root)
	require.NoError(t, err)
	_, err = fs.Load(defaultFilter(t))
	require.NoError(t, err)
	mod, _ := fs.Lookup("src/net/mod.rs")
	http, _ := fs.Lookup("src/net/http.rs")

	require.NoError(t, os.Rename(filepath.Join(root, "src", "net"), filepath.Join(t.TempDir(), "net")))

	changes := fs.ChangesFor([]string{
		filepath.Join(root, "src", "net"),
		filepath.Join(root, "src", "net", "mod.rs"),
		filepath.Join(root, "src"),
	})
	assert.Equal(t, []analysis.FileChange{{ID: http}, {ID: mod}}, changes)
}

func TestNewFilter_InvalidGlob(t *testing.T) {
	_, err := NewFilter(nil, []string{"[unclosed"}, nil)
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	f, err := NewFilter([]string{"rs"}, []string{"target"}, []string{"*_gen.rs"})
	require.NoError(t, err)

	assert.False(t, f.ExcludeFile("src/lib.rs"))
	assert.True(t, f.ExcludeFile("src/lib.go"))
	assert.True(t, f.ExcludeFile("src/ast_gen.rs"))
	assert.True(t, f.ExcludeDir("/repo/target"))
	assert.False(t, f.ExcludeDir("/repo/src"))
}
