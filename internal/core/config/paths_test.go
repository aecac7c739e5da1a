package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveRelative(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "work")
	if got := ResolveRelative(base, "src"); got != filepath.Join(base, "src") {
		t.Fatalf("unexpected relative join: %q", got)
	}
	abs := filepath.Join(string(filepath.Separator), "elsewhere")
	if got := ResolveRelative(base, abs); got != abs {
		t.Fatalf("absolute value should win, got %q", got)
	}
	if got := ResolveRelative(base, "  "); got != base {
		t.Fatalf("blank value should yield base, got %q", got)
	}
}

func TestDetectProjectRoot_FindsCargoManifest(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "src", "net")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte("[package]\nname = \"demo\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "mod.rs")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	for _, start := range []string{sub, file} {
		got, err := DetectProjectRoot([]string{"", start})
		if err != nil {
			t.Fatal(err)
		}
		if got != filepath.Clean(root) {
			t.Fatalf("from %q: expected %q, got %q", start, root, got)
		}
	}
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	if got := FindConfig(DefaultPath, root); got != DefaultPath {
		t.Fatalf("expected default path without a root config, got %q", got)
	}

	local := filepath.Join(root, "crateview.toml")
	if err := os.WriteFile(local, []byte("[search]\nmode = \"exact\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := FindConfig(DefaultPath, root); got != local {
		t.Fatalf("expected %q, got %q", local, got)
	}
	if got := FindConfig("custom.toml", root); got != "custom.toml" {
		t.Fatalf("explicit path must be kept, got %q", got)
	}
}
