package config

import (
	"os"
	"path/filepath"
	"strings"
)

// rootMarkers identify a workspace root, nearest first wins.
var rootMarkers = []string{
	"Cargo.toml",
	"crateview.toml",
	".git",
}

// ResolveRelative joins value onto base unless value is already absolute.
func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// DetectProjectRoot walks up from each candidate until a directory holding
// a root marker is found. Files start from their directory. Without a match
// the first usable candidate itself is returned.
func DetectProjectRoot(candidates []string) (string, error) {
	fallback := ""
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}

		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		root := abs
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			root = filepath.Dir(abs)
		}
		if fallback == "" {
			fallback = root
		}

		for {
			for _, marker := range rootMarkers {
				if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
					return filepath.Clean(root), nil
				}
			}
			parent := filepath.Dir(root)
			if parent == root {
				break
			}
			root = parent
		}
	}

	if fallback != "" {
		return filepath.Clean(fallback), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Clean(cwd), nil
}

// FindConfig returns the config path to load: an explicit path as given, or
// crateview.toml at root when the default is requested and root has one.
func FindConfig(path, root string) string {
	if path != DefaultPath {
		return path
	}
	candidate := filepath.Join(root, filepath.Base(DefaultPath))
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}
