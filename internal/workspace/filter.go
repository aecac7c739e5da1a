package workspace

import (
	"path/filepath"
	"strings"

	"crateview/internal/core/errors"

	"github.com/gobwas/glob"
)

// Filter decides which directories and files take part in analysis.
// Globs match against base names.
type Filter struct {
	extensions   map[string]bool
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
}

func NewFilter(extensions, excludeDirs, excludeFiles []string) (*Filter, error) {
	f := &Filter{extensions: make(map[string]bool, len(extensions))}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[ext] = true
	}

	var err error
	if f.excludeDirs, err = compileGlobs(excludeDirs); err != nil {
		return nil, err
	}
	if f.excludeFiles, err = compileGlobs(excludeFiles); err != nil {
		return nil, err
	}
	return f, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "invalid glob"), "pattern", pattern)
		}
		out = append(out, g)
	}
	return out, nil
}

func (f *Filter) ExcludeDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range f.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (f *Filter) ExcludeFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if len(f.extensions) > 0 && !f.extensions[filepath.Ext(base)] {
		return true
	}
	for _, g := range f.excludeFiles {
		if g.Match(base) {
			return true
		}
	}
	return false
}
