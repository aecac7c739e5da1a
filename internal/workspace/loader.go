package workspace

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"crateview/internal/analysis"
	"crateview/internal/core/errors"
	"crateview/internal/core/ports"
)

// Load walks the workspace root and returns an insert for every file the
// filter admits, in path order.
func (s *FileSet) Load(filter *Filter) ([]analysis.FileChange, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != s.root && filter.ExcludeDir(p) {
				return filepath.SkipDir
			}
			return nil
		}
		if !filter.ExcludeFile(p) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "walk workspace"), errors.CtxPath, s.root)
	}
	sort.Strings(paths)

	changes := make([]analysis.FileChange, 0, len(paths))
	for _, p := range paths {
		change, ok, err := s.read(p)
		if err != nil {
			return nil, err
		}
		if ok {
			changes = append(changes, change)
		}
	}
	slog.Debug("workspace loaded", "root", s.root, "files", len(changes))
	return changes, nil
}

// ChangesFor turns OS paths reported by the watcher into changes. Missing
// files become deletions when they were known, and a missing path that was
// a directory deletes every known file inside it. Unknown missing files,
// existing directories and paths outside the root are skipped.
func (s *FileSet) ChangesFor(paths []string) []analysis.FileChange {
	sort.Strings(paths)
	seen := make(map[ports.FileID]bool)
	changes := make([]analysis.FileChange, 0, len(paths))
	for _, p := range paths {
		batch, err := s.changesAt(p)
		if err != nil {
			slog.Warn("skipping changed file", "path", p, "error", err)
			continue
		}
		for _, change := range batch {
			if !seen[change.ID] {
				seen[change.ID] = true
				changes = append(changes, change)
			}
		}
	}
	return changes
}

func (s *FileSet) changesAt(osPath string) ([]analysis.FileChange, error) {
	rel, err := s.Rel(osPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(osPath)
	switch {
	case os.IsNotExist(err):
		if id, known := s.Lookup(rel); known {
			return []analysis.FileChange{{ID: id}}, nil
		}
		var deletes []analysis.FileChange
		for _, id := range s.Under(rel) {
			deletes = append(deletes, analysis.FileChange{ID: id})
		}
		if len(deletes) > 0 {
			slog.Debug("directory removed", "path", rel, "files", len(deletes))
		}
		return deletes, nil
	case err != nil:
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "stat file"), errors.CtxPath, rel)
	case info.IsDir():
		return nil, nil
	}
	change, ok, err := s.read(osPath)
	if err != nil || !ok {
		return nil, err
	}
	return []analysis.FileChange{change}, nil
}

func (s *FileSet) read(osPath string) (analysis.FileChange, bool, error) {
	rel, err := s.Rel(osPath)
	if err != nil {
		return analysis.FileChange{}, false, err
	}
	data, err := os.ReadFile(osPath)
	if os.IsNotExist(err) {
		id, known := s.Lookup(rel)
		return analysis.FileChange{ID: id}, known, nil
	}
	if err != nil {
		return analysis.FileChange{}, false, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "read file"), errors.CtxPath, rel)
	}
	return analysis.FileChange{ID: s.Intern(rel), Text: analysis.Text(string(data))}, true, nil
}
