// Package workspace maps files on disk to FileIDs and feeds their contents
// into an analysis.WorldState.
package workspace

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"crateview/internal/core/errors"
	"crateview/internal/core/ports"
	"crateview/internal/shared/util"
)

// FileSet assigns stable FileIDs to slash-separated paths relative to a
// root directory. An id stays assigned to its path after the file is
// deleted, so re-creating the file reuses the id. FileSet implements
// ports.FileResolver and is safe for concurrent use.
type FileSet struct {
	root string

	mu    sync.RWMutex
	ids   map[string]ports.FileID
	paths map[ports.FileID]string
	next  ports.FileID
}

func NewFileSet(root string) (*FileSet, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "resolve workspace root")
	}
	return &FileSet{
		root:  abs,
		ids:   make(map[string]ports.FileID),
		paths: make(map[ports.FileID]string),
		next:  1,
	}, nil
}

func (s *FileSet) Root() string { return s.root }

// Intern returns the id of rel, assigning a new one if needed.
func (s *FileSet) Intern(rel string) ports.FileID {
	rel = util.NormalizePatternPath(rel)
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.ids[rel]; ok {
		return id
	}
	id := s.next
	s.next++
	s.ids[rel] = id
	s.paths[id] = rel
	return id
}

// Lookup returns the id of rel if one was assigned.
func (s *FileSet) Lookup(rel string) (ports.FileID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.ids[util.NormalizePatternPath(rel)]
	return id, ok
}

// Path returns the root-relative path of id.
func (s *FileSet) Path(id ports.FileID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.paths[id]
	return p, ok
}

// AbsPath returns the absolute OS path of id.
func (s *FileSet) AbsPath(id ports.FileID) (string, error) {
	rel, ok := s.Path(id)
	if !ok {
		return "", errors.NotFound("unknown file", errors.CtxFileID, id)
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

// Rel converts an OS path to a root-relative slash path.
func (s *FileSet) Rel(osPath string) (string, error) {
	abs, err := filepath.Abs(osPath)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeValidationError, "resolve path")
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeValidationError, "path outside workspace")
	}
	rel = util.NormalizePatternPath(filepath.ToSlash(rel))
	if escapes(rel) {
		return "", errors.AddContext(errors.New(errors.CodeValidationError, "path outside workspace"), errors.CtxPath, osPath)
	}
	return rel, nil
}

// Move reassigns id to a new path, keeping the id.
func (s *FileSet) Move(id ports.FileID, rel string) {
	rel = util.NormalizePatternPath(rel)
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.paths[id]; ok {
		delete(s.ids, old)
	}
	if prev, ok := s.ids[rel]; ok {
		delete(s.paths, prev)
	}
	s.ids[rel] = id
	s.paths[id] = rel
}

// Under returns the ids of every path inside the directory rel, in path
// order.
func (s *FileSet) Under(rel string) []ports.FileID {
	prefix := util.NormalizePatternPath(rel)
	if prefix != "" {
		prefix += "/"
	}
	s.mu.RLock()
	var paths []string
	for p := range s.ids {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	out := make([]ports.FileID, 0, len(paths))
	for _, p := range paths {
		out = append(out, s.ids[p])
	}
	s.mu.RUnlock()
	return out
}

// FileStem returns the base name of id without its extension.
func (s *FileSet) FileStem(id ports.FileID) string {
	p, _ := s.Path(id)
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Resolve interprets rel relative to the path of id, treating the file as a
// directory: "../b.rs" from "src/a.rs" is "src/b.rs".
func (s *FileSet) Resolve(id ports.FileID, rel string) (ports.FileID, bool) {
	target, ok := s.join(id, rel)
	if !ok {
		return 0, false
	}
	return s.Lookup(target)
}

func (s *FileSet) join(id ports.FileID, rel string) (string, bool) {
	base, ok := s.Path(id)
	if !ok {
		return "", false
	}
	target := util.NormalizePatternPath(path.Join(base, rel))
	if target == "" || escapes(target) {
		return "", false
	}
	return target, true
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, "../")
}
