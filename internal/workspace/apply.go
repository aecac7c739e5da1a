package workspace

import (
	"os"
	"path/filepath"

	"crateview/internal/analysis"
	"crateview/internal/core/errors"
	"crateview/internal/core/ports"
	"crateview/internal/shared/util"
)

// ApplySourceChange writes change to disk: text edits first, then file
// system edits in order. File system paths are resolved against the
// locations files had before any edit applied. It returns the OS paths
// that were written or created.
func (s *FileSet) ApplySourceChange(change analysis.SourceChange) ([]string, error) {
	origins := make(map[ports.FileID]string)
	origin := func(id ports.FileID) (string, error) {
		if p, ok := origins[id]; ok {
			return p, nil
		}
		p, ok := s.Path(id)
		if !ok {
			return "", errors.NotFound("unknown file", errors.CtxFileID, id)
		}
		origins[id] = p
		return p, nil
	}

	var touched []string
	for _, fe := range change.SourceFileEdits {
		if _, err := origin(fe.File); err != nil {
			return touched, err
		}
		abs, err := s.AbsPath(fe.File)
		if err != nil {
			return touched, err
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return touched, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "read file"), errors.CtxPath, abs)
		}
		out, err := fe.Edit.Apply(string(data))
		if err != nil {
			return touched, errors.AddContext(err, errors.CtxPath, abs)
		}
		if err := os.WriteFile(abs, []byte(out), 0o644); err != nil {
			return touched, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write file"), errors.CtxPath, abs)
		}
		touched = append(touched, abs)
	}

	for _, edit := range change.FileSystemEdits {
		switch e := edit.(type) {
		case analysis.CreateFile:
			base, err := origin(e.Anchor)
			if err != nil {
				return touched, err
			}
			abs, err := s.target(base, e.Path)
			if err != nil {
				return touched, err
			}
			if _, err := os.Stat(abs); err == nil {
				continue
			}
			if err := util.WriteFileWithDirs(abs, nil, 0o644); err != nil {
				return touched, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "create file"), errors.CtxPath, abs)
			}
			touched = append(touched, abs)

		case analysis.MoveFile:
			base, err := origin(e.File)
			if err != nil {
				return touched, err
			}
			from, err := s.AbsPath(e.File)
			if err != nil {
				return touched, err
			}
			to, err := s.target(base, e.Path)
			if err != nil {
				return touched, err
			}
			if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
				return touched, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "create directory"), errors.CtxPath, to)
			}
			if err := os.Rename(from, to); err != nil {
				return touched, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "move file"), errors.CtxPath, from)
			}
			rel, err := s.Rel(to)
			if err != nil {
				return touched, err
			}
			s.Move(e.File, rel)
			touched = append(touched, to)
		}
	}
	return touched, nil
}

func (s *FileSet) target(base, rel string) (string, error) {
	joined := util.NormalizePatternPath(base + "/" + rel)
	if joined == "" || escapes(joined) {
		return "", errors.AddContext(errors.New(errors.CodeValidationError, "path outside workspace"), errors.CtxPath, rel)
	}
	return filepath.Join(s.root, filepath.FromSlash(joined)), nil
}
