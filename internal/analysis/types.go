package analysis

import (
	"crateview/internal/core/ports"
	"crateview/internal/engine/edit"
	"crateview/internal/engine/symbols"
	"crateview/internal/engine/syntax"
)

// FileChange sets the text of a file. A nil Text deletes the file.
type FileChange struct {
	ID   ports.FileID
	Text *string
}

// Text returns a pointer to s, for building FileChanges.
func Text(s string) *string { return &s }

type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	}
	return "unknown"
}

const (
	CodeSyntaxError      = "syntax-error"
	CodeUnresolvedModule = "unresolved-module"
	CodeNotDirOwner      = "not-dir-owner"
	CodeAmbiguousModule  = "ambiguous-module"
)

// Diagnostic is a problem found in one file, optionally with a quick fix.
type Diagnostic struct {
	Range    syntax.TextRange
	Message  string
	Severity Severity
	Code     string
	Fix      *SourceChange
}

// FileSymbol is a symbol together with the file declaring it.
type FileSymbol struct {
	File   ports.FileID
	Symbol symbols.Symbol
}

// Position is an offset in a specific file.
type Position struct {
	File   ports.FileID
	Offset uint32
}

// SourceFileEdit is a text edit to one file.
type SourceFileEdit struct {
	File ports.FileID
	Edit edit.Edit
}

// FileSystemEdit creates or moves a file. Paths use the "../sibling.rs"
// convention of FileResolver and are relative to where the referenced file
// was before the SourceChange started applying.
type FileSystemEdit interface {
	fileSystemEdit()
}

// CreateFile creates an empty file at Path relative to Anchor.
type CreateFile struct {
	Anchor ports.FileID
	Path   string
}

// MoveFile moves File to Path relative to its current location.
type MoveFile struct {
	File ports.FileID
	Path string
}

func (CreateFile) fileSystemEdit() {}
func (MoveFile) fileSystemEdit()   {}

// SourceChange is a labelled bundle of text and file system edits.
// File system edits apply in order, after the text edits.
type SourceChange struct {
	Label           string
	SourceFileEdits []SourceFileEdit
	FileSystemEdits []FileSystemEdit
	CursorPosition  *Position
}

// FromLocalEdit wraps an edit confined to one file.
func FromLocalEdit(file ports.FileID, label string, le *edit.LocalEdit) SourceChange {
	change := SourceChange{
		Label:           label,
		SourceFileEdits: []SourceFileEdit{{File: file, Edit: le.Edit}},
	}
	if le.CursorPosition != nil {
		change.CursorPosition = &Position{File: file, Offset: *le.CursorPosition}
	}
	return change
}
