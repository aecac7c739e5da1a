// Package lspconv converts analysis results into Language Server Protocol
// wire types. Positions use UTF-16 columns.
package lspconv

import (
	"crateview/internal/analysis"
	"crateview/internal/core/ports"
	"crateview/internal/engine/symbols"
	"crateview/internal/engine/syntax"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// Source is reported as the origin of every diagnostic.
const Source = "crateview"

// ApplyCommand is the client command used for fixes that create or move files.
const ApplyCommand = "crateview.applySourceChange"

// Locator maps file ids to absolute paths.
type Locator interface {
	AbsPath(id ports.FileID) (string, error)
}

// Lines provides line indexes for files, such as an analysis.World.
type Lines interface {
	FileLineIndex(id ports.FileID) (*syntax.LineIndex, error)
}

// URI returns the document URI of id.
func URI(loc Locator, id ports.FileID) (protocol.DocumentURI, error) {
	p, err := loc.AbsPath(id)
	if err != nil {
		return "", err
	}
	return protocol.DocumentURI(uri.File(p)), nil
}

func Position(li *syntax.LineIndex, offset uint32) protocol.Position {
	lc := li.LineCol(offset)
	return protocol.Position{Line: lc.Line, Character: li.UTF16Col(lc)}
}

func Range(li *syntax.LineIndex, r syntax.TextRange) protocol.Range {
	return protocol.Range{Start: Position(li, r.Start), End: Position(li, r.End)}
}

// Offset converts an LSP position back to a byte offset.
func Offset(li *syntax.LineIndex, pos protocol.Position) uint32 {
	return li.OffsetUTF16(pos.Line, pos.Character)
}

func Severity(s analysis.Severity) protocol.DiagnosticSeverity {
	switch s {
	case analysis.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case analysis.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	case analysis.SeverityHint:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}

func Diagnostic(li *syntax.LineIndex, d analysis.Diagnostic) protocol.Diagnostic {
	out := protocol.Diagnostic{
		Range:    Range(li, d.Range),
		Severity: Severity(d.Severity),
		Source:   Source,
		Message:  d.Message,
	}
	if d.Code != "" {
		out.Code = d.Code
	}
	return out
}

func SymbolKind(k symbols.Kind) protocol.SymbolKind {
	switch k {
	case symbols.KindStruct, symbols.KindUnion:
		return protocol.SymbolKindStruct
	case symbols.KindEnum:
		return protocol.SymbolKindEnum
	case symbols.KindTrait:
		return protocol.SymbolKindInterface
	case symbols.KindTypeAlias:
		return protocol.SymbolKindTypeParameter
	case symbols.KindConst:
		return protocol.SymbolKindConstant
	case symbols.KindStatic:
		return protocol.SymbolKindVariable
	case symbols.KindModule:
		return protocol.SymbolKindModule
	case symbols.KindImpl:
		return protocol.SymbolKindObject
	default:
		return protocol.SymbolKindFunction
	}
}

func SymbolInformation(loc Locator, lines Lines, fs analysis.FileSymbol) (protocol.SymbolInformation, error) {
	u, err := URI(loc, fs.File)
	if err != nil {
		return protocol.SymbolInformation{}, err
	}
	li, err := lines.FileLineIndex(fs.File)
	if err != nil {
		return protocol.SymbolInformation{}, err
	}
	return protocol.SymbolInformation{
		Name: fs.Symbol.Name,
		Kind: SymbolKind(fs.Symbol.Kind),
		Location: protocol.Location{
			URI:   u,
			Range: Range(li, fs.Symbol.NodeRange),
		},
	}, nil
}

// WorkspaceEdit converts the text edits of change. File system edits are
// not representable and are ignored here; see CodeAction.
func WorkspaceEdit(loc Locator, lines Lines, change analysis.SourceChange) (*protocol.WorkspaceEdit, error) {
	changes := make(map[protocol.DocumentURI][]protocol.TextEdit)
	for _, fe := range change.SourceFileEdits {
		u, err := URI(loc, fe.File)
		if err != nil {
			return nil, err
		}
		li, err := lines.FileLineIndex(fe.File)
		if err != nil {
			return nil, err
		}
		for _, atom := range fe.Edit.Atoms() {
			changes[u] = append(changes[u], protocol.TextEdit{
				Range:   Range(li, atom.Delete),
				NewText: atom.Insert,
			})
		}
	}
	return &protocol.WorkspaceEdit{Changes: changes}, nil
}

// CodeAction converts change. Changes that create or move files carry a
// command for the client to send back, since the workspace edit cannot
// express them.
func CodeAction(loc Locator, lines Lines, change analysis.SourceChange, kind protocol.CodeActionKind, diags ...protocol.Diagnostic) (protocol.CodeAction, error) {
	action := protocol.CodeAction{
		Title:       change.Label,
		Kind:        kind,
		Diagnostics: diags,
	}
	if len(change.SourceFileEdits) > 0 {
		edit, err := WorkspaceEdit(loc, lines, change)
		if err != nil {
			return protocol.CodeAction{}, err
		}
		action.Edit = edit
	}
	if len(change.FileSystemEdits) > 0 {
		args := make([]interface{}, 0, len(change.FileSystemEdits))
		for _, fse := range change.FileSystemEdits {
			arg, err := fileSystemArg(loc, fse)
			if err != nil {
				return protocol.CodeAction{}, err
			}
			args = append(args, arg)
		}
		action.Command = &protocol.Command{
			Title:     change.Label,
			Command:   ApplyCommand,
			Arguments: args,
		}
	}
	return action, nil
}

// FileSystemOp is the command argument describing one file system edit.
type FileSystemOp struct {
	Op   string               `json:"op"`
	URI  protocol.DocumentURI `json:"uri"`
	Path string               `json:"path"`
}

func fileSystemArg(loc Locator, fse analysis.FileSystemEdit) (FileSystemOp, error) {
	switch e := fse.(type) {
	case analysis.CreateFile:
		u, err := URI(loc, e.Anchor)
		return FileSystemOp{Op: "create", URI: u, Path: e.Path}, err
	case analysis.MoveFile:
		u, err := URI(loc, e.File)
		return FileSystemOp{Op: "move", URI: u, Path: e.Path}, err
	}
	return FileSystemOp{}, nil
}

// CodeActions converts the fixes of diags and the assists at a position
// into code actions, fixes first.
func CodeActions(loc Locator, lines Lines, file ports.FileID, diags []analysis.Diagnostic, assists []analysis.SourceChange) ([]protocol.CodeAction, error) {
	li, err := lines.FileLineIndex(file)
	if err != nil {
		return nil, err
	}
	var out []protocol.CodeAction
	for _, d := range diags {
		if d.Fix == nil {
			continue
		}
		action, err := CodeAction(loc, lines, *d.Fix, protocol.QuickFix, Diagnostic(li, d))
		if err != nil {
			return nil, err
		}
		out = append(out, action)
	}
	for _, a := range assists {
		action, err := CodeAction(loc, lines, a, protocol.RefactorRewrite)
		if err != nil {
			return nil, err
		}
		out = append(out, action)
	}
	return out, nil
}
