package analysis

import (
	"context"
	"fmt"

	"crateview/internal/core/ports"
	"crateview/internal/engine/modgraph"
	"crateview/internal/engine/syntax"
	"crateview/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Diagnostics reports syntax errors in id followed by its module
// declaration problems in source order.
func (w *World) Diagnostics(ctx context.Context, id ports.FileID) ([]Diagnostic, error) {
	_, span := observability.Tracer.Start(ctx, "World.Diagnostics",
		trace.WithAttributes(attribute.Int("file_id", int(id))))
	defer span.End()

	file, err := w.FileSyntax(id)
	if err != nil {
		return nil, err
	}

	var out []Diagnostic
	for _, e := range file.Errors() {
		out = append(out, Diagnostic{
			Range:    e.Range,
			Message:  e.Message,
			Severity: SeverityError,
			Code:     CodeSyntaxError,
		})
	}

	w.moduleProblems(id, func(decl syntax.ModuleDecl, p modgraph.Problem) {
		out = append(out, problemDiagnostic(id, decl, p))
	})

	for _, d := range out {
		observability.DiagnosticsTotal.WithLabelValues(d.Code).Inc()
	}
	span.SetAttributes(attribute.Int("diagnostics", len(out)))
	return out, nil
}

func problemDiagnostic(id ports.FileID, decl syntax.ModuleDecl, p modgraph.Problem) Diagnostic {
	switch p := p.(type) {
	case modgraph.UnresolvedModule:
		return Diagnostic{
			Range:    decl.NameRange,
			Message:  "unresolved module",
			Severity: SeverityError,
			Code:     CodeUnresolvedModule,
			Fix: &SourceChange{
				Label: "create module",
				FileSystemEdits: []FileSystemEdit{
					CreateFile{Anchor: id, Path: p.Candidate},
				},
			},
		}
	case modgraph.NotDirOwner:
		return Diagnostic{
			Range:    decl.NameRange,
			Message:  "can't declare module at this location",
			Severity: SeverityError,
			Code:     CodeNotDirOwner,
			Fix: &SourceChange{
				Label: "move file and create module",
				FileSystemEdits: []FileSystemEdit{
					MoveFile{File: id, Path: p.MoveTo},
					CreateFile{Anchor: id, Path: modgraph.JoinRelative(p.MoveTo, p.Candidate)},
				},
			},
		}
	case modgraph.AmbiguousModule:
		return Diagnostic{
			Range:    decl.NameRange,
			Message:  fmt.Sprintf("module `%s` resolves to %d files", decl.Name, len(p.Files)),
			Severity: SeverityWarning,
			Code:     CodeAmbiguousModule,
		}
	}
	return Diagnostic{
		Range:    decl.NameRange,
		Message:  "invalid module declaration",
		Severity: SeverityError,
	}
}
