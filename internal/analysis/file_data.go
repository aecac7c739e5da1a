package analysis

import (
	"fmt"
	"log/slog"
	"time"

	"crateview/internal/core/errors"
	"crateview/internal/engine/symbols"
	"crateview/internal/engine/syntax"
	"crateview/internal/shared/observability"
	"crateview/internal/shared/util"
)

// fileData is the text of one file plus values derived from it on demand.
// The text never changes; a new text means a new fileData.
type fileData struct {
	text    string
	syntax  util.OnceCell[*syntax.File]
	lines   util.OnceCell[*syntax.LineIndex]
	symbols util.OnceCell[*symbols.FileSymbols]
}

func newFileData(text string) *fileData {
	return &fileData{text: text}
}

func (fd *fileData) syntaxTree(p syntax.Parser) *syntax.File {
	return fd.syntax.GetOrInit(func() *syntax.File {
		return parse(p, fd.text)
	})
}

// syntaxTransient returns the cached tree if there is one and otherwise
// parses without caching the result.
func (fd *fileData) syntaxTransient(p syntax.Parser) *syntax.File {
	if file, ok := fd.syntax.Get(); ok {
		return file
	}
	return parse(p, fd.text)
}

func (fd *fileData) lineIndex() *syntax.LineIndex {
	return fd.lines.GetOrInit(func() *syntax.LineIndex {
		return syntax.NewLineIndex(fd.text)
	})
}

func (fd *fileData) fileSymbols(p syntax.Parser) *symbols.FileSymbols {
	return fd.symbols.GetOrInit(func() *symbols.FileSymbols {
		return symbols.NewFileSymbols(fd.syntaxTransient(p))
	})
}

// parse runs p over text. A panicking parser is logged with the full text
// and the panic is re-raised as a CodeParserFault DomainError.
func parse(p syntax.Parser, text string) (file *syntax.File) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			observability.ParserFaultsTotal.Inc()
			slog.Error("parser panicked", "panic", r, "text", "\n------\n"+text+"\n------")
			panic(&errors.DomainError{
				Code:    errors.CodeParserFault,
				Message: fmt.Sprintf("parser panicked: %v", r),
			})
		}
		observability.ParsingDuration.Observe(time.Since(start).Seconds())
	}()
	return p.Parse(text)
}
