package syntax

import (
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

// Parser turns source text into a syntax tree. Implementations must always
// return a tree, recording malformed input as error nodes.
type Parser interface {
	Parse(text string) *File
}

// RustParser parses Rust source with the tree-sitter grammar and converts
// the result into an immutable Node tree. The C tree is released before
// Parse returns.
type RustParser struct {
	pool *ParserPool
}

func NewRustParser() *RustParser {
	return &RustParser{pool: NewParserPool(rustLanguage())}
}

var rustLanguage = sync.OnceValue(func() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_rust.Language())
})

var defaultParser = sync.OnceValue(NewRustParser)

// Parse parses text with a shared RustParser.
func Parse(text string) *File {
	return defaultParser().Parse(text)
}

func (p *RustParser) Parse(text string) *File {
	sp := p.pool.Get()
	defer p.pool.Put(sp)

	tree := sp.Parse([]byte(text), nil)
	if tree == nil {
		return &File{Text: text, Root: &Node{
			Kind:  KindSourceFile,
			Range: TextRange{End: uint32(len(text))},
			Named: true,
			Error: true,
		}}
	}
	defer tree.Close()

	root := convert(tree.RootNode(), nil, "")
	// tree-sitter trims trailing trivia from the root; the file owns all of it.
	root.Range = TextRange{Start: 0, End: uint32(len(text))}
	return &File{Text: text, Root: root}
}

func convert(n *sitter.Node, parent *Node, field string) *Node {
	out := &Node{
		Kind:    n.Kind(),
		Range:   TextRange{Start: uint32(n.StartByte()), End: uint32(n.EndByte())},
		Field:   field,
		Named:   n.IsNamed(),
		Error:   n.IsError(),
		Missing: n.IsMissing(),
		parent:  parent,
	}

	count := n.ChildCount()
	if count == 0 {
		return out
	}

	fields := fieldRanges(n)
	out.Children = make([]*Node, 0, count)
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		out.Children = append(out.Children, convert(child, out, fieldOf(fields, child)))
	}
	return out
}

type fieldRange struct {
	name  string
	kind  string
	start uint
	end   uint
}

func fieldRanges(n *sitter.Node) []fieldRange {
	var out []fieldRange
	for _, name := range recordedFields {
		child := n.ChildByFieldName(name)
		if child == nil {
			continue
		}
		out = append(out, fieldRange{name: name, kind: child.Kind(), start: child.StartByte(), end: child.EndByte()})
	}
	return out
}

func fieldOf(fields []fieldRange, child *sitter.Node) string {
	for _, f := range fields {
		if f.kind == child.Kind() && f.start == child.StartByte() && f.end == child.EndByte() {
			return f.name
		}
	}
	return ""
}
