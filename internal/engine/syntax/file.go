package syntax

import (
	"fmt"
	"strings"
)

// File is a parsed source file. It is immutable once built.
type File struct {
	Text string
	Root *Node
}

// NodeText returns the source text covered by n.
func (f *File) NodeText(n *Node) string {
	if n == nil {
		return ""
	}
	return f.Text[n.Range.Start:n.Range.End]
}

// LeavesAt returns the leaves touching offset. Two leaves are returned when
// offset sits exactly between adjacent tokens; the left one comes first.
func (f *File) LeavesAt(offset uint32) []*Node {
	var out []*Node
	f.Root.Walk(func(n *Node) bool {
		if !n.Range.ContainsInclusive(offset) {
			return false
		}
		if n.IsLeaf() && n != f.Root {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FindNodeAt returns the innermost node of one of kinds that touches offset.
func (f *File) FindNodeAt(offset uint32, kinds ...string) *Node {
	var found *Node
	for _, leaf := range f.LeavesAt(offset) {
		if n := leaf.Ancestor(kinds...); n != nil {
			if found == nil || found.Range.ContainsRange(n.Range) {
				found = n
			}
		}
	}
	return found
}

// SyntaxError is a malformed region of the tree.
type SyntaxError struct {
	Range   TextRange
	Message string
}

// Errors reports error and missing nodes in document order.
func (f *File) Errors() []SyntaxError {
	var out []SyntaxError
	f.Root.Walk(func(n *Node) bool {
		switch {
		case n.Missing:
			out = append(out, SyntaxError{Range: n.Range, Message: fmt.Sprintf("expected %s", n.Kind)})
			return false
		case n.Error:
			out = append(out, SyntaxError{Range: n.Range, Message: "syntax error"})
			return false
		}
		return true
	})
	return out
}

// ModuleDecl is a top-level `mod` item.
type ModuleDecl struct {
	Name      string
	NameRange TextRange
	NodeRange TextRange
	// HasSemi is set for `mod name;` declarations whose body lives in another file.
	HasSemi bool
}

// Modules lists the file's top-level module items in source order.
func (f *File) Modules() []ModuleDecl {
	var out []ModuleDecl
	for _, child := range f.Root.Children {
		if decl, ok := f.moduleDecl(child); ok {
			out = append(out, decl)
		}
	}
	return out
}

// ModuleAt returns the top-level `mod` item whose name touches offset.
func (f *File) ModuleAt(offset uint32) (ModuleDecl, bool) {
	for _, child := range f.Root.Children {
		decl, ok := f.moduleDecl(child)
		if ok && decl.NameRange.ContainsInclusive(offset) {
			return decl, true
		}
	}
	return ModuleDecl{}, false
}

func (f *File) moduleDecl(n *Node) (ModuleDecl, bool) {
	if n.Kind != KindModItem {
		return ModuleDecl{}, false
	}
	name := n.ChildByField(FieldName)
	if name == nil || name.Missing {
		return ModuleDecl{}, false
	}
	return ModuleDecl{
		Name:      f.NodeText(name),
		NameRange: name.Range,
		NodeRange: n.Range,
		HasSemi:   n.ChildByField(FieldBody) == nil && n.ChildOfKind(KindSemicolon) != nil,
	}, true
}

// DebugString renders the tree one node per line, leaves with their text.
func (f *File) DebugString() string {
	var b strings.Builder
	var write func(n *Node, depth int)
	write = func(n *Node, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		if n.Field != "" {
			b.WriteString(n.Field)
			b.WriteString(": ")
		}
		kind := n.Kind
		if n.Missing {
			kind = "MISSING " + kind
		}
		fmt.Fprintf(&b, "%s@%s", kind, n.Range)
		if n.IsLeaf() && !n.Range.IsEmpty() {
			fmt.Fprintf(&b, " %q", f.NodeText(n))
		}
		b.WriteByte('\n')
		for _, child := range n.Children {
			write(child, depth+1)
		}
	}
	write(f.Root, 0)
	return b.String()
}
