package syntax

import "fmt"

// TextRange is a half-open byte range [Start, End) into a file's text.
type TextRange struct {
	Start uint32
	End   uint32
}

// NewRange builds a range, swapping the bounds when given out of order.
func NewRange(start, end uint32) TextRange {
	if end < start {
		start, end = end, start
	}
	return TextRange{Start: start, End: end}
}

func (r TextRange) Len() uint32 { return r.End - r.Start }

func (r TextRange) IsEmpty() bool { return r.Start == r.End }

// Contains reports whether offset lies in [Start, End).
func (r TextRange) Contains(offset uint32) bool {
	return r.Start <= offset && offset < r.End
}

// ContainsInclusive reports whether offset lies in [Start, End].
func (r TextRange) ContainsInclusive(offset uint32) bool {
	return r.Start <= offset && offset <= r.End
}

// ContainsRange reports whether other lies entirely inside r.
func (r TextRange) ContainsRange(other TextRange) bool {
	return r.Start <= other.Start && other.End <= r.End
}

func (r TextRange) String() string {
	return fmt.Sprintf("[%d; %d)", r.Start, r.End)
}

// Node is an immutable syntax tree node. Trees are built once per parse and
// never mutated afterwards, so nodes can be shared freely between goroutines.
type Node struct {
	Kind     string
	Range    TextRange
	Field    string
	Named    bool
	Error    bool
	Missing  bool
	Children []*Node

	parent *Node
}

func (n *Node) Parent() *Node { return n.parent }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// ChildByField returns the first child tagged with the given field name.
func (n *Node) ChildByField(field string) *Node {
	for _, child := range n.Children {
		if child.Field == field {
			return child
		}
	}
	return nil
}

// ChildOfKind returns the first direct child with the given kind.
func (n *Node) ChildOfKind(kind string) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

// Index returns the position of n among its parent's children, or -1 for the root.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	for i, sibling := range n.parent.Children {
		if sibling == n {
			return i
		}
	}
	return -1
}

// PrevSibling returns the previous sibling, skipping comments.
func (n *Node) PrevSibling() *Node {
	idx := n.Index()
	if idx < 0 {
		return nil
	}
	for i := idx - 1; i >= 0; i-- {
		if !IsTrivia(n.parent.Children[i].Kind) {
			return n.parent.Children[i]
		}
	}
	return nil
}

// NextSibling returns the next sibling, skipping comments.
func (n *Node) NextSibling() *Node {
	idx := n.Index()
	if idx < 0 {
		return nil
	}
	for i := idx + 1; i < len(n.parent.Children); i++ {
		if !IsTrivia(n.parent.Children[i].Kind) {
			return n.parent.Children[i]
		}
	}
	return nil
}

// Ancestor returns the closest node, starting at n itself, whose kind is one of kinds.
func (n *Node) Ancestor(kinds ...string) *Node {
	for cur := n; cur != nil; cur = cur.parent {
		for _, kind := range kinds {
			if cur.Kind == kind {
				return cur
			}
		}
	}
	return nil
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}
