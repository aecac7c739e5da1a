package symbols

import (
	"crateview/internal/engine/syntax"
)

// StructureNode is one entry of a file outline. Parent indexes into the
// outline slice, or is -1 for top-level entries.
type StructureNode struct {
	Parent          int
	Label           string
	Kind            Kind
	NavigationRange syntax.TextRange
	NodeRange       syntax.TextRange
}

// Structure returns the file outline in document order.
func Structure(file *syntax.File) []StructureNode {
	var out []StructureNode
	var visit func(n *syntax.Node, parent int)
	visit = func(n *syntax.Node, parent int) {
		next := parent
		if entry, ok := structureEntry(file, n); ok {
			entry.Parent = parent
			out = append(out, entry)
			next = len(out) - 1
		}
		for _, child := range n.Children {
			visit(child, next)
		}
	}
	visit(file.Root, -1)
	return out
}

func structureEntry(file *syntax.File, n *syntax.Node) (StructureNode, bool) {
	if n.Kind == syntax.KindImplItem {
		target := n.ChildByField(syntax.FieldType)
		if target == nil {
			return StructureNode{}, false
		}
		label := "impl " + file.NodeText(target)
		if trait := n.ChildByField(syntax.FieldTrait); trait != nil {
			label = "impl " + file.NodeText(trait) + " for " + file.NodeText(target)
		}
		return StructureNode{
			Label:           label,
			Kind:            KindImpl,
			NavigationRange: target.Range,
			NodeRange:       n.Range,
		}, true
	}

	sym, ok := toSymbol(file, n)
	if !ok {
		return StructureNode{}, false
	}
	return StructureNode{
		Label:           sym.Name,
		Kind:            sym.Kind,
		NavigationRange: sym.NameRange,
		NodeRange:       sym.NodeRange,
	}, true
}
