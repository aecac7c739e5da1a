// Package assists implements small, cursor-driven refactorings over a
// single syntax tree.
package assists

import (
	"strings"

	"crateview/internal/engine/edit"
	"crateview/internal/engine/syntax"
)

// Assist proposes a local edit at an offset. Run returns nil when the assist
// does not apply there.
type Assist struct {
	Label string
	Run   func(file *syntax.File, offset uint32) *edit.LocalEdit
}

// Default returns the built-in assists in presentation order.
func Default() []Assist {
	return []Assist{
		{Label: "flip comma", Run: FlipComma},
		{Label: "add `#[derive]`", Run: AddDerive},
		{Label: "add impl", Run: AddImpl},
	}
}

// FlipComma swaps the elements on either side of the comma at offset.
func FlipComma(file *syntax.File, offset uint32) *edit.LocalEdit {
	var comma *syntax.Node
	for _, leaf := range file.LeavesAt(offset) {
		if leaf.Kind == syntax.KindComma {
			comma = leaf
			break
		}
	}
	if comma == nil {
		return nil
	}
	prev, next := comma.PrevSibling(), comma.NextSibling()
	if prev == nil || next == nil || next.Kind == syntax.KindComma || isDelimiter(prev) || isDelimiter(next) {
		return nil
	}

	e, err := edit.NewBuilder().
		Replace(prev.Range, file.NodeText(next)).
		Replace(next.Range, file.NodeText(prev)).
		Finish()
	if err != nil {
		return nil
	}
	return &edit.LocalEdit{Edit: e}
}

func isDelimiter(n *syntax.Node) bool {
	if n.Named {
		return false
	}
	switch n.Kind {
	case "(", ")", "[", "]", "{", "}", "<", ">", "|":
		return true
	}
	return false
}

const deriveStub = "#[derive()]\n"

// AddDerive inserts an empty derive attribute above the struct, enum or
// union at offset, or moves the cursor into an existing derive list.
func AddDerive(file *syntax.File, offset uint32) *edit.LocalEdit {
	item := file.FindNodeAt(offset, syntax.KindStructItem, syntax.KindEnumItem, syntax.KindUnionItem)
	if item == nil {
		return nil
	}

	if attr := deriveAttr(file, item); attr != nil {
		cursor := attr.Range.End - 2
		attr.Walk(func(n *syntax.Node) bool {
			if n.Kind == "token_tree" {
				cursor = n.Range.End - 1
				return false
			}
			return true
		})
		return &edit.LocalEdit{CursorPosition: edit.Cursor(cursor)}
	}

	e, err := edit.NewBuilder().Insert(item.Range.Start, deriveStub).Finish()
	if err != nil {
		return nil
	}
	return &edit.LocalEdit{
		Edit:           e,
		CursorPosition: edit.Cursor(item.Range.Start + uint32(len("#[derive("))),
	}
}

func deriveAttr(file *syntax.File, item *syntax.Node) *syntax.Node {
	for prev := item.PrevSibling(); prev != nil && prev.Kind == syntax.KindAttributeItem; prev = prev.PrevSibling() {
		text := strings.Join(strings.Fields(file.NodeText(prev)), "")
		if strings.HasPrefix(text, "#[derive(") {
			return prev
		}
	}
	return nil
}

// AddImpl appends an empty inherent impl block after the struct, enum or
// union at offset, carrying over its generic parameters.
func AddImpl(file *syntax.File, offset uint32) *edit.LocalEdit {
	item := file.FindNodeAt(offset, syntax.KindStructItem, syntax.KindEnumItem, syntax.KindUnionItem)
	if item == nil {
		return nil
	}
	name := item.ChildByField(syntax.FieldName)
	if name == nil || name.Missing {
		return nil
	}

	var b strings.Builder
	b.WriteString("\n\nimpl")
	params := item.ChildByField(syntax.FieldTypeParameters)
	if params != nil {
		b.WriteString(file.NodeText(params))
	}
	b.WriteByte(' ')
	b.WriteString(file.NodeText(name))
	if params != nil {
		if args := typeArgs(file, params); len(args) > 0 {
			b.WriteString("<" + strings.Join(args, ", ") + ">")
		}
	}
	b.WriteString(" {\n")
	cursor := item.Range.End + uint32(b.Len())
	b.WriteString("\n}")

	e, err := edit.NewBuilder().Insert(item.Range.End, b.String()).Finish()
	if err != nil {
		return nil
	}
	return &edit.LocalEdit{Edit: e, CursorPosition: edit.Cursor(cursor)}
}

func typeArgs(file *syntax.File, params *syntax.Node) []string {
	var out []string
	for _, p := range params.Children {
		if !p.Named || p.Kind == syntax.KindAttributeItem || syntax.IsTrivia(p.Kind) {
			continue
		}
		switch {
		case p.Kind == syntax.KindLifetime || p.Kind == syntax.KindTypeIdentifier:
			out = append(out, file.NodeText(p))
		case p.ChildByField(syntax.FieldName) != nil:
			out = append(out, file.NodeText(p.ChildByField(syntax.FieldName)))
		case p.ChildByField(syntax.FieldLeft) != nil:
			out = append(out, file.NodeText(p.ChildByField(syntax.FieldLeft)))
		default:
			if n := p.ChildOfKind(syntax.KindLifetime); n != nil {
				out = append(out, file.NodeText(n))
			} else if n := p.ChildOfKind(syntax.KindTypeIdentifier); n != nil {
				out = append(out, file.NodeText(n))
			}
		}
	}
	return out
}
