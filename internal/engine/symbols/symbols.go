package symbols

import (
	"sort"

	"crateview/internal/engine/syntax"
)

type Kind string

const (
	KindFunction  Kind = "function"
	KindStruct    Kind = "struct"
	KindEnum      Kind = "enum"
	KindUnion     Kind = "union"
	KindTrait     Kind = "trait"
	KindTypeAlias Kind = "type"
	KindConst     Kind = "const"
	KindStatic    Kind = "static"
	KindModule    Kind = "module"
	KindMacro     Kind = "macro"
	KindImpl      Kind = "impl"
)

// IsType reports whether symbols of this kind name a type.
func (k Kind) IsType() bool {
	switch k {
	case KindStruct, KindEnum, KindUnion, KindTrait, KindTypeAlias:
		return true
	}
	return false
}

var itemKinds = map[string]Kind{
	syntax.KindFunctionItem:    KindFunction,
	syntax.KindFunctionSig:     KindFunction,
	syntax.KindStructItem:      KindStruct,
	syntax.KindEnumItem:        KindEnum,
	syntax.KindUnionItem:       KindUnion,
	syntax.KindTraitItem:       KindTrait,
	syntax.KindTypeItem:        KindTypeAlias,
	syntax.KindConstItem:       KindConst,
	syntax.KindStaticItem:      KindStatic,
	syntax.KindModItem:         KindModule,
	syntax.KindMacroDefinition: KindMacro,
}

// Symbol is a named declaration.
type Symbol struct {
	Name      string
	Kind      Kind
	NodeRange syntax.TextRange
	NameRange syntax.TextRange
}

// Extract returns every named item in file in document order, including
// items nested in inline modules, impls and traits.
func Extract(file *syntax.File) []Symbol {
	var out []Symbol
	file.Root.Walk(func(n *syntax.Node) bool {
		if sym, ok := toSymbol(file, n); ok {
			out = append(out, sym)
		}
		return true
	})
	return out
}

func toSymbol(file *syntax.File, n *syntax.Node) (Symbol, bool) {
	kind, ok := itemKinds[n.Kind]
	if !ok {
		return Symbol{}, false
	}
	name := n.ChildByField(syntax.FieldName)
	if name == nil || name.Missing || name.Range.IsEmpty() {
		return Symbol{}, false
	}
	return Symbol{
		Name:      file.NodeText(name),
		Kind:      kind,
		NodeRange: n.Range,
		NameRange: name.Range,
	}, true
}

// FileSymbols is an immutable per-file index ordered by name, then position.
type FileSymbols struct {
	symbols []Symbol
	names   []string
}

func NewFileSymbols(file *syntax.File) *FileSymbols {
	return newFileSymbols(Extract(file))
}

func newFileSymbols(syms []Symbol) *FileSymbols {
	sort.SliceStable(syms, func(i, j int) bool {
		if syms[i].Name != syms[j].Name {
			return syms[i].Name < syms[j].Name
		}
		return syms[i].NodeRange.Start < syms[j].NodeRange.Start
	})
	names := make([]string, len(syms))
	for i, sym := range syms {
		names[i] = sym.Name
	}
	return &FileSymbols{symbols: syms, names: names}
}

func (fs *FileSymbols) Len() int { return len(fs.symbols) }

// String implements fuzzy.Source.
func (fs *FileSymbols) String(i int) string { return fs.names[i] }

// Symbols returns a copy of the indexed symbols.
func (fs *FileSymbols) Symbols() []Symbol {
	out := make([]Symbol, len(fs.symbols))
	copy(out, fs.symbols)
	return out
}
