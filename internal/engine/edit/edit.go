// Package edit describes text modifications as ordered, non-overlapping
// replacements of byte ranges.
package edit

import (
	"sort"
	"strings"

	"crateview/internal/core/errors"
	"crateview/internal/engine/syntax"
)

// AtomEdit replaces the text in Delete with Insert.
type AtomEdit struct {
	Delete syntax.TextRange
	Insert string
}

func Replace(r syntax.TextRange, text string) AtomEdit {
	return AtomEdit{Delete: r, Insert: text}
}

func Delete(r syntax.TextRange) AtomEdit {
	return AtomEdit{Delete: r}
}

func Insert(offset uint32, text string) AtomEdit {
	return AtomEdit{Delete: syntax.TextRange{Start: offset, End: offset}, Insert: text}
}

// Edit is a sorted list of atoms that do not overlap.
type Edit struct {
	atoms []AtomEdit
}

// Atoms returns a copy of the edit's atoms in application order.
func (e Edit) Atoms() []AtomEdit {
	out := make([]AtomEdit, len(e.atoms))
	copy(out, e.atoms)
	return out
}

func (e Edit) IsEmpty() bool { return len(e.atoms) == 0 }

// Apply returns text with every atom applied.
func (e Edit) Apply(text string) (string, error) {
	var b strings.Builder
	b.Grow(len(text))
	last := uint32(0)
	for _, atom := range e.atoms {
		if atom.Delete.End > uint32(len(text)) {
			return "", errors.AddContext(errors.New(errors.CodeValidationError, "edit range outside of text"),
				errors.CtxOffset, atom.Delete.End)
		}
		b.WriteString(text[last:atom.Delete.Start])
		b.WriteString(atom.Insert)
		last = atom.Delete.End
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

// Builder accumulates atoms and validates them on Finish.
type Builder struct {
	atoms []AtomEdit
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Replace(r syntax.TextRange, text string) *Builder {
	b.atoms = append(b.atoms, Replace(r, text))
	return b
}

func (b *Builder) Delete(r syntax.TextRange) *Builder {
	b.atoms = append(b.atoms, Delete(r))
	return b
}

func (b *Builder) Insert(offset uint32, text string) *Builder {
	b.atoms = append(b.atoms, Insert(offset, text))
	return b
}

// Finish sorts the atoms by start offset, keeping insertion order for ties,
// and rejects overlapping ranges.
func (b *Builder) Finish() (Edit, error) {
	atoms := make([]AtomEdit, len(b.atoms))
	copy(atoms, b.atoms)
	sort.SliceStable(atoms, func(i, j int) bool {
		return atoms[i].Delete.Start < atoms[j].Delete.Start
	})
	for i := 1; i < len(atoms); i++ {
		if atoms[i].Delete.Start < atoms[i-1].Delete.End {
			return Edit{}, errors.AddContext(errors.New(errors.CodeValidationError, "overlapping edits"),
				errors.CtxOffset, atoms[i].Delete.Start)
		}
	}
	return Edit{atoms: atoms}, nil
}

// LocalEdit is an edit confined to one file with an optional cursor hint.
type LocalEdit struct {
	Edit           Edit
	CursorPosition *uint32
}

// Cursor returns a pointer to offset, for populating CursorPosition.
func Cursor(offset uint32) *uint32 { return &offset }
