package syntax

import (
	"sort"
	"unicode/utf8"
)

// LineCol is a zero-based line and byte column.
type LineCol struct {
	Line uint32
	Col  uint32
}

// LineIndex maps byte offsets to line/column pairs and back.
type LineIndex struct {
	starts []uint32
	text   string
}

func NewLineIndex(text string) *LineIndex {
	starts := []uint32{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	return &LineIndex{starts: starts, text: text}
}

// Lines returns the number of lines, counting a trailing empty line.
func (li *LineIndex) Lines() int { return len(li.starts) }

// LineCol converts offset, clamped to the text length.
func (li *LineIndex) LineCol(offset uint32) LineCol {
	if offset > uint32(len(li.text)) {
		offset = uint32(len(li.text))
	}
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	return LineCol{Line: uint32(line), Col: offset - li.starts[line]}
}

// Offset converts lc back to a byte offset, clamping the column to the line end.
func (li *LineIndex) Offset(lc LineCol) uint32 {
	if int(lc.Line) >= len(li.starts) {
		return uint32(len(li.text))
	}
	start := li.starts[lc.Line]
	end := uint32(len(li.text))
	if int(lc.Line)+1 < len(li.starts) {
		end = li.starts[lc.Line+1] - 1
	}
	if start+lc.Col > end {
		return end
	}
	return start + lc.Col
}

// UTF16Col returns the column of lc counted in UTF-16 code units. lc is
// clamped the way Offset clamps it, and a column inside a multibyte rune
// counts only the runes before it.
func (li *LineIndex) UTF16Col(lc LineCol) uint32 {
	end := li.Offset(lc)
	var n uint32
	for i := li.starts[li.LineCol(end).Line]; i < end; {
		r, size := utf8.DecodeRuneInString(li.text[i:])
		if i+uint32(size) > end {
			break
		}
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
		i += uint32(size)
	}
	return n
}

// OffsetUTF16 converts a line and UTF-16 column to a byte offset.
func (li *LineIndex) OffsetUTF16(line, col uint32) uint32 {
	if int(line) >= len(li.starts) {
		return uint32(len(li.text))
	}
	offset := li.starts[line]
	var units uint32
	for units < col && int(offset) < len(li.text) {
		r, size := utf8.DecodeRuneInString(li.text[offset:])
		if r == '\n' {
			break
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
		offset += uint32(size)
	}
	return offset
}
