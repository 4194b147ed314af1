// Package buffer implements the input buffer component of the pcomb
// engine: a random-access byte stream with line/column bookkeeping and
// a position-keyed associative table used by the cache combinator.
//
// Adapted from the offset/line bookkeeping in internal/position's
// SourceFile and the rune-at-offset scanning idiom of a hand-rolled
// Unicode-aware lexer — here re-expressed as a passive buffer the
// engine's terminals and blank functions scan explicitly, rather than
// a stateful tokenizer that owns its own cursor.
package buffer

import (
	"unicode/utf8"

	"github.com/orizon-lang/pcomb/internal/position"
)

// Buffer is an immutable byte-addressable input stream. Two Buffers
// are never equal as cache/table keys even if their contents match —
// identity is the pointer itself, matching spec.md §4.A's requirement
// to "distinguish equal (buffer, column) from different forks of the
// same input."
type Buffer struct {
	filename   string
	data       string
	lineStarts []int // byte offset of the start of each line, line 0 at data[0]
}

// New builds a Buffer over data, precomputing line-start offsets so
// position derivation is O(log n) rather than a linear rescan.
func New(filename, data string) *Buffer {
	starts := []int{0}
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Buffer{filename: filename, data: data, lineStarts: starts}
}

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int { return len(b.data) }

// Filename returns the buffer's source name, used only for position
// reporting.
func (b *Buffer) Filename() string { return b.filename }

// ReadRune decodes the rune starting at byte column col. ok is false
// at or past the end of input. Invalid UTF-8 is surfaced as
// utf8.RuneError with width 1 so terminals can reject it explicitly
// rather than the buffer silently skipping bytes.
func (b *Buffer) ReadRune(col int) (r rune, width int, ok bool) {
	if col < 0 || col >= len(b.data) {
		return 0, 0, false
	}
	r, width = utf8.DecodeRuneInString(b.data[col:])
	if width == 0 {
		width = 1
	}
	return r, width, true
}

// Slice returns the raw bytes of [from, to) for terminals that match
// multi-rune literals (keywords, numbers, regex lexemes) directly
// against the backing string rather than rune by rune.
func (b *Buffer) Slice(from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(b.data) {
		to = len(b.data)
	}
	if from >= to {
		return ""
	}
	return b.data[from:to]
}

// BlankFunc advances past insignificant characters starting at col,
// returning the column immediately after the blank region. It is
// applied after every successful lexeme (spec.md §6).
type BlankFunc func(b *Buffer, col int) int

// SkipBlank runs blank (a nil blank is the identity function, so an
// engine with no whitespace concept still works) starting at col.
func (b *Buffer) SkipBlank(col int, blank BlankFunc) int {
	if blank == nil {
		return col
	}
	return blank(b, col)
}

// PositionAt derives a non-phantom Position for byte column col by
// binary-searching the precomputed line starts, then walking the
// line's bytes to recover both the byte column and the UTF-8 (rune)
// column spec.md §3 requires.
func (b *Buffer) PositionAt(col int) position.Position {
	p := b.positionAt(col)
	p.Phantom = false
	return p
}

// PhantomPositionAt derives a Position for col marked Phantom, used
// when a combinator (empty, option's default branch) produces a
// result without consuming any input at that column.
func (b *Buffer) PhantomPositionAt(col int) position.Position {
	p := b.positionAt(col)
	p.Phantom = true
	return p
}

func (b *Buffer) positionAt(col int) position.Position {
	if col < 0 {
		col = 0
	}
	if col > len(b.data) {
		col = len(b.data)
	}

	line := b.lineIndex(col)
	lineStart := b.lineStarts[line]

	byteCol := 1
	utf8Col := 1
	for i := lineStart; i < col; {
		_, width := utf8.DecodeRuneInString(b.data[i:])
		if width == 0 {
			width = 1
		}
		byteCol += width
		utf8Col++
		i += width
	}

	return position.Position{
		Filename:   b.filename,
		Line:       line + 1,
		Column:     byteCol,
		UTF8Column: utf8Col,
		Offset:     col,
	}
}

// lineIndex returns the 0-based line containing byte offset col via
// binary search over lineStarts.
func (b *Buffer) lineIndex(col int) int {
	lo, hi := 0, len(b.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if b.lineStarts[mid] <= col {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
