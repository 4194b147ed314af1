// Package lexeme provides a small library of pcomb.Terminal
// constructors for the lexical classes a scannerless grammar typically
// needs directly: identifiers, keywords, numbers, string/char
// literals, and regex-described tokens, plus BlankFunc builders for
// whitespace and comment skipping.
//
// Grounded on the character-classification and scanning logic of
// SeleniaProject-Orizon's hand-written lexer (internal/lexer/lexer.go,
// deleted from this module once its logic was reworked here against
// pcomb.Terminal's buffer-and-column contract instead of a stateful
// tokenizer with its own cursor).
package lexeme

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/orizon-lang/pcomb/internal/pcomb"
	"github.com/orizon-lang/pcomb/internal/pcomb/buffer"
)

// regexpMustCompileAnchored compiles pattern anchored to the start of
// whatever string it is matched against, so Regex's "did it match at
// this column" check reduces to "did the match start at index 0."
func regexpMustCompileAnchored(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`\A(?:` + pattern + `)`)
}

func isASCIILetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return isASCIILetter(r) || r == '_' || (r >= 0x80 && unicode.IsLetter(r))
}

func isIdentCont(r rune) bool {
	return isASCIILetter(r) || isASCIIDigit(r) || r == '_' || (r >= 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

// Char matches a single literal rune.
func Char(want rune) pcomb.Terminal[rune] {
	return pcomb.Terminal[rune]{
		Predict: pcomb.Chars(want),
		Match: func(buf *buffer.Buffer, col int) (rune, int, error) {
			r, w, ok := buf.ReadRune(col)
			if !ok || r != want {
				return 0, col, pcomb.GiveUp{Msg: strconv.QuoteRune(want)}
			}
			return r, col + w, nil
		},
	}
}

// Ident matches a run of identifier characters — an ASCII letter,
// underscore, or Unicode letter, followed by any number of ASCII
// letters, digits, underscores, or Unicode letters/digits — mirroring
// readIdentifier's ASCII-fast-path-plus-Unicode-fallback shape.
func Ident() pcomb.Terminal[string] {
	return pcomb.Terminal[string]{
		Predict: isIdentStart,
		Match: func(buf *buffer.Buffer, col int) (string, int, error) {
			start := col
			r, w, ok := buf.ReadRune(col)
			if !ok || !isIdentStart(r) {
				return "", col, pcomb.GiveUp{Msg: "identifier"}
			}
			col += w
			for {
				r, w, ok := buf.ReadRune(col)
				if !ok || !isIdentCont(r) {
					break
				}
				col += w
			}
			return buf.Slice(start, col), col, nil
		},
	}
}

// Keyword matches the literal word, but rejects if it is immediately
// followed by an identifier-continuation character — so Keyword("if")
// does not match a prefix of "ifx" — mirroring lookupIdent's check
// against the full identifier the lexer already read, rather than a
// bare prefix match.
func Keyword(word string) pcomb.Terminal[string] {
	rs := []rune(word)
	var first rune
	if len(rs) > 0 {
		first = rs[0]
	}
	return pcomb.Terminal[string]{
		Predict: pcomb.Chars(first),
		Match: func(buf *buffer.Buffer, col int) (string, int, error) {
			end := col
			for _, want := range rs {
				r, w, ok := buf.ReadRune(end)
				if !ok || r != want {
					return "", col, pcomb.GiveUp{Msg: strconv.Quote(word)}
				}
				end += w
			}
			if r, _, ok := buf.ReadRune(end); ok && isIdentCont(r) {
				return "", col, pcomb.GiveUp{Msg: strconv.Quote(word)}
			}
			return word, end, nil
		},
	}
}

// Number matches an unsigned integer or decimal literal (digits,
// optionally followed by '.' and more digits), rejecting a malformed
// literal immediately followed by an identifier character — mirroring
// readNumber's digit-run-then-optional-decimal-point scan and its
// letters-after-digits malformed-number check.
func Number() pcomb.Terminal[float64] {
	return pcomb.Terminal[float64]{
		Predict: isASCIIDigit,
		Match: func(buf *buffer.Buffer, col int) (float64, int, error) {
			start := col
			if r, _, ok := buf.ReadRune(col); !ok || !isASCIIDigit(r) {
				return 0, col, pcomb.GiveUp{Msg: "number"}
			}
			for {
				r, w, ok := buf.ReadRune(col)
				if !ok || !isASCIIDigit(r) {
					break
				}
				col += w
			}
			if r, w, ok := buf.ReadRune(col); ok && r == '.' {
				if r2, _, ok2 := buf.ReadRune(col + w); ok2 && isASCIIDigit(r2) {
					col += w
					for {
						r, w, ok := buf.ReadRune(col)
						if !ok || !isASCIIDigit(r) {
							break
						}
						col += w
					}
				}
			}
			if r, _, ok := buf.ReadRune(col); ok && (isASCIILetter(r) || r == '_') {
				return 0, start, pcomb.GiveUp{Msg: "malformed number"}
			}
			v, err := strconv.ParseFloat(buf.Slice(start, col), 64)
			if err != nil {
				return 0, start, pcomb.GiveUp{Msg: "number"}
			}
			return v, col, nil
		},
	}
}

// StringLit matches a double-quoted string literal with backslash
// escapes, unescaping it, and rejects if the closing quote is never
// found — mirroring readString's scan-to-matching-quote loop and its
// terminated/unterminated distinction.
func StringLit() pcomb.Terminal[string] {
	return pcomb.Terminal[string]{
		Predict: pcomb.Chars('"'),
		Match: func(buf *buffer.Buffer, col int) (string, int, error) {
			r, w, ok := buf.ReadRune(col)
			if !ok || r != '"' {
				return "", col, pcomb.GiveUp{Msg: "string literal"}
			}
			pos := col + w
			var raw strings.Builder
			for {
				r, w, ok := buf.ReadRune(pos)
				if !ok {
					return "", col, pcomb.GiveUp{Msg: "unterminated string literal"}
				}
				if r == '"' {
					pos += w
					break
				}
				if r == '\\' {
					pos += w
					r2, w2, ok2 := buf.ReadRune(pos)
					if !ok2 {
						return "", col, pcomb.GiveUp{Msg: "unterminated string literal"}
					}
					raw.WriteRune(unescape(r2))
					pos += w2
					continue
				}
				raw.WriteRune(r)
				pos += w
			}
			return raw.String(), pos, nil
		},
	}
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return r
	}
}

// Regex matches pattern anchored at the current column, taking the
// leftmost-first match of the standard regexp package (not necessarily
// the longest one the pattern allows) — the
// keyword/identifier/number terminals above cover the common cases
// directly; Regex exists for grammars whose lexical classes don't fit
// any of them (a pack-grounded alternative to hand-writing another
// bespoke scanner, as SeleniaProject-Orizon's lexer itself does not
// use regexp but the rest of the retrieval pack's services commonly
// do for ad hoc token shapes).
func Regex(pattern string) pcomb.Terminal[string] {
	re := regexpMustCompileAnchored(pattern)
	return pcomb.Terminal[string]{
		Predict: pcomb.AnyChar,
		Match: func(buf *buffer.Buffer, col int) (string, int, error) {
			rest := buf.Slice(col, buf.Len())
			loc := re.FindStringIndex(rest)
			if loc == nil || loc[0] != 0 {
				return "", col, pcomb.GiveUp{Msg: "/" + pattern + "/"}
			}
			return rest[:loc[1]], col + loc[1], nil
		},
	}
}

// WhitespaceBlank skips spaces, tabs, carriage returns, and newlines —
// mirroring skipWhitespace, extended to also skip '\n' since pcomb
// grammars are typically layout-insensitive by default (internal/pcomb
// layout.go's ChangeLayout is how a grammar opts into caring about
// newlines specifically).
func WhitespaceBlank(buf *buffer.Buffer, col int) int {
	for {
		r, w, ok := buf.ReadRune(col)
		if !ok || (r != ' ' && r != '\t' && r != '\r' && r != '\n') {
			return col
		}
		col += w
	}
}

// WhitespaceAndCommentsBlank is WhitespaceBlank extended to also skip
// "//" line comments and "/* */" block comments — mirroring
// readComment's two comment forms.
func WhitespaceAndCommentsBlank(buf *buffer.Buffer, col int) int {
	for {
		next := WhitespaceBlank(buf, col)
		r, w, ok := buf.ReadRune(next)
		if ok && r == '/' {
			if r2, w2, ok2 := buf.ReadRune(next + w); ok2 && r2 == '/' {
				p := next + w + w2
				for {
					r, w, ok := buf.ReadRune(p)
					if !ok || r == '\n' {
						break
					}
					p += w
				}
				col = p
				continue
			}
			if r2, w2, ok2 := buf.ReadRune(next + w); ok2 && r2 == '*' {
				p := next + w + w2
				for {
					r, w, ok := buf.ReadRune(p)
					if !ok {
						col = p
						break
					}
					if r == '*' {
						if r2, w2, ok2 := buf.ReadRune(p + w); ok2 && r2 == '/' {
							p += w + w2
							break
						}
					}
					p += w
				}
				col = p
				continue
			}
		}
		if next == col {
			return col
		}
		col = next
	}
}
