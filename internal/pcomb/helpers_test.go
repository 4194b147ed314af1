package pcomb

import (
	"strconv"

	"github.com/orizon-lang/pcomb/internal/pcomb/buffer"
)

// charTerminal matches exactly one literal rune.
func charTerminal(want rune) Terminal[rune] {
	return Terminal[rune]{
		Predict: Chars(want),
		Match: func(buf *buffer.Buffer, col int) (rune, int, error) {
			r, w, ok := buf.ReadRune(col)
			if !ok || r != want {
				return 0, col, GiveUp{Msg: strconv.QuoteRune(want)}
			}
			return r, col + w, nil
		},
	}
}

// stringTerminal matches a literal multi-rune string.
func stringTerminal(want string) Terminal[string] {
	return Terminal[string]{
		Predict: func(r rune) bool {
			if want == "" {
				return true
			}
			return r == []rune(want)[0]
		},
		Match: func(buf *buffer.Buffer, col int) (string, int, error) {
			s := buf.Slice(col, col+len(want))
			if s != want {
				return "", col, GiveUp{Msg: strconv.Quote(want)}
			}
			return s, col + len(want), nil
		},
	}
}

// floatTerminal matches a run of ASCII digits, optionally with a
// decimal point, as a float64.
func floatTerminal() Terminal[float64] {
	isDigit := func(r rune) bool { return r >= '0' && r <= '9' }
	return Terminal[float64]{
		Predict: isDigit,
		Match: func(buf *buffer.Buffer, col int) (float64, int, error) {
			start := col
			for {
				r, w, ok := buf.ReadRune(col)
				if !ok || !isDigit(r) {
					break
				}
				col += w
			}
			if col < buf.Len() {
				if r, w, ok := buf.ReadRune(col); ok && r == '.' {
					col += w
					for {
						r2, w2, ok2 := buf.ReadRune(col)
						if !ok2 || !isDigit(r2) {
							break
						}
						col += w2
					}
				}
			}
			if col == start {
				return 0, start, GiveUp{Msg: "number"}
			}
			v, err := strconv.ParseFloat(buf.Slice(start, col), 64)
			if err != nil {
				return 0, start, GiveUp{Msg: "number"}
			}
			return v, col, nil
		},
	}
}

// spaceBlank skips ASCII spaces and tabs.
func spaceBlank(buf *buffer.Buffer, col int) int {
	for {
		r, w, ok := buf.ReadRune(col)
		if !ok || (r != ' ' && r != '\t') {
			return col
		}
		col += w
	}
}
