package pcomb

import (
	"testing"

	"github.com/orizon-lang/pcomb/internal/position"
)

// buildLeftAssocSub builds expr = NUM (MINUS NUM)*, left-associative,
// via LR — the grammar spec.md §8 property 4 is checked against.
func buildLeftAssocSub() (Grammar[float64], Key[float64]) {
	key := NewKey[float64]()
	num := Lexeme(floatTerminal())
	gf := App(Seq(ReadTbl(key), Seq(Lexeme(charTerminal('-')), num)), func(p Pair) float64 {
		left := p.First.(float64)
		rest := p.Second.(Pair)
		right := rest.Second.(float64)
		return left - right
	})
	return LR(num, key, gf), key
}

func TestLRLeftAssociativity(t *testing.T) {
	expr, _ := buildLeftAssocSub()
	// Parsed to end of input: LR yields 10 and 7 as well as 5 to an
	// unanchored parse, one result per iteration.
	v, err := ParseToEnd(expr, nil, bufOf("10-3-2"), 0)
	if err != nil {
		t.Fatal(err)
	}
	// left-associative: (10-3)-2 = 5, not 10-(3-2) = 9.
	if v != 5 {
		t.Fatalf("got %v, want 5 (left-associative)", v)
	}
}

func TestLRSingleValueFallsThrough(t *testing.T) {
	expr, _ := buildLeftAssocSub()
	v, _, err := ParsePartial(expr, nil, true, bufOf("7"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 7 {
		t.Fatalf("got %v, want 7", v)
	}
}

func TestLRPosStagesLeftPositionOfWholeExpression(t *testing.T) {
	key := NewKey[float64]()
	posKey := NewKey[position.Position]()
	num := Lexeme(floatTerminal())

	// ReadPos wraps gf's whole body: the staged position is cleared
	// with the rest of the key store once gf's first lexeme succeeds.
	var lefts []position.Position
	gf := App(
		ReadPos(posKey, Seq(ReadTbl(key), Seq(Lexeme(charTerminal('-')), num))),
		func(p Pair) float64 {
			lefts = append(lefts, p.First.(position.Position)) // the whole expression's left position
			rest := p.Second.(Pair)
			left := rest.First.(float64)
			right := rest.Second.(Pair).Second.(float64)
			return left - right
		},
	)

	expr := LRPos(num, key, posKey, gf)
	v, err := ParseToEnd(expr, nil, bufOf("10-3-2"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 5 {
		t.Fatalf("got %v, want 5", v)
	}
	if len(lefts) == 0 {
		t.Fatal("gf body never ran")
	}
	for _, p := range lefts {
		if p.Offset != 0 {
			t.Fatalf("staged left position at offset %d, want 0 (start of the whole expression)", p.Offset)
		}
	}
}

func TestRightRecursionIsLinearAndDoesNotOverflow(t *testing.T) {
	const n = 10000

	// list = x list | () — like the digits grammar above, the empty
	// base case matches a valid unanchored prefix at every depth, so
	// this is parsed to end-of-input to get the single full-length
	// derivation S3 expects, not ParsePartial.
	listRef := Declare[int]("list")
	item := Lexeme(charTerminal('x'))
	rec := App(Seq(item, Deref(listRef)), func(p Pair) int {
		return 1 + p.Second.(int)
	})
	base := App(Empty(struct{}{}), func(struct{}) int { return 0 })
	Set(listRef, Alt(Chars('x'), rec, AnyChar, base))

	input := make([]byte, n)
	for i := range input {
		input[i] = 'x'
	}

	v, err := ParseToEnd(Deref(listRef), nil, bufOf(string(input)), 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != n {
		t.Fatalf("got %d items, want %d", v, n)
	}
}
