package pcomb

import (
	"strconv"
	"testing"

	"github.com/orizon-lang/pcomb/internal/pcomb/buffer"
)

// buildArithGrammar builds S1's grammar:
//
//	expr = atom | expr '*' atom | expr '+' expr ; atom = FLOAT | '(' expr ')'
//
// with priority layering (a multiplication level nested inside an
// addition level) and left-recursion elimination at each level via LR,
// matching spec.md §4.G rather than a naive self-referential grammar.
func buildArithGrammar() Grammar[float64] {
	exprRef := Declare[float64]("expr")

	num := Lexeme(floatTerminal())
	lparen := Lexeme(charTerminal('('))
	rparen := Lexeme(charTerminal(')'))
	paren := App(Seq(lparen, Seq(Deref(exprRef), rparen)), func(p Pair) float64 {
		return p.Second.(Pair).First.(float64)
	})
	factor := Alt(Range('0', '9'), num, Chars('('), paren)

	mulKey := NewKey[float64]()
	gfMul := App(Seq(ReadTbl(mulKey), Seq(Lexeme(charTerminal('*')), factor)), func(p Pair) float64 {
		left := p.First.(float64)
		right := p.Second.(Pair).Second.(float64)
		return left * right
	})
	term := LR(factor, mulKey, gfMul)

	addKey := NewKey[float64]()
	gfAdd := App(Seq(ReadTbl(addKey), Seq(Lexeme(charTerminal('+')), term)), func(p Pair) float64 {
		left := p.First.(float64)
		right := p.Second.(Pair).Second.(float64)
		return left + right
	})
	expr := LR(term, addKey, gfAdd)

	Set(exprRef, expr)
	return Deref(exprRef)
}

func TestS1ArithmeticWithPriorities(t *testing.T) {
	expr := buildArithGrammar()
	// Parsed to end of input: LR hands every intermediate value to the
	// outer continuation, so an unanchored parse would see several.
	v, err := ParseToEnd(expr, nil, bufOf("1+2*3"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 7.0 {
		t.Fatalf("got %v, want 7.0 (no ambiguity under priority layering)", v)
	}
}

// sexprNode is either a string atom or *sexprList, mirroring S2's
// grammar (atom | '(' sexpr* ')').
type sexprNode = interface{}

type sexprList struct {
	children []sexprNode
}

func lowerLetterTerminal() Terminal[string] {
	isLower := func(r rune) bool { return r >= 'a' && r <= 'z' }
	return Terminal[string]{
		Predict: isLower,
		Match: func(buf *buffer.Buffer, col int) (string, int, error) {
			r, w, ok := buf.ReadRune(col)
			if !ok || !isLower(r) {
				return "", col, GiveUp{Msg: "letter"}
			}
			return string(r), col + w, nil
		},
	}
}

// countNodes counts n and, if n is a list, every descendant — used to
// compute S2's expected "size" of the children beneath the root list.
func countNodes(n sexprNode) int {
	if l, ok := n.(*sexprList); ok {
		total := 1
		for _, c := range l.children {
			total += countNodes(c)
		}
		return total
	}
	return 1
}

func buildSexprGrammar() Grammar[sexprNode] {
	sexprRef := Declare[sexprNode]("sexpr")
	childrenRef := Declare[[]sexprNode]("children")

	atom := App(Lexeme(lowerLetterTerminal()), func(s string) sexprNode { return sexprNode(s) })
	list := App(
		Seq(Lexeme(charTerminal('(')), Seq(Deref(childrenRef), Lexeme(charTerminal(')')))),
		func(p Pair) sexprNode {
			return sexprNode(&sexprList{children: p.Second.(Pair).First.([]sexprNode)})
		},
	)
	Set(sexprRef, Alt(Range('a', 'z'), atom, Chars('('), list))

	more := App(Seq(Deref(sexprRef), Deref(childrenRef)), func(p Pair) []sexprNode {
		return append([]sexprNode{p.First}, p.Second.([]sexprNode)...)
	})
	empty := Empty[[]sexprNode](nil)
	Set(childrenRef, Alt(Union(Range('a', 'z'), Chars('(')), more, Chars(')'), empty))

	return Deref(sexprRef)
}

func TestS2SExpression(t *testing.T) {
	sexpr := buildSexprGrammar()
	v, _, err := ParsePartial(sexpr, spaceBlank, true, bufOf("(a (b c) d)"), 0)
	if err != nil {
		t.Fatal(err)
	}
	root, ok := v.(*sexprList)
	if !ok {
		t.Fatalf("got %T, want *sexprList", v)
	}
	if len(root.children) != 3 {
		t.Fatalf("got %d top-level children, want 3", len(root.children))
	}
	size := 0
	for _, c := range root.children {
		size += countNodes(c)
	}
	if size != 5 {
		t.Fatalf("got size %d, want 5", size)
	}
}

// literalCharOf builds a single-character terminal for the idx'th rune
// of word, reporting word itself (not just the one rune) as its
// expectation message — a scannerless grammar spells a keyword as a
// sequence of one-character lexemes, so furthest-position tracking
// naturally lands on whichever character actually mismatched.
func literalCharOf(word string, idx int) Terminal[rune] {
	want := rune(word[idx])
	return Terminal[rune]{
		Predict: Chars(want),
		Match: func(buf *buffer.Buffer, col int) (rune, int, error) {
			r, w, ok := buf.ReadRune(col)
			if !ok || r != want {
				return 0, col, GiveUp{Msg: strconv.Quote(word)}
			}
			return r, col + w, nil
		},
	}
}

func TestS5FurthestPositionReporting(t *testing.T) {
	// "abc" against input "abd": fails at column 2 with a message
	// mentioning "abc".
	g := Seq(Seq(Lexeme(literalCharOf("abc", 0)), Lexeme(literalCharOf("abc", 1))), Lexeme(literalCharOf("abc", 2)))
	_, _, err := ParsePartial(g, nil, true, bufOf("abd"), 0)
	if err == nil {
		t.Fatal("expected parse error")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("got %T, want *ParseError", err)
	}
	if pe.Position.Offset != 2 {
		t.Fatalf("offset = %d, want 2", pe.Position.Offset)
	}
	found := false
	for _, m := range pe.Messages {
		if m == `"abc"` {
			found = true
		}
	}
	if !found {
		t.Fatalf("messages %v do not mention \"abc\"", pe.Messages)
	}
}
