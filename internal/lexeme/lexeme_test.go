package lexeme

import (
	"testing"

	"github.com/orizon-lang/pcomb/internal/pcomb"
	"github.com/orizon-lang/pcomb/internal/pcomb/buffer"
)

func bufOf(s string) *buffer.Buffer { return buffer.New("t", s) }

func TestCharMatchesLiteralRune(t *testing.T) {
	v, next, err := Char('a').Match(bufOf("abc"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 'a' || next != 1 {
		t.Fatalf("got %q at %d", v, next)
	}
}

func TestIdentMatchesLetterDigitUnderscore(t *testing.T) {
	v, next, err := Ident().Match(bufOf("foo_bar2 rest"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != "foo_bar2" || next != 8 {
		t.Fatalf("got %q at %d", v, next)
	}
}

func TestIdentRejectsLeadingDigit(t *testing.T) {
	if _, _, err := Ident().Match(bufOf("2foo"), 0); err == nil {
		t.Fatal("expected rejection")
	}
}

func TestKeywordRejectsPrefixOfLongerIdentifier(t *testing.T) {
	if _, _, err := Keyword("if").Match(bufOf("ifx"), 0); err == nil {
		t.Fatal("expected Keyword(\"if\") to reject \"ifx\"")
	}
	v, next, err := Keyword("if").Match(bufOf("if x"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != "if" || next != 2 {
		t.Fatalf("got %q at %d", v, next)
	}
}

func TestNumberMatchesIntegerAndDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		next int
	}{
		{"123", 123, 3},
		{"3.14", 3.14, 4},
		{"0.5 rest", 0.5, 3},
	}
	for _, c := range cases {
		v, next, err := Number().Match(bufOf(c.in), 0)
		if err != nil {
			t.Fatalf("%q: %v", c.in, err)
		}
		if v != c.want || next != c.next {
			t.Fatalf("%q: got %v at %d, want %v at %d", c.in, v, next, c.want, c.next)
		}
	}
}

func TestNumberRejectsMalformedLiteral(t *testing.T) {
	if _, _, err := Number().Match(bufOf("123abc"), 0); err == nil {
		t.Fatal("expected rejection of 123abc as malformed number")
	}
}

func TestStringLitUnescapesAndFindsClosingQuote(t *testing.T) {
	v, next, err := StringLit().Match(bufOf(`"a\nb" rest`), 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != "a\nb" {
		t.Fatalf("got %q", v)
	}
	if next != 6 {
		t.Fatalf("next = %d, want 6", next)
	}
}

func TestStringLitRejectsUnterminated(t *testing.T) {
	if _, _, err := StringLit().Match(bufOf(`"abc`), 0); !pcomb.IsReject(err) {
		t.Fatalf("expected a rejection, got %v", err)
	}
}

func TestRegexMatchesAnchoredPrefix(t *testing.T) {
	v, next, err := Regex(`[0-9]+`).Match(bufOf("42abc"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != "42" || next != 2 {
		t.Fatalf("got %q at %d", v, next)
	}
}

func TestRegexRejectsNonMatchAtColumn(t *testing.T) {
	if _, _, err := Regex(`[0-9]+`).Match(bufOf("abc"), 0); err == nil {
		t.Fatal("expected rejection")
	}
}

func TestWhitespaceBlankSkipsSpacesTabsNewlines(t *testing.T) {
	got := WhitespaceBlank(bufOf(" \t\n\r x"), 0)
	if got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
}

func TestWhitespaceAndCommentsBlankSkipsLineAndBlockComments(t *testing.T) {
	got := WhitespaceAndCommentsBlank(bufOf("  // hi\n /* block */ x"), 0)
	if got != 21 {
		t.Fatalf("got %d, want 21", got)
	}
}

func TestWhitespaceAndCommentsBlankStopsAtNonBlank(t *testing.T) {
	got := WhitespaceAndCommentsBlank(bufOf("x"), 0)
	if got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}
