package lexer

import (
	"strings"
	"testing"

	"github.com/kaleido-lang/kaleido/internal/compiler/token"
)

func TestNextTokenStream(t *testing.T) {
	input := `# compute fib
def fib(n)
  if n < 3 then 1
  else fib(n-1) + fib(n-2);
`

	expected := []struct {
		typ     token.Type
		literal string
	}{
		{token.Def, "def"},
		{token.Ident, "fib"},
		{token.LParen, "("},
		{token.Ident, "n"},
		{token.RParen, ")"},
		{token.If, "if"},
		{token.Ident, "n"},
		{token.Operator, "<"},
		{token.Number, "3"},
		{token.Then, "then"},
		{token.Number, "1"},
		{token.Else, "else"},
		{token.Ident, "fib"},
		{token.LParen, "("},
		{token.Ident, "n"},
		{token.Operator, "-"},
		{token.Number, "1"},
		{token.RParen, ")"},
		{token.Operator, "+"},
		{token.Ident, "fib"},
		{token.LParen, "("},
		{token.Ident, "n"},
		{token.Operator, "-"},
		{token.Number, "2"},
		{token.RParen, ")"},
		{token.Semicolon, ";"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.typ {
			t.Fatalf("token %d: expected type %s, got %s (%q)", i, want.typ, tok.Type, tok.Literal)
		}
		if tok.Literal != want.literal {
			t.Fatalf("token %d: expected literal %q, got %q", i, want.literal, tok.Literal)
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := "def extern if then else for in var unary binary deff xvar"
	types := []token.Type{
		token.Def, token.Extern, token.If, token.Then, token.Else,
		token.For, token.In, token.Var, token.Unary, token.Binary,
		token.Ident, token.Ident,
	}

	l := New(input)
	for i, want := range types {
		tok := l.NextToken()
		if tok.Type != want {
			t.Errorf("token %d: expected %s, got %s (%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestNumberForms(t *testing.T) {
	input := "1 2.5 700 0.23423 .5 1."
	literals := []string{"1", "2.5", "700", "0.23423", ".5", "1."}

	l := New(input)
	for i, want := range literals {
		tok := l.NextToken()
		if tok.Type != token.Number {
			t.Fatalf("token %d: expected NUMBER, got %s (%q)", i, tok.Type, tok.Literal)
		}
		if tok.Literal != want {
			t.Errorf("token %d: expected %q, got %q", i, want, tok.Literal)
		}
	}
}

// Any non-alphanumeric, non-whitespace character must lex as an operator
// candidate so user-defined operators need no lexer changes.
func TestOperatorCandidates(t *testing.T) {
	input := "| & ! : > = @ $ ~"
	l := New(input)
	for _, want := range strings.Fields(input) {
		tok := l.NextToken()
		if tok.Type != token.Operator {
			t.Fatalf("expected OPERATOR for %q, got %s", want, tok.Type)
		}
		if tok.Literal != want {
			t.Errorf("expected literal %q, got %q", want, tok.Literal)
		}
	}
	if tok := l.NextToken(); tok.Type != token.EOF {
		t.Errorf("expected EOF, got %s", tok.Type)
	}
}

func TestMalformedNumberIsIllegal(t *testing.T) {
	l := New("1.2.3")
	tok := l.NextToken()
	if tok.Type != token.Illegal {
		t.Fatalf("expected ILLEGAL, got %s (%q)", tok.Type, tok.Literal)
	}
	if tok.Literal != "1.2.3" {
		t.Errorf("expected literal %q, got %q", "1.2.3", tok.Literal)
	}
}

// Concatenating token payloads reconstructs the input with whitespace and
// comments removed, and every token position is strictly increasing.
func TestRoundTripAndPositions(t *testing.T) {
	input := "def f(a b) a*b + 2; # trailing comment\nf(1, 2.5);"
	want := "deff(ab)a*b+2;f(1,2.5);"

	var b strings.Builder
	l := New(input)
	prevLine, prevCol := 0, 0
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		b.WriteString(tok.Literal)

		if tok.Line < prevLine || (tok.Line == prevLine && tok.Column <= prevCol) {
			t.Fatalf("token %q at %d:%d does not advance past %d:%d",
				tok.Literal, tok.Line, tok.Column, prevLine, prevCol)
		}
		prevLine, prevCol = tok.Line, tok.Column
	}

	if b.String() != want {
		t.Errorf("round trip mismatch:\nexpected %q\ngot      %q", want, b.String())
	}
}

func TestColumnResetsAfterNewline(t *testing.T) {
	l := New("ab\ncd\n  ef")

	first := l.NextToken()
	if first.Line != 1 || first.Column != 1 {
		t.Errorf("expected %q at 1:1, got %d:%d", first.Literal, first.Line, first.Column)
	}
	second := l.NextToken()
	if second.Line != 2 || second.Column != 1 {
		t.Errorf("expected %q at 2:1, got %d:%d", second.Literal, second.Line, second.Column)
	}
	third := l.NextToken()
	if third.Line != 3 || third.Column != 3 {
		t.Errorf("expected %q at 3:3, got %d:%d", third.Literal, third.Line, third.Column)
	}
}

func TestCommentOnlyInputIsEOF(t *testing.T) {
	l := New("# nothing here\n# or here")
	if tok := l.NextToken(); tok.Type != token.EOF {
		t.Fatalf("expected EOF, got %s (%q)", tok.Type, tok.Literal)
	}
}
