package lexer

import (
	"fmt"
	"strings"

	"github.com/kaleido-lang/kaleido/internal/compiler/token"
)

// Error reports a structurally invalid literal, which with this grammar can
// only be a malformed number such as "1.2.3".
type Error struct {
	Literal string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: malformed number literal %q", e.Line, e.Column, e.Literal)
}

type Lexer struct {
	input        string
	position     int  // current char index
	readPosition int  // next char index
	ch           byte // current char

	line   int // current line number (1-indexed)
	column int // current column number (1-indexed)
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// readChar advances the lexer's position and updates the current character.
// It handles EOF and tracks line/column numbers.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NUL (EOF)
	} else {
		l.ch = l.input[l.readPosition]
	}

	l.position = l.readPosition
	l.readPosition++

	if l.ch == '\n' {
		l.line++
		l.column = 0 // the next readChar puts the first character at column 1
	} else if l.ch != 0 {
		l.column++
	}
}

// NextToken produces the next token from the input. Whitespace and
// '#'-prefixed line comments are skipped. Any byte that is not part of an
// identifier, a number, or punctuation becomes a single-character Operator
// token; the parser decides against the operator table whether it means
// anything.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	startLine := l.line
	startCol := l.column

	switch l.ch {
	case '(':
		return l.single(token.LParen, startLine, startCol)
	case ')':
		return l.single(token.RParen, startLine, startCol)
	case ',':
		return l.single(token.Comma, startLine, startCol)
	case ';':
		return l.single(token.Semicolon, startLine, startCol)
	case 0:
		return token.Token{Type: token.EOF, Literal: "", Line: startLine, Column: startCol}
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(ident), Literal: ident, Line: startLine, Column: startCol}
		}
		if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
			return l.readNumber(startLine, startCol)
		}
		// Operator candidate: taken verbatim, one character at a time.
		return l.single(token.Operator, startLine, startCol)
	}
}

// single emits a one-character token of the given type and consumes it.
func (l *Lexer) single(tt token.Type, line, col int) token.Token {
	tok := token.Token{Type: tt, Literal: string(l.ch), Line: line, Column: col}
	l.readChar()
	return tok
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber consumes a run of digits and dots. A literal with more than one
// dot is structurally invalid and comes back as an Illegal token.
func (l *Lexer) readNumber(startLine, startCol int) token.Token {
	start := l.position
	for isDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}
	literal := l.input[start:l.position]
	if strings.Count(literal, ".") > 1 {
		return token.Token{Type: token.Illegal, Literal: literal, Line: startLine, Column: startCol}
	}
	return token.Token{Type: token.Number, Literal: literal, Line: startLine, Column: startCol}
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
