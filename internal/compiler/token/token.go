package token

type Type string

const (
	// Punctuation
	LParen    Type = "LPAREN"    // (
	RParen    Type = "RPAREN"    // )
	Comma     Type = "COMMA"     // ,
	Semicolon Type = "SEMICOLON" // ;

	// Keywords
	Def    Type = "DEF"
	Extern Type = "EXTERN"
	If     Type = "IF"
	Then   Type = "THEN"
	Else   Type = "ELSE"
	For    Type = "FOR"
	In     Type = "IN"
	Var    Type = "VAR"
	Unary  Type = "UNARY"
	Binary Type = "BINARY"

	// Literals & Identifiers
	Number Type = "NUMBER" // 4, 1.618
	Ident  Type = "IDENT"  // variable or function name

	// Operator is any single non-alphanumeric character the lexer does not
	// recognize as punctuation. Whether it means anything is decided later
	// against the operator table, which is what lets user-defined operators
	// lex without lexer changes.
	Operator Type = "OPERATOR"

	// Special
	EOF     Type = "EOF"
	Illegal Type = "ILLEGAL"
)

type Token struct {
	Type    Type
	Literal string
	Line    int
	Column  int
}

// keywords maps identifier strings to their corresponding token types.
var keywords = map[string]Type{
	"def":    Def,
	"extern": Extern,
	"if":     If,
	"then":   Then,
	"else":   Else,
	"for":    For,
	"in":     In,
	"var":    Var,
	"unary":  Unary,
	"binary": Binary,
}

// LookupIdent checks if an identifier is a keyword, returning the keyword's
// token type or Ident if it's not a keyword.
func LookupIdent(ident string) Type {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return Ident
}
