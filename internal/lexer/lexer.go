// Package lexer tokenizes .ind source text ahead of the recursive-descent,
// type-directed parser in internal/elaborate. The only stateful part is
// the path content of a `< path >` include directive, which is scanned
// raw rather than as a NAME.
package lexer

import (
	"fmt"
	"strings"

	plex "github.com/alecthomas/participle/v2/lexer"

	"indlang/token"
)

// nameClass is the character class a NAME token may be made of:
// alphanumerics plus the listed punctuation, plus ':' for
// namespace-qualified names.
const nameClass = "[A-Za-z0-9_+*/%^&='\"\\\\,`:-]+"

var sourceLexer = plex.MustStateful(plex.Rules{
	"Root": {
		{"Comment", `#[^\n]*`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
		{"LAngle", `<`, plex.Push("Include")},
		{"RAngle", `>`, nil},
		{"At", `@`, nil},
		{"LBrace", `\{`, nil},
		{"RBrace", `\}`, nil},
		{"Dollar", `\$`, nil},
		{"LBracket", `\[`, nil},
		{"RBracket", `\]`, nil},
		{"LParen", `\(`, nil},
		{"RParen", `\)`, nil},
		{"Semicolon", `;`, nil},
		{"Pipe", `\|`, nil},
		{"Tilde", `~`, nil},
		{"Question", `\?`, nil},
		{"Dot", `\.`, nil},
		{"Name", nameClass, nil},
	},
	"Include": {
		{"Whitespace", `[ \t\r\n]+`, nil},
		{"FileName", `[^ \t\r\n>]+`, nil},
		{"RAngle", `>`, plex.Pop()},
	},
})

var kindToType = map[string]token.Type{
	"LAngle":    token.LANGLE,
	"RAngle":    token.RANGLE,
	"At":        token.AT,
	"LBrace":    token.LBRACE,
	"RBrace":    token.RBRACE,
	"Dollar":    token.DOLLAR,
	"LBracket":  token.LBRACKET,
	"RBracket":  token.RBRACKET,
	"LParen":    token.LPAREN,
	"RParen":    token.RPAREN,
	"Semicolon": token.SEMICOLON,
	"Pipe":      token.PIPE,
	"Tilde":     token.TILDE,
	"Question":  token.QUESTION,
	"Dot":       token.DOT,
	"Name":      token.NAME,
	"FileName":  token.NAME,
}

// Tokenize lexes the whole of source in one pass, eliding comments and
// whitespace, and returns the token stream terminated by a single EOF.
func Tokenize(filename, source string) ([]token.Token, error) {
	lex, err := sourceLexer.Lex(filename, strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("lexer: %w", err)
	}

	symbols := sourceLexer.Symbols()
	names := make(map[plex.TokenType]string, len(symbols))
	for name, id := range symbols {
		names[id] = name
	}

	var out []token.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, fmt.Errorf("lexer: %w", err)
		}
		if tok.EOF() {
			out = append(out, token.Token{Type: token.EOF, Pos: toPosition(tok.Pos)})
			return out, nil
		}

		name := names[tok.Type]
		if name == "Whitespace" || name == "Comment" {
			continue
		}

		kind, ok := kindToType[name]
		if !ok {
			return nil, fmt.Errorf("lexer: unexpected token %q at %s", tok.Value, toPosition(tok.Pos))
		}
		out = append(out, token.Token{Type: kind, Literal: tok.Value, Pos: toPosition(tok.Pos)})
	}
}

func toPosition(p plex.Position) token.Position {
	return token.Position{Filename: p.Filename, Offset: p.Offset, Line: p.Line, Column: p.Column}
}
