// Package elaborate is the bidirectional parser/elaborator together
// with the statement-level declaration pipeline that drives it:
// constructor/destructor/rule declarations, file inclusion, namespace
// open/close, and the `$` print directive.
package elaborate

import (
	"fmt"
	"io"
	"os"

	"indlang/internal/module"
	"indlang/internal/term"
	"indlang/token"
)

// Parser walks a pre-lexed token stream. It has no lookahead beyond the
// single token its cursor exposes, in the usual recursive-descent style.
type Parser struct {
	tokens []token.Token
	pos    int
	source string
	out    io.Writer
	trace  io.Writer
}

func NewParser(tokens []token.Token, source string) *Parser {
	return &Parser{tokens: tokens, source: source, out: os.Stdout}
}

// SetOutput redirects where print directives write, letting tests and
// the LSP capture output instead of writing to the process's stdout.
func (p *Parser) SetOutput(w io.Writer) {
	p.out = w
}

// SetTrace makes every `$` print directive report its source position
// to w before it runs. A nil w (the default) disables tracing.
func (p *Parser) SetTrace(w io.Writer) {
	p.trace = w
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekType() token.Type {
	return p.tokens[p.pos].Type
}

func (p *Parser) atEOF() bool {
	return p.peekType() == token.EOF
}

func (p *Parser) advance() token.Token {
	t := p.tokens[p.pos]
	if t.Type != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) expect(tt token.Type) (token.Token, error) {
	if p.peekType() != tt {
		got := p.peek()
		return token.Token{}, fmt.Errorf("%s: expected %s, got %s", got.Pos, tt, got)
	}
	return p.advance(), nil
}

func (p *Parser) expectName() (string, token.Position, error) {
	tok, err := p.expect(token.NAME)
	if err != nil {
		return "", token.Position{}, err
	}
	return tok.Literal, tok.Pos, nil
}

// isTypeStart reports whether the cursor is positioned at something
// that can begin a TYPE expression: a family name or a parenthesized
// parameter reference.
func (p *Parser) isTypeStart() bool {
	switch p.peekType() {
	case token.NAME, token.LPAREN:
		return true
	default:
		return false
	}
}

// typeType is the distinguished "type of types": Matrix 0's own
// constructor 0 applied to zero arguments.
func typeType() term.Expression {
	return &term.Construction{Index: 0, Args: nil}
}

func familyType(familyIndex int, paramRefs []term.Expression) term.Expression {
	return &term.Construction{Index: familyIndex, Args: paramRefs}
}

func identityRefs(n int) []term.Expression {
	refs := make([]term.Expression, n)
	for i := range refs {
		refs[i] = &term.Reference{Index: i}
	}
	return refs
}

// familyArity returns the parameter count of familyIndex's family;
// familyIndex 0 (Type itself) has no parameters.
func familyArity(mod *module.Module, familyIndex int) int {
	return mod.Matrices[0].Constructors[familyIndex].Arity()
}
