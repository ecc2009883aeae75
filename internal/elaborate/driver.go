package elaborate

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"indlang/internal/lexer"
	"indlang/internal/module"
	"indlang/internal/printer"
	"indlang/token"
)

// Run reads and elaborates the module entry point (by convention
// "main.ind" in rootDir), writing print directive output to out and
// returning the resulting Module. When a "?" form is hit, the returned
// error wraps ErrQuery with its position, so callers detect it with
// errors.Is.
func Run(rootDir string, out io.Writer) (*module.Module, error) {
	return run(rootDir, out, nil)
}

// RunTraced is Run, but additionally reports each print directive's
// source position to trace as it runs.
func RunTraced(rootDir string, out io.Writer, trace io.Writer) (*module.Module, error) {
	return run(rootDir, out, trace)
}

func run(rootDir string, out io.Writer, trace io.Writer) (*module.Module, error) {
	mod := module.New()
	entry := filepath.Join(rootDir, "main.ind")
	if err := runFile(mod, entry, 0, out, trace); err != nil {
		return mod, err
	}
	if missing := mod.Validate(0); len(missing) > 0 {
		msgs := make([]string, len(missing))
		for i, m := range missing {
			msgs[i] = m.String()
		}
		return mod, fmt.Errorf("unimplemented rules: %s", strings.Join(msgs, ", "))
	}
	return mod, nil
}

// EvalLine tokenizes and elaborates a single REPL line's worth of
// top-level statements into mod, writing any print directive output to
// out. Used by repl.Session, which owns the accumulating Module across
// lines.
func EvalLine(mod *module.Module, line string, out io.Writer) error {
	tokens, err := lexer.Tokenize("<repl>", line)
	if err != nil {
		return err
	}
	p := NewParser(tokens, line)
	p.SetOutput(out)
	for !p.atEOF() {
		if err := p.statement(mod, ".", 0); err != nil {
			return err
		}
	}
	return nil
}

// run consumes top-level statements from p until EOF: includes,
// namespace blocks, print directives, and constructor/destructor/rule
// declarations.
func (p *Parser) run(mod *module.Module, basePath string, depth int) error {
	for !p.atEOF() {
		if err := p.statement(mod, basePath, depth); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) statement(mod *module.Module, basePath string, depth int) error {
	switch p.peekType() {
	case token.LANGLE:
		return p.parseInclude(mod, basePath, depth)

	case token.AT:
		return p.parseNamespace(mod, basePath, depth)

	case token.DOLLAR:
		return p.parsePrint(mod)

	case token.QUESTION:
		tok := p.advance()
		return fmt.Errorf("%s: %w", tok.Pos, ErrQuery)

	case token.NAME:
		return p.ParseDeclaration(mod, depth)

	default:
		tok := p.peek()
		return fmt.Errorf("%s: unexpected %s at top level", tok.Pos, tok)
	}
}

// parseNamespace handles "@ NAME { statements… }": statements inside
// elaborate at depth+1, and on close CloseNamespace mangles with "NAME:"
// every constructor/destructor declared at exactly depth+1 on a family
// declared outside the namespace, then folds all depth+1 entities back
// into depth. Family declarations themselves, and the constructors and
// destructors of families declared inside the namespace, are not
// renamed.
func (p *Parser) parseNamespace(mod *module.Module, basePath string, depth int) error {
	p.advance() // @
	name, pos, err := p.expectName()
	if err != nil {
		return err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return err
	}
	inner := depth + 1
	for p.peekType() != token.RBRACE {
		if p.atEOF() {
			return fmt.Errorf("%s: unterminated namespace %q", pos, name)
		}
		if err := p.statement(mod, basePath, inner); err != nil {
			return err
		}
	}
	p.advance() // }
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return err
	}
	mod.CloseNamespace(inner, name)
	return nil
}

// parsePrint handles "$ TYPE [ VALUE ] ;" at top level: elaborate VALUE
// against TYPE in the empty (top-level) scope, then print the result.
func (p *Parser) parsePrint(mod *module.Module) error {
	pos := p.peek().Pos
	p.advance() // $
	if p.trace != nil {
		fmt.Fprintf(p.trace, "%s: evaluating print directive\n", pos)
	}
	typ, err := p.parseType(mod, scope{})
	if err != nil {
		return err
	}
	if _, err := p.expect(token.LBRACKET); err != nil {
		return err
	}
	value, err := p.elaborate(mod, scope{}, typ)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return err
	}
	s, err := printer.Print(mod, typ, value)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.out, s)
	return nil
}

// HelpDump renders a listing of every declared family, constructor, and
// destructor, for the "?" query form's non-error, non-continuing exit
// path.
func HelpDump(mod *module.Module) string {
	var buf strings.Builder
	for fi := 1; fi < len(mod.Matrices); fi++ {
		family := mod.Matrices[0].Constructors[fi]
		fmt.Fprintf(&buf, "%s (%d params)\n", family.Name, family.Arity())
		for _, c := range mod.Matrices[fi].Constructors {
			fmt.Fprintf(&buf, "  | %s (%d args)\n", c.Name, c.Arity())
		}
		for _, d := range mod.Matrices[fi].Destructors {
			fmt.Fprintf(&buf, "  . %s (%d args)\n", d.Name, d.Arity())
		}
	}
	return buf.String()
}
