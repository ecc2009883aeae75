package elaborate

import (
	"errors"
	"fmt"

	"indlang/internal/module"
	"indlang/internal/reduce"
	"indlang/internal/term"
	"indlang/token"
)

// ErrQuery is returned when the elaborator consumes a bare "?" form.
// It is not a malformed-program error: the batch driver stops and
// returns it (cmd/ind then prints HelpDump and exits non-zero), and the
// REPL prints HelpDump and goes on to the next line.
var ErrQuery = errors.New("query form")

// scope is the environment a declaration body elaborates against: named
// parameters (family, constructor, destructor params in whatever order
// the declaration site assembles them). The self slot of a destructor
// occupies a position but has no bindable name, so it is stored as an
// entry with an empty Name.
type scope struct {
	params []module.Parameter
}

func (s scope) lookup(name string) (int, term.Expression, bool) {
	for i, p := range s.params {
		if p.Name != "" && p.Name == name {
			return i, p.Type, true
		}
	}
	return 0, nil, false
}

func (s scope) extend(name string, typ term.Expression) scope {
	next := make([]module.Parameter, len(s.params)+1)
	copy(next, s.params)
	next[len(s.params)] = module.Parameter{Name: name, Type: typ}
	return scope{params: next}
}

// parseType parses a TYPE expression: a value elaborated against the
// distinguished meta-type: Matrix 0's own constructor 0, the built-in
// Type.
func (p *Parser) parseType(mod *module.Module, sc scope) (term.Expression, error) {
	return p.elaborate(mod, sc, typeType())
}

// elaborate parses one expression while simultaneously
// checking it against expectedType, threading sc's substitution
// environment and reducing destructor applications as they're
// consumed.
func (p *Parser) elaborate(mod *module.Module, sc scope, expectedType term.Expression) (term.Expression, error) {
	switch p.peekType() {
	case token.QUESTION:
		tok := p.advance()
		return nil, fmt.Errorf("%s: %w", tok.Pos, ErrQuery)

	case token.DOLLAR:
		return p.elaborateAnnotated(mod, sc, expectedType)

	case token.LPAREN:
		return p.elaborateParameterRef(mod, sc, expectedType)

	case token.NAME:
		return p.elaborateConstructorApplication(mod, sc, expectedType)

	default:
		tok := p.peek()
		return nil, fmt.Errorf("%s: expected an expression, got %s", tok.Pos, tok)
	}
}

// elaborateAnnotated handles "$ TYPE [ EXPR ] ( . DESTNAME ARGS… )*": an
// explicitly type-annotated inner expression, its value and type then
// threaded through zero or more destructor-application suffixes.
func (p *Parser) elaborateAnnotated(mod *module.Module, sc scope, expectedType term.Expression) (term.Expression, error) {
	p.advance() // $
	annotated, err := p.parseType(mod, sc)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACKET); err != nil {
		return nil, err
	}
	value, err := p.elaborate(mod, sc, annotated)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}

	current := module.Substitution{Type: annotated, Value: value}
	current, err = p.consumeDestructorSuffix(mod, sc, current)
	if err != nil {
		return nil, err
	}
	if !term.Equal(current.Type, expectedType) {
		return nil, fmt.Errorf("type mismatch: expected %s, got %s", expectedType, current.Type)
	}
	return current.Value, nil
}

// elaborateParameterRef handles "( NAME )": a reference to a bound
// parameter, followed by zero or more destructor-application suffixes.
func (p *Parser) elaborateParameterRef(mod *module.Module, sc scope, expectedType term.Expression) (term.Expression, error) {
	p.advance() // (
	name, pos, err := p.expectName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	idx, typ, ok := sc.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s: unbound parameter %q", pos, name)
	}

	current := module.Substitution{Type: typ, Value: &term.Reference{Index: idx}}
	current, err = p.consumeDestructorSuffix(mod, sc, current)
	if err != nil {
		return nil, err
	}
	if !term.Equal(current.Type, expectedType) {
		return nil, fmt.Errorf("%s: type mismatch: expected %s, got %s", pos, expectedType, current.Type)
	}
	return current.Value, nil
}

// elaborateConstructorApplication handles "NAME arg1 arg2 …": a
// constructor applied to exactly as many arguments as it declares
// parameters, looked up within expectedType's family.
func (p *Parser) elaborateConstructorApplication(mod *module.Module, sc scope, expectedType term.Expression) (term.Expression, error) {
	familyCtor, ok := expectedType.(*term.Construction)
	if !ok {
		tok := p.peek()
		return nil, fmt.Errorf("%s: expected a type-valued position, got %T", tok.Pos, expectedType)
	}
	familyIndex := familyCtor.Index

	name, pos, err := p.expectName()
	if err != nil {
		return nil, err
	}
	ctorIndex, ctor, ok := mod.ConstructorByName(familyIndex, name)
	if !ok {
		return nil, fmt.Errorf("%s: %q is not a constructor of this family", pos, name)
	}

	arity := familyArity(mod, familyIndex)
	env := make([]module.Substitution, 0, arity+ctor.Arity())
	for i := 0; i < arity; i++ {
		typ, err := reduce.SubstituteExpression(mod, mod.Matrices[0].Constructors[familyIndex].ParameterTypes[i], env)
		if err != nil {
			return nil, err
		}
		env = append(env, module.Substitution{Type: typ, Value: familyCtor.Args[i]})
	}

	args := make([]term.Expression, ctor.Arity())
	for i := 0; i < ctor.Arity(); i++ {
		argType, err := reduce.SubstituteExpression(mod, ctor.ParameterTypes[i], env)
		if err != nil {
			return nil, err
		}
		argVal, err := p.elaborate(mod, sc, argType)
		if err != nil {
			return nil, err
		}
		env = append(env, module.Substitution{Type: argType, Value: argVal})
		args[i] = argVal
	}

	return &term.Construction{Index: ctorIndex, Args: args}, nil
}

// consumeDestructorSuffix consumes zero or more ". DESTNAME ARGS…"
// applications against current, reducing eagerly after each one.
func (p *Parser) consumeDestructorSuffix(mod *module.Module, sc scope, current module.Substitution) (module.Substitution, error) {
	for p.peekType() == token.DOT {
		p.advance()
		name, pos, err := p.expectName()
		if err != nil {
			return module.Substitution{}, err
		}
		familyCtor, ok := current.Type.(*term.Construction)
		if !ok {
			return module.Substitution{}, fmt.Errorf("%s: cannot destruct a non-inductive value (type %T)", pos, current.Type)
		}
		familyIndex := familyCtor.Index
		destIndex, dest, ok := mod.DestructorByName(familyIndex, name)
		if !ok {
			return module.Substitution{}, fmt.Errorf("%s: %q is not a destructor of this family", pos, name)
		}

		arity := familyArity(mod, familyIndex)
		env := make([]module.Substitution, 0, arity+1+dest.Arity())
		for i := 0; i < arity; i++ {
			typ, err := reduce.SubstituteExpression(mod, mod.Matrices[0].Constructors[familyIndex].ParameterTypes[i], env)
			if err != nil {
				return module.Substitution{}, err
			}
			env = append(env, module.Substitution{Type: typ, Value: familyCtor.Args[i]})
		}
		env = append(env, current)

		args := make([]term.Expression, dest.Arity())
		for j := 0; j < dest.Arity(); j++ {
			argType, err := reduce.SubstituteExpression(mod, dest.ParameterTypes[j], env)
			if err != nil {
				return module.Substitution{}, err
			}
			argVal, err := p.elaborate(mod, sc, argType)
			if err != nil {
				return module.Substitution{}, err
			}
			env = append(env, module.Substitution{Type: argType, Value: argVal})
			args[j] = argVal
		}

		next, err := reduce.Destruct(mod, current, destIndex, args)
		if err != nil {
			return module.Substitution{}, fmt.Errorf("%s: %w", pos, err)
		}
		current = next
	}
	return current, nil
}
