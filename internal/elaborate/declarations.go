package elaborate

import (
	"fmt"

	"indlang/internal/module"
	"indlang/internal/reduce"
	"indlang/internal/term"
	"indlang/token"
)

// parseParamList parses zero or more "TYPE [ name ]" pairs, each
// elaborated against the growing scope of earlier entries in the same
// list, since parameter types may mention earlier parameters.
func (p *Parser) parseParamList(mod *module.Module, base scope) ([]module.Parameter, error) {
	sc := base
	for p.isTypeStart() {
		typ, err := p.parseType(mod, sc)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LBRACKET); err != nil {
			return nil, err
		}
		name, _, err := p.expectName()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		sc = sc.extend(name, typ)
	}
	return sc.params[len(base.params):], nil
}

func parameterTypes(params []module.Parameter) []term.Expression {
	types := make([]term.Expression, len(params))
	for i, pm := range params {
		types[i] = pm.Type
	}
	return types
}

// ParseDeclaration parses and applies one top-level statement: a
// constructor declaration ("TYPENAME (param)* | CTORNAME (param)* ;"),
// a destructor declaration ("TYPENAME (param)* . DESTNAME (param)* ~
// RETTYPE ;"), or a rule installation ("TYPENAME (param)* [ CTOR
// (cparam)* . DEST (dparam)* ] ~ RULE ;").
func (p *Parser) ParseDeclaration(mod *module.Module, depth int) error {
	name, pos, err := p.expectName()
	if err != nil {
		return err
	}

	existingFamily, _, existed := mod.ConstructorByName(0, name)

	var familyScope scope
	var restated []module.Parameter
	if p.isTypeStart() {
		restated, err = p.parseParamList(mod, scope{})
		if err != nil {
			return err
		}
	}

	var familyIndex int
	switch {
	case !existed:
		familyIndex, err = mod.AddFamily(name, parameterTypes(restated), depth)
		if err != nil {
			return fmt.Errorf("%s: %w", pos, err)
		}
		familyScope = scope{params: restated}
	default:
		familyIndex = existingFamily
		arity := familyArity(mod, familyIndex)
		if len(restated) > 0 && len(restated) != arity {
			return fmt.Errorf("%s: family %q has %d parameters, restatement gives %d", pos, name, arity, len(restated))
		}
		if len(restated) == arity && arity > 0 {
			familyScope = scope{params: restated}
		} else {
			// No names available for the family's own parameters on
			// this statement; build an unnamed scope of the right
			// width so index arithmetic downstream still lines up.
			blanks := make([]module.Parameter, arity)
			for i := range blanks {
				blanks[i] = module.Parameter{Type: mod.Matrices[0].Constructors[familyIndex].ParameterTypes[i]}
			}
			familyScope = scope{params: blanks}
		}
	}

	switch p.peekType() {
	case token.PIPE:
		return p.parseConstructorDecl(mod, familyIndex, familyScope, depth)
	case token.DOT:
		return p.parseDestructorDecl(mod, familyIndex, familyScope, depth)
	case token.LBRACKET:
		return p.parseRuleDecl(mod, familyIndex, familyScope)
	default:
		tok := p.peek()
		return fmt.Errorf("%s: expected '|', '.', or '[' after type name and parameters, got %s", tok.Pos, tok)
	}
}

func (p *Parser) parseConstructorDecl(mod *module.Module, familyIndex int, familyScope scope, depth int) error {
	p.advance() // |
	name, pos, err := p.expectName()
	if err != nil {
		return err
	}
	ctorParams, err := p.parseParamList(mod, familyScope)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return err
	}
	if _, err := mod.AddConstructor(familyIndex, name, parameterTypes(ctorParams), depth); err != nil {
		return fmt.Errorf("%s: %w", pos, err)
	}
	return nil
}

func (p *Parser) parseDestructorDecl(mod *module.Module, familyIndex int, familyScope scope, depth int) error {
	p.advance() // .
	name, pos, err := p.expectName()
	if err != nil {
		return err
	}

	selfType := familyType(familyIndex, identityRefs(len(familyScope.params)))
	destScope := familyScope.extend("", selfType)

	destParams, err := p.parseParamList(mod, destScope)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.TILDE); err != nil {
		return err
	}
	fullScope := scope{params: append(append([]module.Parameter{}, destScope.params...), destParams...)}
	returnType, err := p.parseType(mod, fullScope)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return err
	}
	if _, err := mod.AddDestructor(familyIndex, name, parameterTypes(destParams), returnType, depth); err != nil {
		return fmt.Errorf("%s: %w", pos, err)
	}
	return nil
}

// parseRuleDecl parses "[ CTOR (cparam)* . DEST (dparam)* ] ~ RULE ;".
// The bracketed names are bare "(name)" bindings with no type prefix:
// their count and types come from the already-declared constructor and
// destructor, not from fresh parsing.
func (p *Parser) parseRuleDecl(mod *module.Module, familyIndex int, familyScope scope) error {
	p.advance() // [
	ctorName, ctorPos, err := p.expectName()
	if err != nil {
		return err
	}
	ctorIndex, ctor, ok := mod.ConstructorByName(familyIndex, ctorName)
	if !ok {
		return fmt.Errorf("%s: %q is not a constructor of this family", ctorPos, ctorName)
	}

	sc := familyScope
	ctorNames, err := p.parseBareNames(ctor.Arity())
	if err != nil {
		return err
	}
	for i, n := range ctorNames {
		sc = sc.extend(n, ctor.ParameterTypes[i])
	}

	if _, err := p.expect(token.DOT); err != nil {
		return err
	}
	destName, destPos, err := p.expectName()
	if err != nil {
		return err
	}
	destIndex, dest, ok := mod.DestructorByName(familyIndex, destName)
	if !ok {
		return fmt.Errorf("%s: %q is not a destructor of this family", destPos, destName)
	}

	destNames, err := p.parseBareNames(dest.Arity())
	if err != nil {
		return err
	}
	for i, n := range destNames {
		sc = sc.extend(n, dest.ParameterTypes[i])
	}

	if _, err := p.expect(token.RBRACKET); err != nil {
		return err
	}
	if _, err := p.expect(token.TILDE); err != nil {
		return err
	}

	expectedType, err := ruleExpectedType(mod, familyIndex, dest, ctor, ctorIndex)
	if err != nil {
		return err
	}
	rule, err := p.elaborate(mod, sc, expectedType)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return err
	}
	return mod.SetRule(familyIndex, destIndex, ctorIndex, rule)
}

func (p *Parser) parseBareNames(n int) ([]string, error) {
	names := make([]string, n)
	for i := 0; i < n; i++ {
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		name, _, err := p.expectName()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}

// ruleExpectedType computes the type a rule body for (ctor, dest) must
// produce: dest.ReturnType, with its self slot substituted by the
// virtual construction "ctor applied to its own (rule-scope) parameter
// references" and its destructor-param references shifted past ctor's
// parameters, since the rule-scope environment has no self slot of its
// own.
func ruleExpectedType(mod *module.Module, familyIndex int, dest module.Destructor, ctor module.Constructor, ctorIndex int) (term.Expression, error) {
	arity := familyArity(mod, familyIndex)
	virtualSelfArgs := make([]term.Expression, ctor.Arity())
	for i := range virtualSelfArgs {
		virtualSelfArgs[i] = &term.Reference{Index: arity + i}
	}

	env := make([]module.Substitution, 0, arity+1+dest.Arity())
	for i := 0; i < arity; i++ {
		env = append(env, module.Substitution{Value: &term.Reference{Index: i}})
	}
	env = append(env, module.Substitution{Value: &term.Construction{Index: ctorIndex, Args: virtualSelfArgs}})
	for j := 0; j < dest.Arity(); j++ {
		env = append(env, module.Substitution{Value: &term.Reference{Index: arity + ctor.Arity() + j}})
	}
	return reduce.SubstituteExpression(mod, dest.ReturnType, env)
}
