// Package printer is the structural, type-guided pretty-printer for
// fully-elaborated values, used by the `$` print directive: a value is
// printed as its constructor name followed by its arguments, each
// argument printed recursively against its own (substituted) type.
package printer

import (
	"fmt"
	"strings"

	"indlang/internal/module"
	"indlang/internal/reduce"
	"indlang/internal/term"
)

// Print renders value, known to have type typ, as source-like text:
// "succ succ succ zero" for a three-deep Nat, "true" for a bare
// nullary constructor, and so on. Constructor arguments are always
// space-separated with no parentheses, construction nesting included:
// the surface grammar has no parenthesized-grouping production (LPAREN
// always opens a "( NAME )" parameter reference), so wrapping a nested
// application in parens would make the result unable to re-parse.
func Print(mod *module.Module, typ term.Expression, value term.Expression) (string, error) {
	familyCtor, ok := typ.(*term.Construction)
	if !ok {
		return "", fmt.Errorf("print: type %T is not a Construction", typ)
	}
	familyIndex := familyCtor.Index

	switch v := value.(type) {
	case *term.Construction:
		ctor := mod.Matrices[familyIndex].Constructors[v.Index]
		if len(v.Args) != ctor.Arity() {
			return "", fmt.Errorf("print: constructor %q expects %d arguments, value carries %d", ctor.Name, ctor.Arity(), len(v.Args))
		}

		arity := mod.FamilyArity(familyIndex)
		env := make([]module.Substitution, 0, arity+ctor.Arity())
		for i := 0; i < arity; i++ {
			pt, err := reduce.SubstituteExpression(mod, mod.Matrices[0].Constructors[familyIndex].ParameterTypes[i], env)
			if err != nil {
				return "", err
			}
			env = append(env, module.Substitution{Type: pt, Value: familyCtor.Args[i]})
		}

		parts := []string{ctor.Name}
		for i, argVal := range v.Args {
			argType, err := reduce.SubstituteExpression(mod, ctor.ParameterTypes[i], env)
			if err != nil {
				return "", err
			}
			s, err := Print(mod, argType, argVal)
			if err != nil {
				return "", err
			}
			env = append(env, module.Substitution{Type: argType, Value: argVal})
			parts = append(parts, s)
		}
		return strings.Join(parts, " "), nil

	case *term.Reference, *term.Destruction:
		// A print directive elaborates its expression against an empty
		// parameter scope and reduces it before ever calling Print, so
		// the value reaching here is always a closed, fully-reduced
		// Construction: neither a free parameter reference nor a stuck
		// destructor application can survive that far. Rendering either
		// faithfully would need the enclosing parameter names (the C
		// original threads a parameterCount/pParameters pair through
		// its equivalent of this function for exactly that reason),
		// context Print has no caller that could supply. Treat reaching
		// this branch as a broken invariant rather than emit placeholder
		// syntax that looks like real output but isn't.
		return "", fmt.Errorf("print: %T is not a closed, fully-reduced value", value)

	default:
		return "", fmt.Errorf("print: unrecognized value %T", value)
	}
}
