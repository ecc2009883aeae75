// Package reduce is the substitution engine and destructor reducer.
// Substitution is eager and total for well-formed input: the only
// failure modes are an out-of-range environment slot (a bug upstream,
// since elaboration is supposed to keep every Reference within range)
// or firing a destructor whose rule is still unspecified.
package reduce

import (
	"fmt"

	"indlang/internal/module"
	"indlang/internal/term"
)

// Substitute replaces every Reference in expr by the corresponding
// env[i].Value, computing the expected type of the result by the same
// traversal. For a Construction, the Type field of the
// returned Substitution is left nil: a Construction is already
// type-positioned by its caller, so this routine never needs to derive
// one (see SubstituteExpression for the common case that only wants the
// value).
func Substitute(mod *module.Module, expr term.Expression, env []module.Substitution) (module.Substitution, error) {
	switch e := expr.(type) {
	case *term.Construction:
		args := make([]term.Expression, len(e.Args))
		for i, a := range e.Args {
			v, err := SubstituteExpression(mod, a, env)
			if err != nil {
				return module.Substitution{}, err
			}
			args[i] = v
		}
		return module.Substitution{Value: &term.Construction{Index: e.Index, Args: args}}, nil

	case *term.Reference:
		if e.Index < 0 || e.Index >= len(env) {
			return module.Substitution{}, fmt.Errorf("reference index %d out of range (environment has %d slots)", e.Index, len(env))
		}
		return env[e.Index], nil

	case *term.Destruction:
		callerSub, err := Substitute(mod, e.Caller, env)
		if err != nil {
			return module.Substitution{}, err
		}
		args := make([]term.Expression, len(e.Args))
		for i, a := range e.Args {
			v, err := SubstituteExpression(mod, a, env)
			if err != nil {
				return module.Substitution{}, err
			}
			args[i] = v
		}
		return Destruct(mod, callerSub, e.Index, args)

	default:
		return module.Substitution{}, fmt.Errorf("substitute: unrecognized expression %T", expr)
	}
}

// SubstituteExpression substitutes env into expr and returns only the
// resulting value, discarding the often-unneeded type half. This is the
// shape needed at Construction argument and declared-parameter-type
// substitution sites.
func SubstituteExpression(mod *module.Module, expr term.Expression, env []module.Substitution) (term.Expression, error) {
	sub, err := Substitute(mod, expr, env)
	if err != nil {
		return nil, err
	}
	return sub.Value, nil
}
