package reduce

import (
	"errors"
	"fmt"

	"indlang/internal/module"
	"indlang/internal/term"
)

// ErrUnspecifiedRule reports destructing a Construction whose rule for
// this destructor is still unspecified.
var ErrUnspecifiedRule = errors.New("destructor rule is unspecified")

// Destruct applies destructorIndex to target with already-substituted
// argument values args. target.Type must be a Construction naming the
// family the destructor belongs to; the substitution engine's
// Destruction case substitutes args before calling Destruct, so
// evaluation is call-by-value at the rule site.
//
// Destruct always returns a fresh Substitution; it never mutates target
// or args in place (see SPEC_FULL.md §13 for the reasoning behind that
// choice).
func Destruct(mod *module.Module, target module.Substitution, destructorIndex int, args []term.Expression) (module.Substitution, error) {
	typeCtor, ok := target.Type.(*term.Construction)
	if !ok {
		return module.Substitution{}, fmt.Errorf("destruct: target type is not a Construction (got %T)", target.Type)
	}
	familyIndex := typeCtor.Index
	if familyIndex <= 0 || familyIndex >= len(mod.Matrices) {
		return module.Substitution{}, fmt.Errorf("destruct: family index %d out of range", familyIndex)
	}
	family := mod.Matrices[0].Constructors[familyIndex]
	arity := family.Arity()
	if len(typeCtor.Args) != arity {
		return module.Substitution{}, fmt.Errorf("destruct: family %q expects %d parameters, type carries %d", family.Name, arity, len(typeCtor.Args))
	}
	if destructorIndex < 0 || destructorIndex >= len(mod.Matrices[familyIndex].Destructors) {
		return module.Substitution{}, fmt.Errorf("destruct: destructor index %d out of range for family %q", destructorIndex, family.Name)
	}
	dest := mod.Matrices[familyIndex].Destructors[destructorIndex]
	if len(args) != dest.Arity() {
		return module.Substitution{}, fmt.Errorf("destruct: destructor %q expects %d arguments, got %d", dest.Name, dest.Arity(), len(args))
	}

	// Outer environment: family params, then self, then destructor params.
	outer := make([]module.Substitution, 0, arity+1+dest.Arity())
	for i := 0; i < arity; i++ {
		typ, err := SubstituteExpression(mod, family.ParameterTypes[i], outer)
		if err != nil {
			return module.Substitution{}, err
		}
		outer = append(outer, module.Substitution{Type: typ, Value: typeCtor.Args[i]})
	}
	outer = append(outer, target)
	for j := 0; j < dest.Arity(); j++ {
		typ, err := SubstituteExpression(mod, dest.ParameterTypes[j], outer)
		if err != nil {
			return module.Substitution{}, err
		}
		outer = append(outer, module.Substitution{Type: typ, Value: args[j]})
	}

	resultType, err := SubstituteExpression(mod, dest.ReturnType, outer)
	if err != nil {
		return module.Substitution{}, err
	}

	switch v := target.Value.(type) {
	case *term.Construction:
		rule := dest.Rules[v.Index]
		if rule == nil {
			return module.Substitution{}, fmt.Errorf("%w: family %q constructor %q destructor %q",
				ErrUnspecifiedRule, family.Name, mod.Matrices[familyIndex].Constructors[v.Index].Name, dest.Name)
		}
		ctor := mod.Matrices[familyIndex].Constructors[v.Index]
		if len(v.Args) != ctor.Arity() {
			return module.Substitution{}, fmt.Errorf("destruct: constructor %q expects %d arguments, value carries %d", ctor.Name, ctor.Arity(), len(v.Args))
		}

		// Rule environment: family params, constructor params, destructor params.
		ruleEnv := make([]module.Substitution, 0, arity+ctor.Arity()+dest.Arity())
		ruleEnv = append(ruleEnv, outer[:arity]...)
		for i := 0; i < ctor.Arity(); i++ {
			typ, err := SubstituteExpression(mod, ctor.ParameterTypes[i], ruleEnv)
			if err != nil {
				return module.Substitution{}, err
			}
			ruleEnv = append(ruleEnv, module.Substitution{Type: typ, Value: v.Args[i]})
		}
		ruleEnv = append(ruleEnv, outer[arity+1:]...)

		resultValue, err := SubstituteExpression(mod, rule, ruleEnv)
		if err != nil {
			return module.Substitution{}, err
		}
		return module.Substitution{Type: resultType, Value: resultValue}, nil

	default:
		caller, ok := target.Value.(term.Evaluation)
		if !ok {
			return module.Substitution{}, fmt.Errorf("destruct: target value is neither Construction nor Evaluation (got %T)", target.Value)
		}
		stuck := &term.Destruction{Caller: caller, Index: destructorIndex, Args: args}
		return module.Substitution{Type: resultType, Value: stuck}, nil
	}
}
