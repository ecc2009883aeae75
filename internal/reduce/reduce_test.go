package reduce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indlang/internal/module"
	"indlang/internal/term"
)

// boolModule builds: Bool | true | false . not ~ Bool, with
// [true.not] ~ false and [false.not] ~ true.
func boolModule(t *testing.T) (*module.Module, int, int, int, int) {
	t.Helper()
	mod := module.New()
	familyIndex, err := mod.AddFamily("Bool", nil, 0)
	require.NoError(t, err)
	trueIdx, err := mod.AddConstructor(familyIndex, "true", nil, 0)
	require.NoError(t, err)
	falseIdx, err := mod.AddConstructor(familyIndex, "false", nil, 0)
	require.NoError(t, err)
	boolType := &term.Construction{Index: familyIndex}
	notIdx, err := mod.AddDestructor(familyIndex, "not", nil, boolType, 0)
	require.NoError(t, err)

	require.NoError(t, mod.SetRule(familyIndex, notIdx, trueIdx, &term.Construction{Index: falseIdx}))
	require.NoError(t, mod.SetRule(familyIndex, notIdx, falseIdx, &term.Construction{Index: trueIdx}))

	return mod, familyIndex, trueIdx, falseIdx, notIdx
}

// natModule builds: Nat | zero | succ Nat[n] . pred ~ Nat, with
// [zero.pred] ~ zero and [succ (n).pred] ~ (n), exercising a constructor
// argument and a rule body that refers to it.
func natModule(t *testing.T) (*module.Module, int, int, int, int) {
	t.Helper()
	mod := module.New()
	familyIndex, err := mod.AddFamily("Nat", nil, 0)
	require.NoError(t, err)
	natType := &term.Construction{Index: familyIndex}

	zeroIdx, err := mod.AddConstructor(familyIndex, "zero", nil, 0)
	require.NoError(t, err)
	succIdx, err := mod.AddConstructor(familyIndex, "succ", []term.Expression{natType}, 0)
	require.NoError(t, err)
	predIdx, err := mod.AddDestructor(familyIndex, "pred", nil, natType, 0)
	require.NoError(t, err)

	require.NoError(t, mod.SetRule(familyIndex, predIdx, zeroIdx, &term.Construction{Index: zeroIdx}))
	// Rule env for succ is [family params..., n], n at index 0 here (no family params).
	require.NoError(t, mod.SetRule(familyIndex, predIdx, succIdx, &term.Reference{Index: 0}))

	return mod, familyIndex, zeroIdx, succIdx, predIdx
}

func TestDestructConstructionFiresInstalledRule(t *testing.T) {
	mod, familyIndex, trueIdx, falseIdx, notIdx := boolModule(t)
	target := module.Substitution{Type: &term.Construction{Index: familyIndex}, Value: &term.Construction{Index: trueIdx}}

	result, err := Destruct(mod, target, notIdx, nil)
	require.NoError(t, err)
	assert.True(t, term.Equal(&term.Construction{Index: falseIdx}, result.Value))
}

func TestDestructUnspecifiedRuleErrors(t *testing.T) {
	mod := module.New()
	familyIndex, err := mod.AddFamily("Bool", nil, 0)
	require.NoError(t, err)
	trueIdx, err := mod.AddConstructor(familyIndex, "true", nil, 0)
	require.NoError(t, err)
	boolType := &term.Construction{Index: familyIndex}
	notIdx, err := mod.AddDestructor(familyIndex, "not", nil, boolType, 0)
	require.NoError(t, err)

	target := module.Substitution{Type: boolType, Value: &term.Construction{Index: trueIdx}}
	_, err = Destruct(mod, target, notIdx, nil)
	assert.ErrorIs(t, err, ErrUnspecifiedRule)
}

func TestDestructNeutralTargetStaysStuck(t *testing.T) {
	mod, familyIndex, _, _, notIdx := boolModule(t)
	boolType := &term.Construction{Index: familyIndex}
	stuckRef := &term.Reference{Index: 0}
	target := module.Substitution{Type: boolType, Value: stuckRef}

	result, err := Destruct(mod, target, notIdx, nil)
	require.NoError(t, err)
	stuck, ok := result.Value.(*term.Destruction)
	require.True(t, ok)
	assert.Equal(t, stuckRef, stuck.Caller)
	assert.Equal(t, notIdx, stuck.Index)
}

func TestDestructRuleBodySeesConstructorArguments(t *testing.T) {
	mod, familyIndex, zeroIdx, succIdx, predIdx := natModule(t)
	natType := &term.Construction{Index: familyIndex}

	one := &term.Construction{Index: succIdx, Args: []term.Expression{&term.Construction{Index: zeroIdx}}}
	target := module.Substitution{Type: natType, Value: one}

	result, err := Destruct(mod, target, predIdx, nil)
	require.NoError(t, err)
	assert.True(t, term.Equal(&term.Construction{Index: zeroIdx}, result.Value))
}

func TestSubstituteReferenceLooksUpEnvironmentSlot(t *testing.T) {
	mod := module.New()
	env := []module.Substitution{
		{Type: &term.Construction{Index: 0}, Value: &term.Construction{Index: 1}},
	}
	v, err := SubstituteExpression(mod, &term.Reference{Index: 0}, env)
	require.NoError(t, err)
	assert.True(t, term.Equal(&term.Construction{Index: 1}, v))
}

func TestSubstituteReferenceOutOfRangeErrors(t *testing.T) {
	mod := module.New()
	_, err := SubstituteExpression(mod, &term.Reference{Index: 5}, nil)
	assert.Error(t, err)
}

func TestSubstituteConstructionRecursesIntoArgs(t *testing.T) {
	mod := module.New()
	env := []module.Substitution{{Value: &term.Construction{Index: 7}}}
	expr := &term.Construction{Index: 1, Args: []term.Expression{&term.Reference{Index: 0}}}

	v, err := SubstituteExpression(mod, expr, env)
	require.NoError(t, err)
	want := &term.Construction{Index: 1, Args: []term.Expression{&term.Construction{Index: 7}}}
	assert.True(t, term.Equal(want, v))
}

func TestSubstituteDestructionReducesEagerly(t *testing.T) {
	mod, familyIndex, trueIdx, falseIdx, notIdx := boolModule(t)
	boolType := &term.Construction{Index: familyIndex}
	env := []module.Substitution{{Type: boolType, Value: &term.Construction{Index: trueIdx}}}

	expr := &term.Destruction{Caller: &term.Reference{Index: 0}, Index: notIdx}
	v, err := SubstituteExpression(mod, expr, env)
	require.NoError(t, err)
	assert.True(t, term.Equal(&term.Construction{Index: falseIdx}, v))
}
