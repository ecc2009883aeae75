package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indlang/internal/term"
)

func boolFamily(t *testing.T) (*Module, int, int, int, int) {
	t.Helper()
	mod := New()
	familyIndex, err := mod.AddFamily("Bool", nil, 0)
	require.NoError(t, err)

	trueIdx, err := mod.AddConstructor(familyIndex, "true", nil, 0)
	require.NoError(t, err)
	falseIdx, err := mod.AddConstructor(familyIndex, "false", nil, 0)
	require.NoError(t, err)

	boolType := &term.Construction{Index: familyIndex}
	notIdx, err := mod.AddDestructor(familyIndex, "not", nil, boolType, 0)
	require.NoError(t, err)

	return mod, familyIndex, trueIdx, falseIdx, notIdx
}

func TestNewHasBuiltinType(t *testing.T) {
	mod := New()
	require.Len(t, mod.Matrices, 1)
	assert.Equal(t, "Type", mod.Matrices[0].Constructors[0].Name)
	assert.Equal(t, 0, mod.Matrices[0].Constructors[0].Arity())
}

func TestAddFamilyGrowsMatrixTable(t *testing.T) {
	mod := New()
	familyIndex, err := mod.AddFamily("Bool", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, familyIndex)
	assert.Len(t, mod.Matrices, 2)
	assert.Equal(t, "Bool", mod.Matrices[0].Constructors[familyIndex].Name)
}

func TestAddFamilyRejectsDuplicateName(t *testing.T) {
	mod := New()
	_, err := mod.AddFamily("Bool", nil, 0)
	require.NoError(t, err)
	_, err = mod.AddFamily("Bool", nil, 0)
	assert.Error(t, err)
}

func TestAddConstructorExtendsExistingDestructorRuleTables(t *testing.T) {
	mod, familyIndex, _, _, notIdx := boolFamily(t)

	maybeIdx, err := mod.AddConstructor(familyIndex, "maybe", nil, 0)
	require.NoError(t, err)

	dest := mod.Matrices[familyIndex].Destructors[notIdx]
	assert.Len(t, dest.Rules, 3)
	assert.Nil(t, dest.Rules[maybeIdx])
}

func TestAddConstructorRejectsDuplicateName(t *testing.T) {
	mod, familyIndex, _, _, _ := boolFamily(t)
	_, err := mod.AddConstructor(familyIndex, "true", nil, 0)
	assert.Error(t, err)
}

func TestAddDestructorRulesTableMatchesConstructorCount(t *testing.T) {
	mod, familyIndex, _, _, notIdx := boolFamily(t)
	dest := mod.Matrices[familyIndex].Destructors[notIdx]
	assert.Len(t, dest.Rules, 2)
}

func TestSetRuleIsSingleAssignment(t *testing.T) {
	mod, familyIndex, trueIdx, falseIdx, notIdx := boolFamily(t)

	rule := &term.Construction{Index: falseIdx}
	require.NoError(t, mod.SetRule(familyIndex, notIdx, trueIdx, rule))

	err := mod.SetRule(familyIndex, notIdx, trueIdx, rule)
	assert.Error(t, err)
}

func TestConstructorByNameLinearSearch(t *testing.T) {
	mod, familyIndex, trueIdx, _, _ := boolFamily(t)
	idx, ctor, ok := mod.ConstructorByName(familyIndex, "true")
	require.True(t, ok)
	assert.Equal(t, trueIdx, idx)
	assert.Equal(t, "true", ctor.Name)

	_, _, ok = mod.ConstructorByName(familyIndex, "nope")
	assert.False(t, ok)
}

func TestDestructorByName(t *testing.T) {
	mod, familyIndex, _, _, notIdx := boolFamily(t)
	idx, dest, ok := mod.DestructorByName(familyIndex, "not")
	require.True(t, ok)
	assert.Equal(t, notIdx, idx)
	assert.Equal(t, "not", dest.Name)
}

func TestValidateReportsUnspecifiedRules(t *testing.T) {
	mod, familyIndex, trueIdx, falseIdx, notIdx := boolFamily(t)
	require.NoError(t, mod.SetRule(familyIndex, notIdx, trueIdx, &term.Construction{Index: falseIdx}))

	missing := mod.Validate(0)
	require.Len(t, missing, 1)
	assert.Equal(t, "false", missing[0].ConstructorName)
	assert.Equal(t, "not", missing[0].DestructorName)
	assert.Equal(t, "Bool [false.not]", missing[0].String())
}

func TestValidateCleanWhenFullyImplemented(t *testing.T) {
	mod, familyIndex, trueIdx, falseIdx, notIdx := boolFamily(t)
	require.NoError(t, mod.SetRule(familyIndex, notIdx, trueIdx, &term.Construction{Index: falseIdx}))
	require.NoError(t, mod.SetRule(familyIndex, notIdx, falseIdx, &term.Construction{Index: trueIdx}))

	assert.Empty(t, mod.Validate(0))
}

func TestValidateSkipsFamiliesShallowerThanDepth(t *testing.T) {
	mod, _, _, _, _ := boolFamily(t)
	assert.Empty(t, mod.Validate(1))
}

func TestCloseNamespaceManglesNestedDeclarations(t *testing.T) {
	mod, familyIndex, _, _, _ := boolFamily(t)

	maybeIdx, err := mod.AddConstructor(familyIndex, "maybe", nil, 1)
	require.NoError(t, err)

	mod.CloseNamespace(1, "opt")

	ctor := mod.Matrices[familyIndex].Constructors[maybeIdx]
	assert.Equal(t, "opt:maybe", ctor.Name)
	assert.Equal(t, 0, ctor.Depth)
}

func TestCloseNamespaceNeverRenamesFamilyDeclarations(t *testing.T) {
	mod := New()
	familyIndex, err := mod.AddFamily("Bool", nil, 1)
	require.NoError(t, err)

	mod.CloseNamespace(1, "opt")

	assert.Equal(t, "Bool", mod.Matrices[0].Constructors[familyIndex].Name)
	assert.Equal(t, 0, mod.Matrices[0].Constructors[familyIndex].Depth)
}
