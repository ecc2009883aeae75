package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualConstructionSameShape(t *testing.T) {
	a := &Construction{Index: 1, Args: []Expression{&Reference{Index: 0}}}
	b := &Construction{Index: 1, Args: []Expression{&Reference{Index: 0}}}
	assert.True(t, Equal(a, b))
}

func TestEqualConstructionDifferentIndex(t *testing.T) {
	a := &Construction{Index: 1}
	b := &Construction{Index: 2}
	assert.False(t, Equal(a, b))
}

func TestEqualConstructionDifferentArity(t *testing.T) {
	a := &Construction{Index: 1, Args: []Expression{&Reference{Index: 0}}}
	b := &Construction{Index: 1}
	assert.False(t, Equal(a, b))
}

func TestEqualReference(t *testing.T) {
	assert.True(t, Equal(&Reference{Index: 3}, &Reference{Index: 3}))
	assert.False(t, Equal(&Reference{Index: 3}, &Reference{Index: 4}))
}

func TestEqualDestruction(t *testing.T) {
	a := &Destruction{Caller: &Reference{Index: 0}, Index: 0, Args: []Expression{&Reference{Index: 1}}}
	b := &Destruction{Caller: &Reference{Index: 0}, Index: 0, Args: []Expression{&Reference{Index: 1}}}
	assert.True(t, Equal(a, b))

	c := &Destruction{Caller: &Reference{Index: 1}, Index: 0, Args: []Expression{&Reference{Index: 1}}}
	assert.False(t, Equal(a, c))
}

func TestEqualDifferentKinds(t *testing.T) {
	assert.False(t, Equal(&Reference{Index: 0}, &Construction{Index: 0}))
}

func TestEqualNil(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(&Reference{Index: 0}, nil))
}

func TestIsConstruction(t *testing.T) {
	assert.True(t, IsConstruction(&Construction{Index: 0}))
	assert.False(t, IsConstruction(&Reference{Index: 0}))
}

func TestAsEvaluation(t *testing.T) {
	ev, ok := AsEvaluation(&Reference{Index: 0})
	assert.True(t, ok)
	assert.Equal(t, &Reference{Index: 0}, ev)

	_, ok = AsEvaluation(&Construction{Index: 0})
	assert.False(t, ok)
}

func TestFreeDepthConstruction(t *testing.T) {
	e := &Construction{Index: 1, Args: []Expression{&Reference{Index: 2}, &Reference{Index: 0}}}
	assert.Equal(t, 3, FreeDepth(e))
}

func TestFreeDepthReference(t *testing.T) {
	assert.Equal(t, 5, FreeDepth(&Reference{Index: 4}))
}

func TestFreeDepthDestructionCombinesCallerAndArgs(t *testing.T) {
	e := &Destruction{Caller: &Reference{Index: 1}, Index: 0, Args: []Expression{&Reference{Index: 3}}}
	assert.Equal(t, 4, FreeDepth(e))
}

func TestFreeDepthNoReferences(t *testing.T) {
	e := &Construction{Index: 0}
	assert.Equal(t, 0, FreeDepth(e))
}
