// Package term is the core expression representation: the Construction /
// Reference / Destruction algebraic data type, plus the structural
// operations (equality, free-reference depth) that the rest of the
// interpreter builds on.
//
// Nodes are treated as immutable once built. "Duplicating" a subterm is
// ordinary Go slice/pointer sharing, with no manual deep copy, so two
// Expressions can safely share structure; Equal is the correctness
// check, not pointer identity.
package term

import "fmt"

// Expression is the sum type of the calculus: a Construction (canonical
// form) or an Evaluation (Reference or Destruction, the neutral forms).
type Expression interface {
	fmt.Stringer
	expressionNode()
}

// Evaluation is the stuck-form subset of Expression.
type Evaluation interface {
	Expression
	evaluationNode()
}

// Construction is an application of constructor Index within its
// family's constructor table, one Args entry per constructor parameter.
type Construction struct {
	Index int
	Args  []Expression
}

func (*Construction) expressionNode() {}

// Reference is an absolute slot into the ambient environment array
// current at the point the Reference appears, not a lexical de Bruijn
// count from a binder.
type Reference struct {
	Index int
}

func (*Reference) expressionNode() {}
func (*Reference) evaluationNode() {}

// Destruction is an application of destructor Index of Caller's type
// family to Args.
type Destruction struct {
	Caller Evaluation
	Index  int
	Args   []Expression
}

func (*Destruction) expressionNode() {}
func (*Destruction) evaluationNode() {}

// IsConstruction reports whether e is in weak head normal form.
func IsConstruction(e Expression) bool {
	_, ok := e.(*Construction)
	return ok
}

// AsEvaluation narrows e to its neutral form, for call sites that have
// already established (by construction or by a prior type check) that e
// cannot be a Construction.
func AsEvaluation(e Expression) (Evaluation, bool) {
	ev, ok := e.(Evaluation)
	return ev, ok
}

// Equal is structural equality: same shape, same indices, pointwise
// equal arguments.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *Construction:
		bv, ok := b.(*Construction)
		if !ok || av.Index != bv.Index || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Equal(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case *Reference:
		bv, ok := b.(*Reference)
		return ok && av.Index == bv.Index
	case *Destruction:
		bv, ok := b.(*Destruction)
		if !ok || av.Index != bv.Index || len(av.Args) != len(bv.Args) {
			return false
		}
		if !Equal(av.Caller, bv.Caller) {
			return false
		}
		for i := range av.Args {
			if !Equal(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// FreeDepth returns the minimum environment length an Expression
// requires: one more than the largest Reference index it mentions, or 0
// if it mentions none. Used to sanity-check environment construction
// sites against off-by-one slot-layout mistakes.
func FreeDepth(e Expression) int {
	switch v := e.(type) {
	case *Construction:
		max := 0
		for _, a := range v.Args {
			if d := FreeDepth(a); d > max {
				max = d
			}
		}
		return max
	case *Reference:
		return v.Index + 1
	case *Destruction:
		max := FreeDepth(v.Caller)
		for _, a := range v.Args {
			if d := FreeDepth(a); d > max {
				max = d
			}
		}
		return max
	default:
		return 0
	}
}

func (c *Construction) String() string {
	return fmt.Sprintf("Construction(%d, %d args)", c.Index, len(c.Args))
}

func (r *Reference) String() string {
	return fmt.Sprintf("Reference(%d)", r.Index)
}

func (d *Destruction) String() string {
	return fmt.Sprintf("Destruction(%s.%d, %d args)", d.Caller, d.Index, len(d.Args))
}
