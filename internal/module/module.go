// Package module implements the mutable catalog of type families
// ("matrices"), their constructors, destructors, and rewrite rules, plus
// the invariants over adding new entities.
package module

import (
	"fmt"

	"indlang/internal/term"
)

// Substitution pairs a value with its type, the unit the substitution
// engine and reducer pass around.
type Substitution struct {
	Type  term.Expression
	Value term.Expression
}

// Parameter is a named, typed slot used only while elaborating; it
// never appears in a stored Expression.
type Parameter struct {
	Name string
	Type term.Expression
}

// Constructor is an introduction form for a family. ParameterTypes[i]
// may reference family parameters (indices
// [0, family arity)) and earlier constructor parameters (indices
// [family arity, family arity+i)) via term.Reference.
type Constructor struct {
	Depth          int
	Name           string
	ParameterTypes []term.Expression
}

// Destructor is a reduction-rule family indexed by the outer
// constructor. Environment layout for ParameterTypes[i] and ReturnType:
// [0, arity) family params, arity self, (arity, arity+i] earlier
// destructor params. Rules has one entry per constructor of the owning
// family; a nil entry is the unspecified sentinel, distinguishable from
// any real expression since no real Expression is the nil interface
// value.
type Destructor struct {
	Depth          int
	Name           string
	ParameterTypes []term.Expression
	ReturnType     term.Expression
	Rules          []term.Expression
}

// Matrix is a type family: its constructors and destructors.
type Matrix struct {
	Constructors []Constructor
	Destructors  []Destructor
}

// Module is the ordered sequence of matrices. Matrix 0 is distinguished:
// its constructors are the declared type families themselves (the
// universe Type's constructors), with Matrices[i+1] living under
// Matrices[0].Constructors[i+1]. Index 0 of Matrix 0 is the built-in
// Type constructor itself, carrying no family.
type Module struct {
	Matrices []Matrix
}

// Arity returns a constructor or destructor's parameter count.
func (c Constructor) Arity() int { return len(c.ParameterTypes) }
func (d Destructor) Arity() int  { return len(d.ParameterTypes) }

// FamilyArity is the arity of the family a Matrix belongs to, i.e. the
// arity of its corresponding constructor in Matrix 0.
func (m *Module) FamilyArity(familyIndex int) int {
	return m.Matrices[0].Constructors[familyIndex].Arity()
}

// New creates an empty module: just Matrix 0 with its built-in Type
// constructor of zero arity.
func New() *Module {
	return &Module{
		Matrices: []Matrix{{
			Constructors: []Constructor{{Name: "Type"}},
		}},
	}
}

// AddFamily declares a new type family: appends a constructor to Matrix
// 0 (one parameter per entry of parameterTypes) and creates the new,
// initially-empty Matrix it names.
func (m *Module) AddFamily(name string, parameterTypes []term.Expression, depth int) (int, error) {
	if m.constructorIndex(0, name) >= 0 {
		return 0, fmt.Errorf("duplicate type family name %q", name)
	}
	m.Matrices[0].Constructors = append(m.Matrices[0].Constructors, Constructor{
		Depth:          depth,
		Name:           name,
		ParameterTypes: parameterTypes,
	})
	m.Matrices = append(m.Matrices, Matrix{})
	return len(m.Matrices) - 1, nil
}

// AddConstructor appends a constructor to familyIndex's matrix, and
// extends every existing destructor's rule table by one unspecified
// entry.
func (m *Module) AddConstructor(familyIndex int, name string, parameterTypes []term.Expression, depth int) (int, error) {
	mat := &m.Matrices[familyIndex]
	if m.constructorIndex(familyIndex, name) >= 0 {
		return 0, fmt.Errorf("duplicate constructor name %q in family %d", name, familyIndex)
	}
	mat.Constructors = append(mat.Constructors, Constructor{
		Depth:          depth,
		Name:           name,
		ParameterTypes: parameterTypes,
	})
	for i := range mat.Destructors {
		mat.Destructors[i].Rules = append(mat.Destructors[i].Rules, nil)
	}
	return len(mat.Constructors) - 1, nil
}

// AddDestructor appends a destructor to familyIndex's matrix, with a
// rule table of length equal to the family's current constructor count,
// all unspecified.
func (m *Module) AddDestructor(familyIndex int, name string, parameterTypes []term.Expression, returnType term.Expression, depth int) (int, error) {
	mat := &m.Matrices[familyIndex]
	if m.destructorIndex(familyIndex, name) >= 0 {
		return 0, fmt.Errorf("duplicate destructor name %q in family %d", name, familyIndex)
	}
	mat.Destructors = append(mat.Destructors, Destructor{
		Depth:          depth,
		Name:           name,
		ParameterTypes: parameterTypes,
		ReturnType:     returnType,
		Rules:          make([]term.Expression, len(mat.Constructors)),
	})
	return len(mat.Destructors) - 1, nil
}

// SetRule installs the rewrite rule for (constructorIndex, destructorIndex)
// of familyIndex. It is a single-assignment cell: setting an already-
// specified rule is an error.
func (m *Module) SetRule(familyIndex, destructorIndex, constructorIndex int, rule term.Expression) error {
	dest := &m.Matrices[familyIndex].Destructors[destructorIndex]
	if dest.Rules[constructorIndex] != nil {
		return fmt.Errorf("rule for constructor %d, destructor %q already specified", constructorIndex, dest.Name)
	}
	dest.Rules[constructorIndex] = rule
	return nil
}

// ConstructorByName looks up a constructor by linear search within
// familyIndex's matrix: the leftmost match wins, and duplicate names
// are rejected at insertion so that match is always unique.
func (m *Module) ConstructorByName(familyIndex int, name string) (int, Constructor, bool) {
	idx := m.constructorIndex(familyIndex, name)
	if idx < 0 {
		return 0, Constructor{}, false
	}
	return idx, m.Matrices[familyIndex].Constructors[idx], true
}

// DestructorByName looks up a destructor by linear search.
func (m *Module) DestructorByName(familyIndex int, name string) (int, Destructor, bool) {
	idx := m.destructorIndex(familyIndex, name)
	if idx < 0 {
		return 0, Destructor{}, false
	}
	return idx, m.Matrices[familyIndex].Destructors[idx], true
}

func (m *Module) constructorIndex(familyIndex int, name string) int {
	for i, c := range m.Matrices[familyIndex].Constructors {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (m *Module) destructorIndex(familyIndex int, name string) int {
	for i, d := range m.Matrices[familyIndex].Destructors {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// UnimplementedRule names one (family, constructor, destructor) triple
// whose rule is still unspecified, the shape Validate reports.
type UnimplementedRule struct {
	FamilyIndex      int
	FamilyName       string
	ConstructorName  string
	DestructorName   string
	DestructorIndex  int
	ConstructorIndex int
}

func (u UnimplementedRule) String() string {
	return fmt.Sprintf("%s [%s.%s]", u.FamilyName, u.ConstructorName, u.DestructorName)
}

// Validate checks that every rule table entry for every destructor of
// every family declared at depth or deeper is non-unspecified.
// familyIndex 0 (the Type family) has no destructors and is skipped.
func (m *Module) Validate(depth int) []UnimplementedRule {
	var missing []UnimplementedRule
	for fi := 1; fi < len(m.Matrices); fi++ {
		familyCtor := m.Matrices[0].Constructors[fi]
		if familyCtor.Depth < depth {
			continue
		}
		mat := m.Matrices[fi]
		for di, dest := range mat.Destructors {
			for ci, rule := range dest.Rules {
				if rule == nil {
					missing = append(missing, UnimplementedRule{
						FamilyIndex:      fi,
						FamilyName:       familyCtor.Name,
						ConstructorName:  mat.Constructors[ci].Name,
						DestructorName:   dest.Name,
						DestructorIndex:  di,
						ConstructorIndex: ci,
					})
				}
			}
		}
	}
	return missing
}
