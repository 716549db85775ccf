package rewriting

import "fmt"

// Type is the surface type expression the driver supplies: a nominal
// type, a trait, a generic parameter, or an associated-type selection.
type Type interface {
	fmt.Stringer
	isType()
}

// ConcreteType names a nominal type.
type ConcreteType struct{ Name string }

// TraitType names a trait.
type TraitType struct{ Name string }

// GenericParam names a generic type parameter.
type GenericParam struct{ Name string }

// AssocType selects the associated type Name, declared by Trait, on
// Base.
type AssocType struct {
	Base  Type
	Trait string
	Name  string
}

func (ConcreteType) isType() {}
func (TraitType) isType()    {}
func (GenericParam) isType() {}
func (AssocType) isType()    {}

func (t ConcreteType) String() string { return t.Name }
func (t TraitType) String() string    { return t.Name }
func (t GenericParam) String() string { return t.Name }
func (t AssocType) String() string {
	return fmt.Sprintf("%s.[%s.%s]", t.Base, t.Trait, t.Name)
}

// TermOf translates a type expression into its term: a single symbol for
// the leaf cases, and for an associated-type selection the base's term
// followed by the selector symbol.
func TermOf(t Type) Term {
	switch t := t.(type) {
	case ConcreteType:
		return NewTerm(ConcreteSymbol(t.Name))
	case TraitType:
		return NewTerm(TraitSymbol(t.Name))
	case GenericParam:
		return NewTerm(GenericSymbol(t.Name))
	case AssocType:
		return TermOf(t.Base).Concat(NewTerm(AssociatedTypeSymbol(t.Trait, t.Name)))
	default:
		panic(fmt.Sprintf("%T: unknown type expression", t))
	}
}

// IsAbstract reports whether t is an abstract parameter: a generic
// parameter or an associated-type selection. Only abstract parameters
// may appear as the left-hand side of an equality constraint.
func IsAbstract(t Type) bool {
	switch t.(type) {
	case GenericParam, AssocType:
		return true
	default:
		return false
	}
}

// ConstraintKind is the case of a constraint.
type ConstraintKind int

const (
	// KindBound constrains a type to conform to a trait (or otherwise
	// satisfy the right-hand side).
	KindBound ConstraintKind = iota
	// KindEquality equates an abstract parameter with another type.
	KindEquality
)

// Constraint is one requirement of a generic signature.
type Constraint struct {
	Kind ConstraintKind
	LHS  Type
	RHS  Type
}

// Bound builds a conformance constraint lhs: rhs.
func Bound(lhs, rhs Type) Constraint {
	return Constraint{Kind: KindBound, LHS: lhs, RHS: rhs}
}

// Equality builds an equality constraint lhs == rhs. The left-hand side
// must be an abstract parameter; AddConstraint reports
// ErrInvalidEqualityLHS otherwise.
func Equality(lhs, rhs Type) Constraint {
	return Constraint{Kind: KindEquality, LHS: lhs, RHS: rhs}
}

// AddConstraint translates the constraint into a rule and inserts it.
//
// A bound lhs: rhs becomes term(lhs)·term(rhs) => term(lhs): conforming
// to rhs adds nothing that selection through lhs does not already reach.
// An equality takes v = term(lhs) and u = term(rhs) when rhs is
// abstract, u = term(lhs)·term(rhs) otherwise; the pair is swapped if
// needed so the source is the greater side. An equality whose sides
// translate to the same term is a no-op.
func (s *System) AddConstraint(c Constraint) error {
	switch c.Kind {
	case KindBound:
		lhs := TermOf(c.LHS)
		_, _, err := s.Insert(lhs.Concat(TermOf(c.RHS)), lhs)
		return err
	case KindEquality:
		if !IsAbstract(c.LHS) {
			return ErrInvalidEqualityLHS.New(c.LHS)
		}
		v := TermOf(c.LHS)
		var u Term
		if IsAbstract(c.RHS) {
			u = TermOf(c.RHS)
		} else {
			u = v.Concat(TermOf(c.RHS))
		}
		switch s.props.CompareTerms(u, v) {
		case Equal:
			return nil
		case Ascending:
			u, v = v, u
		}
		_, _, err := s.Insert(u, v)
		return err
	default:
		panic(fmt.Sprintf("unknown constraint kind %d", c.Kind))
	}
}

// AddConstraints adds every constraint in order, stopping at the first
// error.
func (s *System) AddConstraints(constraints []Constraint) error {
	for _, c := range constraints {
		if err := s.AddConstraint(c); err != nil {
			return err
		}
	}
	return nil
}
