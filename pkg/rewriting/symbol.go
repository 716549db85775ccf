package rewriting

import "fmt"

// SymbolKind discriminates the four symbol cases. The integer values are
// significant: they act as the coarse tie-break when symbols of
// different kinds are compared.
type SymbolKind int

const (
	// KindConcrete is a nominal type name.
	KindConcrete SymbolKind = iota
	// KindTrait is a trait name.
	KindTrait
	// KindAssociatedType is an associated-type selector qualified by the
	// trait that declares it.
	KindAssociatedType
	// KindGenericType is a generic type parameter.
	KindGenericType
)

// Symbol is one element of a term: a nominal type, a trait, an
// associated-type selector, or a generic parameter. Symbols are value
// types, comparable with == and usable as map keys.
type Symbol struct {
	kind  SymbolKind
	name  string
	trait string // declaring trait, associated-type symbols only
}

// ConcreteSymbol returns the symbol for a nominal type.
func ConcreteSymbol(name string) Symbol {
	return Symbol{kind: KindConcrete, name: name}
}

// TraitSymbol returns the symbol for a trait.
func TraitSymbol(name string) Symbol {
	return Symbol{kind: KindTrait, name: name}
}

// AssociatedTypeSymbol returns the selector for associated type name
// declared by trait.
func AssociatedTypeSymbol(trait, name string) Symbol {
	return Symbol{kind: KindAssociatedType, name: name, trait: trait}
}

// GenericSymbol returns the symbol for a generic type parameter.
func GenericSymbol(name string) Symbol {
	return Symbol{kind: KindGenericType, name: name}
}

// Kind reports the symbol's case.
func (s Symbol) Kind() SymbolKind { return s.kind }

// Name reports the symbol's name. For associated-type selectors this is
// the member name, not the declaring trait.
func (s Symbol) Name() string { return s.name }

// Trait reports the declaring trait of an associated-type selector, and
// the empty string for every other kind.
func (s Symbol) Trait() string { return s.trait }

// String renders the symbol in the debug syntax: [concrete: n] for
// nominal types, [n] for traits, [::t.n] for associated types, and a
// bare n for generic parameters.
func (s Symbol) String() string {
	switch s.kind {
	case KindConcrete:
		return fmt.Sprintf("[concrete: %s]", s.name)
	case KindTrait:
		return fmt.Sprintf("[%s]", s.name)
	case KindAssociatedType:
		return fmt.Sprintf("[::%s.%s]", s.trait, s.name)
	default:
		return s.name
	}
}
