// Package rewriting implements a confluent term rewriting system for
// generic-signature constraints, built by Knuth-Bendix completion.
//
// A generic signature introduces type parameters, constrains them to
// traits, and equates associated types. Deciding whether two type
// expressions denote the same type under such constraints is the job of
// this package: constraints are translated into oriented rewrite rules,
// the rule set is saturated by resolving critical pairs until it is
// confluent, and any type term can then be reduced to a unique canonical
// normal form.
//
// The basic objects are Symbols (nominal types, traits, associated-type
// selectors, and generic parameters) and Terms (immutable symbol
// sequences read left to right as a chain of selections). A System owns
// the rules and a prefix trie over their source terms. Typical usage:
//
//	props := &rewriting.TypeProperties{
//		TraitToBases: map[string][]string{"Collection": {"Sequence"}},
//	}
//	sys := rewriting.NewSystem(props)
//	if err := sys.AddConstraints(constraints); err != nil {
//		// translator bug: invalid rule or equality left-hand side
//	}
//	if err := sys.Complete(ctx, rewriting.CompletionBudget{}); err != nil {
//		// budget exceeded: the partial system is still well formed
//	}
//	canonical := sys.Reduce(term)
//
// Completion is semi-decidable: the loop is guarded by a configurable
// budget, and exceeding it returns ErrBudgetExceeded with the partial
// (non-confluent but invariant-preserving) system intact. The term order
// is a shortlex extension of a refinement-aware symbol order, so the
// order is total and every critical pair can be oriented; the classic
// Knuth-Bendix failure case of incomparable normal forms cannot arise.
//
// A System is not safe for concurrent mutation. Once completed it is
// effectively immutable and may be shared; ReduceAll exploits this to
// reduce batches of terms on a worker pool.
package rewriting
