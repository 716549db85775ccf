package rewriting

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrInvalidRule is returned when a rule's source is not strictly
	// greater than its target under the term order. It indicates a bug
	// in the constraint translation and is fatal to the run.
	ErrInvalidRule = errors.NewKind("invalid rule: source %s is not greater than target %s")

	// ErrInvalidEqualityLHS is returned when an equality constraint's
	// left-hand side is not an abstract parameter (a generic parameter
	// or an associated-type selection thereof).
	ErrInvalidEqualityLHS = errors.NewKind("equality left-hand side %s is not an abstract parameter")

	// ErrBudgetExceeded is returned when completion does not converge
	// within the configured rule and step bounds. The partial system
	// remains well formed, but is not guaranteed confluent.
	ErrBudgetExceeded = errors.NewKind("completion budget exceeded: %s")

	// ErrOverlapIDOverflow is returned when a rule id or overlap
	// position does not fit the packed 16-bit overlap encoding.
	ErrOverlapIDOverflow = errors.NewKind("overlap (%d, %d, %d) exceeds the packed 16-bit encoding")

	// ErrInvalidTraitGraph is returned by TypeProperties.Validate when
	// the trait refinement declarations form a cycle.
	ErrInvalidTraitGraph = errors.NewKind("trait refinement cycle through %s")
)
