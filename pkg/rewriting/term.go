package rewriting

import "strings"

// Term is an immutable ordered sequence of symbols. A term s0.s1...sn-1
// denotes the type reached by starting from s0 and applying each
// subsequent symbol as a selector.
//
// Terms have value semantics: every operation that produces a term
// returns a fresh value and never mutates an input. The zero Term is the
// empty sequence.
type Term struct {
	syms []Symbol
}

// NewTerm builds a term from the given symbols. The slice is copied so
// later mutation of the argument cannot leak into the term.
func NewTerm(syms ...Symbol) Term {
	if len(syms) == 0 {
		return Term{}
	}
	owned := make([]Symbol, len(syms))
	copy(owned, syms)
	return Term{syms: owned}
}

// Len reports the number of symbols in the term.
func (u Term) Len() int { return len(u.syms) }

// At returns the symbol at position i. It panics if i is out of range,
// matching slice indexing.
func (u Term) At(i int) Symbol { return u.syms[i] }

// Symbols returns a copy of the term's symbols.
func (u Term) Symbols() []Symbol {
	out := make([]Symbol, len(u.syms))
	copy(out, u.syms)
	return out
}

// Slice returns the subterm covering the half-open range [lo, hi). The
// result shares the receiver's backing storage, which is safe because
// terms are never mutated in place.
func (u Term) Slice(lo, hi int) Term {
	return Term{syms: u.syms[lo:hi]}
}

// Concat returns the term u followed by v.
func (u Term) Concat(v Term) Term {
	if u.Len() == 0 {
		return v
	}
	if v.Len() == 0 {
		return u
	}
	joined := make([]Symbol, 0, len(u.syms)+len(v.syms))
	joined = append(joined, u.syms...)
	joined = append(joined, v.syms...)
	return Term{syms: joined}
}

// Equal reports whether two terms hold the same symbol sequence.
func (u Term) Equal(v Term) bool {
	if len(u.syms) != len(v.syms) {
		return false
	}
	for i := range u.syms {
		if u.syms[i] != v.syms[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether v is a prefix of u.
func (u Term) HasPrefix(v Term) bool {
	if v.Len() > u.Len() {
		return false
	}
	return u.Slice(0, v.Len()).Equal(v)
}

// String renders the term as its dot-separated symbols, using each
// symbol's debug syntax.
func (u Term) String() string {
	if len(u.syms) == 0 {
		return "ε"
	}
	parts := make([]string, len(u.syms))
	for i, s := range u.syms {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}
