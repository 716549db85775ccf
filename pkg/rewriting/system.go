package rewriting

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// System is a rewriting system: an append-only rule store plus a prefix
// trie indexing the source term of every active rule. A System value has
// exclusive ownership of both; it is not safe for concurrent mutation.
type System struct {
	props *TypeProperties
	store ruleStore
	index *Trie
	log   *logrus.Entry
}

// NewSystem returns an empty system ordered by the given type
// properties. A nil props behaves as an empty refinement graph.
func NewSystem(props *TypeProperties) *System {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	return &System{
		props: props,
		index: NewTrie(),
		log:   logrus.NewEntry(quiet),
	}
}

// SetLogger directs the system's debug logging to the given entry.
func (s *System) SetLogger(log *logrus.Entry) {
	if log != nil {
		s.log = log
	}
}

// Properties returns the type properties the system orders terms with.
func (s *System) Properties() *TypeProperties { return s.props }

// RuleCount reports the total number of rules in storage, simplified
// ones included.
func (s *System) RuleCount() int { return s.store.len() }

// Rule returns the rule with the given id.
func (s *System) Rule(id RuleID) *Rule { return s.store.get(id) }

// ActiveIDs returns the ids of all rules not marked right-simplified.
func (s *System) ActiveIDs() []RuleID { return s.store.activeIDs() }

// ActiveRules invokes fn for every active rule's source and target, in
// insertion order.
func (s *System) ActiveRules(fn func(source, target Term)) {
	for _, id := range s.store.activeIDs() {
		r := s.store.get(id)
		fn(r.Source, r.Target)
	}
}

// DumpString renders every active rule as a "source => target" line.
func (s *System) DumpString() string {
	var b strings.Builder
	for _, id := range s.store.activeIDs() {
		b.WriteString(s.store.get(id).String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Insert adds the rule source => target. The source must be strictly
// greater than the target under the term order, or ErrInvalidRule is
// returned.
//
// When another active rule already rewrites the same source, the two
// targets are reconciled rather than duplicating the source in the
// index: an equal target is a no-op; a larger new target is recorded as
// a derived rule between the two targets; a smaller new target
// right-simplifies the old rule, records the derived rule the other way
// around, and takes over the index slot. The returned boolean reports
// whether a rule with this exact source was freshly installed, and the
// id identifies the rule now owning the source.
func (s *System) Insert(source, target Term) (bool, RuleID, error) {
	if s.props.CompareTerms(source, target) != Descending {
		return false, 0, ErrInvalidRule.New(source, target)
	}
	old, found := s.index.Get(source)
	if !found {
		id := s.store.append(source, target)
		s.index.Set(source, id)
		s.log.WithField("rule", s.store.get(id).String()).Debug("inserted rule")
		return true, id, nil
	}
	oldTarget := s.store.get(old).Target
	switch s.props.CompareTerms(target, oldTarget) {
	case Equal:
		return false, old, nil
	case Descending:
		// The existing rule already rewrites further down. Recover the
		// requested rewriting as target => oldTarget.
		if _, _, err := s.Insert(target, oldTarget); err != nil {
			return false, 0, err
		}
		return false, old, nil
	default: // Ascending
		// The new target is smaller. Retire the old rule, keep its
		// rewriting derivable, and take over the source.
		s.store.get(old).markRightSimplified()
		s.log.WithField("rule", s.store.get(old).String()).Debug("right-simplified rule")
		if _, _, err := s.Insert(oldTarget, target); err != nil {
			return false, 0, err
		}
		id := s.store.append(source, target)
		s.index.Set(source, id)
		s.log.WithField("rule", s.store.get(id).String()).Debug("inserted rule")
		return true, id, nil
	}
}

// Reduce rewrites u to its normal form: repeatedly find the leftmost
// position where some rule's source prefixes the remaining suffix,
// splice that rule's target in place, and restart. Reduction is total;
// termination follows from the shortlex order, under which every rule
// application strictly shrinks the term.
func (s *System) Reduce(u Term) Term {
rewritten:
	for {
		for p := 0; p < u.Len(); p++ {
			id, consumed, ok := s.index.longestRuleMatch(u.Slice(p, u.Len()))
			if !ok || consumed == 0 {
				continue
			}
			r := s.store.get(id)
			u = u.Slice(0, p).
				Concat(r.Target).
				Concat(u.Slice(p+r.Source.Len(), u.Len()))
			continue rewritten
		}
		return u
	}
}

// ForEachOverlap enumerates the overlaps of rule i with the currently
// indexed rules. For each position p in i's source, the trie is walked
// along source[p..]; every payload j met on the way is an overlap
// (j's source ends inside or exactly at the end of i's source), except
// the trivial self-overlap of the whole source at p == 0. If the walk
// exhausts source[p..] while still inside the trie, every payload
// strictly below extends the suffix and is an overlap too.
//
// The trie and the rule store must not be mutated during enumeration.
func (s *System) ForEachOverlap(i RuleID, fn func(j RuleID, p int)) {
	source := s.store.get(i).Source
	for p := 0; p < source.Len(); p++ {
		n := &s.index.root
		q := p
		for q < source.Len() {
			c := n.child(source.At(q))
			if c == nil {
				break
			}
			n = c
			q++
			if n.hasID && !(n.id == i && p == 0) {
				fn(n.id, p)
			}
		}
		if q == source.Len() {
			view := SubtrieView{node: n}
			view.descendants(func(j RuleID) {
				fn(j, p)
			})
		}
	}
}

// CriticalPair is two one-step rewritings of the same term produced by
// two overlapping rules. It is trivial when both sides coincide.
type CriticalPair struct {
	First  Term
	Second Term
}

// IsTrivial reports whether both sides are the same term.
func (cp CriticalPair) IsTrivial() bool { return cp.First.Equal(cp.Second) }

// FormCriticalPair builds the critical pair of rules lhs and rhs
// overlapping at position p of lhs's source: either rhs's source sits
// entirely inside lhs's source (inner overlap), or the two sources share
// a non-empty boundary (short overlap).
func (s *System) FormCriticalPair(lhs, rhs RuleID, p int) CriticalPair {
	r1 := s.store.get(lhs)
	r2 := s.store.get(rhs)
	u1, v1 := r1.Source, r1.Target
	u2, v2 := r2.Source, r2.Target
	if p+u2.Len() <= u1.Len() {
		// u1 = x · u2 · z
		x := u1.Slice(0, p)
		z := u1.Slice(p+u2.Len(), u1.Len())
		return CriticalPair{First: v1, Second: x.Concat(v2).Concat(z)}
	}
	// u1 = x · y, u2 = y · z with y = u1[p..]
	x := u1.Slice(0, p)
	z := u2.Slice(u1.Len()-p, u2.Len())
	return CriticalPair{First: v1.Concat(z), Second: x.Concat(v2)}
}

// ResolveCriticalPair reduces both sides of the pair to normal form and,
// if they disagree, inserts the rule oriented by the term order. The
// order is total, so orientation never fails. The returned boolean
// reports whether a new rule was installed.
func (s *System) ResolveCriticalPair(cp CriticalPair) (RuleID, bool, error) {
	if cp.IsTrivial() {
		return 0, false, nil
	}
	b1 := s.Reduce(cp.First)
	b2 := s.Reduce(cp.Second)
	switch s.props.CompareTerms(b1, b2) {
	case Equal:
		return 0, false, nil
	case Ascending:
		return s.insertResolved(b2, b1)
	default:
		return s.insertResolved(b1, b2)
	}
}

func (s *System) insertResolved(source, target Term) (RuleID, bool, error) {
	inserted, id, err := s.Insert(source, target)
	if err != nil {
		return 0, false, err
	}
	return id, inserted, nil
}
