package rewriting

import (
	"context"

	"github.com/opentracing/opentracing-go"
)

// OverlapID packs an overlap (lhs rule, rhs rule, position) into one
// integer so the completion driver can remember which overlaps it has
// already examined. Each field gets 16 bits, which comfortably covers
// realistic generic signatures.
type OverlapID uint64

const overlapFieldMax = 1<<16 - 1

// packOverlapID builds the identifier, or ErrOverlapIDOverflow when a
// field does not fit its 16 bits.
func packOverlapID(lhs, rhs RuleID, pos int) (OverlapID, error) {
	if lhs < 0 || rhs < 0 || pos < 0 ||
		lhs > overlapFieldMax || rhs > overlapFieldMax || pos > overlapFieldMax {
		return 0, ErrOverlapIDOverflow.New(lhs, rhs, pos)
	}
	return OverlapID(uint64(lhs)<<32 | uint64(rhs)<<16 | uint64(pos)), nil
}

// Unpack returns the overlap's constituents.
func (o OverlapID) Unpack() (lhs, rhs RuleID, pos int) {
	return RuleID(o >> 32), RuleID(o >> 16 & overlapFieldMax), int(o & overlapFieldMax)
}

// CompletionBudget bounds a completion run. Zero fields take the
// defaults. Exceeding either bound returns ErrBudgetExceeded; the
// partial system remains well formed.
type CompletionBudget struct {
	// MaxRules caps the total number of rules in storage.
	MaxRules int
	// MaxSteps caps the number of critical pairs popped from the
	// worklist.
	MaxSteps int
}

// Default completion bounds, generous for real signatures while keeping
// divergent inputs from running away.
const (
	DefaultMaxRules = 4096
	DefaultMaxSteps = 1 << 16
)

func (b CompletionBudget) withDefaults() CompletionBudget {
	if b.MaxRules <= 0 {
		b.MaxRules = DefaultMaxRules
	}
	if b.MaxSteps <= 0 {
		b.MaxSteps = DefaultMaxSteps
	}
	return b
}

// overlap is one buffered (rhs, position) emission of ForEachOverlap.
type overlap struct {
	j RuleID
	p int
}

// Complete saturates the system by Knuth-Bendix completion: every
// overlap between active rules is turned into a critical pair, each pair
// is resolved (possibly inserting a new rule), and newly created rules
// have their overlaps enumerated in turn, until the worklist drains.
// When Complete returns nil the system is confluent with respect to its
// order and Reduce yields a unique normal form for every term.
//
// The context is checked between pops and between overlap enumerations;
// cancellation surfaces as ctx.Err. Budget exhaustion surfaces as
// ErrBudgetExceeded. In both cases the partial system stays well formed
// (every invariant holds), it just is not guaranteed confluent.
func (s *System) Complete(ctx context.Context, budget CompletionBudget) error {
	budget = budget.withDefaults()

	span, ctx := opentracing.StartSpanFromContext(ctx, "rewriting.complete")
	defer span.Finish()

	visited := make(map[OverlapID]struct{})
	var pairs []CriticalPair

	// Enumerate overlaps of rule i into a buffer first; forming pairs
	// reads the store but the index must not change mid-enumeration.
	schedule := func(i RuleID) error {
		var buf []overlap
		s.ForEachOverlap(i, func(j RuleID, p int) {
			buf = append(buf, overlap{j: j, p: p})
		})
		for _, o := range buf {
			oid, err := packOverlapID(i, o.j, o.p)
			if err != nil {
				return err
			}
			if _, seen := visited[oid]; seen {
				continue
			}
			visited[oid] = struct{}{}
			pairs = append(pairs, s.FormCriticalPair(i, o.j, o.p))
		}
		return nil
	}

	for _, i := range s.store.activeIDs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := schedule(i); err != nil {
			return err
		}
	}

	steps := 0
	for len(pairs) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		steps++
		if steps > budget.MaxSteps {
			span.SetTag("budget_exceeded", true)
			return ErrBudgetExceeded.New("step bound reached")
		}

		cp := pairs[len(pairs)-1]
		pairs = pairs[:len(pairs)-1]

		id, inserted, err := s.ResolveCriticalPair(cp)
		if err != nil {
			return err
		}
		if !inserted {
			continue
		}
		s.log.WithFields(map[string]interface{}{
			"rule":  s.store.get(id).String(),
			"rules": s.store.len(),
		}).Debug("completion inserted rule")
		if s.store.len() > budget.MaxRules {
			span.SetTag("budget_exceeded", true)
			return ErrBudgetExceeded.New("rule bound reached")
		}

		// A new rule can overlap any rule, and insertion may have
		// retired rules via right-simplification, so re-enumerate over
		// the current active set. Visited identifiers keep the pass
		// incremental.
		for _, i := range s.store.activeIDs() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := schedule(i); err != nil {
				return err
			}
		}
	}

	span.SetTag("rules", s.store.len())
	span.SetTag("steps", steps)
	s.log.WithFields(map[string]interface{}{
		"rules": s.store.len(),
		"steps": steps,
	}).Debug("completion converged")
	return nil
}

// VerifyConfluence re-derives every critical pair of the current active
// set and returns the ones whose sides reduce to different normal forms.
// An empty result on a completed system witnesses local confluence,
// which together with termination gives confluence.
func (s *System) VerifyConfluence() []CriticalPair {
	var unjoinable []CriticalPair
	for _, i := range s.store.activeIDs() {
		var buf []overlap
		s.ForEachOverlap(i, func(j RuleID, p int) {
			buf = append(buf, overlap{j: j, p: p})
		})
		for _, o := range buf {
			cp := s.FormCriticalPair(i, o.j, o.p)
			if !s.Reduce(cp.First).Equal(s.Reduce(cp.Second)) {
				unjoinable = append(unjoinable, cp)
			}
		}
	}
	return unjoinable
}
