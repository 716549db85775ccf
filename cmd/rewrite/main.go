// Command rewrite builds a confluent rewriting system from a generic
// signature described in YAML, and answers reduction queries against it.
//
// A signature file names the trait refinement graph, the constraints,
// and optionally a list of query types:
//
//	traits:
//	  Collection: [Sequence]
//	constraints:
//	  - bound:
//	      lhs: {generic: Self}
//	      rhs: {trait: Collection}
//	  - equality:
//	      lhs: {assoc: {base: {generic: Self}, trait: Collection, name: Slice}}
//	      rhs: {assoc: {base: {generic: Self}, trait: Collection, name: Slice}}
//	queries:
//	  - {assoc: {base: {generic: Self}, trait: Collection, name: Element}}
//
// "rewrite complete sig.yaml" prints the saturated rule set;
// "rewrite reduce sig.yaml" prints the normal form of every query.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/gitrdm/gorewrite/pkg/rewriting"
)

type typeNode struct {
	Concrete string     `yaml:"concrete,omitempty"`
	Trait    string     `yaml:"trait,omitempty"`
	Generic  string     `yaml:"generic,omitempty"`
	Assoc    *assocNode `yaml:"assoc,omitempty"`
}

type assocNode struct {
	Base  typeNode `yaml:"base"`
	Trait string   `yaml:"trait"`
	Name  string   `yaml:"name"`
}

type constraintNode struct {
	Bound    *pairNode `yaml:"bound,omitempty"`
	Equality *pairNode `yaml:"equality,omitempty"`
}

type pairNode struct {
	LHS typeNode `yaml:"lhs"`
	RHS typeNode `yaml:"rhs"`
}

type signatureFile struct {
	Traits      map[string][]string `yaml:"traits"`
	Constraints []constraintNode    `yaml:"constraints"`
	Queries     []typeNode          `yaml:"queries"`
}

func (n typeNode) toType() (rewriting.Type, error) {
	set := 0
	for _, present := range []bool{n.Concrete != "", n.Trait != "", n.Generic != "", n.Assoc != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("a type needs exactly one of concrete, trait, generic, assoc")
	}
	switch {
	case n.Concrete != "":
		return rewriting.ConcreteType{Name: n.Concrete}, nil
	case n.Trait != "":
		return rewriting.TraitType{Name: n.Trait}, nil
	case n.Generic != "":
		return rewriting.GenericParam{Name: n.Generic}, nil
	default:
		base, err := n.Assoc.Base.toType()
		if err != nil {
			return nil, err
		}
		return rewriting.AssocType{Base: base, Trait: n.Assoc.Trait, Name: n.Assoc.Name}, nil
	}
}

func (n constraintNode) toConstraint() (rewriting.Constraint, error) {
	var kind rewriting.ConstraintKind
	var pair *pairNode
	switch {
	case n.Bound != nil && n.Equality == nil:
		kind, pair = rewriting.KindBound, n.Bound
	case n.Equality != nil && n.Bound == nil:
		kind, pair = rewriting.KindEquality, n.Equality
	default:
		return rewriting.Constraint{}, fmt.Errorf("a constraint needs exactly one of bound, equality")
	}
	lhs, err := pair.LHS.toType()
	if err != nil {
		return rewriting.Constraint{}, err
	}
	rhs, err := pair.RHS.toType()
	if err != nil {
		return rewriting.Constraint{}, err
	}
	return rewriting.Constraint{Kind: kind, LHS: lhs, RHS: rhs}, nil
}

func loadSignature(path string) (*signatureFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sig signatureFile
	if err := yaml.Unmarshal(data, &sig); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sig, nil
}

type options struct {
	maxRules int
	maxSteps int
	verbose  bool
	verify   bool
}

func (o *options) register(flags *pflag.FlagSet) {
	flags.IntVar(&o.maxRules, "max-rules", rewriting.DefaultMaxRules, "completion rule budget")
	flags.IntVar(&o.maxSteps, "max-steps", rewriting.DefaultMaxSteps, "completion step budget")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log each rule insertion")
	flags.BoolVar(&o.verify, "verify", false, "re-check every critical pair after completion")
}

// buildSystem translates the signature, completes it, and reports
// whether completion converged within budget.
func (o *options) buildSystem(sig *signatureFile) (*rewriting.System, error) {
	props := &rewriting.TypeProperties{TraitToBases: sig.Traits}
	if err := props.Validate(); err != nil {
		return nil, err
	}

	sys := rewriting.NewSystem(props)
	if o.verbose {
		logger := logrus.New()
		logger.SetLevel(logrus.DebugLevel)
		sys.SetLogger(logrus.NewEntry(logger))
	}

	var constraints []rewriting.Constraint
	for _, cn := range sig.Constraints {
		c, err := cn.toConstraint()
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
	}
	if err := sys.AddConstraints(constraints); err != nil {
		return nil, err
	}

	budget := rewriting.CompletionBudget{MaxRules: o.maxRules, MaxSteps: o.maxSteps}
	if err := sys.Complete(context.Background(), budget); err != nil {
		if rewriting.ErrBudgetExceeded.Is(err) {
			fmt.Fprintf(os.Stderr, "warning: %v; the rule set below is partial\n", err)
		} else {
			return nil, err
		}
	} else if o.verify {
		if unjoinable := sys.VerifyConfluence(); len(unjoinable) > 0 {
			return nil, fmt.Errorf("verification found %d unjoinable critical pairs", len(unjoinable))
		}
	}
	return sys, nil
}

func newCompleteCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "complete <signature.yaml>",
		Short: "Saturate the signature's rewriting system and print its rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := loadSignature(args[0])
			if err != nil {
				return err
			}
			sys, err := opts.buildSystem(sig)
			if err != nil {
				return err
			}
			fmt.Print(sys.DumpString())
			return nil
		},
	}
	opts.register(cmd.Flags())
	return cmd
}

func newReduceCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "reduce <signature.yaml>",
		Short: "Reduce the signature's query types to canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := loadSignature(args[0])
			if err != nil {
				return err
			}
			if len(sig.Queries) == 0 {
				return fmt.Errorf("%s has no queries", args[0])
			}
			sys, err := opts.buildSystem(sig)
			if err != nil {
				return err
			}
			for _, qn := range sig.Queries {
				q, err := qn.toType()
				if err != nil {
					return err
				}
				u := rewriting.TermOf(q)
				fmt.Printf("%s ~> %s\n", u, sys.Reduce(u))
			}
			return nil
		},
	}
	opts.register(cmd.Flags())
	return cmd
}

func main() {
	root := &cobra.Command{
		Use:           "rewrite",
		Short:         "Knuth-Bendix completion for generic-signature constraints",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newCompleteCmd(), newReduceCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
