package reduce

import (
	stderrors "errors"
	"fmt"

	"github.com/matzehuels/hypertile/pkg/errors"
)

// Defaults for the safety limits of a Reducer.
const (
	// DefaultMaxIterations bounds the rewrites of one reduction.
	DefaultMaxIterations = 10000

	// DefaultMaxDepth bounds the 'u' expansion of parameterized rules.
	// Expansion also stops once the pattern outgrows the word.
	DefaultMaxDepth = 64
)

// ErrNonConvergent is returned when a rule set keeps rewriting a word past
// the iteration limit. It always indicates a broken rule set.
var ErrNonConvergent = stderrors.New("reduce: rule set does not converge")

// ErrOptionViolation is returned when an invalid Option is supplied.
var ErrOptionViolation = stderrors.New("reduce: invalid option supplied")

// Option configures a Reducer.
type Option func(*Reducer)

// WithMaxIterations sets how many rewrites one call may apply before it
// fails with ErrNonConvergent. n must be positive.
func WithMaxIterations(n int) Option {
	return func(r *Reducer) {
		if n <= 0 {
			r.err = fmt.Errorf("%w: max iterations must be positive (%d)", ErrOptionViolation, n)
			return
		}
		r.maxIterations = n
	}
}

// WithMaxDepth sets the deepest 'u' expansion tried for parameterized rules.
// Zero limits rules to their literal form.
func WithMaxDepth(d int) Option {
	return func(r *Reducer) {
		if d < 0 {
			r.err = fmt.Errorf("%w: max depth cannot be negative (%d)", ErrOptionViolation, d)
			return
		}
		r.maxDepth = d
	}
}

// Reducer canonicalizes words with a fixed rule set. A Reducer is immutable
// and safe for concurrent use.
type Reducer struct {
	set           RuleSet
	rules         []rewriter
	finishers     []rewriter
	maxIterations int
	maxDepth      int
	err           error
}

// New builds a Reducer for rs. It fails with an INVALID_CONFIG error when the
// rule set or an option is invalid.
func New(rs RuleSet, opts ...Option) (*Reducer, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	r := &Reducer{
		set:           rs,
		maxIterations: DefaultMaxIterations,
		maxDepth:      DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, r.err, "reducer options")
	}

	r.rules = make([]rewriter, len(rs.Rules))
	for i, rule := range rs.Rules {
		r.rules[i] = rule
	}
	r.finishers = make([]rewriter, len(rs.Finishers))
	for i, f := range rs.Finishers {
		r.finishers[i] = f
	}
	return r, nil
}

// Default returns a Reducer for DefaultRuleSet with default limits.
func Default() *Reducer {
	r, err := New(DefaultRuleSet())
	if err != nil {
		panic(err)
	}
	return r
}

// RuleSet returns the rules the reducer applies.
func (r *Reducer) RuleSet() RuleSet {
	return r.set
}

// Reduce returns the canonical form of word: substring rules to a fixed
// point, then finishers to a fixed point.
func (r *Reducer) Reduce(word string) (string, error) {
	return r.run(word, nil)
}

// Rewrite applies only the substring rules to a fixed point.
func (r *Reducer) Rewrite(word string) (string, error) {
	out, _, err := r.fixpoint(word, r.rules, 0, nil)
	return out, err
}

// Trace reduces word like Reduce and also returns every rewrite applied,
// in order.
func (r *Reducer) Trace(word string) (string, []Step, error) {
	var steps []Step
	out, err := r.run(word, func(s Step) { steps = append(steps, s) })
	return out, steps, err
}

// MustReduce is Reduce for callers that hold a rule set known to converge.
func (r *Reducer) MustReduce(word string) string {
	out, err := r.Reduce(word)
	if err != nil {
		panic(err)
	}
	return out
}

func (r *Reducer) run(word string, observe func(Step)) (string, error) {
	out, n, err := r.fixpoint(word, r.rules, 0, observe)
	if err != nil {
		return "", err
	}
	out, _, err = r.fixpoint(out, r.finishers, n, observe)
	if err != nil {
		return "", err
	}
	return out, nil
}

// fixpoint applies list in order, restarting at the first entry after each
// change, until a full pass changes nothing. done counts rewrites already
// spent on this word.
func (r *Reducer) fixpoint(word string, list []rewriter, done int, observe func(Step)) (string, int, error) {
	start := word
	for i := 0; i < len(list); {
		next, depth, changed := list[i].apply(word, r.maxDepth)
		if !changed || next == word {
			i++
			continue
		}
		done++
		if done > r.maxIterations {
			return "", done, errors.Wrap(errors.ErrCodeNonConvergent, ErrNonConvergent,
				"%q still changing after %d rewrites (last rule %s)", start, r.maxIterations, list[i])
		}
		if observe != nil {
			observe(Step{Rule: list[i].String(), Depth: depth, Before: word, After: next})
		}
		word = next
		i = 0
	}
	return word, done, nil
}
