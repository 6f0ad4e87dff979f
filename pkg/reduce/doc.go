// Package reduce canonicalizes symbolic tile coordinates.
//
// # Words
//
// A tile is addressed by the moves that reach it from the origin tile: a
// word over {u, d, l, r}. Many words reach the same tile. The [Reducer]
// rewrites a word with a fixed list of group relations until none applies,
// producing one canonical word per tile.
//
// # Rules
//
// Two kinds of rule exist:
//
//   - [Rule] replaces the leftmost occurrence of a pattern anywhere in the
//     word. Patterns containing 'u' stand for a whole family: at depth k every
//     'u' in both pattern and replacement becomes k+1 consecutive 'u's.
//     Depths are tried from zero upward until the expanded pattern is longer
//     than the word.
//   - [Finisher] strips a matching suffix, with the same depth expansion.
//
// Rules are tried in declared order. After any change the scan restarts at
// the first rule; a phase ends when a full pass changes nothing. Substring
// rules run first ([Reducer.Rewrite]), finishers second ([Reducer.Reduce]).
//
//	r := reduce.Default()
//	canon, err := r.Reduce("urru")
//	if err != nil {
//	    return err // reduce.ErrNonConvergent for a looping rule set
//	}
//
// All comparisons are byte-for-byte.
//
// # Rule sets
//
// [DefaultRuleSet] holds the relations of the order-5 square tiling, five
// squares around each vertex. Other rule sets are read from TOML with
// [LoadRuleSet]:
//
//	name = "order-5"
//	tiles_per_vertex = 5
//
//	[[rule]]
//	from = "rl"
//	to = ""
//
//	[[finisher]]
//	suffix = "r"
//
// Termination depends on the rule set. A [Reducer] stops after a configurable
// number of rewrites and returns [ErrNonConvergent] instead of a partial
// answer.
package reduce
