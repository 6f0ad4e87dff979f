package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/reduce"
)

type reduceOpts struct {
	rules   string
	trace   bool
	rewrite bool
	check   bool
	asJSON  bool
}

// reduceCommand prints canonical forms of move words.
func (c *CLI) reduceCommand() *cobra.Command {
	var opts reduceOpts

	cmd := &cobra.Command{
		Use:   "reduce [word...]",
		Short: "Reduce move words to canonical form",
		Long: `Reduce rewrites move words over u, d, l, r with the rule set until no rule
applies, then strips trailing turns. Words are read from stdin when none are
given; "''" or "-" stand for the empty word.`,
		Example: `  hypertile reduce rl uurruu
  hypertile reduce --trace uluulu
  hypertile reduce --check < words.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			words := args
			if len(words) == 0 {
				var err error
				if words, err = readWords(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			reducer, err := c.reducer(opts.rules)
			if err != nil {
				return err
			}
			return runReduce(cmd.OutOrStdout(), reducer, words, opts)
		},
	}

	cmd.Flags().StringVar(&opts.rules, "rules", "", "rule set file (default: project file or built-in)")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "print every rewrite")
	cmd.Flags().BoolVar(&opts.rewrite, "rewrite", false, "apply rules only, without trailing turn removal")
	cmd.Flags().BoolVar(&opts.check, "check", false, "fail if a word is not already canonical")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON lines")
	return cmd
}

// reducer builds a reducer from a rule file, the project file, or the
// built-in rules, in that order.
func (c *CLI) reducer(path string) (*reduce.Reducer, error) {
	if path != "" {
		rs, err := reduce.LoadRuleSet(path)
		if err != nil {
			return nil, err
		}
		return reduce.New(rs)
	}
	rs, err := c.config().RuleSet()
	if err != nil {
		return nil, err
	}
	if rs == nil {
		return reduce.Default(), nil
	}
	return reduce.New(*rs)
}

type reduceLine struct {
	Word      string        `json:"word"`
	Canonical string        `json:"canonical"`
	Steps     []reduce.Step `json:"steps,omitempty"`
}

func runReduce(out io.Writer, r *reduce.Reducer, words []string, opts reduceOpts) error {
	enc := json.NewEncoder(out)
	var nonCanonical []string

	for _, w := range words {
		if w == "''" || w == "-" {
			w = reduce.Origin
		}
		if err := reduce.Validate(w); err != nil {
			return err
		}

		line := reduceLine{Word: w}
		var err error
		switch {
		case opts.trace:
			line.Canonical, line.Steps, err = r.Trace(w)
		case opts.rewrite:
			line.Canonical, err = r.Rewrite(w)
		default:
			line.Canonical, err = r.Reduce(w)
		}
		if err != nil {
			return err
		}
		if line.Canonical != w {
			nonCanonical = append(nonCanonical, w)
		}

		if opts.asJSON {
			if err := enc.Encode(line); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(out, "%s %s %s\n", reduce.Display(w), StyleDim.Render(iconArrow), StyleHighlight.Render(reduce.Display(line.Canonical)))
		for _, s := range line.Steps {
			fmt.Fprintf(out, "    %s %s %s  %s\n",
				StyleDim.Render(reduce.Display(s.Before)), iconArrow, reduce.Display(s.After), StyleDim.Render(s.Rule))
		}
	}

	if opts.check && len(nonCanonical) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "%d of %d words are not canonical", len(nonCanonical), len(words))
	}
	return nil
}

// readWords reads whitespace separated words.
func readWords(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		words = append(words, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read words")
	}
	if len(words) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no words given")
	}
	return words, nil
}
