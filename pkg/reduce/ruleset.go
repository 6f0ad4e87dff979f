package reduce

import (
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/hypertile/pkg/errors"
)

// RuleSet is an ordered list of rewrite rules and finishers. Order matters:
// earlier entries are tried first after every change.
type RuleSet struct {
	Name           string     `toml:"name" json:"name"`
	TilesPerVertex int        `toml:"tiles_per_vertex" json:"tiles_per_vertex"`
	Rules          []Rule     `toml:"rule" json:"rules"`
	Finishers      []Finisher `toml:"finisher" json:"finishers"`
}

// DefaultRuleSet returns the relations of the order-5 square tiling.
//
// The first four rules cancel and normalize turns: three right turns are one
// left turn. "urru" undoes a step followed by its reverse. The remaining rules
// trade a long walk around a vertex for the short way round.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Name:           "order-5",
		TilesPerVertex: 5,
		Rules: []Rule{
			{"rl", ""},
			{"lr", ""},
			{"ll", "rr"},
			{"rrr", "l"},
			{"urru", "rr"},
			{"uluulu", "luruurul"},
			{"ururu", "rulur"},
			{"ululu", "lurul"},
		},
		Finishers: []Finisher{
			{"r"},
			{"rr"},
			{"l"},
			{"ll"},
		},
	}
}

// Validate checks that every pattern is a non-empty word over the alphabet
// and differs from its replacement.
func (rs RuleSet) Validate() error {
	for i, r := range rs.Rules {
		if r.Pattern == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "rule %d: empty pattern", i+1)
		}
		if r.Pattern == r.Replacement {
			return errors.New(errors.ErrCodeInvalidConfig, "rule %d: %q rewrites to itself", i+1, r.Pattern)
		}
		if err := Validate(r.Pattern); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "rule %d pattern", i+1)
		}
		if err := Validate(r.Replacement); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "rule %d replacement", i+1)
		}
	}
	for i, f := range rs.Finishers {
		if f.Suffix == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "finisher %d: empty suffix", i+1)
		}
		if err := Validate(f.Suffix); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "finisher %d", i+1)
		}
	}
	return nil
}

// DecodeRuleSet reads a TOML rule set. Unknown keys are rejected so typos in
// a rule file do not silently drop rules.
func DecodeRuleSet(r io.Reader) (RuleSet, error) {
	var rs RuleSet
	md, err := toml.NewDecoder(r).Decode(&rs)
	if err != nil {
		return RuleSet{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode rule set")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return RuleSet{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in rule set: %s", strings.Join(keys, ", "))
	}
	if err := rs.Validate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

// LoadRuleSet reads a TOML rule set from path.
func LoadRuleSet(path string) (RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RuleSet{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "rule set %s", path)
		}
		return RuleSet{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open rule set %s", path)
	}
	defer f.Close()

	rs, err := DecodeRuleSet(f)
	if err != nil {
		return RuleSet{}, err
	}
	if rs.Name == "" {
		rs.Name = path
	}
	return rs, nil
}

// EncodeRuleSet writes rs as TOML.
func EncodeRuleSet(w io.Writer, rs RuleSet) error {
	return toml.NewEncoder(w).Encode(rs)
}
