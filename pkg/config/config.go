// Package config reads hypertile.toml project files.
//
// A project file fixes the tiling and output settings of a directory so the
// CLI can be run without flags:
//
//	tiles_per_vertex = 5
//	depth = 3
//	exclude = ["u"]
//	rules = "rules/order5.toml"
//	projection = "poincare"
//	formats = ["svg", "json"]
//
//	[[special]]
//	word = "uu"
//	kind = "goal"
//
//	[render]
//	size = 1024
//	labels = true
//	colors = { goal = "#e07a5f" }
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
// Flags override the file and the file overrides package defaults. Unknown
// keys are rejected.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/hypertile/pkg/cache"
	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/pipeline"
	"github.com/matzehuels/hypertile/pkg/reduce"
	"github.com/matzehuels/hypertile/pkg/render"
	"github.com/matzehuels/hypertile/pkg/tiling"
)

// FileName is the project file looked up in the working directory.
const FileName = "hypertile.toml"

// Config is the content of a project file. Zero fields are unset.
type Config struct {
	TilesPerVertex int                  `toml:"tiles_per_vertex"`
	Depth          *int                 `toml:"depth"`
	Moves          []string             `toml:"moves"`
	Exclude        []string             `toml:"exclude"`
	Special        []tiling.SpecialTile `toml:"special"`
	MaxTiles       int                  `toml:"max_tiles"`

	// Rules is a rule set file. Relative paths are resolved against the
	// directory of the project file.
	Rules string `toml:"rules"`

	VizType    string   `toml:"viz"`
	Projection string   `toml:"projection"`
	Formats    []string `toml:"formats"`

	Render RenderConfig `toml:"render"`
	Cache  cache.Config `toml:"cache"`
	Server ServerConfig `toml:"server"`

	// path is where the file was read from.
	path string
}

// RenderConfig holds picture settings.
type RenderConfig struct {
	Size     float64           `toml:"size"`
	Scale    float64           `toml:"scale"`
	Labels   bool              `toml:"labels"`
	Colors   map[string]string `toml:"colors"`
	Detailed bool              `toml:"detailed"`
	TreeOnly bool              `toml:"tree_only"`
}

// ServerConfig holds settings of the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`

	// KeyPrefix scopes cache keys when several servers share a backend.
	KeyPrefix string `toml:"key_prefix"`

	// RateLimit caps API requests per second. Zero disables limiting.
	RateLimit float64 `toml:"rate_limit"`

	// Metrics exposes Prometheus metrics at /metrics.
	Metrics bool `toml:"metrics"`
}

// Decode reads a project file from r.
func Decode(r io.Reader) (*Config, error) {
	var c Config
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", FileName)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", FileName, strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads the project file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open config %s", path)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "%s", path)
	}
	c.path = path
	return c, nil
}

// Find returns the project file in dir, or "" if there is none.
func Find(dir string) string {
	path := filepath.Join(dir, FileName)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}

// LoadOrDefault loads path if it is set, else the project file in the
// working directory if there is one, else an empty Config.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if wd, err := os.Getwd(); err == nil {
		if found := Find(wd); found != "" {
			return Load(found)
		}
	}
	return &Config{}, nil
}

// Path is the file the Config was read from, or "" if it was not read
// from disk.
func (c *Config) Path() string { return c.path }

// Validate checks field values that can be checked without other input.
func (c *Config) Validate() error {
	if c.TilesPerVertex != 0 && c.TilesPerVertex < geom.MinTilesPerVertex {
		return errors.New(errors.ErrCodeInvalidConfig, "tiles_per_vertex must be at least %d, got %d", geom.MinTilesPerVertex, c.TilesPerVertex)
	}
	if c.Depth != nil && *c.Depth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "depth cannot be negative (%d)", *c.Depth)
	}
	for _, w := range append(append([]string(nil), c.Exclude...), c.Moves...) {
		if err := reduce.Validate(w); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "config")
		}
	}
	for _, st := range c.Special {
		if err := reduce.Validate(st.Word); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "special tile %q", st.Kind)
		}
	}
	if c.VizType != "" {
		if err := pipeline.ValidateVizType(c.VizType); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "viz")
		}
	}
	if c.Projection != "" && !geom.ValidProjections[geom.Projection(c.Projection)] {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown projection %q", c.Projection)
	}
	if _, err := c.formats(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "formats")
	}
	if c.Server.RateLimit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.rate_limit must not be negative, got %g", c.Server.RateLimit)
	}
	return c.Cache.Validate()
}

func (c *Config) formats() ([]render.Format, error) {
	if len(c.Formats) == 0 {
		return nil, nil
	}
	return render.ParseFormats(strings.Join(c.Formats, ","))
}

// RulesPath resolves Rules against the directory of the project file.
func (c *Config) RulesPath() string {
	if c.Rules == "" || filepath.IsAbs(c.Rules) || c.path == "" {
		return c.Rules
	}
	return filepath.Join(filepath.Dir(c.path), c.Rules)
}

// RuleSet loads the configured rule set, or returns nil for the built-in one.
func (c *Config) RuleSet() (*reduce.RuleSet, error) {
	path := c.RulesPath()
	if path == "" {
		return nil, nil
	}
	rs, err := reduce.LoadRuleSet(path)
	if err != nil {
		return nil, err
	}
	return &rs, nil
}

// Options converts the file into pipeline options. Unset fields stay zero
// so pipeline defaults apply.
func (c *Config) Options() (pipeline.Options, error) {
	formats, err := c.formats()
	if err != nil {
		return pipeline.Options{}, err
	}
	rules, err := c.RuleSet()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		TilesPerVertex: c.TilesPerVertex,
		Moves:          c.Moves,
		Exclude:        c.Exclude,
		Special:        c.Special,
		MaxTiles:       c.MaxTiles,
		Rules:          rules,
		VizType:        c.VizType,
		Formats:        formats,
		Projection:     geom.Projection(c.Projection),
		Size:           c.Render.Size,
		Scale:          c.Render.Scale,
		Labels:         c.Render.Labels,
		KindColors:     c.Render.Colors,
		Detailed:       c.Render.Detailed,
		TreeOnly:       c.Render.TreeOnly,
	}
	if c.Depth != nil {
		opts.Depth = pipeline.Depth(*c.Depth)
	}
	return opts, nil
}
