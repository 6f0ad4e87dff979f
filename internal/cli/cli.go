// Package cli implements the hypertile command-line interface.
//
// # Commands
//
//   - profile: curvature constants for a number of tiles per vertex
//   - reduce: canonical forms of move words
//   - tiles: enumerate and place tiles, print them as a table or JSON
//   - render: SVG, PDF, PNG, JSON or DOT pictures of a tiling
//   - walk: run a movement script through the tiling
//   - browse: interactive list of placed tiles
//   - serve: the HTTP API
//   - cache: inspect and clear the result cache
//
// Settings come from flags, then from hypertile.toml in the working
// directory (or --config), then from package defaults.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hypertile/pkg/buildinfo"
	"github.com/matzehuels/hypertile/pkg/cache"
	"github.com/matzehuels/hypertile/pkg/config"
	"github.com/matzehuels/hypertile/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "hypertile"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Hypertile enumerates, draws and walks curved square tilings",
		Long: `Hypertile grows square tilings of the sphere, the plane and the hyperbolic plane
from the origin tile, names every tile by a canonical move word and places it
with gyrovector arithmetic.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "project file (default: ./"+config.FileName+" if present)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the result cache")

	root.AddCommand(c.profileCommand())
	root.AddCommand(c.reduceCommand())
	root.AddCommand(c.tilesCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.walkCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the project file once per invocation.
func (c *CLI) loadConfig() error {
	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return err
	}
	if cfg.Path() != "" {
		c.Logger.Debug("loaded project file", "path", cfg.Path())
	}
	c.cfg = cfg
	return nil
}

// config returns the loaded project file, or an empty one when a command
// runs without the root's pre-run hook.
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = &config.Config{}
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cc, err := c.openCache(ctx)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if prefix := c.config().Server.KeyPrefix; prefix != "" {
		keyer = cache.NewScopedKeyer(nil, prefix)
	}
	return pipeline.NewRunner(cache.Instrument(cc), keyer, c.Logger), nil
}

// openCache opens the configured backend. The file backend defaults to the
// XDG cache directory; if that cannot be located caching is disabled.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.config().Cache
	if (cfg.Backend == "" || cfg.Backend == cache.BackendFile) && cfg.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		cfg.Dir = dir
	}
	return cache.Open(ctx, cfg)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/hypertile/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	return cache.DefaultDir()
}
